package service

import (
	"testing"

	"github.com/firegate/examcore/internal/model"
)

func TestCompareAnswers(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		canonical string
		kind      model.QuestionKind
		want      bool
	}{
		{"single choice exact", "B", "B", model.KindSingleChoice, true},
		{"single choice case insensitive", "b", "B", model.KindSingleChoice, true},
		{"single choice wrong", "A", "B", model.KindSingleChoice, false},
		{"single choice surrounding spaces", "  B ", "B", model.KindSingleChoice, true},

		{"true false case insensitive", "TRUE", "true", model.KindTrueFalse, true},
		{"true false wrong", "false", "true", model.KindTrueFalse, false},

		{"multi choice same order", "A,C", "A,C", model.KindMultipleChoice, true},
		{"multi choice reordered", "C,A", "A,C", model.KindMultipleChoice, true},
		{"multi choice spaced and lowercased", " c , a ", "A,C", model.KindMultipleChoice, true},
		{"multi choice missing option", "A", "A,C", model.KindMultipleChoice, false},
		{"multi choice extra option", "A,B,C", "A,C", model.KindMultipleChoice, false},

		{"fill in single variant", "gopher", "gopher", model.KindFillInBlank, true},
		{"fill in matches second variant", "go gopher", "gopher|go gopher", model.KindFillInBlank, true},
		{"fill in variant case insensitive", "GOPHER", "gopher|go gopher", model.KindFillInBlank, true},
		{"fill in variant with padding", "gopher", "  gopher  | go gopher", model.KindFillInBlank, true},
		{"fill in no variant matches", "ferret", "gopher|go gopher", model.KindFillInBlank, false},

		{"essay never auto graded", "any text", "any text", model.KindEssay, false},
		{"short answer never auto graded", "42", "42", model.KindShortAnswer, false},
		{"map drawing never auto graded", "x", "x", model.KindMapDrawing, false},

		{"empty submission", "", "B", model.KindSingleChoice, false},
		{"whitespace submission", "   ", "B", model.KindSingleChoice, false},
		{"empty multi choice", "", "A,C", model.KindMultipleChoice, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareAnswers(tt.submitted, tt.canonical, tt.kind); got != tt.want {
				t.Errorf("CompareAnswers(%q, %q, %s) = %v, want %v",
					tt.submitted, tt.canonical, tt.kind, got, tt.want)
			}
		})
	}
}
