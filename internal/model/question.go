package model

// QuestionKind enumerates the supported question kinds.
type QuestionKind string

const (
	KindSingleChoice   QuestionKind = "SINGLE_CHOICE"
	KindMultipleChoice QuestionKind = "MULTIPLE_CHOICE"
	KindTrueFalse      QuestionKind = "TRUE_FALSE"
	KindFillInBlank    QuestionKind = "FILL_IN_BLANK"
	KindShortAnswer    QuestionKind = "SHORT_ANSWER"
	KindEssay          QuestionKind = "ESSAY"
	KindMapDrawing     QuestionKind = "MAP_DRAWING"
)

// Objective reports whether the kind is mechanically gradable. Short
// answer, essay and map drawing submissions wait for a human grader.
func (k QuestionKind) Objective() bool {
	switch k {
	case KindSingleChoice, KindMultipleChoice, KindTrueFalse, KindFillInBlank:
		return true
	default:
		return false
	}
}
