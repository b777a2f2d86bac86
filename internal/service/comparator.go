package service

import (
	"sort"
	"strings"

	"github.com/firegate/examcore/internal/model"
)

// CompareAnswers decides whether a submitted answer matches the
// canonical answer for an objective question kind. Subjective kinds
// (short answer, essay, map drawing) are never auto-compared and always
// return false. Empty or whitespace-only submissions are incorrect.
func CompareAnswers(submitted, canonical string, kind model.QuestionKind) bool {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return false
	}
	canonical = strings.TrimSpace(canonical)

	switch kind {
	case model.KindSingleChoice, model.KindTrueFalse:
		return strings.EqualFold(submitted, canonical)

	case model.KindMultipleChoice:
		// Every option must match; order does not matter.
		return equalOptionSets(splitOptions(submitted), splitOptions(canonical))

	case model.KindFillInBlank:
		// The canonical answer may list acceptable variants separated by |.
		for _, variant := range strings.Split(canonical, "|") {
			if strings.EqualFold(submitted, strings.TrimSpace(variant)) {
				return true
			}
		}
		return false

	default:
		return false
	}
}

// splitOptions tokenizes a comma-separated option answer into trimmed,
// lowercased, sorted tokens.
func splitOptions(answer string) []string {
	parts := strings.Split(answer, ",")
	options := make([]string, 0, len(parts))
	for _, p := range parts {
		options = append(options, strings.ToLower(strings.TrimSpace(p)))
	}
	sort.Strings(options)
	return options
}

func equalOptionSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
