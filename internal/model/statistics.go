package model

// ExamStatistics is the derived per-paper result summary. Completed
// counts sessions that reached Graded or Completed; rates are
// percentages.
type ExamStatistics struct {
	TotalParticipants int     `json:"total_participants"`
	CompletedCount    int     `json:"completed_count"`
	PassedCount       int     `json:"passed_count"`
	AverageScore      float64 `json:"average_score"`
	MaxScore          float64 `json:"max_score"`
	MinScore          float64 `json:"min_score"`
	PassRate          float64 `json:"pass_rate"`
	CompletionRate    float64 `json:"completion_rate"`
}
