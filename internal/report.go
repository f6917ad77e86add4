package internal

import "time"

// Report is the exportable summary of one annotator's ratings for a batch
type Report struct {
	AnnotatorID string      `json:"annotator_id" yaml:"annotator_id"`
	BatchPath   string      `json:"batch_path" yaml:"batch_path"`
	GeneratedAt time.Time   `json:"generated_at" yaml:"generated_at"`
	Rows        []ReportRow `json:"ratings" yaml:"ratings"`
}

// ReportRow is one conversation's rating in a report
type ReportRow struct {
	ConversationID    string                  `json:"conversation_id" yaml:"conversation_id"`
	SeedPhrase        string                  `json:"seed_phrase,omitempty" yaml:"seed_phrase,omitempty"`
	Scores            map[Dimension]int       `json:"scores" yaml:"scores"`
	Note              string                  `json:"note,omitempty" yaml:"note,omitempty"`
	TargetStatus      map[string]TargetStatus `json:"target_statuses" yaml:"target_statuses"`
	TargetsCompleted  int                     `json:"targets_completed" yaml:"targets_completed"`
	TargetsIntroduced int                     `json:"targets_introduced" yaml:"targets_introduced"`
	OverallScore      float64                 `json:"overall_score" yaml:"overall_score"`
	PassFail          string                  `json:"pass_fail" yaml:"pass_fail"`
	UpdatedAt         time.Time               `json:"updated_at" yaml:"updated_at"`
}

// BuildReport assembles the report for one annotator from the ledger's
// rated entries, in batch order.
func BuildReport(ledger *RatingLedger, annotatorID string, store *ConversationStore, cfg *Config) *Report {
	report := &Report{
		AnnotatorID: annotatorID,
		BatchPath:   store.BatchPath,
		GeneratedAt: time.Now(),
	}
	for _, conv := range store.Conversations() {
		if !ledger.Rated(conv.ID, annotatorID) {
			continue
		}
		r := ledger.Rating(conv.ID, annotatorID)
		completed, introduced := r.TargetCounts()
		overall := ComputeOverallScore(r, cfg)
		report.Rows = append(report.Rows, ReportRow{
			ConversationID:    conv.ID,
			SeedPhrase:        conv.SeedPhrase,
			Scores:            r.Scores,
			Note:              r.Note,
			TargetStatus:      r.TargetStatus,
			TargetsCompleted:  completed,
			TargetsIntroduced: introduced,
			OverallScore:      overall,
			PassFail:          PassFailLabel(overall, cfg),
			UpdatedAt:         r.UpdatedAt,
		})
	}
	return report
}
