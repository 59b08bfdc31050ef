package repositories

import "context"

// Insights is the structured result of one analysis pass over a transcript.
type Insights struct {
	ActionItems     []string `json:"action_items"`
	Recommendations []string `json:"recommendations"`
	Summary         string   `json:"summary"`
}

// InsightExtractor abstracts the completion service that derives action
// items, recommendations and a running summary from a call transcript.
type InsightExtractor interface {
	ExtractInsights(ctx context.Context, transcript string) (Insights, error)
}
