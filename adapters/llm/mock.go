package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/dverbeek/callscribe/domain/repositories"
)

// MockExtractor is a deterministic insight backend for local development.
type MockExtractor struct{}

// NewMockExtractor creates the mock backend.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// ExtractInsights scans for a few keywords and fabricates insights.
func (m *MockExtractor) ExtractInsights(ctx context.Context, transcript string) (repositories.Insights, error) {
	lower := strings.ToLower(transcript)

	var insights repositories.Insights
	if strings.Contains(lower, "follow up") {
		insights.ActionItems = append(insights.ActionItems, "Follow up with procurement about the new quote")
	}
	if strings.Contains(lower, "consider") {
		insights.Recommendations = append(insights.Recommendations, "Consider moving the rollout to early next quarter")
	}
	insights.Summary = fmt.Sprintf("Mock summary over %d characters of transcript.", len(transcript))
	return insights, nil
}
