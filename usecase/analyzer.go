package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dverbeek/callscribe/domain/entities"
	"github.com/dverbeek/callscribe/domain/repositories"
)

// Fixed degraded-mode outputs used when the completion service is unavailable
// or returns an unparseable structure.
const (
	fallbackActionItem     = "Follow up on the items discussed in this call"
	fallbackRecommendation = "Consider the improvements raised during this call"
)

// Analyzer derives action items, recommendations and a running summary from
// the accumulated transcript.
type Analyzer struct {
	extractor repositories.InsightExtractor
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAnalyzer creates an analyzer backed by the given completion service.
func NewAnalyzer(extractor repositories.InsightExtractor, timeout time.Duration, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		extractor: extractor,
		timeout:   timeout,
		logger:    logger,
	}
}

// Analyze runs one analysis pass and emits whatever is new. Items already
// sent to the client are suppressed; the summary is replaced and emitted
// every pass. Never fails: a broken completion service degrades to keyword
// heuristics.
func (a *Analyzer) Analyze(ctx context.Context, session *entities.Session, emitter Emitter) {
	transcript := session.FullTranscript()
	if transcript == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	insights, err := a.extractor.ExtractInsights(ctx, transcript)
	if err != nil {
		a.logger.Warn("Insight extraction failed, falling back to heuristics",
			zap.String("sessionID", session.ID),
			zap.Error(err))
		insights = heuristicInsights(transcript, len(session.TranscriptSegments))
	}

	for _, item := range insights.ActionItems {
		if _, seen := session.EmittedActionItems[item]; seen {
			continue
		}
		session.EmittedActionItems[item] = struct{}{}
		emitter.EmitActionItem(item)
	}

	for _, rec := range insights.Recommendations {
		if _, seen := session.EmittedRecommendations[rec]; seen {
			continue
		}
		session.EmittedRecommendations[rec] = struct{}{}
		emitter.EmitRecommendation(rec)
	}

	session.CurrentSummary = insights.Summary
	emitter.EmitSummary(insights.Summary)
}

// heuristicInsights is the degraded-mode keyword scan. It must never fail.
func heuristicInsights(transcript string, segments int) repositories.Insights {
	lower := strings.ToLower(transcript)

	var insights repositories.Insights
	if strings.Contains(lower, "follow up") || strings.Contains(lower, "todo") {
		insights.ActionItems = append(insights.ActionItems, fallbackActionItem)
	}
	if strings.Contains(lower, "improve") || strings.Contains(lower, "consider") {
		insights.Recommendations = append(insights.Recommendations, fallbackRecommendation)
	}
	insights.Summary = fmt.Sprintf("Call in progress with %d transcribed segments so far.", segments)
	return insights
}
