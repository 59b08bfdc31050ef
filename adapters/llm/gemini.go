package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/dverbeek/callscribe/domain/repositories"
)

const (
	defaultModel       = "gemini-2.0-flash"
	defaultTemperature = 0.2
	maxAttempts        = 3
)

const insightPrompt = `You are analyzing the running transcript of a business call.
Extract from it:
- "action_items": concrete tasks someone committed to or must do, as short imperative sentences
- "recommendations": suggestions that would improve the outcome of the deal or project
- "summary": a short summary of the conversation so far, at most three sentences

Respond with a single JSON object with exactly those three keys. Use empty arrays when nothing applies.

Transcript:
`

// GeminiExtractor derives structured insights from transcripts through the
// Gemini API.
type GeminiExtractor struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

// NewGeminiExtractor creates the Gemini insight backend.
func NewGeminiExtractor(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &GeminiExtractor{
		client: client,
		logger: logger,
		model:  model,
	}, nil
}

// ExtractInsights submits the transcript and parses the structured response.
// A response that cannot be parsed is reported as an error so the caller's
// single fallback branch handles it.
func (g *GeminiExtractor) ExtractInsights(ctx context.Context, transcript string) (repositories.Insights, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(insightPrompt+transcript, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(defaultTemperature)),
		ResponseMIMEType: "application/json",
	}

	var response *genai.GenerateContentResponse
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		response, err = g.client.Models.GenerateContent(ctx, g.model, contents, config)
		if err == nil {
			break
		}
		g.logger.Warn("Failed to generate insights, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if attempt < maxAttempts-1 {
			select {
			case <-time.After(time.Duration(attempt+1) * time.Second):
			case <-ctx.Done():
				return repositories.Insights{}, ctx.Err()
			}
		}
	}
	if err != nil {
		return repositories.Insights{}, fmt.Errorf("insight generation failed: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return repositories.Insights{}, fmt.Errorf("empty insight response")
	}

	var text strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return parseInsights(text.String())
}

// parseInsights decodes the model output, tolerating a markdown code fence
// around the JSON.
func parseInsights(text string) (repositories.Insights, error) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var insights repositories.Insights
	if err := json.Unmarshal([]byte(trimmed), &insights); err != nil {
		return repositories.Insights{}, fmt.Errorf("unparseable insight response: %w", err)
	}
	return insights, nil
}
