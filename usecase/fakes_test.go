package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/dverbeek/callscribe/domain/repositories"
)

// fakeSTT returns scripted transcripts in order and records every call.
type fakeSTT struct {
	mu      sync.Mutex
	results []string
	err     error
	calls   int
	hints   []string
}

func (f *fakeSTT) Transcribe(ctx context.Context, container []byte, hint string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.hints = append(f.hints, hint)
	if f.err != nil {
		return "", f.err
	}
	if len(f.results) == 0 {
		return "", nil
	}
	result := f.results[0]
	f.results = f.results[1:]
	return result, nil
}

func (f *fakeSTT) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeExtractor returns a fixed insight set or a scripted error.
type fakeExtractor struct {
	insights repositories.Insights
	err      error
	calls    int
}

func (f *fakeExtractor) ExtractInsights(ctx context.Context, transcript string) (repositories.Insights, error) {
	f.calls++
	if f.err != nil {
		return repositories.Insights{}, f.err
	}
	return f.insights, nil
}

// recordingEmitter captures emitted events in order.
type recordingEmitter struct {
	events []string
}

func (r *recordingEmitter) EmitTranscript(text string, timestamp float64) {
	r.events = append(r.events, "transcript:"+text)
}

func (r *recordingEmitter) EmitActionItem(item string) {
	r.events = append(r.events, "action_item:"+item)
}

func (r *recordingEmitter) EmitRecommendation(recommendation string) {
	r.events = append(r.events, "recommendation:"+recommendation)
}

func (r *recordingEmitter) EmitSummary(summary string) {
	r.events = append(r.events, "summary_update:"+summary)
}

func (r *recordingEmitter) countPrefix(prefix string) int {
	n := 0
	for _, event := range r.events {
		if len(event) >= len(prefix) && event[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

var errUnavailable = fmt.Errorf("service unavailable")
