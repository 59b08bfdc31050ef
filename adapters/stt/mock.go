package stt

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// mockTranscripts cycle through plausible call fragments so the full
// pipeline can run without an STT credential.
var mockTranscripts = []string{
	"Thanks for joining, let's walk through the renewal terms.",
	"We should follow up with procurement about the new quote.",
	"Consider moving the rollout to early next quarter.",
}

// MockSpeechToText is a scripted STT backend for local development.
type MockSpeechToText struct {
	logger *zap.Logger
	mu     sync.Mutex
	calls  int
}

// NewMockSpeechToText creates the mock backend.
func NewMockSpeechToText(logger *zap.Logger) *MockSpeechToText {
	return &MockSpeechToText{logger: logger}
}

// Transcribe returns the next canned transcript.
func (m *MockSpeechToText) Transcribe(ctx context.Context, container []byte, hint string) (string, error) {
	m.mu.Lock()
	text := mockTranscripts[m.calls%len(mockTranscripts)]
	m.calls++
	m.mu.Unlock()

	m.logger.Info("Mock transcription",
		zap.Int("containerBytes", len(container)),
		zap.String("text", text))

	return text, nil
}
