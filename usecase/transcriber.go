package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dverbeek/callscribe/domain/entities"
	"github.com/dverbeek/callscribe/domain/repositories"
)

// minContainerBytes rejects reconstructions too small to contain meaningful
// speech before they reach the external service.
const minContainerBytes = 20_000

// transcriptionHint primes the speech model for the domain.
const transcriptionHint = "This is a business call or meeting between colleagues or with a client."

// Transcriber turns a session's buffered fragments into cleaned text.
type Transcriber struct {
	stt     repositories.SpeechToText
	timeout time.Duration
	logger  *zap.Logger
}

// NewTranscriber creates a transcriber backed by the given STT service.
func NewTranscriber(stt repositories.SpeechToText, timeout time.Duration, logger *zap.Logger) *Transcriber {
	return &Transcriber{
		stt:     stt,
		timeout: timeout,
		logger:  logger,
	}
}

// Attempt runs one transcription attempt over the session's current buffer
// and returns cleaned text, or "" when nothing usable was produced. External
// failures and timeouts are swallowed; a silent attempt is not an error.
func (t *Transcriber) Attempt(ctx context.Context, session *entities.Session) string {
	session.LastProcessTime = time.Now()

	container := session.BuildContainer()
	if container == nil {
		// No header captured yet, nothing decodable can be built.
		return ""
	}
	if len(container) < minContainerBytes {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	raw, err := t.stt.Transcribe(ctx, container, transcriptionHint)
	if err != nil {
		t.logger.Warn("Transcription attempt failed",
			zap.String("sessionID", session.ID),
			zap.Int("containerBytes", len(container)),
			zap.Error(err))
		return ""
	}

	return CleanTranscript(raw)
}
