package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dverbeek/callscribe/domain/entities"
)

// Emitter writes typed events back to the client connection. Implementations
// must preserve call order on the wire. Delivery is best-effort: an
// implementation may drop events for a client that cannot drain them rather
// than block the pipeline, since blocking here would stall fragment ingestion
// and keep a dead session from being cleaned up.
type Emitter interface {
	EmitTranscript(text string, timestamp float64)
	EmitActionItem(item string)
	EmitRecommendation(recommendation string)
	EmitSummary(summary string)
}

// analyzeEverySegments schedules an analysis pass after every Nth accepted
// transcript segment.
const analyzeEverySegments = 3

// Processor runs the per-fragment pipeline for one session: accumulate,
// transcribe when triggered, clean, emit, trim, and periodically analyze.
// All methods are called from the goroutine owning the session.
type Processor struct {
	transcriber *Transcriber
	analyzer    *Analyzer

	// gate bounds concurrent external-call cycles across all sessions. A
	// session still never runs two cycles at once; this only protects the
	// STT/completion services from a connection spike. Nil disables gating.
	gate chan struct{}

	logger *zap.Logger
}

// NewProcessor wires the pipeline stages together. maxConcurrentCalls <= 0
// leaves external calls ungated.
func NewProcessor(transcriber *Transcriber, analyzer *Analyzer, maxConcurrentCalls int, logger *zap.Logger) *Processor {
	var gate chan struct{}
	if maxConcurrentCalls > 0 {
		gate = make(chan struct{}, maxConcurrentCalls)
	}
	return &Processor{
		transcriber: transcriber,
		analyzer:    analyzer,
		gate:        gate,
		logger:      logger,
	}
}

func (p *Processor) acquireGate() func() {
	if p.gate == nil {
		return func() {}
	}
	p.gate <- struct{}{}
	return func() { <-p.gate }
}

// HandleFragment ingests one binary frame and runs a transcription cycle when
// the trigger policy fires.
func (p *Processor) HandleFragment(ctx context.Context, session *entities.Session, fragment []byte, emitter Emitter) {
	session.Ingest(fragment)

	if !session.ShouldTranscribe(time.Now()) {
		return
	}
	p.runCycle(ctx, session, emitter)
}

// Finalize performs the forced flush on disconnect: exactly one transcription
// attempt over whatever remains buffered, then one unconditional analysis
// pass when any transcript exists. Failures are logged, never propagated, so
// registry cleanup always proceeds.
func (p *Processor) Finalize(ctx context.Context, session *entities.Session, emitter Emitter) {
	session.State = entities.SessionStateClosing

	release := p.acquireGate()
	defer release()

	if text := p.transcriber.Attempt(ctx, session); text != "" {
		session.AppendTranscript(text)
		emitter.EmitTranscript(text, epochSeconds(time.Now()))
		session.TrimAfterTranscript()
	}

	if len(session.TranscriptSegments) > 0 {
		p.analyzer.Analyze(ctx, session, emitter)
	}

	p.logger.Info("Session flushed",
		zap.String("sessionID", session.ID),
		zap.Int("segments", len(session.TranscriptSegments)),
		zap.Int("chunksReceived", session.ChunkCount))
}

func (p *Processor) runCycle(ctx context.Context, session *entities.Session, emitter Emitter) {
	release := p.acquireGate()
	defer release()

	text := p.transcriber.Attempt(ctx, session)
	if text == "" {
		session.SilentAttempts++
		if session.TrimStaleBuffer() {
			p.logger.Debug("Trimmed stale audio buffer",
				zap.String("sessionID", session.ID),
				zap.Int("bufferedBytes", session.TotalBufferedBytes))
		}
		return
	}

	session.AppendTranscript(text)
	emitter.EmitTranscript(text, epochSeconds(time.Now()))
	session.TrimAfterTranscript()

	if len(session.TranscriptSegments)%analyzeEverySegments == 0 {
		p.analyzer.Analyze(ctx, session, emitter)
	}
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
