package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dverbeek/callscribe/domain/entities"
	"github.com/dverbeek/callscribe/domain/repositories"
)

func newTestProcessor(stt *fakeSTT, extractor *fakeExtractor) *Processor {
	logger := zap.NewNop()
	return NewProcessor(
		NewTranscriber(stt, time.Second, logger),
		NewAnalyzer(extractor, time.Second, logger),
		2,
		logger,
	)
}

// Covers the concrete end-to-end scenario: ten 4096-byte fragments, the first
// carrying the magic, trigger on the 10th, transcript emitted, buffer trimmed
// to the last two fragments.
func TestTenFragmentScenario(t *testing.T) {
	stt := &fakeSTT{results: []string{"Let's review the Q3 budget."}}
	processor := newTestProcessor(stt, &fakeExtractor{})
	session := entities.NewSession()
	emitter := &recordingEmitter{}
	ctx := context.Background()

	first := make([]byte, 4096)
	copy(first, []byte{0x1A, 0x45, 0xDF, 0xA3})
	processor.HandleFragment(ctx, session, first, emitter)
	for i := 0; i < 9; i++ {
		processor.HandleFragment(ctx, session, make([]byte, 4096), emitter)
	}

	if stt.callCount() != 1 {
		t.Fatalf("Expected one transcription on the 10th fragment, got %d", stt.callCount())
	}
	if len(emitter.events) != 1 || emitter.events[0] != "transcript:Let's review the Q3 budget." {
		t.Fatalf("Unexpected events %v", emitter.events)
	}
	if len(session.RawChunks) != 2 {
		t.Errorf("Expected buffer trimmed to 2 fragments, got %d", len(session.RawChunks))
	}
	if session.TotalBufferedBytes != 8192 {
		t.Errorf("Expected 8192 buffered bytes after trim, got %d", session.TotalBufferedBytes)
	}
	if len(session.TranscriptSegments) != 1 {
		t.Errorf("Expected 1 accepted segment, got %d", len(session.TranscriptSegments))
	}
}

func TestTranscriptEventsPreserveOrder(t *testing.T) {
	stt := &fakeSTT{results: []string{"First things first.", "Second point raised.", "Third and final."}}
	processor := newTestProcessor(stt, &fakeExtractor{insights: repositories.Insights{Summary: "ok"}})
	session := entities.NewSession()
	emitter := &recordingEmitter{}
	ctx := context.Background()

	for round := 1; round <= 3; round++ {
		for emitter.countPrefix("transcript:") < round {
			fragment := make([]byte, 4096)
			if session.ChunkCount == 0 {
				copy(fragment, []byte{0x1A, 0x45, 0xDF, 0xA3})
			}
			processor.HandleFragment(ctx, session, fragment, emitter)
		}
	}

	var transcripts []string
	for _, event := range emitter.events {
		if strings.HasPrefix(event, "transcript:") {
			transcripts = append(transcripts, strings.TrimPrefix(event, "transcript:"))
		}
	}
	want := []string{"First things first.", "Second point raised.", "Third and final."}
	if len(transcripts) != len(want) {
		t.Fatalf("Expected %d transcript events, got %v", len(want), transcripts)
	}
	for i := range want {
		if transcripts[i] != want[i] {
			t.Errorf("Transcript %d out of order: expected %q, got %q", i, want[i], transcripts[i])
		}
	}
}

func TestAnalysisRunsEveryThirdSegment(t *testing.T) {
	stt := &fakeSTT{results: []string{"Segment number one.", "Segment number two.", "Segment number three."}}
	extractor := &fakeExtractor{insights: repositories.Insights{Summary: "three segments in"}}
	processor := newTestProcessor(stt, extractor)
	session := entities.NewSession()
	emitter := &recordingEmitter{}
	ctx := context.Background()

	for round := 1; round <= 3; round++ {
		for emitter.countPrefix("transcript:") < round {
			fragment := make([]byte, 4096)
			if session.ChunkCount == 0 {
				copy(fragment, []byte{0x1A, 0x45, 0xDF, 0xA3})
			}
			processor.HandleFragment(ctx, session, fragment, emitter)
		}
	}

	if extractor.calls != 1 {
		t.Errorf("Expected exactly one analysis pass after the 3rd segment, got %d", extractor.calls)
	}
	if got := emitter.countPrefix("summary_update:"); got != 1 {
		t.Errorf("Expected one summary event, got %d", got)
	}
}

func TestSilentAttemptsTriggerStaleTrim(t *testing.T) {
	// STT keeps returning blacklisted filler, so every attempt is silent.
	stt := &fakeSTT{results: []string{"you.", "you.", "you.", "you.", "you."}}
	processor := newTestProcessor(stt, &fakeExtractor{})
	session := entities.NewSession()
	emitter := &recordingEmitter{}
	ctx := context.Background()

	trimmed := false
	for i := 0; i < 30; i++ {
		fragment := make([]byte, 4096)
		if session.ChunkCount == 0 {
			copy(fragment, []byte{0x1A, 0x45, 0xDF, 0xA3})
		}
		before := len(session.RawChunks)
		processor.HandleFragment(ctx, session, fragment, emitter)
		if len(session.RawChunks) < before {
			trimmed = true
		}
	}

	if len(emitter.events) != 0 {
		t.Errorf("Silent attempts must not emit events, got %v", emitter.events)
	}
	if !trimmed {
		t.Error("Expected at least one stale trim over 30 silent fragments")
	}
	if len(session.RawChunks) > 15 {
		t.Errorf("Stale trim failed to bound the buffer, %d fragments held", len(session.RawChunks))
	}
}

func TestFinalizeFlushesAndAnalyzes(t *testing.T) {
	stt := &fakeSTT{}
	extractor := &fakeExtractor{insights: repositories.Insights{Summary: "wrap-up"}}
	processor := newTestProcessor(stt, extractor)

	session := entities.NewSession()
	first := make([]byte, 30_000)
	copy(first, []byte{0x1A, 0x45, 0xDF, 0xA3})
	session.Ingest(first)
	session.Ingest(make([]byte, 1000))
	session.Ingest(make([]byte, 1000))
	session.AppendTranscript("Earlier segment one.")
	session.AppendTranscript("Earlier segment two.")

	emitter := &recordingEmitter{}
	processor.Finalize(context.Background(), session, emitter)

	if stt.callCount() != 1 {
		t.Errorf("Expected exactly one forced transcription attempt, got %d", stt.callCount())
	}
	if extractor.calls != 1 {
		t.Errorf("Expected exactly one final analysis pass, got %d", extractor.calls)
	}
	if session.State != entities.SessionStateClosing {
		t.Errorf("Expected state %s, got %s", entities.SessionStateClosing, session.State)
	}
	// The forced attempt returned nothing; the final summary still went out.
	if got := emitter.countPrefix("summary_update:"); got != 1 {
		t.Errorf("Expected one summary event on flush, got %d", got)
	}
}

func TestFinalizeWithoutTranscriptsSkipsAnalysis(t *testing.T) {
	stt := &fakeSTT{}
	extractor := &fakeExtractor{}
	processor := newTestProcessor(stt, extractor)

	session := entities.NewSession()
	emitter := &recordingEmitter{}
	processor.Finalize(context.Background(), session, emitter)

	if extractor.calls != 0 {
		t.Errorf("No transcripts means no final analysis, got %d calls", extractor.calls)
	}
	if len(emitter.events) != 0 {
		t.Errorf("Expected no events, got %v", emitter.events)
	}
}
