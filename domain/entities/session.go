package entities

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// SessionState represents where a live session is in its lifecycle.
type SessionState string

const (
	SessionStateOpen    SessionState = "open"
	SessionStateClosing SessionState = "closing"
	SessionStateClosed  SessionState = "closed"
)

// webmMagic is the EBML signature that opens a WebM container, which is what
// browser MediaRecorder streams start with. A fragment beginning with it
// carries its own header.
var webmMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}

const (
	// headerCaptureMax bounds how much of the first magic-bearing fragment is
	// cached as the container header. Tunable heuristic, not a format guarantee.
	headerCaptureMax = 5000

	// Trigger policy thresholds.
	triggerChunkCount     = 10
	triggerChunkCountSlow = 5
	triggerElapsed        = 10 * time.Second
	triggerBufferedBytes  = 200_000

	// Buffer hygiene after transcription attempts.
	keepAfterTranscript = 2
	keepAfterStaleTrim  = 3
	maxSilentAttempts   = 3
	staleTrimMinChunks  = 5
)

// Session holds all per-connection state for one live transcription session.
// It is mutated only by the goroutine owning the connection, so it carries no lock.
type Session struct {
	ID       string
	ClientID string

	// ClientContext is optional metadata from the config frame (e.g. an
	// associated CRM entity id). A late config frame overwrites it.
	ClientContext map[string]interface{}

	// RawChunks are the fragments received since the last successful
	// transcription, in arrival order.
	RawChunks [][]byte

	// ContainerHeader is captured once from the first fragment that begins
	// with the WebM magic; nil until then.
	ContainerHeader []byte

	TranscriptSegments     []string
	EmittedActionItems     map[string]struct{}
	EmittedRecommendations map[string]struct{}
	CurrentSummary         string

	TotalBufferedBytes int
	ChunkCount         int
	SilentAttempts     int
	LastProcessTime    time.Time

	State     SessionState
	StartedAt time.Time
}

// NewSession creates a session for a freshly accepted connection.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:                     uuid.NewString(),
		EmittedActionItems:     make(map[string]struct{}),
		EmittedRecommendations: make(map[string]struct{}),
		State:                  SessionStateOpen,
		StartedAt:              now,
		LastProcessTime:        now,
	}
}

// Ingest appends one fragment to the buffer, keeping the byte-count invariant
// and capturing the container header from the first magic-bearing fragment.
func (s *Session) Ingest(fragment []byte) {
	chunk := make([]byte, len(fragment))
	copy(chunk, fragment)

	s.RawChunks = append(s.RawChunks, chunk)
	s.ChunkCount++
	s.TotalBufferedBytes += len(chunk)

	if s.ContainerHeader == nil && bytes.HasPrefix(chunk, webmMagic) {
		n := len(chunk)
		if n > headerCaptureMax {
			n = headerCaptureMax
		}
		header := make([]byte, n)
		copy(header, chunk[:n])
		s.ContainerHeader = header
	}
}

// ShouldTranscribe evaluates the trigger policy: a count threshold for
// throughput, a lower count combined with elapsed time for latency, and a
// byte ceiling to bound memory.
func (s *Session) ShouldTranscribe(now time.Time) bool {
	switch {
	case len(s.RawChunks) >= triggerChunkCount:
		return true
	case len(s.RawChunks) >= triggerChunkCountSlow && now.Sub(s.LastProcessTime) > triggerElapsed:
		return true
	case s.TotalBufferedBytes > triggerBufferedBytes:
		return true
	}
	return false
}

// BuildContainer reassembles a self-contained WebM file from the buffered
// fragments. When the first buffered fragment carries the magic it already
// contains a header and is used as-is; otherwise the cached header is
// prepended. Returns nil when no header has ever been seen.
func (s *Session) BuildContainer() []byte {
	if len(s.RawChunks) == 0 {
		return nil
	}

	size := s.TotalBufferedBytes
	prependHeader := !bytes.HasPrefix(s.RawChunks[0], webmMagic)
	if prependHeader {
		if s.ContainerHeader == nil {
			return nil
		}
		size += len(s.ContainerHeader)
	}

	container := make([]byte, 0, size)
	if prependHeader {
		container = append(container, s.ContainerHeader...)
	}
	for _, chunk := range s.RawChunks {
		container = append(container, chunk...)
	}
	return container
}

// AppendTranscript records an accepted (cleaned, non-empty) transcript segment.
func (s *Session) AppendTranscript(text string) {
	s.TranscriptSegments = append(s.TranscriptSegments, text)
	s.SilentAttempts = 0
}

// TrimAfterTranscript drops all but the trailing fragments once a
// transcription succeeded, so the next container overlaps slightly with the
// previous one.
func (s *Session) TrimAfterTranscript() {
	s.trimTo(keepAfterTranscript)
}

// TrimStaleBuffer bounds buffer growth for a session stuck producing no
// usable text (e.g. background noise). Returns true when a trim happened.
func (s *Session) TrimStaleBuffer() bool {
	if s.SilentAttempts <= maxSilentAttempts || len(s.RawChunks) <= staleTrimMinChunks {
		return false
	}
	s.trimTo(keepAfterStaleTrim)
	s.SilentAttempts = 0
	return true
}

func (s *Session) trimTo(keep int) {
	if len(s.RawChunks) <= keep {
		return
	}
	s.RawChunks = s.RawChunks[len(s.RawChunks)-keep:]
	total := 0
	for _, chunk := range s.RawChunks {
		total += len(chunk)
	}
	s.TotalBufferedBytes = total
}

// FullTranscript joins every accepted segment with single spaces.
func (s *Session) FullTranscript() string {
	if len(s.TranscriptSegments) == 0 {
		return ""
	}
	total := 0
	for _, seg := range s.TranscriptSegments {
		total += len(seg) + 1
	}
	buf := make([]byte, 0, total)
	for i, seg := range s.TranscriptSegments {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, seg...)
	}
	return string(buf)
}

// SetClientContext applies a config control frame. A later frame overwrites
// the previous values.
func (s *Session) SetClientContext(clientID string, context map[string]interface{}) {
	if clientID != "" {
		s.ClientID = clientID
	}
	if context != nil {
		s.ClientContext = context
	}
}
