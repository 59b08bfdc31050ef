package repositories

import "context"

// SpeechToText abstracts speech recognition services.
type SpeechToText interface {
	// Transcribe converts a complete audio container to text. The hint is a
	// free-form prompt describing the audio domain (e.g. a business call).
	Transcribe(ctx context.Context, container []byte, hint string) (string, error)
}
