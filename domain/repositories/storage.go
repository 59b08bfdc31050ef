package repositories

import (
	"context"

	"github.com/dverbeek/callscribe/domain/entities"
)

// RecordingArchive persists finished sessions. It is invoked best-effort
// after a session closes; failures never block session cleanup.
type RecordingArchive interface {
	// Save stores the recording and returns its durable record identifier.
	Save(ctx context.Context, recording *entities.Recording) (string, error)
}
