package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dverbeek/callscribe/domain/entities"
	"github.com/dverbeek/callscribe/domain/repositories"
)

// RecordingRepository archives finished sessions in a single collection.
type RecordingRepository struct {
	collection *mongo.Collection
}

// NewRecordingRepository creates the archive backed by the given database.
func NewRecordingRepository(db *mongo.Database) repositories.RecordingArchive {
	return &RecordingRepository{
		collection: db.Collection("recordings"),
	}
}

// Save stores one recording document and returns its id.
func (r *RecordingRepository) Save(ctx context.Context, recording *entities.Recording) (string, error) {
	if recording == nil {
		return "", errors.New("recording cannot be nil")
	}

	result, err := r.collection.InsertOne(ctx, recording)
	if err != nil {
		return "", fmt.Errorf("failed to save recording: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid.Hex(), nil
}
