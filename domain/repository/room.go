package repository

import (
	"context"

	"github.com/hilthontt/roombot/domain/model"
)

// RoomRepository is the durable keyed store of room records.
type RoomRepository interface {
	// Upsert inserts or fully replaces the record for record.ID.
	Upsert(ctx context.Context, record *model.RoomRecord) error
	// UpdateFields merges the named columns into an existing record.
	// It returns model.ErrNotFound when id is absent.
	UpdateFields(ctx context.Context, id model.ID, fields map[string]any) error
	// Delete is idempotent.
	Delete(ctx context.Context, id model.ID) error
	// All returns a snapshot of every record.
	All(ctx context.Context) ([]model.RoomRecord, error)
	GetByID(ctx context.Context, id model.ID) (*model.RoomRecord, error)
}
