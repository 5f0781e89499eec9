package storage

import (
	"context"

	"positionScope/internal/model"
)

// Storage defines a sink for position snapshots.
type Storage interface {
	PutSnapshotBatch(ctx context.Context, snapshots []model.PositionSnapshot) error
}
