package cart

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Storage when no snapshot has been saved yet.
var ErrNotFound = errors.New("cart snapshot not found")

// Storage is a single-key durable store holding one encoded cart snapshot.
type Storage interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, value string) error
}
