package store

import (
	"context"
	"errors"

	"timelock.keep/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record id already exists")
)

// Store is keyed storage for secret records. Retired records stay behind as
// tombstones; after creation only the Active flag may change, and only from
// true to false.
type Store interface {
	// Create persists a new record. ErrConflict if the id is already taken.
	Create(ctx context.Context, rec *models.SecretRecord) error

	// FindActive returns the record only while it is active. ErrNotFound
	// covers unknown and retired ids alike.
	FindActive(ctx context.Context, id string) (*models.SecretRecord, error)

	// ListActive returns every active record. Order is unspecified.
	ListActive(ctx context.Context) ([]*models.SecretRecord, error)

	// Retire flips the record inactive if it still is active, and reports
	// whether this call performed the transition. Retiring an already
	// retired record succeeds with retired=false; ErrNotFound is reserved
	// for ids that never existed.
	Retire(ctx context.Context, id string) (retired bool, err error)

	Close() error
}
