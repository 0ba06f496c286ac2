package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// EntityWithVersion is any pointer model embedding models.Versioned.
type EntityWithVersion interface {
	comparable
	GetRowVersion() int64
	SetRowVersion(int64)
}

type UpdateIfVersionFunc[T EntityWithVersion] func(
	ctx context.Context,
	entity T,
	expectedVersion int64,
) error

type GetByIDFunc[T EntityWithVersion] func(
	ctx context.Context,
	id uuid.UUID,
) (T, error)

const defaultMaxRetries = 3

// WithRetry runs a read-mutate-update loop with optimistic locking.
// updateIfVersion must return ErrRowVersionConflict when the stored
// version moved on.
func WithRetry[T EntityWithVersion](
	ctx context.Context,
	maxRetries int,
	id uuid.UUID,
	getByID GetByIDFunc[T],
	updateIfVersion UpdateIfVersionFunc[T],
	mutate func(T) error,
) error {
	for attempt := 0; attempt < maxRetries; attempt++ {
		current, err := getByID(ctx, id)
		if err != nil {
			return err
		}

		var zero T
		if current == zero {
			return ErrNotFound
		}

		oldVersion := current.GetRowVersion()

		if err := mutate(current); err != nil {
			return err
		}

		err = updateIfVersion(ctx, current, oldVersion)
		if err == nil {
			current.SetRowVersion(oldVersion + 1)
			return nil
		}
		if !errors.Is(err, ErrRowVersionConflict) {
			return err
		}
		// someone else updated first, retry
	}
	return fmt.Errorf("too much contention updating %q: %w", id, ErrRowVersionConflict)
}
