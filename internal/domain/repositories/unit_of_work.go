package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes the given function within a transaction scope
	Do(ctx context.Context, fn func(ctx context.Context) error) error

	// WithLock returns a context whose DB session applies a row-level lock
	// to subsequent reads, for use inside Do when a read-then-update
	// sequence must not race with a concurrent updater.
	WithLock(ctx context.Context) context.Context
}
