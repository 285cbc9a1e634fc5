// Package store provides durable persistence for planner attributes.
package store

import (
	"context"
	"time"

	"github.com/ashureev/homework-planner/internal/domain"
)

// Repository is the durable key-value store keyed by user identity.
type Repository interface {
	// GetAttributes returns the persisted attributes for a user, or nil if none exist.
	GetAttributes(ctx context.Context, userID string) (*domain.PersistedAttributes, error)

	// PutAttributes writes a user's attributes. Writing identical attributes
	// leaves the stored record untouched.
	PutAttributes(ctx context.Context, userID string, attrs *domain.PersistedAttributes) error

	// DeleteInactive removes users whose attributes have not changed within olderThan.
	DeleteInactive(ctx context.Context, olderThan time.Duration) (int64, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
