package storage

import (
	"context"
	"io"

	"github.com/nourish-chain/liquidity-pool/internal/models"
)

// EventCache defines the interface for caching and fanning out pool events.
type EventCache interface {
	// Emit records the event in the recent list and publishes it to the
	// Pub/Sub channels. This is the pool's event sink.
	Emit(ctx context.Context, event *models.PoolEvent) error

	// GetRecentEvents retrieves the most recent pool events.
	GetRecentEvents(ctx context.Context, limit int64) ([]*models.PoolEvent, error)

	// SubscribeEvents subscribes to the live event feed.
	SubscribeEvents(ctx context.Context) (<-chan *models.PoolEvent, error)

	// Ping checks if the cache is reachable.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	io.Closer
}

// EventStore defines the interface for persistent event storage.
type EventStore interface {
	// InsertEvent inserts a pool event into the store.
	InsertEvent(ctx context.Context, event *models.PoolEvent) error

	// Ping checks if the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	io.Closer
}

// EventHandler is a function that processes pool events.
type EventHandler func(*models.PoolEvent)
