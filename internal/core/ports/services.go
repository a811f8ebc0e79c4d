package ports

import (
	"context"

	"github.com/samirrijal/imoveis/internal/core/domain"
)

// PhotoStorage stores listing photos in an external object store.
type PhotoStorage interface {
	// Upload stores the photo and returns a publicly resolvable URL.
	Upload(ctx context.Context, photo domain.PhotoUpload) (string, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishListingCreated(ctx context.Context, listing *domain.Listing) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	// Incr atomically increments an integer key, creating it at 1.
	Incr(ctx context.Context, key string) (int64, error)
}
