package ports

import (
	"context"

	"github.com/samirrijal/imoveis/internal/core/domain"
)

// ListingRepository persists listings.
type ListingRepository interface {
	// Create inserts the listing and fills in its ID and CreatedAt.
	Create(ctx context.Context, listing *domain.Listing) error
	// List returns every stored listing in storage order.
	List(ctx context.Context) ([]domain.Listing, error)
}
