package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/imoveis/internal/adapters/objectstore"
	"github.com/samirrijal/imoveis/internal/adapters/postgres"
	"github.com/samirrijal/imoveis/internal/adapters/valkey"
	"github.com/samirrijal/imoveis/internal/core/usecases"
)

const (
	defaultRequestTimeout = 15 * time.Second
	defaultUploadTimeout  = 60 * time.Second
)

// Dependencies holds all services needed by HTTP handlers.
// Everything except Listings may be nil.
type Dependencies struct {
	Listings *usecases.ListingService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
	Photos   *objectstore.Store

	RequestTimeout time.Duration
	UploadTimeout  time.Duration
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout > 0 {
		return d.RequestTimeout
	}
	return defaultRequestTimeout
}

func (d *Dependencies) uploadTimeout() time.Duration {
	if d.UploadTimeout > 0 {
		return d.UploadTimeout
	}
	return defaultUploadTimeout
}
