package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/imoveis/internal/core/domain"
	"github.com/samirrijal/imoveis/internal/core/ports"
	"github.com/samirrijal/imoveis/internal/pkg/geospatial"
	"github.com/samirrijal/imoveis/internal/pkg/logging"
	"github.com/samirrijal/imoveis/internal/pkg/metrics"
	"github.com/samirrijal/imoveis/internal/pkg/telemetry"
)

// DefaultRadiusMeters is the search radius used when the caller gives none.
const DefaultRadiusMeters = 2000.0

// The table snapshot is cached under imoveis:all:<gen>. Create bumps the
// generation, so a snapshot read before an insert can never be served after it.
const (
	listingsGenKey = "imoveis:gen"
	allListingsKey = "imoveis:all"
	allListingsTTL = 60 // seconds
)

// ListingService handles listing ingestion and proximity queries.
type ListingService struct {
	listings ports.ListingRepository
	photos   ports.PhotoStorage
	events   ports.EventPublisher
	cache    ports.CacheService
}

// NewListingService creates a new ListingService. events and cache may be nil.
func NewListingService(listings ports.ListingRepository, photos ports.PhotoStorage, events ports.EventPublisher, cache ports.CacheService) *ListingService {
	return &ListingService{listings: listings, photos: photos, events: events, cache: cache}
}

// Create uploads the photo, then persists the listing with the photo URL.
// If the insert fails the uploaded photo is left in place.
func (s *ListingService) Create(ctx context.Context, in domain.NewListing, photo domain.PhotoUpload) (*domain.Listing, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ListingService.Create")
	defer span.End()

	log := logging.FromContext(ctx)
	log.Info("received photo, uploading to object storage",
		"filename", photo.Filename, "size", photo.Size)

	start := time.Now()
	url, err := s.photos.Upload(ctx, photo)
	metrics.PhotoUploadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PhotoUploads.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "photo upload failed")
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	metrics.PhotoUploads.WithLabelValues("ok").Inc()
	span.SetAttributes(attribute.String(telemetry.AttrPhotoURL, url))
	log.Info("photo stored", "url", url)

	listing := &domain.Listing{
		Title:     in.Title,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Azimuth:   in.Azimuth,
		PhotoURL:  url,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		metrics.OrphanedPhotos.Inc()
		log.Warn("listing insert failed after photo upload", "url", url, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing insert failed")
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	metrics.ListingsCreated.Inc()
	span.SetAttributes(attribute.Int64(telemetry.AttrListingID, listing.ID))

	if s.cache != nil {
		if _, err := s.cache.Incr(ctx, listingsGenKey); err != nil {
			log.Warn("cache invalidation failed", "key", listingsGenKey, "error", err)
		}
	}

	if s.events != nil {
		if err := s.events.PublishListingCreated(ctx, listing); err != nil {
			log.Warn("publish listing created failed", "id", listing.ID, "error", err)
		}
	}

	return listing, nil
}

// ListAll returns every stored listing in storage order.
func (s *ListingService) ListAll(ctx context.Context) ([]domain.Listing, error) {
	var key string
	if s.cache != nil {
		key = s.snapshotKey(ctx)
	}

	if key != "" {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var listings []domain.Listing
			if err := json.Unmarshal(data, &listings); err == nil {
				metrics.CacheHits.WithLabelValues("list_all").Inc()
				return listings, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("list_all").Inc()
	}

	listings, err := s.listings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}

	if key != "" {
		if data, err := json.Marshal(listings); err == nil {
			if err := s.cache.Set(ctx, key, data, allListingsTTL); err != nil {
				logging.FromContext(ctx).Debug("cache write failed", "key", key, "error", err)
			}
		}
	}

	return listings, nil
}

// snapshotKey returns the cache key for the current generation, starting a
// new generation when none is stored. An empty key disables caching for the
// call.
func (s *ListingService) snapshotKey(ctx context.Context) string {
	if gen, err := s.cache.Get(ctx, listingsGenKey); err == nil && len(gen) > 0 {
		return allListingsKey + ":" + string(gen)
	}
	gen, err := s.cache.Incr(ctx, listingsGenKey)
	if err != nil {
		logging.FromContext(ctx).Debug("cache generation unavailable", "key", listingsGenKey, "error", err)
		return ""
	}
	return allListingsKey + ":" + strconv.FormatInt(gen, 10)
}

// FindNearby returns the listings strictly closer than radiusMeters to
// (lat, lon), in storage order. The result is never nil.
func (s *ListingService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64) ([]domain.NearbyListing, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ListingService.FindNearby")
	defer span.End()

	listings, err := s.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load listings failed")
		return nil, err
	}

	nearby := filterWithinRadius(listings, lat, lon, radiusMeters)

	metrics.NearbyScanned.Observe(float64(len(listings)))
	metrics.NearbyMatched.Observe(float64(len(nearby)))
	span.SetAttributes(
		attribute.Float64(telemetry.AttrRadiusMeters, radiusMeters),
		attribute.Int(telemetry.AttrScanned, len(listings)),
		attribute.Int(telemetry.AttrMatched, len(nearby)),
	)

	return nearby, nil
}

func filterWithinRadius(listings []domain.Listing, lat, lon, radiusMeters float64) []domain.NearbyListing {
	nearby := make([]domain.NearbyListing, 0)
	for _, l := range listings {
		d := geospatial.Haversine(lat, lon, l.Latitude, l.Longitude)
		if d < radiusMeters {
			nearby = append(nearby, domain.NearbyListing{
				ID:             l.ID,
				Title:          l.Title,
				Latitude:       l.Latitude,
				Longitude:      l.Longitude,
				DistanceMeters: geospatial.RoundTo(d, 1),
				Azimuth:        l.Azimuth,
				PhotoURL:       l.PhotoURL,
			})
		}
	}
	return nearby
}
