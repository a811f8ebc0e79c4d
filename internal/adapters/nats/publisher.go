package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/imoveis/internal/core/domain"
)

const (
	// StreamListings holds listing lifecycle events.
	StreamListings = "LISTINGS"
	// SubjectListingCreated is the subject prefix for new listings; the
	// listing id is appended as the last token.
	SubjectListingCreated = "listings.created"
)

// ListingCreatedEvent is the payload published after a listing is stored.
type ListingCreatedEvent struct {
	ID        int64     `json:"id"`
	Title     string    `json:"titulo"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Azimuth   float64   `json:"azimute"`
	PhotoURL  string    `json:"foto"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the listings stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      StreamListings,
		Subjects:  []string{"listings.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishListingCreated publishes a ListingCreatedEvent on listings.created.<id>.
func (p *Publisher) PublishListingCreated(ctx context.Context, l *domain.Listing) error {
	data, err := json.Marshal(ListingCreatedEvent{
		ID:        l.ID,
		Title:     l.Title,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Azimuth:   l.Azimuth,
		PhotoURL:  l.PhotoURL,
		CreatedAt: l.CreatedAt,
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectListingCreated+"."+strconv.FormatInt(l.ID, 10), data, nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
