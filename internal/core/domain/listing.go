package domain

import (
	"io"
	"time"
)

// Listing is a persisted location record with an orientation and a photo.
type Listing struct {
	ID        int64     `json:"id"`
	Title     string    `json:"titulo"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Azimuth   float64   `json:"azimute"`
	PhotoURL  string    `json:"foto"`
	CreatedAt time.Time `json:"created_at"`
}

// NewListing carries the client-provided fields of a listing before it is stored.
type NewListing struct {
	Title     string
	Latitude  float64
	Longitude float64
	Azimuth   float64
}

// NearbyListing is a listing found by a proximity query, with its distance
// from the query point in meters (rounded to one decimal place).
type NearbyListing struct {
	ID             int64   `json:"id"`
	Title          string  `json:"titulo"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	DistanceMeters float64 `json:"distancia_metros"`
	Azimuth        float64 `json:"azimute_imovel"`
	PhotoURL       string  `json:"foto"`
}

// PhotoUpload is a photo stream received from a client.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64 // -1 when unknown
	Body        io.Reader
}
