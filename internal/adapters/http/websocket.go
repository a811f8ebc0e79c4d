package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/imoveis/internal/adapters/nats"
	"github.com/samirrijal/imoveis/internal/core/usecases"
	"github.com/samirrijal/imoveis/internal/pkg/geospatial"
)

// wsMessage is sent by clients to narrow or widen the feed.
//
//	{"action":"watch","lat":-23.55,"lon":-46.63,"raio":2000}
//	{"action":"unwatch"}
type wsMessage struct {
	Action string   `json:"action"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Raio   *float64 `json:"raio"`
}

// areaFilter keeps events strictly within Radius meters of a point.
type areaFilter struct {
	Lat, Lon, Radius float64
}

func (f *areaFilter) match(ev *natsadapter.ListingCreatedEvent) bool {
	if f == nil {
		return true
	}
	return geospatial.Haversine(f.Lat, f.Lon, ev.Latitude, ev.Longitude) < f.Radius
}

// WebSocketHandler relays listings.created events from NATS to the client.
// Without a watch area every new listing is forwarded.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		var filter *areaFilter

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		sub, err := nc.Subscribe(natsadapter.SubjectListingCreated+".>", func(msg *nats.Msg) {
			var ev natsadapter.ListingCreatedEvent
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				return
			}
			mu.Lock()
			f := filter
			mu.Unlock()
			if !f.match(&ev) {
				return
			}
			_ = writeJSON(ev)
		})
		if err != nil {
			slog.Error("ws subscribe failed", "remote", remoteAddr, "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "watch":
				if m.Lat == nil || m.Lon == nil {
					_ = writeJSON(map[string]string{"error": "lat and lon are required"})
					continue
				}
				radius := usecases.DefaultRadiusMeters
				if m.Raio != nil {
					radius = *m.Raio
				}
				mu.Lock()
				filter = &areaFilter{Lat: *m.Lat, Lon: *m.Lon, Radius: radius}
				mu.Unlock()
				_ = writeJSON(map[string]interface{}{"status": "watching", "lat": *m.Lat, "lon": *m.Lon, "raio": radius})

			case "unwatch":
				mu.Lock()
				filter = nil
				mu.Unlock()
				_ = writeJSON(map[string]string{"status": "watching all"})

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
