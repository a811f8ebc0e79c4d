package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "imoveis",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "imoveis",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "imoveis",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Listing metrics
	ListingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "imoveis",
		Subsystem: "listings",
		Name:      "created_total",
		Help:      "Total listings persisted",
	})

	PhotoUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "imoveis",
		Subsystem: "photos",
		Name:      "uploads_total",
		Help:      "Photo uploads to object storage by result",
	}, []string{"result"})

	PhotoUploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "imoveis",
		Subsystem: "photos",
		Name:      "upload_duration_seconds",
		Help:      "Duration of photo uploads to object storage",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	OrphanedPhotos = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "imoveis",
		Subsystem: "photos",
		Name:      "orphaned_total",
		Help:      "Photos uploaded whose listing insert failed",
	})

	NearbyScanned = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "imoveis",
		Subsystem: "nearby",
		Name:      "scanned_listings",
		Help:      "Listings scanned per proximity query",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	NearbyMatched = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "imoveis",
		Subsystem: "nearby",
		Name:      "matched_listings",
		Help:      "Listings returned per proximity query",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "imoveis",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "imoveis",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "imoveis",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "imoveis",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "imoveis",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat read by UpdateDBPoolMetrics.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics copies connection pool stats into the db gauges.
func UpdateDBPoolMetrics(s PoolStat) {
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
}
