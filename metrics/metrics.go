package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Asset store metrics
var (
	AssetUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_asset_uploads_total",
			Help: "Total number of uploads to the asset store",
		},
		[]string{"resource", "class", "status"},
	)

	AssetUploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_asset_upload_duration_seconds",
			Help:    "Asset store upload duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"resource"},
	)

	AssetDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_asset_deletes_total",
			Help: "Best-effort asset deletions by outcome",
		},
		[]string{"status"},
	)
)

// Derived asset metrics
var (
	CoverGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_cover_generations_total",
			Help: "Album cover regenerations by outcome",
		},
		[]string{"status"},
	)

	FrameValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_frame_validations_total",
			Help: "Poster frame URL validation attempts by outcome",
		},
		[]string{"status"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Status maps an error to the status label
func Status(err error) string {
	if err != nil {
		return StatusFailed
	}
	return StatusOK
}

// ObserveUpload records one upload attempt
func ObserveUpload(resource, class string, start time.Time, err error) {
	AssetUploadsTotal.WithLabelValues(resource, class, Status(err)).Inc()
	AssetUploadDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
}

// Middleware counts requests by route template (not raw path, to keep cardinality low)
func Middleware(c *gin.Context) {
	start := time.Now()
	c.Next()
	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
}

// Handler serves the prometheus registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
