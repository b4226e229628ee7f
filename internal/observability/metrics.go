package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector метрики HTTP-слоя и подбора волонтеров.
type Collector struct {
	gatherer prometheus.Gatherer

	HTTPRequests    *prometheus.CounterVec
	HTTPDurations   *prometheus.HistogramVec
	MatchDistance   prometheus.Histogram
	MatchMisses     prometheus.Counter
	LocationUpdates *prometheus.CounterVec
}

// NewCollector регистрирует метрики в reg; nil означает глобальный реестр Prometheus.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "visionaid_http_requests_total",
			Help: "Total HTTP requests, labeled by method, route and status code.",
		}, []string{"method", "route", "code"}),
		HTTPDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "visionaid_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route"}),
		MatchDistance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "visionaid_match_distance_km",
			Help:    "Distance between requester and the selected volunteer.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 500},
		}),
		MatchMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "visionaid_match_not_found_total",
			Help: "Volunteer requests that found no eligible volunteer.",
		}),
		LocationUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "visionaid_location_updates_total",
			Help: "Volunteer location updates, labeled by result.",
		}, []string{"result"}),
	}

	for name, col := range map[string]prometheus.Collector{
		"visionaid_http_requests_total":           c.HTTPRequests,
		"visionaid_http_request_duration_seconds": c.HTTPDurations,
		"visionaid_match_distance_km":             c.MatchDistance,
		"visionaid_match_not_found_total":         c.MatchMisses,
		"visionaid_location_updates_total":        c.LocationUpdates,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
	}
	return c, nil
}

// ObserveMatch реализует usecase.Recorder.
func (c *Collector) ObserveMatch(distanceKm float64) {
	c.MatchDistance.Observe(distanceKm)
}

// ObserveNoMatch реализует usecase.Recorder.
func (c *Collector) ObserveNoMatch() {
	c.MatchMisses.Inc()
}

// ObserveLocationUpdate реализует usecase.Recorder.
func (c *Collector) ObserveLocationUpdate(result string) {
	c.LocationUpdates.WithLabelValues(result).Inc()
}

// Middleware считает запросы и их длительность по шаблону маршрута gin.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.HTTPDurations.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler отдает метрики в формате Prometheus.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
