package metrics_adapter

import (
	"net/http"
	"strconv"
	"time"

	"marketplace-service/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics реализует port.MetricsPort и собирает HTTP метрики.
// Каждый экземпляр владеет собственным реестром.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	agentProvisioning   *prometheus.CounterVec
	favoriteToggles     *prometheus.CounterVec
	viewsTracked        *prometheus.CounterVec
	listingQueries      *prometheus.CounterVec
}

func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	reg := prometheus.NewRegistry()

	m := &PrometheusMetrics{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		agentProvisioning: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_provisioning_total",
			Help:      "Agent provisioning attempts by outcome",
		}, []string{"outcome"}),
		favoriteToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_toggles_total",
			Help:      "Favorite toggles by outcome",
		}, []string{"outcome"}),
		viewsTracked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "property_views_total",
			Help:      "Property view increments by result",
		}, []string{"result"}),
		listingQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_queries_total",
			Help:      "Listing queries by listing type and fetch state",
		}, []string{"listing_type", "state"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.agentProvisioning,
		m.favoriteToggles,
		m.viewsTracked,
		m.listingQueries,
	)
	return m
}

func (m *PrometheusMetrics) AgentProvisioned(outcome string) {
	m.agentProvisioning.WithLabelValues(outcome).Inc()
}

func (m *PrometheusMetrics) FavoriteToggled(outcome domain.ToggleOutcome) {
	m.favoriteToggles.WithLabelValues(string(outcome)).Inc()
}

func (m *PrometheusMetrics) ViewTracked(success bool) {
	result := "ok"
	if !success {
		result = "failed"
	}
	m.viewsTracked.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) ListingQuery(listingType string, state domain.FetchState) {
	m.listingQueries.WithLabelValues(listingType, state.String()).Inc()
}

// Handler отдает метрики в формате Prometheus.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware считает запросы по шаблону маршрута chi, чтобы id не раздували кардинальность.
func (m *PrometheusMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap нужен http.ResponseController.
func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
