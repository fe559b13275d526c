package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	isochroneEdges      prometheus.Histogram
	matchCandidates     prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isomatch",
			Name:      "http_requests_total",
			Help:      "Number of http requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "isomatch",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of http requests by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		isochroneEdges: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "isomatch",
			Name:      "isochrone_edges",
			Help:      "Number of partial edges returned per isochrone.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		matchCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "isomatch",
			Name:      "match_results",
			Help:      "Number of matched points returned per input point.",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		}),
	}
	reg.MustRegister(m.httpRequestsTotal, m.httpRequestDuration, m.isochroneEdges, m.matchCandidates)
	return m
}

func (m *Metrics) observeIsochrone(numEdges int) {
	if m == nil {
		return
	}
	m.isochroneEdges.Observe(float64(numEdges))
}

func (m *Metrics) observeMatches(numMatches int) {
	if m == nil {
		return
	}
	m.matchCandidates.Observe(float64(numMatches))
}

// PromeHttpMiddleware counts requests and records their latency, labelled by chi route pattern.
func PromeHttpMiddleware(m *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
			m.httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
