// Package metrics exposes Prometheus counters for account and document
// activity plus per-route HTTP request metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes used as the "result" label.
const (
	LoginSuccess  = "success"
	LoginFailure  = "failure"
	LoginRejected = "invalid"
)

// Collector holds the server's Prometheus metrics.
type Collector struct {
	signups         prometheus.Counter
	logins          *prometheus.CounterVec
	uploads         prometheus.Counter
	deletes         prometheus.Counter
	quotaRejections prometheus.Counter
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdfdesk_signups_total",
			Help: "Accounts registered.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfdesk_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdfdesk_documents_uploaded_total",
			Help: "PDF documents stored.",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdfdesk_documents_deleted_total",
			Help: "PDF documents removed.",
		}),
		quotaRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdfdesk_document_quota_rejections_total",
			Help: "Uploads refused because the owner reached the document limit.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfdesk_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pdfdesk_http_request_duration_seconds",
			Help:    "HTTP request latency per route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.signups,
		c.logins,
		c.uploads,
		c.deletes,
		c.quotaRejections,
		c.requestsTotal,
		c.requestDuration,
	)

	return c
}

func (c *Collector) RecordSignup() {
	c.signups.Inc()
}

// RecordLogin counts a login attempt under one of the Login* results.
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordUpload() {
	c.uploads.Inc()
}

func (c *Collector) RecordDelete() {
	c.deletes.Inc()
}

func (c *Collector) RecordQuotaRejection() {
	c.quotaRejections.Inc()
}

// Middleware records count and latency for every request, labelled with the
// chi route pattern so path parameters do not explode cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		c.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
