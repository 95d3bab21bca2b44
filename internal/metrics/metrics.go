// Package metrics exposes Prometheus collectors for HTTP traffic and data
// room operations. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	nodesCreated    *prometheus.CounterVec
	nodesDeleted    prometheus.Counter
	uploadRejected  *prometheus.CounterVec
	blobFailures    *prometheus.CounterVec
	shareViews      *prometheus.CounterVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		nodesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dataroom_nodes_created_total",
			Help: "Folders and files created.",
		}, []string{"type"}),
		nodesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dataroom_nodes_deleted_total",
			Help: "Nodes removed, descendants included.",
		}),
		uploadRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dataroom_upload_rejected_total",
			Help: "Files rejected from upload batches by reason.",
		}, []string{"reason"}),
		blobFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dataroom_blob_failures_total",
			Help: "Blob store failures by operation.",
		}, []string{"op"}),
		shareViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dataroom_share_views_total",
			Help: "Share link resolutions by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.nodesCreated,
		m.nodesDeleted,
		m.uploadRejected,
		m.blobFailures,
		m.shareViews,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests, extra collectors)
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) NodeCreated(nodeType string) {
	if m == nil {
		return
	}
	m.nodesCreated.WithLabelValues(nodeType).Inc()
}

func (m *Metrics) NodesDeleted(n int) {
	if m == nil {
		return
	}
	m.nodesDeleted.Add(float64(n))
}

// UploadRejected counts a file left out of a batch ("size", "conflict", "storage")
func (m *Metrics) UploadRejected(reason string) {
	if m == nil {
		return
	}
	m.uploadRejected.WithLabelValues(reason).Inc()
}

// BlobFailure counts a failed blob operation ("save", "read", "delete")
func (m *Metrics) BlobFailure(op string) {
	if m == nil {
		return
	}
	m.blobFailures.WithLabelValues(op).Inc()
}

// ShareView counts a share resolution ("ok", "not_found", "out_of_scope")
func (m *Metrics) ShareView(result string) {
	if m == nil {
		return
	}
	m.shareViews.WithLabelValues(result).Inc()
}
