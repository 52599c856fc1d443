package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nao1215/shopaudit/internal/model"
)

const namespace = "shopaudit"

// OutcomeSuccess labels audits that produced a result.
const OutcomeSuccess = "success"

// Collector records audit and HTTP metrics.
type Collector struct {
	registry *prometheus.Registry

	audits        *prometheus.CounterVec
	issues        *prometheus.CounterVec
	scores        prometheus.Histogram
	fetchDuration prometheus.Histogram
	stepDuration  *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// Option configures a Collector.
type Option func(*options)

type options struct {
	runtime bool
}

// WithRuntimeMetrics adds the Go runtime and process collectors.
func WithRuntimeMetrics() Option {
	return func(o *options) {
		o.runtime = true
	}
}

// NewCollector creates a Collector with its own registry.
func NewCollector(opts ...Option) *Collector {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		audits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audits_total",
			Help:      "Audits run, by outcome (success or the error kind).",
		}, []string{"outcome"}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_total",
			Help:      "Issues found, by severity.",
		}, []string{"severity"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "audit_score",
			Help:      "Distribution of audit scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time to first response of audited pages.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
		}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_step_duration_seconds",
			Help:      "Duration of audit pipeline steps.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests, by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP API request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	c.registry.MustRegister(
		c.audits, c.issues, c.scores, c.fetchDuration, c.stepDuration, c.httpRequests, c.httpDuration,
	)
	if o.runtime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordAudit counts a successful audit with its score and issues.
func (c *Collector) RecordAudit(result *model.AuditResult) {
	if c == nil || result == nil {
		return
	}
	c.audits.WithLabelValues(OutcomeSuccess).Inc()
	c.scores.Observe(float64(result.Score))
	for _, issue := range result.Issues {
		c.issues.WithLabelValues(issue.Severity.String()).Inc()
	}
}

// RecordAuditFailure counts an audit that ended with an error of the given kind.
func (c *Collector) RecordAuditFailure(kind string) {
	if c == nil {
		return
	}
	c.audits.WithLabelValues(kind).Inc()
}

// ObserveFetch records the load time of a fetched page.
func (c *Collector) ObserveFetch(d time.Duration) {
	if c == nil {
		return
	}
	c.fetchDuration.Observe(d.Seconds())
}

// ObserveStep records how long a pipeline step took.
func (c *Collector) ObserveStep(step string, d time.Duration) {
	if c == nil {
		return
	}
	c.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// ObserveHTTPRequest records one served API request.
func (c *Collector) ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
