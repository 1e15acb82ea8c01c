// Package metrics exposes hotel operation and occupancy metrics through a
// Prometheus registry.
package metrics

import (
	"context"
	"time"

	"hotelcore/internal/core"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hotel"

var _ core.MetricsRecorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder implements core.MetricsRecorder with a counter and a
// latency histogram per operation.
type PrometheusRecorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the operation metrics on a fresh registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Hotel state operations by outcome.",
		}, []string{"operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of hotel state operations including persistence.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"operation"}),
	}
	r.registry.MustRegister(r.operations, r.durations)
	return r
}

// Observe implements core.MetricsRecorder.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	r.operations.WithLabelValues(operation, outcome).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// Registry returns the registry holding every metric of this recorder. It is
// a test and inspection hook; production output goes through WriteTextfile.
func (r *PrometheusRecorder) Registry() *prometheus.Registry { return r.registry }

// WatchOccupancy registers gauges sampling summary on every scrape.
func (r *PrometheusRecorder) WatchOccupancy(summary func() core.Summary) error {
	return r.registry.Register(NewOccupancyCollector(summary))
}

// WriteTextfile writes the registry in the text exposition format to path,
// for pickup by a node exporter textfile collector.
func (r *PrometheusRecorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// OccupancyCollector reports the hotel summary as gauges.
type OccupancyCollector struct {
	summary  func() core.Summary
	rooms    *prometheus.Desc
	vacant   *prometheus.Desc
	bookings *prometheus.Desc
	users    *prometheus.Desc
}

// NewOccupancyCollector returns a collector reading counts from summary.
func NewOccupancyCollector(summary func() core.Summary) *OccupancyCollector {
	return &OccupancyCollector{
		summary:  summary,
		rooms:    prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "rooms"), "Rooms in the inventory.", nil, nil),
		vacant:   prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "rooms_vacant"), "Vacant rooms.", nil, nil),
		bookings: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "bookings_active"), "Active bookings.", nil, nil),
		users:    prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "users_registered"), "Registered guests.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *OccupancyCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.rooms
	ch <- c.vacant
	ch <- c.bookings
	ch <- c.users
}

// Collect implements prometheus.Collector.
func (c *OccupancyCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.summary()
	ch <- prometheus.MustNewConstMetric(c.rooms, prometheus.GaugeValue, float64(s.Rooms))
	ch <- prometheus.MustNewConstMetric(c.vacant, prometheus.GaugeValue, float64(s.Vacant))
	ch <- prometheus.MustNewConstMetric(c.bookings, prometheus.GaugeValue, float64(s.Bookings))
	ch <- prometheus.MustNewConstMetric(c.users, prometheus.GaugeValue, float64(s.Users))
}
