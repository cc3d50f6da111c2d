//go:build !ios && !android && (amd64 || arm64)

package spherecmp

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts pipeline activity in its own Prometheus registry. It is a
// Reporter, so it can sit next to the text report in a MultiReporter; the
// pipeline also feeds it push and graph-setup events directly.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	graphInits      prometheus.Counter
	framesPushed    *prometheus.CounterVec
	framesEmitted   prometheus.Counter
	metadataEntries prometheus.Counter
	metricValue     *prometheus.GaugeVec
}

// NewMetrics creates the collectors in a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		graphInits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "spherecmp",
			Subsystem: "graph",
			Name:      "initializations_total",
			Help:      "Filter graphs built and configured",
		}),
		framesPushed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spherecmp",
			Subsystem: "pipeline",
			Name:      "frames_pushed_total",
			Help:      "Frames pushed into the buffer source, by kind (frame or flush)",
		}, []string{"kind"}),
		framesEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "spherecmp",
			Subsystem: "pipeline",
			Name:      "frames_emitted_total",
			Help:      "Frames pulled from the buffer sink",
		}),
		metadataEntries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "spherecmp",
			Subsystem: "pipeline",
			Name:      "metadata_entries_total",
			Help:      "Metric metadata entries reported",
		}),
		metricValue: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spherecmp",
			Subsystem: "metric",
			Name:      "value",
			Help:      "Last numeric value reported for each metadata key",
		}, []string{"key"}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ReportFrame implements Reporter.
func (m *Metrics) ReportFrame(uint64) error {
	if m != nil {
		m.framesEmitted.Inc()
	}
	return nil
}

// ReportMetadata implements Reporter. Values that do not parse as floats
// are counted but leave the gauge alone.
func (m *Metrics) ReportMetadata(key, value string) error {
	if m == nil {
		return nil
	}
	m.metadataEntries.Inc()
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		m.metricValue.WithLabelValues(key).Set(v)
	}
	return nil
}

// WriteTextfile writes all metrics in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observeGraphInit() {
	if m != nil {
		m.graphInits.Inc()
	}
}

func (m *Metrics) observePush(flush bool) {
	if m == nil {
		return
	}
	kind := "frame"
	if flush {
		kind = "flush"
	}
	m.framesPushed.WithLabelValues(kind).Inc()
}
