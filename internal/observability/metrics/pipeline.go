// Package metrics provides Prometheus metrics for the monitoring pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics contains Prometheus metrics for pipeline operations.
type PipelineMetrics struct {
	registry *prometheus.Registry

	chunksProcessedTotal prometheus.Counter
	readErrorsTotal      prometheus.Counter
	eventsDetectedTotal  prometheus.Counter
	extremeEventsTotal   prometheus.Counter
	eventsDiscardedTotal prometheus.Counter
	encodeErrorsTotal    prometheus.Counter
	persistErrorsTotal   prometheus.Counter
	segmentsWrittenTotal prometheus.Counter
	currentLevelDB       prometheus.Gauge
}

// NewPipelineMetrics creates pipeline metrics registered on a fresh registry.
func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	m := &PipelineMetrics{
		registry: registry,
		chunksProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundmonitor_chunks_processed_total",
			Help: "Total number of audio chunks processed by the pipeline",
		}),
		readErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundmonitor_read_errors_total",
			Help: "Total number of transient audio read errors",
		}),
		eventsDetectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundmonitor_events_detected_total",
			Help: "Total number of finalized noise events",
		}),
		extremeEventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundmonitor_extreme_events_total",
			Help: "Total number of events exceeding the extreme margin",
		}),
		eventsDiscardedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundmonitor_events_discarded_total",
			Help: "Total number of events discarded as too short",
		}),
		encodeErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundmonitor_encode_errors_total",
			Help: "Total number of event audio encoding failures",
		}),
		persistErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundmonitor_persist_errors_total",
			Help: "Total number of datastore insert failures",
		}),
		segmentsWrittenTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soundmonitor_segments_written_total",
			Help: "Total number of archival segments written",
		}),
		currentLevelDB: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "soundmonitor_current_level_db",
			Help: "Most recent calibrated dB reading",
		}),
	}

	registry.MustRegister(
		m.chunksProcessedTotal,
		m.readErrorsTotal,
		m.eventsDetectedTotal,
		m.extremeEventsTotal,
		m.eventsDiscardedTotal,
		m.encodeErrorsTotal,
		m.persistErrorsTotal,
		m.segmentsWrittenTotal,
		m.currentLevelDB,
	)

	return m
}

func (m *PipelineMetrics) RecordChunk(db float64) {
	m.chunksProcessedTotal.Inc()
	m.currentLevelDB.Set(db)
}

func (m *PipelineMetrics) RecordReadError()      { m.readErrorsTotal.Inc() }
func (m *PipelineMetrics) RecordEvent()          { m.eventsDetectedTotal.Inc() }
func (m *PipelineMetrics) RecordExtremeEvent()   { m.extremeEventsTotal.Inc() }
func (m *PipelineMetrics) RecordEventDiscarded() { m.eventsDiscardedTotal.Inc() }
func (m *PipelineMetrics) RecordEncodeError()    { m.encodeErrorsTotal.Inc() }
func (m *PipelineMetrics) RecordPersistError()   { m.persistErrorsTotal.Inc() }
func (m *PipelineMetrics) RecordSegment()        { m.segmentsWrittenTotal.Inc() }

// Handler returns an HTTP handler exposing the metrics in Prometheus format.
func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
