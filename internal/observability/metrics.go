package observability

import (
	"time"

	"github.com/hdrscope/hdrscope/internal/funnel"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	FunnelPipeline    = "pipeline"
	FunnelIndependent = "independent"
	FunnelCombination = "combination"
)

type Metrics struct {
	sitesTotal        *prometheus.CounterVec
	headersTotal      prometheus.Counter
	stageRemovedTotal *prometheus.CounterVec
	survivors         *prometheus.GaugeVec
	funnelDuration    *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sitesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "hdrscope_sites_total", Help: "Sites analyzed by outcome"},
			[]string{"status"},
		),
		headersTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "hdrscope_headers_total", Help: "Header observations fed to the production pipeline"},
		),
		stageRemovedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "hdrscope_stage_removed_total", Help: "Headers removed per funnel stage"},
			[]string{"funnel", "stage"},
		),
		survivors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "hdrscope_custom_headers", Help: "Custom headers surviving the production pipeline"},
			[]string{"site"},
		),
		funnelDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hdrscope_funnel_duration_seconds",
				Help:    "Funnel evaluation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"funnel"},
		),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.sitesTotal,
		m.headersTotal,
		m.stageRemovedTotal,
		m.survivors,
		m.funnelDuration,
	)

	return m
}

func (m *Metrics) ObserveReport(kind string, report *funnel.Report, took time.Duration) {
	if m == nil || report == nil {
		return
	}

	m.funnelDuration.WithLabelValues(kind).Observe(took.Seconds())
	for _, s := range report.Stages {
		m.stageRemovedTotal.WithLabelValues(kind, string(s.Stage)).Add(float64(s.Removed))
	}
	if kind == FunnelPipeline {
		m.headersTotal.Add(float64(report.Total))
	}
}

func (m *Metrics) ObserveSite(site string, err error, survivors int) {
	if m == nil {
		return
	}
	if err != nil {
		m.sitesTotal.WithLabelValues("failed").Inc()
		return
	}
	m.sitesTotal.WithLabelValues("ok").Inc()
	m.survivors.WithLabelValues(site).Set(float64(survivors))
}

func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
