package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once         sync.Once
	candidates   *prom.CounterVec
	parseErrors  *prom.CounterVec
	scanDuration *prom.HistogramVec
	scanOutcomes *prom.CounterVec
	formats      *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.candidates = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rangelink",
			Name:      "scan_candidates_total",
			Help:      "Pattern matches found while scanning, by parser verdict",
		}, []string{"result"})
		pr.parseErrors = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rangelink",
			Name:      "parse_errors_total",
			Help:      "Rejected candidates by parse error kind",
		}, []string{"kind"})
		pr.scanDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "rangelink",
			Name:      "scan_duration_seconds",
			Help:      "Duration of a single text scan",
			Buckets:   prom.DefBuckets,
		}, []string{"source"})
		pr.scanOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rangelink",
			Name:      "scan_outcomes_total",
			Help:      "Scans by outcome",
		}, []string{"outcome"})
		pr.formats = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rangelink",
			Name:      "format_results_total",
			Help:      "Formatting attempts by result",
		}, []string{"result"})
		reg.MustRegister(pr.candidates, pr.parseErrors, pr.scanDuration, pr.scanOutcomes, pr.formats)
	})
	return pr
}

func (p *PrometheusRecorder) IncCandidate(result ResultLabel) {
	if p == nil || p.candidates == nil {
		return
	}
	p.candidates.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncParseError(kind string) {
	if p == nil || p.parseErrors == nil {
		return
	}
	p.parseErrors.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) ObserveScanDuration(source string, d time.Duration) {
	if p == nil || p.scanDuration == nil {
		return
	}
	p.scanDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncScanOutcome(outcome ScanOutcome) {
	if p == nil || p.scanOutcomes == nil {
		return
	}
	p.scanOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncFormat(result ResultLabel) {
	if p == nil || p.formats == nil {
		return
	}
	p.formats.WithLabelValues(string(result)).Inc()
}
