// Package metrics exposes harness observability counters through
// Prometheus collectors.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"codeberg.org/hfmrz/blurbench/model"
)

type Harness struct {
	reg              *prometheus.Registry
	pollsTotal       prometheus.Counter
	pollFailures     prometheus.Counter
	residentMB       prometheus.Gauge
	scenariosTotal   *prometheus.CounterVec
	scenarioDuration prometheus.Histogram
}

func New(reg *prometheus.Registry) *Harness {
	h := &Harness{
		reg: reg,
		pollsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blurbench_memory_polls_total",
			Help: "Successful resident-memory polls.",
		}),
		pollFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blurbench_memory_poll_failures_total",
			Help: "Polls skipped because the backend had no reading.",
		}),
		residentMB: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blurbench_target_resident_mb",
			Help: "Most recent resident memory reading of the target.",
		}),
		scenariosTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blurbench_scenarios_total",
			Help: "Scenario attempts by kind and outcome.",
		}, []string{"kind", "result"}),
		scenarioDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blurbench_scenario_window_seconds",
			Help:    "Configured observation windows of finished scenarios.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
	reg.MustRegister(h.pollsTotal, h.pollFailures, h.residentMB,
		h.scenariosTotal, h.scenarioDuration)
	return h
}

// WriteText gathers the registry and renders it in the Prometheus
// text exposition format.
func (h *Harness) WriteText(w io.Writer) error {
	fams, err := h.reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range fams {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// PollOK implements sampler.Observer.
func (h *Harness) PollOK(memoryMB float64) {
	h.pollsTotal.Inc()
	h.residentMB.Set(memoryMB)
}

// PollFailed implements sampler.Observer.
func (h *Harness) PollFailed() {
	h.pollFailures.Inc()
}

// ScenarioDone implements runner.Observer.
func (h *Harness) ScenarioDone(name string, kind model.ScenarioKind, ok bool, seconds float64) {
	result := "success"
	if !ok {
		result = "failure"
	}
	h.scenariosTotal.WithLabelValues(string(kind), result).Inc()
	h.scenarioDuration.Observe(seconds)
}
