package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/hfmrz/blurbench/model"
)

func TestPollCounters(t *testing.T) {
	h := New(prometheus.NewRegistry())

	h.PollOK(42.5)
	h.PollOK(43.0)
	h.PollFailed()

	assert.InDelta(t, 2.0, testutil.ToFloat64(h.pollsTotal), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(h.pollFailures), 1e-9)
	assert.InDelta(t, 43.0, testutil.ToFloat64(h.residentMB), 1e-9)
}

func TestScenarioOutcomeLabels(t *testing.T) {
	h := New(prometheus.NewRegistry())

	h.ScenarioDone("hd_image", model.KindTiming, true, 0.5)
	h.ScenarioDone("hd_image_processing", model.KindMemory, true, 5.0)
	h.ScenarioDone("4k_image_stress", model.KindMemory, false, 8.0)

	assert.InDelta(t, 1.0, testutil.ToFloat64(h.scenariosTotal.WithLabelValues("timing", "success")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(h.scenariosTotal.WithLabelValues("memory", "success")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(h.scenariosTotal.WithLabelValues("memory", "failure")), 1e-9)
}

func TestWriteTextExposesCollectors(t *testing.T) {
	h := New(prometheus.NewRegistry())
	h.PollOK(42.5)
	h.PollFailed()
	h.ScenarioDone("hd_image", model.KindTiming, true, 0.5)

	var b strings.Builder
	require.NoError(t, h.WriteText(&b))
	out := b.String()

	assert.Contains(t, out, "blurbench_memory_polls_total 1")
	assert.Contains(t, out, "blurbench_memory_poll_failures_total 1")
	assert.Contains(t, out, "blurbench_target_resident_mb 42.5")
	assert.Contains(t, out, `blurbench_scenarios_total{kind="timing",result="success"} 1`)
	assert.Contains(t, out, "blurbench_scenario_window_seconds_count 1")
}

func TestCollectorsRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	require.Panics(t, func() { New(reg) })
}
