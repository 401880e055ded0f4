package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/hfmrz/blurbench/model"
)

func series(n int, base, perSample, spacing float64) model.SampleSeries {
	s := make(model.SampleSeries, 0, n)
	for i := 0; i < n; i++ {
		s = append(s, model.Sample{
			Timestamp: float64(i) * spacing,
			MemoryMB:  base + perSample*float64(i),
		})
	}
	return s
}

func TestEstimateConstantSeries(t *testing.T) {
	res, err := Estimate(series(20, 52.0, 0, 0.1), DefaultThresholds())
	require.NoError(t, err)

	assert.InDelta(t, 0.0, res.GrowthRateMBPerSec, 1e-9)
	assert.Equal(t, model.SeverityNone, res.Severity)
	assert.False(t, res.Leaking())
}

func TestEstimateRecoversLinearGrowth(t *testing.T) {
	// 0.2 MB per sample at 0.1s spacing: the average spacing seen by
	// the estimator is span/n = 1.9/20, so the expected rate is
	// 0.2 / (1.9/20) rather than an exact 2.0.
	res, err := Estimate(series(20, 50.0, 0.2, 0.1), DefaultThresholds())
	require.NoError(t, err)

	want := 0.2 / (1.9 / 20.0)
	assert.InDelta(t, want, res.GrowthRateMBPerSec, 1e-6)
	assert.Equal(t, model.SeverityLow, res.Severity)
	assert.True(t, res.Leaking())
}

func TestEstimateHighSeverity(t *testing.T) {
	res, err := Estimate(series(30, 40.0, 1.0, 0.1), DefaultThresholds())
	require.NoError(t, err)

	assert.Greater(t, res.GrowthRateMBPerSec, 5.0)
	assert.Equal(t, model.SeverityHigh, res.Severity)
}

func TestEstimateShrinkingSeriesClassifiedByMagnitude(t *testing.T) {
	res, err := Estimate(series(20, 200.0, -1.0, 0.1), DefaultThresholds())
	require.NoError(t, err)

	assert.Less(t, res.GrowthRateMBPerSec, 0.0)
	assert.Equal(t, model.SeverityHigh, res.Severity)
}

func TestEstimateInsufficientSamples(t *testing.T) {
	_, err := Estimate(series(MinSamples-1, 50.0, 10.0, 0.1), DefaultThresholds())
	assert.ErrorIs(t, err, ErrInsufficientSamples)

	_, err = Estimate(nil, DefaultThresholds())
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestEstimateZeroSpan(t *testing.T) {
	s := make(model.SampleSeries, MinSamples)
	for i := range s {
		s[i] = model.Sample{Timestamp: 7.0, MemoryMB: float64(i)}
	}
	res, err := Estimate(s, DefaultThresholds())
	require.NoError(t, err)
	assert.Zero(t, res.GrowthRateMBPerSec)
	assert.Equal(t, model.SeverityNone, res.Severity)
}

func TestClassifyBoundariesAreExclusive(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, model.SeverityNone, classify(1.0, th))
	assert.Equal(t, model.SeverityLow, classify(1.0001, th))
	assert.Equal(t, model.SeverityLow, classify(5.0, th))
	assert.Equal(t, model.SeverityHigh, classify(5.0001, th))
}
