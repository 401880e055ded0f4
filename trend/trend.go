// Package trend estimates memory growth over a sample series via
// ordinary least-squares regression and classifies leak severity.
package trend

import (
	"errors"
	"math"

	"codeberg.org/hfmrz/blurbench/model"
)

// MinSamples is the smallest series leak detection will evaluate.
// Below it the result is ErrInsufficientSamples, which callers must
// treat as "leak detection skipped", never as "no leak".
const MinSamples = 10

var ErrInsufficientSamples = errors.New("insufficient samples for leak detection")

// Thresholds are the severity cut points in MB/s, applied to the
// absolute growth rate.
type Thresholds struct {
	Low  float64
	High float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Low: 1.0, High: 5.0}
}

// Estimate regresses memory against sample index rather than raw
// timestamps, avoiding division instability when polls are irregular.
// The per-sample slope is converted to MB/s by dividing by the average
// inter-sample spacing (total span over count). That spacing is an
// approximation when polls are delayed; it is kept as-is so the
// detector's sensitivity stays stable.
func Estimate(series model.SampleSeries, th Thresholds) (model.TrendResult, error) {
	if len(series) < MinSamples {
		return model.TrendResult{}, ErrInsufficientSamples
	}

	n := float64(len(series))
	var sumX, sumY, sumXY, sumX2 float64
	for i, s := range series {
		x := float64(i)
		sumX += x
		sumY += s.MemoryMB
		sumXY += x * s.MemoryMB
		sumX2 += x * x
	}
	slope := (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)

	var rate float64
	if span := series.Span(); span > 0 {
		rate = slope / (span / n)
	}

	return model.TrendResult{
		GrowthRateMBPerSec: rate,
		Severity:           classify(rate, th),
	}, nil
}

func classify(rate float64, th Thresholds) model.Severity {
	switch abs := math.Abs(rate); {
	case abs > th.High:
		return model.SeverityHigh
	case abs > th.Low:
		return model.SeverityLow
	default:
		return model.SeverityNone
	}
}
