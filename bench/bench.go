// Package bench runs scenarios repeatedly, reduces the measurements,
// and evaluates cross-scenario scaling.
package bench

import (
	"errors"
	"log/slog"

	"codeberg.org/hfmrz/blurbench/configs"
	"codeberg.org/hfmrz/blurbench/model"
	"codeberg.org/hfmrz/blurbench/trend"
)

// ScenarioRunner abstracts the runner so aggregation is testable
// without spawning processes.
type ScenarioRunner interface {
	RunTiming(configs.Scenario) model.ScenarioResult
	RunMemory(configs.Scenario) model.ScenarioResult
}

type Aggregator struct {
	Runner     ScenarioRunner
	Iterations int
	Trend      trend.Thresholds
	Log        *slog.Logger
}

func New(r ScenarioRunner, cfg configs.Config, log *slog.Logger) *Aggregator {
	return &Aggregator{
		Runner:     r,
		Iterations: cfg.Iterations,
		Trend: trend.Thresholds{
			Low:  cfg.Thresholds.LeakLowMBPerSec,
			High: cfg.Thresholds.LeakHighMBPerSec,
		},
		Log: log,
	}
}

// RunTiming executes each scenario Iterations times and reduces the
// successful trials. Failed iterations are logged and excluded from
// the stats, never averaged in as penalty values.
func (a *Aggregator) RunTiming(scenarios []configs.Scenario) []model.ScenarioResult {
	results := make([]model.ScenarioResult, 0, len(scenarios))
	for _, sc := range scenarios {
		results = append(results, a.timingScenario(sc))
	}
	return results
}

func (a *Aggregator) timingScenario(sc configs.Scenario) model.ScenarioResult {
	var times []float64
	var last model.ScenarioResult
	for i := 0; i < a.Iterations; i++ {
		res := a.Runner.RunTiming(sc)
		last = res
		if res.Success && res.Stats != nil {
			times = append(times, res.Stats.Avg)
		} else {
			a.Log.Warn("timing iteration failed", "scenario", sc.Name,
				"iteration", i+1, "error", res.Error)
		}
	}

	if len(times) == 0 {
		last.Success = false
		if last.Error == "" {
			last.Error = "all iterations failed"
		}
		last.Stats = nil
		return last
	}

	stats := model.SummarizeTimings(times)
	last.Success = true
	last.Error = ""
	last.Stats = &stats
	return last
}

// RunMemory executes each scenario once (a single longer run) and
// attaches the leak trend where enough samples exist. Too few samples
// leaves Trend nil: leak detection skipped, not "no leak".
func (a *Aggregator) RunMemory(scenarios []configs.Scenario) []model.ScenarioResult {
	results := make([]model.ScenarioResult, 0, len(scenarios))
	for _, sc := range scenarios {
		res := a.Runner.RunMemory(sc)
		if res.Success {
			tr, err := trend.Estimate(res.Samples, a.Trend)
			switch {
			case err == nil:
				res.Trend = &tr
			case errors.Is(err, trend.ErrInsufficientSamples):
				a.Log.Warn("leak detection skipped", "scenario", sc.Name,
					"samples", len(res.Samples))
			}
		}
		results = append(results, res)
	}
	return results
}

// ScalingVerdict compares the smallest and largest successful timing
// scenarios: a time ratio worse than factor x the pixel ratio is
// flagged. Advisory only; it never fails the run.
func ScalingVerdict(results []model.ScenarioResult, factor float64) *model.RequirementVerdict {
	var small, large *model.ScenarioResult
	for i := range results {
		r := &results[i]
		if r.Kind != model.KindTiming || !r.Success || r.Stats == nil {
			continue
		}
		if small == nil || r.Pixels() < small.Pixels() {
			small = r
		}
		if large == nil || r.Pixels() > large.Pixels() {
			large = r
		}
	}
	if small == nil || large == nil || small == large {
		return nil
	}
	if small.Stats.Avg <= 0 || small.Pixels() <= 0 {
		return nil
	}

	pixelRatio := float64(large.Pixels()) / float64(small.Pixels())
	timeRatio := large.Stats.Avg / small.Stats.Avg
	return &model.RequirementVerdict{
		RequirementID: "scaling-efficiency",
		Scenario:      large.Name,
		Observed:      timeRatio,
		Threshold:     factor * pixelRatio,
		Passed:        timeRatio <= factor*pixelRatio,
		Advisory:      true,
	}
}
