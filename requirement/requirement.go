// Package requirement applies the constitutional threshold table to
// aggregated scenario results.
package requirement

import (
	"math"

	"codeberg.org/hfmrz/blurbench/configs"
	"codeberg.org/hfmrz/blurbench/model"
)

const rgbaBytesPerPixel = 4

// Rule is one row of the threshold table. Observe returns false when
// the rule cannot be evaluated for the scenario (e.g. leak detection
// skipped); no verdict is emitted in that case rather than a false
// pass.
type Rule struct {
	ID       string
	Advisory bool
	Applies  func(model.ScenarioResult) bool
	Observe  func(model.ScenarioResult) (observed, threshold float64, ok bool)
}

// Table builds the requirement rules from configured thresholds.
func Table(th configs.Thresholds) []Rule {
	return []Rule{
		{
			ID:      "startup-latency",
			Applies: func(r model.ScenarioResult) bool { return r.Kind == model.KindTiming },
			Observe: func(r model.ScenarioResult) (float64, float64, bool) {
				if r.Stats == nil {
					return 0, 0, false
				}
				return r.Stats.Avg, th.StartupSeconds, true
			},
		},
		{
			ID:      "hd-processing-latency",
			Applies: func(r model.ScenarioResult) bool { return r.Kind == model.KindTiming && r.HD },
			Observe: func(r model.ScenarioResult) (float64, float64, bool) {
				if r.Stats == nil {
					return 0, 0, false
				}
				return r.Stats.Avg, th.HDProcessSeconds, true
			},
		},
		{
			ID:      "peak-memory-hd",
			Applies: func(r model.ScenarioResult) bool { return r.Kind == model.KindMemory && r.HD },
			Observe: func(r model.ScenarioResult) (float64, float64, bool) {
				if r.Stats == nil || r.Stats.Peak == nil {
					return 0, 0, false
				}
				return *r.Stats.Peak, th.HDPeakMemoryMB, true
			},
		},
		{
			ID:      "memory-growth",
			Applies: func(r model.ScenarioResult) bool { return r.Kind == model.KindMemory },
			Observe: func(r model.ScenarioResult) (float64, float64, bool) {
				if r.Trend == nil {
					return 0, 0, false
				}
				return math.Abs(r.Trend.GrowthRateMBPerSec), th.LeakLowMBPerSec, true
			},
		},
		{
			ID:      "memory-efficiency",
			Applies: func(r model.ScenarioResult) bool { return r.Kind == model.KindMemory },
			Observe: func(r model.ScenarioResult) (float64, float64, bool) {
				if r.Stats == nil || r.Stats.Peak == nil {
					return 0, 0, false
				}
				imageMB := float64(r.Pixels()*rgbaBytesPerPixel) / (1024 * 1024)
				return *r.Stats.Peak, th.EfficiencyFactor * imageMB, true
			},
		},
	}
}

// Validate applies every rule to every applicable scenario. The
// overall verdict is true only when all non-advisory verdicts pass
// and no scenario failed outright.
func Validate(results []model.ScenarioResult, rules []Rule) ([]model.RequirementVerdict, bool) {
	var verdicts []model.RequirementVerdict
	overall := true

	for _, r := range results {
		if !r.Success {
			overall = false
		}
	}

	for _, rule := range rules {
		for _, r := range results {
			if !r.Success || !rule.Applies(r) {
				continue
			}
			observed, threshold, ok := rule.Observe(r)
			if !ok {
				continue
			}
			passed := passes(rule.ID, observed, threshold)
			verdicts = append(verdicts, model.RequirementVerdict{
				RequirementID: rule.ID,
				Scenario:      r.Name,
				Observed:      observed,
				Threshold:     threshold,
				Passed:        passed,
				Advisory:      rule.Advisory,
			})
			if !passed && !rule.Advisory {
				overall = false
			}
		}
	}

	return verdicts, overall
}

// memory-growth is a strict inequality; everything else allows
// hitting the threshold exactly.
func passes(id string, observed, threshold float64) bool {
	if id == "memory-growth" {
		return observed < threshold
	}
	return observed <= threshold
}
