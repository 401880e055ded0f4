package model

// Severity classifies a sustained memory growth rate.
type Severity string

const (
	SeverityNone Severity = "none"
	SeverityLow  Severity = "low"
	SeverityHigh Severity = "high"
)

// Sample is one resident-memory observation of the target process.
type Sample struct {
	Timestamp float64 `json:"timestamp"` // wall-clock seconds
	MemoryMB  float64 `json:"memory_mb"`
}

// SampleSeries is the ordered record of one monitoring window.
// Timestamps are non-decreasing; an empty series means the target
// ended before a single poll succeeded.
type SampleSeries []Sample

func (s SampleSeries) Span() float64 {
	if len(s) < 2 {
		return 0
	}
	return s[len(s)-1].Timestamp - s[0].Timestamp
}

func (s SampleSeries) Peak() float64 {
	var peak float64
	for _, sm := range s {
		if sm.MemoryMB > peak {
			peak = sm.MemoryMB
		}
	}
	return peak
}

// Growth is last-minus-first resident memory, signed.
func (s SampleSeries) Growth() float64 {
	if len(s) < 2 {
		return 0
	}
	return s[len(s)-1].MemoryMB - s[0].MemoryMB
}

// SummaryStats is the reduction of timing trials or a SampleSeries.
// Peak and Growth are set for memory reductions only.
type SummaryStats struct {
	Count  int      `json:"count"`
	Min    float64  `json:"min"`
	Max    float64  `json:"max"`
	Avg    float64  `json:"avg"`
	Peak   *float64 `json:"peak_mb,omitempty"`
	Growth *float64 `json:"growth_mb,omitempty"`
}

// SummarizeTimings reduces successful trial durations in seconds.
func SummarizeTimings(times []float64) SummaryStats {
	stats := SummaryStats{Count: len(times)}
	if len(times) == 0 {
		return stats
	}
	stats.Min = times[0]
	stats.Max = times[0]
	var sum float64
	for _, t := range times {
		if t < stats.Min {
			stats.Min = t
		}
		if t > stats.Max {
			stats.Max = t
		}
		sum += t
	}
	stats.Avg = sum / float64(len(times))
	return stats
}

// SummarizeSeries reduces a memory series. Peak aliases Max.
func SummarizeSeries(s SampleSeries) SummaryStats {
	stats := SummaryStats{Count: len(s)}
	if len(s) == 0 {
		return stats
	}
	stats.Min = s[0].MemoryMB
	stats.Max = s[0].MemoryMB
	var sum float64
	for _, sm := range s {
		if sm.MemoryMB < stats.Min {
			stats.Min = sm.MemoryMB
		}
		if sm.MemoryMB > stats.Max {
			stats.Max = sm.MemoryMB
		}
		sum += sm.MemoryMB
	}
	stats.Avg = sum / float64(len(s))
	peak := stats.Max
	growth := s.Growth()
	stats.Peak = &peak
	stats.Growth = &growth
	return stats
}

// TrendResult is the least-squares estimate over a SampleSeries.
// Recomputed on demand, never stored across runs.
type TrendResult struct {
	GrowthRateMBPerSec float64  `json:"memory_growth_rate_mb_per_sec"`
	Severity           Severity `json:"leak_severity"`
}

func (t TrendResult) Leaking() bool {
	return t.Severity != SeverityNone
}

type ScenarioKind string

const (
	KindTiming ScenarioKind = "timing"
	KindMemory ScenarioKind = "memory"
)

// ScenarioResult is one scenario attempt, immutable after creation.
// Trend is nil when leak detection was not evaluated, which is not
// the same as "no leak".
type ScenarioResult struct {
	Name     string        `json:"name"`
	Kind     ScenarioKind  `json:"kind"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Duration float64       `json:"duration"` // observation window, seconds
	HD       bool          `json:"hd,omitempty"`
	Success  bool          `json:"success"`
	Stats    *SummaryStats `json:"stats,omitempty"`
	Trend    *TrendResult  `json:"trend,omitempty"`
	Samples  SampleSeries  `json:"-"`
	Error    string        `json:"error,omitempty"`
	Stdout   string        `json:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty"`
}

func (r ScenarioResult) Pixels() int {
	return r.Width * r.Height
}

// RequirementVerdict is one threshold comparison. Advisory verdicts
// are reported but never flip the overall result.
type RequirementVerdict struct {
	RequirementID string  `json:"requirement_id"`
	Scenario      string  `json:"scenario,omitempty"`
	Observed      float64 `json:"observed"`
	Threshold     float64 `json:"threshold"`
	Passed        bool    `json:"passed"`
	Advisory      bool    `json:"advisory,omitempty"`
}

// SuiteResult is the full run: scenarios in execution order, verdicts
// in table order, Passed the AND of all non-advisory verdicts.
type SuiteResult struct {
	Scenarios []ScenarioResult     `json:"scenarios"`
	Verdicts  []RequirementVerdict `json:"verdicts"`
	Passed    bool                 `json:"passed"`
}
