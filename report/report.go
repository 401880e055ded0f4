// Package report renders suite results as a human-readable text
// report. Formatting here is presentation only, not a tested
// contract.
package report

import (
	"fmt"
	"strings"

	"codeberg.org/hfmrz/blurbench/model"
)

func Render(suite model.SuiteResult) string {
	var b strings.Builder

	b.WriteString("# Blur Benchmark Report\n\n")

	b.WriteString("## Scenarios\n\n")
	for _, sc := range suite.Scenarios {
		writeScenario(&b, sc)
	}

	if len(suite.Verdicts) > 0 {
		b.WriteString("## Requirements\n\n")
		for _, v := range suite.Verdicts {
			writeVerdict(&b, v)
		}
		b.WriteString("\n")
	}

	if suite.Passed {
		b.WriteString("OVERALL: PASS\n")
	} else {
		b.WriteString("OVERALL: FAIL\n")
	}

	return b.String()
}

func writeScenario(b *strings.Builder, sc model.ScenarioResult) {
	fmt.Fprintf(b, "### %s\n", sc.Name)
	fmt.Fprintf(b, "- Size: %dx%d (%d pixels)\n", sc.Width, sc.Height, sc.Pixels())

	if !sc.Success {
		fmt.Fprintf(b, "- FAILED: %s\n", sc.Error)
		if msg := strings.TrimSpace(sc.Stderr); msg != "" {
			fmt.Fprintf(b, "- Stderr: %s\n", msg)
		}
		b.WriteString("\n")
		return
	}

	switch sc.Kind {
	case model.KindTiming:
		if sc.Stats != nil {
			fmt.Fprintf(b, "- Average time: %.3fs\n", sc.Stats.Avg)
			fmt.Fprintf(b, "- Range: %.3fs - %.3fs over %d iterations\n",
				sc.Stats.Min, sc.Stats.Max, sc.Stats.Count)
		}
	case model.KindMemory:
		fmt.Fprintf(b, "- Duration: %.1fs\n", sc.Duration)
		if sc.Stats != nil {
			fmt.Fprintf(b, "- Samples: %d\n", sc.Stats.Count)
			if sc.Stats.Peak != nil {
				fmt.Fprintf(b, "- Peak memory: %.1fMB\n", *sc.Stats.Peak)
			}
			if sc.Stats.Growth != nil {
				fmt.Fprintf(b, "- Memory growth: %+.1fMB\n", *sc.Stats.Growth)
			}
		}
		if sc.Trend != nil {
			fmt.Fprintf(b, "- Growth rate: %+.3fMB/s\n", sc.Trend.GrowthRateMBPerSec)
			if sc.Trend.Leaking() {
				fmt.Fprintf(b, "- Leak status: potential leak (%s)\n", sc.Trend.Severity)
			} else {
				b.WriteString("- Leak status: no leak detected\n")
			}
		} else {
			b.WriteString("- Leak status: not evaluated\n")
		}
	}
	b.WriteString("\n")
}

func writeVerdict(b *strings.Builder, v model.RequirementVerdict) {
	status := "PASS"
	if !v.Passed {
		status = "FAIL"
		if v.Advisory {
			status = "ADVISORY"
		}
	}
	fmt.Fprintf(b, "- [%s] %s (%s): %.3f vs %.3f\n",
		status, v.RequirementID, v.Scenario, v.Observed, v.Threshold)
}
