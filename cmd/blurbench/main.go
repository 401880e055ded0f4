package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"codeberg.org/hfmrz/blurbench/bench"
	"codeberg.org/hfmrz/blurbench/configs"
	"codeberg.org/hfmrz/blurbench/imagegen"
	"codeberg.org/hfmrz/blurbench/memquery"
	"codeberg.org/hfmrz/blurbench/metrics"
	"codeberg.org/hfmrz/blurbench/model"
	"codeberg.org/hfmrz/blurbench/preflight"
	"codeberg.org/hfmrz/blurbench/report"
	"codeberg.org/hfmrz/blurbench/requirement"
	"codeberg.org/hfmrz/blurbench/runner"
	"codeberg.org/hfmrz/blurbench/util"
)

type CLI struct {
	Config  string `help:"Harness config file (yaml or json)." type:"path"`
	App     string `help:"Path to the application under test."`
	JSON    bool   `help:"Emit the suite result as JSON on stdout."`
	Metrics bool   `help:"Dump harness metrics in Prometheus text format to stderr after the run."`
	Verbose bool   `help:"Enable debug logging."`

	Bench     struct{} `cmd:"" help:"Run timing benchmarks."`
	Memory    struct{} `cmd:"" help:"Run memory profiling scenarios."`
	Validate  struct{} `cmd:"" help:"Run the full suite and validate every requirement."`
	Preflight struct{} `cmd:"" help:"Check external collaborators and exit."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := configs.Default()
	if cli.Config != "" {
		var err error
		cfg, err = configs.Load(cli.Config)
		util.Bail(err)
	}
	if cli.App != "" {
		cfg.App = cli.App
	}
	if cfg.App == "" {
		util.Bail(errors.New("no application under test; pass --app or set app in the config"))
	}

	if ctx.Command() == "preflight" {
		os.Exit(runPreflight(cfg))
	}

	checks, status := preflight.Run(cfg.App, nil)
	switch status {
	case preflight.Fatal:
		util.Bail(fmt.Errorf("target binary unusable: %s", detail(checks, "target binary")))
	case preflight.Skip:
		util.Skip(detail(checks, "memory backend"))
	}

	os.Exit(execute(ctx.Command(), cfg, cli, logger))
}

func execute(command string, cfg configs.Config, cli CLI, logger *slog.Logger) int {
	backend, err := memquery.Select(cfg.Backend, cfg.CgroupName)
	util.Bail(err)

	reg := prometheus.NewRegistry()
	met := metrics.New(reg)

	run := runner.New(cfg.App, imagegen.Detect(), backend, cfg, logger)
	run.Obs = met
	run.SampleObs = met
	if group, ok := backend.(*memquery.Group); ok {
		run.Cgroup = group
		defer group.Delete()
		if err := group.SetMaximumMemory(cfg.CgroupMaxMem); err != nil {
			fmt.Fprintln(os.Stderr, "blurbench:", err)
			return util.ExitFailure
		}
	}

	agg := bench.New(run, cfg, logger)
	rules := requirement.Table(cfg.Thresholds)

	var suite model.SuiteResult
	switch command {
	case "bench":
		suite.Scenarios = agg.RunTiming(cfg.Timing)
	case "memory":
		suite.Scenarios = agg.RunMemory(cfg.Memory)
	case "validate":
		suite.Scenarios = append(agg.RunTiming(cfg.Timing), agg.RunMemory(cfg.Memory)...)
	}

	suite.Verdicts, suite.Passed = requirement.Validate(suite.Scenarios, rules)
	if command != "memory" {
		if v := bench.ScalingVerdict(suite.Scenarios, cfg.Thresholds.ScalingFactor); v != nil {
			suite.Verdicts = append(suite.Verdicts, *v)
		}
	}

	emit(suite, cli.JSON)

	if cli.Metrics {
		if err := met.WriteText(os.Stderr); err != nil {
			logger.Warn("metrics dump failed", "error", err)
		}
	}

	if !suite.Passed {
		return util.ExitFailure
	}
	return util.ExitOK
}

func runPreflight(cfg configs.Config) int {
	checks, status := preflight.Run(cfg.App, nil)
	for _, c := range checks {
		mark := "ok"
		if !c.OK {
			mark = "missing"
		}
		fmt.Printf("%-16s %-8s %s\n", c.Name, mark, c.Detail)
	}
	switch status {
	case preflight.Fatal:
		return util.ExitFailure
	case preflight.Skip:
		return util.ExitSkip
	}
	return util.ExitOK
}

func emit(suite model.SuiteResult, asJSON bool) {
	if asJSON {
		out, err := json.MarshalIndent(suite, "", "  ")
		util.Bail(err)
		fmt.Println(string(out))
		return
	}
	fmt.Print(report.Render(suite))
}

func detail(checks []preflight.Check, name string) string {
	for _, c := range checks {
		if c.Name == name {
			return c.Detail
		}
	}
	return ""
}
