// Package runner executes one scenario against the target process:
// build an input artifact, spawn, observe, tear down, clean up.
package runner

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"codeberg.org/hfmrz/blurbench/configs"
	"codeberg.org/hfmrz/blurbench/imagegen"
	"codeberg.org/hfmrz/blurbench/memquery"
	"codeberg.org/hfmrz/blurbench/model"
	"codeberg.org/hfmrz/blurbench/sampler"
)

// Observer is notified when a scenario attempt finishes. Implemented
// by the metrics package; nil disables it.
type Observer interface {
	ScenarioDone(name string, kind model.ScenarioKind, ok bool, seconds float64)
}

type Runner struct {
	App          string
	Gen          imagegen.Generator
	Backend      memquery.Backend
	Cgroup       *memquery.Group // optional; enables cgroup.kill teardown
	PollInterval time.Duration
	InitWindow   time.Duration // observation window for timing scenarios
	Grace        time.Duration // graceful-termination budget before SIGKILL
	Log          *slog.Logger
	Obs          Observer
	SampleObs    sampler.Observer
}

func New(app string, gen imagegen.Generator, backend memquery.Backend, cfg configs.Config, log *slog.Logger) *Runner {
	return &Runner{
		App:          app,
		Gen:          gen,
		Backend:      backend,
		PollInterval: secs(cfg.PollInterval),
		InitWindow:   secs(cfg.InitWindow),
		Grace:        secs(cfg.GracePeriod),
		Log:          log,
	}
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// RunMemory spawns the target on a generated artifact, samples its
// resident memory for the scenario's duration, and tears it down. The
// artifact and the process are released on every path.
func (r *Runner) RunMemory(sc configs.Scenario) model.ScenarioResult {
	res := model.ScenarioResult{
		Name:     sc.Name,
		Kind:     model.KindMemory,
		Width:    sc.Width,
		Height:   sc.Height,
		Duration: sc.Duration,
		HD:       sc.HD,
	}

	artifact, err := r.artifact(sc)
	if err != nil {
		res.Error = "could not create test input"
		r.Log.Error("artifact generation failed", "scenario", sc.Name, "error", err)
		r.finish(res)
		return res
	}
	defer os.Remove(artifact)

	cmd, stdout, stderr := r.command(artifact)
	if err := cmd.Start(); err != nil {
		res.Error = fmt.Sprintf("failed to spawn %s: %v", r.App, err)
		r.finish(res)
		return res
	}
	waitCh := reap(cmd)
	pid := cmd.Process.Pid

	if r.Cgroup != nil {
		if err := r.Cgroup.AddPid(pid); err != nil {
			r.Log.Warn("could not move target into cgroup", "pid", pid, "error", err)
		}
	}

	smp := sampler.New(r.Backend, r.PollInterval, r.SampleObs)
	if err := smp.Start(pid); err != nil {
		// target died between spawn and attach
		<-waitCh
		res.Error = fmt.Sprintf("process exited before monitoring began: %v", err)
		res.Stdout = stdout.String()
		res.Stderr = stderr.String()
		r.finish(res)
		return res
	}

	select {
	case <-time.After(secs(sc.Duration)):
		smp.Stop()
		r.teardown(cmd, waitCh)
	case <-waitCh:
		smp.Stop()
		res.Error = "process exited before observation window elapsed"
		res.Stdout = stdout.String()
		res.Stderr = stderr.String()
		r.finish(res)
		return res
	}

	series := smp.Series()
	res.Samples = series
	if len(series) == 0 {
		res.Error = "no memory samples collected"
		r.finish(res)
		return res
	}

	stats := model.SummarizeSeries(series)
	res.Stats = &stats
	res.Success = true
	r.finish(res)
	return res
}

// RunTiming measures wall time to spawn the target, hold a short
// initialization window, and tear it down. Stats carries the single
// trial; the aggregator reduces repeats.
func (r *Runner) RunTiming(sc configs.Scenario) model.ScenarioResult {
	res := model.ScenarioResult{
		Name:     sc.Name,
		Kind:     model.KindTiming,
		Width:    sc.Width,
		Height:   sc.Height,
		Duration: r.InitWindow.Seconds(),
		HD:       sc.HD,
	}

	artifact, err := r.artifact(sc)
	if err != nil {
		res.Error = "could not create test input"
		r.finish(res)
		return res
	}
	defer os.Remove(artifact)

	start := time.Now()
	cmd, stdout, stderr := r.command(artifact)
	if err := cmd.Start(); err != nil {
		res.Error = fmt.Sprintf("failed to spawn %s: %v", r.App, err)
		r.finish(res)
		return res
	}
	waitCh := reap(cmd)

	select {
	case <-time.After(r.InitWindow):
		r.teardown(cmd, waitCh)
	case <-waitCh:
		res.Error = "process exited before observation window elapsed"
		res.Stdout = stdout.String()
		res.Stderr = stderr.String()
		r.finish(res)
		return res
	}

	elapsed := time.Since(start).Seconds()
	res.Stats = &model.SummaryStats{Count: 1, Min: elapsed, Max: elapsed, Avg: elapsed}
	res.Success = true
	r.finish(res)
	return res
}

func (r *Runner) artifact(sc configs.Scenario) (string, error) {
	f, err := os.CreateTemp("", "blurbench-*.png")
	if err != nil {
		return "", err
	}
	path := f.Name()
	f.Close()

	if err := r.Gen.Generate(sc.Width, sc.Height, path); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (r *Runner) command(artifact string) (*exec.Cmd, *bytes.Buffer, *bytes.Buffer) {
	cmd := exec.Command(r.App, artifact)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	return cmd, &stdout, &stderr
}

func reap(cmd *exec.Cmd) chan error {
	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()
	return waitCh
}

// teardown requests graceful termination, escalates to a forced kill
// after the grace period, and always reaps so no zombie persists.
func (r *Runner) teardown(cmd *exec.Cmd, waitCh <-chan error) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(unix.SIGTERM)

	select {
	case <-waitCh:
		return
	case <-time.After(r.Grace):
	}

	r.Log.Warn("target ignored SIGTERM, killing", "pid", cmd.Process.Pid)
	if r.Cgroup != nil {
		_ = r.Cgroup.Kill()
	}
	_ = cmd.Process.Signal(unix.SIGKILL)
	<-waitCh
}

func (r *Runner) finish(res model.ScenarioResult) {
	if r.Obs != nil {
		r.Obs.ScenarioDone(res.Name, res.Kind, res.Success, res.Duration)
	}
	if res.Success {
		r.Log.Info("scenario finished", "scenario", res.Name, "kind", res.Kind)
	} else {
		r.Log.Error("scenario failed", "scenario", res.Name, "kind", res.Kind,
			"error", res.Error, "stderr", strings.TrimSpace(res.Stderr))
	}
}
