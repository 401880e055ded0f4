package configs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/elastic/go-ucfg"
	ucfgjson "github.com/elastic/go-ucfg/json"
	ucfgyaml "github.com/elastic/go-ucfg/yaml"
)

// Scenario is one named test case: an input size plus an observation
// window. HD marks the scenario that HD-scoped requirements apply to.
type Scenario struct {
	Name     string  `config:"name" json:"name" yaml:"name"`
	Width    int     `config:"width" json:"width" yaml:"width"`
	Height   int     `config:"height" json:"height" yaml:"height"`
	Duration float64 `config:"duration" json:"duration" yaml:"duration"` // s
	HD       bool    `config:"hd" json:"hd" yaml:"hd"`
}

func (s Scenario) Pixels() int {
	return s.Width * s.Height
}

// Thresholds are the constitutional requirements, kept in one place
// rather than inlined at call sites.
type Thresholds struct {
	StartupSeconds   float64 `config:"startup_seconds" json:"startup_seconds" yaml:"startup_seconds"`
	HDProcessSeconds float64 `config:"hd_process_seconds" json:"hd_process_seconds" yaml:"hd_process_seconds"`
	HDPeakMemoryMB   float64 `config:"hd_peak_memory_mb" json:"hd_peak_memory_mb" yaml:"hd_peak_memory_mb"`
	LeakLowMBPerSec  float64 `config:"leak_low_mb_per_sec" json:"leak_low_mb_per_sec" yaml:"leak_low_mb_per_sec"`
	LeakHighMBPerSec float64 `config:"leak_high_mb_per_sec" json:"leak_high_mb_per_sec" yaml:"leak_high_mb_per_sec"`
	EfficiencyFactor float64 `config:"efficiency_factor" json:"efficiency_factor" yaml:"efficiency_factor"`
	ScalingFactor    float64 `config:"scaling_factor" json:"scaling_factor" yaml:"scaling_factor"`
}

type Config struct {
	App          string     `config:"app" json:"app" yaml:"app"`
	Backend      string     `config:"backend" json:"backend" yaml:"backend"` // procfs, ps, cgroup or empty for auto
	CgroupName   string     `config:"cgroup_name" json:"cgroup_name" yaml:"cgroup_name"`
	CgroupMaxMem string     `config:"cgroup_max_memory" json:"cgroup_max_memory" yaml:"cgroup_max_memory"` // e.g. "256M"
	PollInterval float64    `config:"poll_interval" json:"poll_interval" yaml:"poll_interval"` // s
	Iterations   int        `config:"iterations" json:"iterations" yaml:"iterations"`
	InitWindow   float64    `config:"init_window" json:"init_window" yaml:"init_window"` // s
	GracePeriod  float64    `config:"grace_period" json:"grace_period" yaml:"grace_period"` // s
	Timing       []Scenario `config:"timing" json:"timing" yaml:"timing"`
	Memory       []Scenario `config:"memory" json:"memory" yaml:"memory"`
	Thresholds   Thresholds `config:"thresholds" json:"thresholds" yaml:"thresholds"`
}

// Default mirrors the scenario table and constants the harness has
// always shipped with.
func Default() Config {
	return Config{
		PollInterval: 0.05,
		Iterations:   3,
		InitWindow:   0.5,
		GracePeriod:  2.0,
		Timing: []Scenario{
			{Name: "small_image", Width: 640, Height: 480},
			{Name: "hd_image", Width: 1920, Height: 1080, HD: true},
			{Name: "4k_image", Width: 3840, Height: 2160},
		},
		Memory: []Scenario{
			{Name: "small_image_baseline", Width: 640, Height: 480, Duration: 3.0},
			{Name: "hd_image_processing", Width: 1920, Height: 1080, Duration: 5.0, HD: true},
			{Name: "4k_image_stress", Width: 3840, Height: 2160, Duration: 8.0},
		},
		Thresholds: Thresholds{
			StartupSeconds:   5.0,
			HDProcessSeconds: 0.5,
			HDPeakMemoryMB:   100.0,
			LeakLowMBPerSec:  1.0,
			LeakHighMBPerSec: 5.0,
			EfficiencyFactor: 10.0,
			ScalingFactor:    1.5,
		},
	}
}

// Load merges a yaml or json config file over the defaults.
func Load(path string) (Config, error) {
	config := Default()

	var raw *ucfg.Config
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		raw, err = ucfgjson.NewConfigWithFile(path, ucfg.PathSep("."))
	default:
		raw, err = ucfgyaml.NewConfigWithFile(path, ucfg.PathSep("."))
	}
	if err != nil {
		return config, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := raw.Unpack(&config, ucfg.PathSep(".")); err != nil {
		return config, fmt.Errorf("unpack config %s: %w", path, err)
	}

	return config, config.Validate()
}

func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %g", c.PollInterval)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", c.Iterations)
	}
	if c.GracePeriod <= 0 {
		return fmt.Errorf("grace_period must be positive, got %g", c.GracePeriod)
	}
	for _, sc := range append(append([]Scenario{}, c.Timing...), c.Memory...) {
		if sc.Name == "" {
			return fmt.Errorf("scenario without a name")
		}
		if sc.Width <= 0 || sc.Height <= 0 {
			return fmt.Errorf("scenario %s: invalid size %dx%d", sc.Name, sc.Width, sc.Height)
		}
	}
	for _, sc := range c.Memory {
		if sc.Duration <= 0 {
			return fmt.Errorf("memory scenario %s: duration must be positive", sc.Name)
		}
	}
	return nil
}
