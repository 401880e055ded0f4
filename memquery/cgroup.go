package memquery

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

var cgroupRoot = "/sys/fs/cgroup"

// Group is a cgroup v2 backend. The runner places the target into the
// group, and readings come from memory.current for the whole group
// rather than a single pid. Needs write access to the cgroup fs.
type Group struct {
	name     string
	fullPath string
}

// NewGroup creates the group, or loads it when it already exists.
func NewGroup(name string) (*Group, error) {
	dir := filepath.Join(cgroupRoot, name)
	if err := os.Mkdir(dir, 0o744); err != nil && !os.IsExist(err) {
		return nil, fmt.Errorf("%w: create cgroup: %v", ErrUnavailable, err)
	}
	return LoadGroup(name)
}

func LoadGroup(name string) (*Group, error) {
	dir := filepath.Join(cgroupRoot, name)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	controls, err := availableControls(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !slices.Contains(controls, "memory") {
		return nil, fmt.Errorf("%w: memory controller not available in %s", ErrUnavailable, dir)
	}

	return &Group{name: name, fullPath: dir}, nil
}

func (g *Group) Name() string { return "cgroup" }

// ResidentMB reports the group's memory.current. The pid argument is
// accepted for the Backend contract but the reading covers every
// process in the group.
func (g *Group) ResidentMB(pid int) (float64, error) {
	return g.readMB("memory.current")
}

// PeakMB reads memory.peak where the kernel provides it.
func (g *Group) PeakMB() (float64, error) {
	return g.readMB("memory.peak")
}

func (g *Group) AddPid(pid int) error {
	return g.write("cgroup.procs", strconv.Itoa(pid))
}

// SetMaximumMemory caps the group, e.g. "128M". No-op when empty.
func (g *Group) SetMaximumMemory(lim string) error {
	if lim == "" {
		return nil
	}
	if err := g.write("memory.max", lim); err != nil {
		return err
	}
	return g.write("memory.oom.group", "1")
}

// Kill forcibly terminates every process in the group.
func (g *Group) Kill() error {
	return g.write("cgroup.kill", "1")
}

func (g *Group) Delete() error {
	if err := os.RemoveAll(g.fullPath); err != nil {
		return fmt.Errorf("failed to delete cgroup %s: %v", g.name, err)
	}
	return nil
}

func (g *Group) readMB(name string) (float64, error) {
	raw, err := os.ReadFile(filepath.Join(g.fullPath, name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)
	}
	bytes, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)
	}
	return float64(bytes) / bytesPerMB, nil
}

func (g *Group) write(name, value string) error {
	path := filepath.Join(g.fullPath, name)
	// no-op when the control does not exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return os.WriteFile(path, []byte(value), 0o644)
}

func availableControls(dir string) ([]string, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "cgroup.controllers"))
	if err != nil {
		return nil, err
	}
	return strings.Fields(string(raw)), nil
}
