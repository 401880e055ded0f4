// Package memquery reads resident memory for a process through one of
// several swappable backends, selected once at startup.
package memquery

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrUnavailable means the backend could not produce a reading. A
// single unavailable read is not fatal; samplers skip it and poll
// again.
var ErrUnavailable = errors.New("memory query unavailable")

// Backend reports resident memory in megabytes for a pid, or an error
// wrapping ErrUnavailable. Implementations never panic.
type Backend interface {
	Name() string
	ResidentMB(pid int) (float64, error)
}

// Alive reports whether pid refers to a live process we may signal.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// Detect probes backends in preference order: procfs, then ps(1).
// The cgroup backend is opt-in via Select since it needs a group name.
func Detect() (Backend, error) {
	if b, err := NewProcfs(); err == nil {
		return b, nil
	}
	if b, err := NewPS(); err == nil {
		return b, nil
	}
	return nil, fmt.Errorf("%w: no working backend", ErrUnavailable)
}

// Select resolves a configured backend name, or auto-detects when
// name is empty.
func Select(name, cgroupName string) (Backend, error) {
	switch name {
	case "":
		return Detect()
	case "procfs":
		return NewProcfs()
	case "ps":
		return NewPS()
	case "cgroup":
		if cgroupName == "" {
			return nil, fmt.Errorf("cgroup backend requires a group name")
		}
		return NewGroup(cgroupName)
	default:
		return nil, fmt.Errorf("unknown memory backend %q", name)
	}
}
