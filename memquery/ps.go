package memquery

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// PS shells out to ps(1) for the RSS column. Slower than procfs but
// works where /proc is absent, notably macOS.
type PS struct{}

func NewPS() (*PS, error) {
	if _, err := exec.LookPath("ps"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &PS{}, nil
}

func (*PS) Name() string { return "ps" }

func (*PS) ResidentMB(pid int) (float64, error) {
	out, err := exec.Command("ps", "-p", strconv.Itoa(pid), "-o", "rss=").Output()
	if err != nil {
		return 0, fmt.Errorf("%w: ps -p %d: %v", ErrUnavailable, pid, err)
	}
	kb, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: ps output for %d: %v", ErrUnavailable, pid, err)
	}
	return float64(kb) / 1024, nil
}
