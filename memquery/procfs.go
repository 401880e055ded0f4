package memquery

import (
	"fmt"

	"github.com/prometheus/procfs"
)

const bytesPerMB = 1024 * 1024

// Procfs reads VmRSS from /proc/<pid>/status.
type Procfs struct {
	fs procfs.FS
}

func NewProcfs() (*Procfs, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Procfs{fs: fs}, nil
}

func (b *Procfs) Name() string { return "procfs" }

func (b *Procfs) ResidentMB(pid int) (float64, error) {
	proc, err := b.fs.Proc(pid)
	if err != nil {
		return 0, fmt.Errorf("%w: proc %d: %v", ErrUnavailable, pid, err)
	}
	status, err := proc.NewStatus()
	if err != nil {
		return 0, fmt.Errorf("%w: status %d: %v", ErrUnavailable, pid, err)
	}
	return float64(status.VmRSS) / bytesPerMB, nil
}
