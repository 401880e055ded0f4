package memquery

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlive(t *testing.T) {
	assert.True(t, Alive(os.Getpid()))
	assert.False(t, Alive(0))
	assert.False(t, Alive(-1))
	assert.False(t, Alive(math.MaxInt32))
}

func TestProcfsReadsOwnProcess(t *testing.T) {
	b, err := NewProcfs()
	if err != nil {
		t.Skipf("procfs unavailable: %v", err)
	}

	mb, err := b.ResidentMB(os.Getpid())
	require.NoError(t, err)
	assert.Positive(t, mb)
	assert.Less(t, mb, 16*1024.0, "implausible resident size")
}

func TestProcfsUnknownPid(t *testing.T) {
	b, err := NewProcfs()
	if err != nil {
		t.Skipf("procfs unavailable: %v", err)
	}

	_, err = b.ResidentMB(math.MaxInt32)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPSReadsOwnProcess(t *testing.T) {
	b, err := NewPS()
	if err != nil {
		t.Skipf("ps unavailable: %v", err)
	}

	mb, err := b.ResidentMB(os.Getpid())
	require.NoError(t, err)
	assert.Positive(t, mb)
}

func TestPSUnknownPid(t *testing.T) {
	b, err := NewPS()
	if err != nil {
		t.Skipf("ps unavailable: %v", err)
	}

	_, err = b.ResidentMB(math.MaxInt32)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSelect(t *testing.T) {
	b, err := Select("ps", "")
	if err == nil {
		assert.Equal(t, "ps", b.Name())
	}

	_, err = Select("cgroup", "")
	assert.Error(t, err, "cgroup backend needs a group name")

	_, err = Select("rusage", "")
	assert.Error(t, err, "unknown backends are rejected")
}

func TestDetectPrefersProcfs(t *testing.T) {
	b, err := Detect()
	if err != nil {
		t.Skipf("no backend available: %v", err)
	}
	if _, statErr := os.Stat("/proc/self/status"); statErr == nil {
		assert.Equal(t, "procfs", b.Name())
	}
}
