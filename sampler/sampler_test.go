package sampler

import (
	"errors"
	"math"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mb  float64
	err error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) ResidentMB(pid int) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.mb, nil
}

type countingObserver struct {
	ok     atomic.Int64
	failed atomic.Int64
}

func (c *countingObserver) PollOK(float64) { c.ok.Add(1) }
func (c *countingObserver) PollFailed()    { c.failed.Add(1) }

func TestSamplerCollectsSeries(t *testing.T) {
	obs := &countingObserver{}
	s := New(&fakeBackend{mb: 42.0}, 5*time.Millisecond, obs)

	require.NoError(t, s.Start(os.Getpid()))
	time.Sleep(60 * time.Millisecond)
	s.Stop()

	series := s.Series()
	require.NotEmpty(t, series)
	for _, sm := range series {
		assert.InDelta(t, 42.0, sm.MemoryMB, 1e-9)
		assert.Positive(t, sm.Timestamp)
	}
	for i := 1; i < len(series); i++ {
		assert.GreaterOrEqual(t, series[i].Timestamp, series[i-1].Timestamp)
	}
	assert.EqualValues(t, len(series), obs.ok.Load())
}

func TestSamplerRejectsDeadTarget(t *testing.T) {
	s := New(&fakeBackend{mb: 1.0}, time.Millisecond, nil)
	err := s.Start(math.MaxInt32)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestSamplerRejectsSecondStart(t *testing.T) {
	s := New(&fakeBackend{mb: 1.0}, time.Millisecond, nil)
	require.NoError(t, s.Start(os.Getpid()))
	defer s.Stop()

	assert.Error(t, s.Start(os.Getpid()))
}

func TestSamplerSkipsFailedPolls(t *testing.T) {
	obs := &countingObserver{}
	s := New(&fakeBackend{err: errors.New("gone")}, 5*time.Millisecond, obs)

	require.NoError(t, s.Start(os.Getpid()))
	time.Sleep(40 * time.Millisecond)
	s.Stop()

	assert.Empty(t, s.Series())
	assert.Positive(t, obs.failed.Load())
	assert.Zero(t, obs.ok.Load())
}

func TestSamplerStopIsIdempotent(t *testing.T) {
	s := New(&fakeBackend{mb: 1.0}, time.Millisecond, nil)
	require.NoError(t, s.Start(os.Getpid()))

	s.Stop()
	s.Stop() // must not panic or block
}

func TestSamplerStopBeforeStart(t *testing.T) {
	s := New(&fakeBackend{mb: 1.0}, time.Millisecond, nil)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * joinTimeout):
		t.Fatal("Stop blocked without a running loop")
	}
}
