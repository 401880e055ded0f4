// Package sampler collects (timestamp, resident MB) pairs for a
// running process in a background goroutine until stopped.
package sampler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"codeberg.org/hfmrz/blurbench/memquery"
	"codeberg.org/hfmrz/blurbench/model"
)

var ErrInvalidTarget = errors.New("invalid sampling target")

// joinTimeout bounds how long Stop waits for the in-flight poll. An
// overrunning poll is abandoned; the target is about to be torn down
// anyway.
const joinTimeout = time.Second

// Observer receives per-poll notifications. Implemented by the
// metrics package; nil disables it.
type Observer interface {
	PollOK(memoryMB float64)
	PollFailed()
}

// Sampler owns its SampleSeries exclusively: the polling goroutine is
// the only writer, and readers must wait for Stop to return. Cadence
// is best-effort; a poll takes time, so actual intervals may exceed
// the configured one.
type Sampler struct {
	backend  memquery.Backend
	interval time.Duration
	obs      Observer

	mu     sync.Mutex
	series model.SampleSeries

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

func New(backend memquery.Backend, interval time.Duration, obs Observer) *Sampler {
	return &Sampler{
		backend:  backend,
		interval: interval,
		obs:      obs,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins polling pid. It fails only when pid is not a process
// this sampler can query; once the loop is running, individual poll
// failures are skipped, including the target disappearing mid-poll.
func (s *Sampler) Start(pid int) error {
	if s.started {
		return fmt.Errorf("sampler already started")
	}
	if !memquery.Alive(pid) {
		return fmt.Errorf("%w: pid %d", ErrInvalidTarget, pid)
	}
	s.started = true
	go s.loop(pid)
	return nil
}

// Stop signals the loop and waits for it with a bounded join.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	if !s.started {
		return
	}
	select {
	case <-s.done:
	case <-time.After(joinTimeout):
	}
}

// Series returns a copy of the collected samples. Call after Stop.
func (s *Sampler) Series() model.SampleSeries {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(model.SampleSeries, len(s.series))
	copy(out, s.series)
	return out
}

func (s *Sampler) loop(pid int) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.poll(pid)
		}
	}
}

func (s *Sampler) poll(pid int) {
	mb, err := s.backend.ResidentMB(pid)
	if err != nil {
		// unavailable reads are skipped, not recorded as zero
		if s.obs != nil {
			s.obs.PollFailed()
		}
		return
	}
	if s.obs != nil {
		s.obs.PollOK(mb)
	}

	s.mu.Lock()
	s.series = append(s.series, model.Sample{
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		MemoryMB:  mb,
	})
	s.mu.Unlock()
}
