package dds

import (
	"sync"
	"sync/atomic"
)

// ProgressFunc receives the completed fraction of a compression job, in
// [0, 1] and never decreasing. Returning false cancels the job.
type ProgressFunc func(fraction float64) bool

// progressTracker counts finished work units across workers and reports
// them to a ProgressFunc one call at a time.
type progressTracker struct {
	cb        ProgressFunc
	total     uint64
	done      atomic.Uint64
	cancelled atomic.Bool

	mu   sync.Mutex
	last float64
}

func newProgressTracker(cb ProgressFunc, total int) *progressTracker {
	return &progressTracker{cb: cb, total: uint64(max(total, 1))}
}

// start reports 0. It returns false when the callback asked to stop.
func (p *progressTracker) start() bool {
	return p.report(0)
}

// add records n finished units and reports the new fraction.
func (p *progressTracker) add(n int) bool {
	done := p.done.Add(uint64(n))
	return p.report(float64(min(done, p.total)) / float64(p.total))
}

// finish reports 1.
func (p *progressTracker) finish() bool {
	return p.report(1)
}

func (p *progressTracker) stopped() bool {
	return p.cancelled.Load()
}

func (p *progressTracker) report(fraction float64) bool {
	if p.cancelled.Load() {
		return false
	}
	if p.cb == nil {
		return true
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Another worker may have reported a later value while we waited.
	if fraction < p.last {
		fraction = p.last
	}
	p.last = fraction
	if !p.cb(fraction) {
		p.cancelled.Store(true)
		return false
	}
	return true
}

func (p *progressTracker) err() error {
	if p.cancelled.Load() {
		return newError(ErrCancelled, "dds: compression cancelled")
	}
	return nil
}
