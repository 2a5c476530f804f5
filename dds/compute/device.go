package compute

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

var (
	// ErrDeviceLost is returned by Dispatch after a work item failed or
	// panicked. A lost device stays lost until it is closed.
	ErrDeviceLost = errors.New("compute: device lost")

	// ErrUnsupported is returned by Probe when the host lacks the required
	// capabilities.
	ErrUnsupported = errors.New("compute: no capable device")

	// ErrClosed is returned by Dispatch on a closed device.
	ErrClosed = errors.New("compute: device closed")
)

// Option configures Probe.
type Option func(*config)

type config struct {
	workers int
}

// WithWorkers sets the number of device workers. n <= 0 uses the logical CPU count.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// Device runs batches of independent work items on a fixed set of workers.
type Device struct {
	name    string
	workers int
	workC   chan task

	lost      atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
}

type task struct {
	run  func()
	done *sync.WaitGroup
}

func newDevice(name string, workers int) *Device {
	d := &Device{
		name:    name,
		workers: workers,
		workC:   make(chan task, workers*2),
	}
	for range workers {
		go d.worker()
	}
	return d
}

func (d *Device) worker() {
	for t := range d.workC {
		t.run()
		t.done.Done()
	}
}

// Name describes the device, e.g. "cpu-avx2x8".
func (d *Device) Name() string { return d.name }

// Workers returns the number of device workers.
func (d *Device) Workers() int { return d.workers }

// Dispatch runs fn for every index in [0, n) and waits for all of them.
//
// The first error or panic marks the device lost; the remaining items are
// skipped and Dispatch returns an error wrapping ErrDeviceLost. A cancelled
// ctx stops handing out items and returns ctx.Err().
func (d *Device) Dispatch(ctx context.Context, n int, fn func(i int) error) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if d.lost.Load() {
		return ErrDeviceLost
	}
	if n <= 0 {
		return nil
	}

	var (
		next     atomic.Int64
		stop     atomic.Bool
		errOnce  sync.Once
		firstErr error
		wg       sync.WaitGroup
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			stop.Store(true)
		})
	}

	workers := min(d.workers, n)
	wg.Add(workers)
	for range workers {
		d.workC <- task{
			done: &wg,
			run: func() {
				defer func() {
					if r := recover(); r != nil {
						d.lost.Store(true)
						fail(fmt.Errorf("%w: panic: %v", ErrDeviceLost, r))
					}
				}()
				for !stop.Load() {
					if ctx.Err() != nil {
						fail(ctx.Err())
						return
					}
					i := int(next.Add(1) - 1)
					if i >= n {
						return
					}
					if err := fn(i); err != nil {
						d.lost.Store(true)
						fail(fmt.Errorf("%w: %w", ErrDeviceLost, err))
						return
					}
				}
			},
		}
	}
	wg.Wait()
	return firstErr
}

// Close releases the workers. It is safe to call more than once.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.workC)
	})
	return nil
}

func resolve(opts []Option) config {
	var c config
	for _, o := range opts {
		o(&c)
	}
	if c.workers <= 0 {
		c.workers = runtime.NumCPU()
	}
	return c
}
