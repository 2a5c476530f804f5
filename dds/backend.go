package dds

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ddsplus/ddsplus/dds/compute"
)

// ComputeDevice runs batches of independent work items. *compute.Device
// implements it; tests substitute fakes.
type ComputeDevice interface {
	Name() string
	Dispatch(ctx context.Context, n int, fn func(i int) error) error
	Close() error
}

// DeviceProvider creates a ComputeDevice for one Save call. The caller owns
// the device and closes it.
type DeviceProvider func() (ComputeDevice, error)

// DefaultDeviceProvider probes the host for a compute device.
func DefaultDeviceProvider() (ComputeDevice, error) {
	d, err := compute.Probe()
	if err != nil {
		return nil, err
	}
	return d, nil
}

// CompressionBackend encodes every block row of a job.
type CompressionBackend interface {
	Name() string
	Encode(ctx context.Context, job *encodeJob) error
}

// SoftwareBackend encodes on goroutines. Workers <= 0 uses the logical CPU count.
type SoftwareBackend struct {
	Workers int
}

func (b *SoftwareBackend) Name() string { return "software" }

func (b *SoftwareBackend) Encode(ctx context.Context, job *encodeJob) error {
	procs := b.Workers
	if procs <= 0 {
		procs = runtime.NumCPU()
	}
	procs = min(procs, len(job.rows))

	if procs <= 1 {
		for _, r := range job.rows {
			if err := ctx.Err(); err != nil {
				return wrapError(ErrCancelled, "dds: compression cancelled", err)
			}
			job.encodeRow(r)
			if !job.progress.add(1) {
				return job.progress.err()
			}
		}
		return nil
	}

	var next atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < procs; w++ {
		g.Go(func() error {
			for {
				if job.progress.stopped() {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				idx := int(next.Add(1) - 1)
				if idx >= len(job.rows) {
					return nil
				}
				job.encodeRow(job.rows[idx])
				job.progress.add(1)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return wrapError(ErrCancelled, "dds: compression cancelled", err)
	}
	return job.progress.err()
}

// hardwareBatchRows is the number of block rows handed to the device per item.
const hardwareBatchRows = 4

// HardwareBackend hands batches of block rows to a ComputeDevice. A device
// failure aborts the job with ErrDeviceLost.
type HardwareBackend struct {
	Device ComputeDevice
}

func (b *HardwareBackend) Name() string { return "hardware:" + b.Device.Name() }

func (b *HardwareBackend) Encode(ctx context.Context, job *encodeJob) error {
	batches := (len(job.rows) + hardwareBatchRows - 1) / hardwareBatchRows
	err := b.Device.Dispatch(ctx, batches, func(i int) error {
		if job.progress.stopped() {
			return nil
		}
		lo := i * hardwareBatchRows
		hi := min(lo+hardwareBatchRows, len(job.rows))
		for _, r := range job.rows[lo:hi] {
			job.encodeRow(r)
		}
		job.progress.add(hi - lo)
		return nil
	})
	switch {
	case err == nil:
		return job.progress.err()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrapError(ErrCancelled, "dds: compression cancelled", err)
	default:
		return wrapError(ErrDeviceLost, "dds: compute device "+b.Device.Name(), err)
	}
}

// selectBackend prefers the device for BC6H and BC7 when acceleration is
// permitted and a device was acquired.
func selectBackend(target Format, opts *CompressOptions) CompressionBackend {
	if target.IsComputeCapable() && opts.HardwareAcceleration && opts.Device != nil {
		return &HardwareBackend{Device: opts.Device}
	}
	return &SoftwareBackend{Workers: opts.Workers}
}
