package dds_test

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ddsplus/ddsplus/dds"
)

type fakeDevice struct {
	fail       bool
	dispatched atomic.Int32
	closed     atomic.Int32
}

func (d *fakeDevice) Name() string { return "fake" }

func (d *fakeDevice) Dispatch(ctx context.Context, n int, fn func(i int) error) error {
	d.dispatched.Add(1)
	if d.fail {
		return errors.New("fake: queue reset")
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}

func (d *fakeDevice) Close() error {
	d.closed.Add(1)
	return nil
}

func provide(d *fakeDevice) dds.DeviceProvider {
	return func() (dds.ComputeDevice, error) { return d, nil }
}

func saveBC7(t *testing.T, opts dds.SaveOptions) ([]byte, error) {
	t.Helper()
	opts.Format = dds.FileFormatBC7
	return dds.Save(newRGBA8(t, 32, 32, gradient), opts)
}

func softwareBC7(t *testing.T) []byte {
	t.Helper()
	opts := dds.DefaultSaveOptions()
	opts.Compression.HardwareAcceleration = false
	out, err := saveBC7(t, opts)
	if err != nil {
		t.Fatalf("Save(software): %v", err)
	}
	return out
}

func TestSave_HardwareMatchesSoftware(t *testing.T) {
	dev := &fakeDevice{}
	opts := dds.DefaultSaveOptions()
	opts.DeviceProvider = provide(dev)
	got, err := saveBC7(t, opts)
	if err != nil {
		t.Fatalf("Save(hardware): %v", err)
	}
	if dev.dispatched.Load() == 0 {
		t.Fatalf("device was not used")
	}
	if n := dev.closed.Load(); n != 1 {
		t.Fatalf("Close calls: got %d want 1", n)
	}
	if !bytes.Equal(got, softwareBC7(t)) {
		t.Fatalf("hardware output differs from software output")
	}
}

func TestSave_ProviderFailureFallsBack(t *testing.T) {
	called := 0
	opts := dds.DefaultSaveOptions()
	opts.DeviceProvider = func() (dds.ComputeDevice, error) {
		called++
		return nil, errors.New("no device")
	}
	got, err := saveBC7(t, opts)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if called != 1 {
		t.Fatalf("provider calls: got %d want 1", called)
	}
	if !bytes.Equal(got, softwareBC7(t)) {
		t.Fatalf("fallback output differs from software output")
	}
}

func TestSave_DeviceLost(t *testing.T) {
	dev := &fakeDevice{fail: true}
	opts := dds.DefaultSaveOptions()
	opts.DeviceProvider = provide(dev)
	out, err := saveBC7(t, opts)
	wantCode(t, "Save", err, dds.ErrDeviceLost)
	if out != nil {
		t.Fatalf("Save: got %d bytes want none", len(out))
	}
	if n := dev.closed.Load(); n != 1 {
		t.Fatalf("Close calls: got %d want 1", n)
	}
}

func TestSave_DeviceClosedOnCancel(t *testing.T) {
	dev := &fakeDevice{}
	opts := dds.DefaultSaveOptions()
	opts.DeviceProvider = provide(dev)
	opts.Progress = func(percent float64) bool { return percent < 50 }
	_, err := saveBC7(t, opts)
	wantCode(t, "Save", err, dds.ErrCancelled)
	if n := dev.closed.Load(); n != 1 {
		t.Fatalf("Close calls: got %d want 1", n)
	}
}

func TestSave_DeviceOnlyForComputeTargets(t *testing.T) {
	called := 0
	provider := func() (dds.ComputeDevice, error) {
		called++
		return &fakeDevice{}, nil
	}

	opts := dds.DefaultSaveOptions()
	opts.Format = dds.FileFormatBC1
	opts.DeviceProvider = provider
	if _, err := dds.Save(newRGBA8(t, 8, 8, gradient), opts); err != nil {
		t.Fatalf("Save(BC1): %v", err)
	}

	opts.Format = dds.FileFormatBC7
	opts.Compression.HardwareAcceleration = false
	if _, err := dds.Save(newRGBA8(t, 8, 8, gradient), opts); err != nil {
		t.Fatalf("Save(BC7, no acceleration): %v", err)
	}
	if called != 0 {
		t.Fatalf("provider calls: got %d want 0", called)
	}
}

func TestCompress_HardwareBackendDirect(t *testing.T) {
	dev := &fakeDevice{}
	opts := dds.CompressOptions{CompressionOptions: dds.DefaultCompressionOptions(), Device: dev}
	img := newRGBA8(t, 16, 16, gradient)
	hw, err := dds.Compress(context.Background(), img, dds.FormatBC6HUF16, opts)
	if err != nil {
		t.Fatalf("Compress(hardware): %v", err)
	}
	if dev.closed.Load() != 0 {
		t.Fatalf("Compress closed a caller-owned device")
	}
	sw, err := dds.Compress(context.Background(), img, dds.FormatBC6HUF16, softwareOptions())
	if err != nil {
		t.Fatalf("Compress(software): %v", err)
	}
	if !bytes.Equal(hw.Slices[0].Pixels, sw.Slices[0].Pixels) {
		t.Fatalf("hardware BC6H differs from software")
	}
}
