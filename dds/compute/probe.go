//go:build !ddsplus_nocompute

package compute

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"
)

// Enabled reports whether the device is compiled into this build.
func Enabled() bool { return true }

// Probe checks the host and starts a Device.
func Probe(opts ...Option) (*Device, error) {
	caps := Detect()
	if !caps.Capable() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, caps)
	}
	c := resolve(opts)
	return newDevice(fmt.Sprintf("cpu-%s-x%d", caps.Vector, c.workers), c.workers), nil
}

// Detect reports the host capabilities relevant to the device.
func Detect() Capabilities {
	caps := Capabilities{Arch: runtime.GOARCH, CPUs: runtime.NumCPU()}
	switch runtime.GOARCH {
	case "amd64":
		if cpu.X86.HasAVX2 {
			caps.Vector = "avx2"
		}
		caps.FMA = cpu.X86.HasFMA
	case "arm64":
		if cpu.ARM64.HasASIMD {
			caps.Vector = "asimd"
		}
		caps.FMA = cpu.ARM64.HasASIMD
	}
	return caps
}
