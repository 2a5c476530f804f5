//go:build ddsplus_nocompute

package compute

import (
	"errors"
	"runtime"
)

var errDisabled = errors.New("compute: disabled (built with -tags ddsplus_nocompute)")

// Enabled reports whether the device is compiled into this build.
func Enabled() bool { return false }

func Probe(opts ...Option) (*Device, error) {
	return nil, errDisabled
}

func Detect() Capabilities {
	return Capabilities{Arch: runtime.GOARCH, CPUs: runtime.NumCPU()}
}
