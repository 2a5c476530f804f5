// Package compute provides the data-parallel device used to accelerate BC6H
// and BC7 encoding.
//
// A Device is a persistent pool of worker goroutines sized to the host CPU. It
// is only offered on hosts with wide vector units (AVX2 on amd64, ASIMD on
// arm64) and more than one logical CPU. Callers own the device they probe
// and must Close it.
//
// The device can be compiled out with:
//
//	-tags ddsplus_nocompute
//
// in which case Probe always fails and callers fall back to software.
package compute
