package compute

import "fmt"

// Capabilities summarises the host features the device depends on.
type Capabilities struct {
	Arch   string
	CPUs   int
	Vector string // "avx2", "asimd" or "" when absent
	FMA    bool
}

// Capable reports whether a Device can be started on the host.
func (c Capabilities) Capable() bool {
	return c.Vector != "" && c.CPUs >= 2
}

func (c Capabilities) String() string {
	v := c.Vector
	if v == "" {
		v = "none"
	}
	return fmt.Sprintf("arch=%s cpus=%d vector=%s fma=%v", c.Arch, c.CPUs, v, c.FMA)
}
