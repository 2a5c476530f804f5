package dds

import (
	"math"
	"testing"
)

func TestResampleTaps_Normalised(t *testing.T) {
	for _, f := range []Filter{FilterBox, FilterNearest, FilterLinear, FilterCubic, FilterWide} {
		for _, sz := range [][2]int{{16, 8}, {7, 3}, {2, 1}, {5, 5}} {
			taps := resampleTaps(f, sz[0], sz[1])
			if len(taps) != sz[1] {
				t.Fatalf("%v %v: got %d outputs want %d", f, sz, len(taps), sz[1])
			}
			for i, row := range taps {
				var sum float64
				for _, tp := range row {
					if tp.src < 0 || tp.src >= sz[0] {
						t.Fatalf("%v %v out %d: tap source %d out of range", f, sz, i, tp.src)
					}
					sum += float64(tp.w)
				}
				if math.Abs(sum-1) > 1e-5 {
					t.Fatalf("%v %v out %d: weights sum to %v want 1", f, sz, i, sum)
				}
			}
		}
	}
}

func TestResample_HalvesBox(t *testing.T) {
	src := []float32{
		0, 0, 0, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 0, 0, 0, 1,
	}
	got := resample(src, 2, 2, 1, 1, FilterBox)
	for c, v := range got {
		want := float32(0.5)
		if c == 3 {
			want = 1
		}
		if math.Abs(float64(v-want)) > 1e-6 {
			t.Fatalf("channel %d: got %v want %v", c, v, want)
		}
	}
}
