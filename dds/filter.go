package dds

import (
	"math"

	"golang.org/x/image/draw"
)

// lanczos3 is a three lobe windowed sinc.
var lanczos3 = &draw.Kernel{Support: 3, At: func(t float64) float64 {
	if t == 0 {
		return 1
	}
	x := math.Pi * t
	return 3 * math.Sin(x) * math.Sin(x/3) / (x * x)
}}

func filterKernel(f Filter) *draw.Kernel {
	switch f {
	case FilterLinear:
		return draw.BiLinear
	case FilterCubic:
		return draw.CatmullRom
	case FilterWide:
		return lanczos3
	}
	return nil
}

type tap struct {
	src int
	w   float32
}

// resampleTaps computes, for every destination index, the normalised source
// taps when scaling n samples to m along one axis.
func resampleTaps(f Filter, n, m int) [][]tap {
	scale := float64(n) / float64(m)
	out := make([][]tap, m)
	k := filterKernel(f)
	for i := range out {
		switch {
		case f == FilterNearest:
			out[i] = []tap{{src: min(int((float64(i)+0.5)*scale), n-1), w: 1}}
		case k == nil:
			out[i] = boxTaps(float64(i)*scale, float64(i+1)*scale, n)
		default:
			out[i] = kernelTaps(k, (float64(i)+0.5)*scale, max(scale, 1), n)
		}
	}
	return out
}

// boxTaps weights every source sample by its overlap with [lo, hi).
func boxTaps(lo, hi float64, n int) []tap {
	var taps []tap
	var sum float64
	for j := int(lo); j < n && float64(j) < hi; j++ {
		w := math.Min(hi, float64(j+1)) - math.Max(lo, float64(j))
		if w <= 0 {
			continue
		}
		taps = append(taps, tap{src: j, w: float32(w)})
		sum += w
	}
	for i := range taps {
		taps[i].w /= float32(sum)
	}
	return taps
}

// kernelTaps samples k around center, widened by scale, clamping at the edges.
func kernelTaps(k *draw.Kernel, center, scale float64, n int) []tap {
	support := k.Support * scale
	lo := int(math.Floor(center - support))
	hi := int(math.Ceil(center + support))
	var taps []tap
	var sum float64
	for j := lo; j <= hi; j++ {
		t := math.Abs(float64(j)+0.5-center) / scale
		if t >= k.Support {
			continue
		}
		w := k.At(t)
		if w == 0 {
			continue
		}
		src := min(max(j, 0), n-1)
		if len(taps) > 0 && taps[len(taps)-1].src == src {
			taps[len(taps)-1].w += float32(w)
		} else {
			taps = append(taps, tap{src: src, w: float32(w)})
		}
		sum += w
	}
	if sum == 0 {
		return []tap{{src: min(max(int(center), 0), n-1), w: 1}}
	}
	for i := range taps {
		taps[i].w /= float32(sum)
	}
	return taps
}

// resample scales a tight RGBA float buffer from w x h to dw x dh,
// horizontally first.
func resample(src []float32, w, h, dw, dh int, f Filter) []float32 {
	xt := resampleTaps(f, w, dw)
	yt := resampleTaps(f, h, dh)

	tmp := make([]float32, dw*h*4)
	for y := 0; y < h; y++ {
		row := src[y*w*4:]
		out := tmp[y*dw*4:]
		for x, taps := range xt {
			var acc [4]float32
			for _, t := range taps {
				p := row[t.src*4:]
				acc[0] += p[0] * t.w
				acc[1] += p[1] * t.w
				acc[2] += p[2] * t.w
				acc[3] += p[3] * t.w
			}
			copy(out[x*4:], acc[:])
		}
	}

	dst := make([]float32, dw*dh*4)
	for y, taps := range yt {
		out := dst[y*dw*4:]
		for _, t := range taps {
			row := tmp[t.src*dw*4:]
			for i := 0; i < dw*4; i++ {
				out[i] += row[i] * t.w
			}
		}
	}
	return dst
}
