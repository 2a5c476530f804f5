package dds

import (
	"math"
	"strconv"
	"strings"

	"github.com/x448/float16"
)

// floatBlock is a 4x4 block of RGBA float texels in row-major order.
type floatBlock [16][4]float32

// halfBlock holds decoded BC6H texels as half-float bits.
type halfBlock [16][3]uint16

// bc6hMode describes one BC6H block mode. Endpoints are numbered w, x
// (region 0) and y, z (region 1); x, y and z hold deltas from w when the
// mode is transformed.
type bc6hMode struct {
	code        uint32
	regions     int
	precision   int
	delta       [3]int
	transformed bool
	fields      []bc6hField
}

// bc6hField reads n endpoint bits starting at bit first, stepping by step.
type bc6hField struct {
	ep, ch uint8
	first  int8
	n      uint8
	step   int8
}

// Layouts list the endpoint bits in stream order after the mode bits, in
// the usual notation: "gy4" is bit 4 of green endpoint y, "rw9:0" bits 9
// down to 0 of red endpoint w (read low bit first), and "rw10:15" six bits
// stored high bit first. Two region layouts are followed by the 5-bit shape.
var bc6hModes = []bc6hMode{
	bc6hTwo(0x00, 10, [3]int{5, 5, 5}, true,
		"gy4 by4 bz4 rw9:0 gw9:0 bw9:0 rx4:0 gz4 gy3:0 gx4:0 bz0 gz3:0 bx4:0 bz1 by3:0 ry4:0 bz2 rz4:0 bz3"),
	bc6hTwo(0x01, 7, [3]int{6, 6, 6}, true,
		"gy5 gz4 gz5 rw6:0 bz0 bz1 by4 gw6:0 by5 bz2 gy4 bw6:0 bz3 bz5 bz4 rx5:0 gy3:0 gx5:0 gz3:0 bx5:0 by3:0 ry5:0 rz5:0"),
	bc6hTwo(0x02, 11, [3]int{5, 4, 4}, true,
		"rw9:0 gw9:0 bw9:0 rx4:0 rw10 gy3:0 gx3:0 gw10 bz0 gz3:0 bx3:0 bw10 bz1 by3:0 ry4:0 bz2 rz4:0 bz3"),
	bc6hTwo(0x06, 11, [3]int{4, 5, 4}, true,
		"rw9:0 gw9:0 bw9:0 rx3:0 rw10 gz4 gy3:0 gx4:0 gw10 gz3:0 bx3:0 bw10 bz1 by3:0 ry3:0 bz0 bz2 rz3:0 gy4 bz3"),
	bc6hTwo(0x0A, 11, [3]int{4, 4, 5}, true,
		"rw9:0 gw9:0 bw9:0 rx3:0 rw10 by4 gy3:0 gx3:0 gw10 bz0 gz3:0 bx4:0 bw10 by3:0 ry3:0 bz1 bz2 rz3:0 bz4 bz3"),
	bc6hTwo(0x0E, 9, [3]int{5, 5, 5}, true,
		"rw8:0 by4 gw8:0 gy4 bw8:0 bz4 rx4:0 gz4 gy3:0 gx4:0 bz0 gz3:0 bx4:0 bz1 by3:0 ry4:0 bz2 rz4:0 bz3"),
	bc6hTwo(0x12, 8, [3]int{6, 5, 5}, true,
		"rw7:0 gz4 by4 gw7:0 bz2 gy4 bw7:0 bz3 bz4 rx5:0 gy3:0 gx4:0 bz0 gz3:0 bx4:0 bz1 by3:0 ry5:0 rz5:0"),
	bc6hTwo(0x16, 8, [3]int{5, 6, 5}, true,
		"rw7:0 bz0 by4 gw7:0 gy5 gy4 bw7:0 gz5 bz4 rx4:0 gz4 gy3:0 gx5:0 gz3:0 bx4:0 bz1 by3:0 ry4:0 bz2 rz4:0 bz3"),
	bc6hTwo(0x1A, 8, [3]int{5, 5, 6}, true,
		"rw7:0 bz1 by4 gw7:0 by5 gy4 bw7:0 bz5 bz4 rx4:0 gz4 gy3:0 gx4:0 bz0 gz3:0 bx5:0 by3:0 ry4:0 bz2 rz4:0 bz3"),
	bc6hTwo(0x1E, 6, [3]int{6, 6, 6}, false,
		"rw5:0 gz4 bz0 bz1 by4 gw5:0 gy5 by5 bz2 gy4 bw5:0 gz5 bz3 bz5 bz4 rx5:0 gy3:0 gx5:0 gz3:0 bx5:0 by3:0 ry5:0 rz5:0"),

	bc6hOne(0x03, 10, 10, false, "rw9:0 gw9:0 bw9:0 rx9:0 gx9:0 bx9:0"),
	bc6hOne(0x07, 11, 9, true, "rw9:0 gw9:0 bw9:0 rx8:0 rw10 gx8:0 gw10 bx8:0 bw10"),
	bc6hOne(0x0B, 12, 8, true, "rw9:0 gw9:0 bw9:0 rx7:0 rw10:11 gx7:0 gw10:11 bx7:0 bw10:11"),
	bc6hOne(0x0F, 16, 4, true, "rw9:0 gw9:0 bw9:0 rx3:0 rw10:15 gx3:0 gw10:15 bx3:0 bw10:15"),
}

func bc6hTwo(code uint32, prec int, delta [3]int, transformed bool, layout string) bc6hMode {
	return bc6hMode{code: code, regions: 2, precision: prec, delta: delta, transformed: transformed, fields: bc6hLayout(layout)}
}

func bc6hOne(code uint32, prec, delta int, transformed bool, layout string) bc6hMode {
	return bc6hMode{code: code, regions: 1, precision: prec, delta: [3]int{delta, delta, delta}, transformed: transformed, fields: bc6hLayout(layout)}
}

func bc6hLayout(layout string) []bc6hField {
	var out []bc6hField
	for _, tok := range strings.Fields(layout) {
		f := bc6hField{
			ch: uint8(strings.IndexByte("rgb", tok[0])),
			ep: uint8(strings.IndexByte("wxyz", tok[1])),
			n:  1,
		}
		hi, lo, ranged := strings.Cut(tok[2:], ":")
		a, errA := strconv.Atoi(hi)
		b := a
		var errB error
		if ranged {
			b, errB = strconv.Atoi(lo)
		}
		if f.ch > 2 || f.ep > 3 || errA != nil || errB != nil {
			panic("dds: bad BC6H layout field " + tok)
		}
		f.first = int8(b)
		f.step = 1
		if a < b {
			f.step = -1
		}
		f.n = uint8(max(a-b, b-a) + 1)
		out = append(out, f)
	}
	return out
}

func bc6hModeFor(code uint32) *bc6hMode {
	for i := range bc6hModes {
		if bc6hModes[i].code == code {
			return &bc6hModes[i]
		}
	}
	return nil
}

func signExtend(v uint32, bits int) int32 {
	shift := 32 - uint(bits)
	return int32(v<<shift) >> shift
}

func bc6hUnquantize(c int32, prec int, signed bool) int32 {
	if !signed {
		switch {
		case prec >= 15:
			return c
		case c == 0:
			return 0
		case c == int32(1)<<uint(prec)-1:
			return 0xFFFF
		}
		return (c<<16 + 0x8000) >> uint(prec)
	}
	if prec >= 16 {
		return c
	}
	neg := c < 0
	if neg {
		c = -c
	}
	var u int32
	switch {
	case c == 0:
		u = 0
	case c >= int32(1)<<uint(prec-1)-1:
		u = 0x7FFF
	default:
		u = (c<<15 + 0x4000) >> uint(prec-1)
	}
	if neg {
		return -u
	}
	return u
}

// bc6hFinish maps an interpolated value to half-float bits.
func bc6hFinish(c int32, signed bool) uint16 {
	if !signed {
		return uint16((c * 31) >> 6)
	}
	if c < 0 {
		return 0x8000 | uint16(((-c)*31)>>5)
	}
	return uint16((c * 31) >> 5)
}

// decodeBC6H decodes one block. Reserved mode codes decode as black.
func decodeBC6H(src []byte, out *halfBlock, signed bool) {
	r := newBitReader(src)
	code := r.read(2)
	if code >= 2 {
		code |= r.read(3) << 2
	}
	mode := bc6hModeFor(code)
	if mode == nil {
		*out = halfBlock{}
		return
	}

	var raw [4][3]uint32
	for _, f := range mode.fields {
		bit := int(f.first)
		for i := 0; i < int(f.n); i++ {
			raw[f.ep][f.ch] |= r.read(1) << uint(bit)
			bit += int(f.step)
		}
	}
	shape := 0
	if mode.regions == 2 {
		shape = int(r.read(5))
	}

	prec := mode.precision
	mask := int32(1)<<uint(prec) - 1
	var ep [4][3]int32
	for ch := 0; ch < 3; ch++ {
		base := int32(raw[0][ch])
		if signed {
			base = signExtend(raw[0][ch], prec)
		}
		ep[0][ch] = bc6hUnquantize(base, prec, signed)
		for k := 1; k < 2*mode.regions; k++ {
			v := int32(raw[k][ch])
			if signed || mode.transformed {
				v = signExtend(raw[k][ch], mode.delta[ch])
			}
			if mode.transformed {
				v = (base + v) & mask
				if signed {
					v = signExtend(uint32(v), prec)
				}
			}
			ep[k][ch] = bc6hUnquantize(v, prec, signed)
		}
	}

	weights, bits := bc7Weights4, 4
	if mode.regions == 2 {
		weights, bits = bc7Weights3, 3
	}
	for i := 0; i < 16; i++ {
		s := 0
		if mode.regions == 2 {
			s = bc7Subset(2, shape, i)
		}
		n := bits
		if bc7IsAnchor(mode.regions, shape, i) {
			n--
		}
		wt := weights[r.read(n)]
		for ch := 0; ch < 3; ch++ {
			out[i][ch] = bc6hFinish(bc7Interpolate(ep[2*s][ch], ep[2*s+1][ch], wt), signed)
		}
	}
}

// bc6hTarget maps a float to the interpolation domain of the decoder: the
// value whose finished form is the nearest half.
func bc6hTarget(v float32, signed bool) float32 {
	if !signed && (v < 0 || v != v) {
		v = 0
	}
	h := float16.Fromfloat32(v).Bits()
	mag := float32(h & 0x7FFF)
	if mag > 0x7BFF {
		mag = 0x7BFF
	}
	if !signed {
		return mag * 64 / 31
	}
	t := mag * 32 / 31
	if h&0x8000 != 0 {
		return -t
	}
	return t
}

func bc6hQuantize(t float32, signed bool) int32 {
	const prec = 10
	if !signed {
		q := int32(t*float32(1<<prec-1)/65535 + 0.5)
		return min(max(q, 0), 1<<prec-1)
	}
	lim := float32(int32(1)<<(prec-1) - 1)
	q := t * lim / 32767
	if q < 0 {
		return max(int32(q-0.5), -int32(lim))
	}
	return min(int32(q+0.5), int32(lim))
}

type bc6hFit struct {
	q   [2][3]int32
	idx [16]uint8
	err float32
}

func encodeBC6H(dst []byte, blk *floatBlock, p *blockParams, signed bool) {
	var tgt [16][4]float32
	for i := range blk {
		for ch := 0; ch < 3; ch++ {
			tgt[i][ch] = bc6hTarget(blk[i][ch], signed)
		}
	}
	w := p.weights
	w[3] = 0
	e0, e1 := bc6hInitialEndpoints(&tgt)
	best := bc6hEvaluate(&tgt, e0, e1, w, signed)

	refine := 1
	if p.speed == SpeedSlow {
		refine = 3
	} else if p.speed == SpeedFast {
		refine = 0
	}
	for it := 0; it < refine; it++ {
		n0, n1, ok := bc6hLeastSquares(&tgt, &best.idx)
		if !ok {
			break
		}
		c := bc6hEvaluate(&tgt, n0, n1, w, signed)
		if c.err >= best.err {
			break
		}
		best = c
	}
	if best.idx[0] >= 8 {
		best.q[0], best.q[1] = best.q[1], best.q[0]
		for i := range best.idx {
			best.idx[i] = 15 - best.idx[i]
		}
	}

	var bw bitWriter
	bw.write(0x03, 5)
	for e := 0; e < 2; e++ {
		for ch := 0; ch < 3; ch++ {
			bw.write(uint32(best.q[e][ch])&0x3FF, 10)
		}
	}
	for i := 0; i < 16; i++ {
		n := 4
		if i == 0 {
			n = 3
		}
		bw.write(uint32(best.idx[i]), n)
	}
	bw.bytes(dst)
}

// bc6hInitialEndpoints spans the texels along their principal axis.
func bc6hInitialEndpoints(tgt *[16][4]float32) (e0, e1 [4]float32) {
	var mean [4]float32
	for i := range tgt {
		for ch := 0; ch < 3; ch++ {
			mean[ch] += tgt[i][ch] / 16
		}
	}
	axis := principalAxisN(tgt[:], mean, 0, 3)
	tlo, thi := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	for i := range tgt {
		var t float32
		for ch := 0; ch < 3; ch++ {
			t += (tgt[i][ch] - mean[ch]) * axis[ch]
		}
		tlo = min(tlo, t)
		thi = max(thi, t)
	}
	for ch := 0; ch < 3; ch++ {
		e0[ch] = mean[ch] + tlo*axis[ch]
		e1[ch] = mean[ch] + thi*axis[ch]
	}
	return e0, e1
}

func bc6hLeastSquares(tgt *[16][4]float32, idx *[16]uint8) (e0, e1 [4]float32, ok bool) {
	var aa, ab, bb float32
	var ax, bx [3]float32
	for i := range tgt {
		t := float32(bc7Weights4[idx[i]]) / 64
		a, b := 1-t, t
		aa += a * a
		ab += a * b
		bb += b * b
		for ch := 0; ch < 3; ch++ {
			ax[ch] += a * tgt[i][ch]
			bx[ch] += b * tgt[i][ch]
		}
	}
	det := aa*bb - ab*ab
	if abs32(det) < 1e-6 {
		return e0, e1, false
	}
	for ch := 0; ch < 3; ch++ {
		e0[ch] = (ax[ch]*bb - bx[ch]*ab) / det
		e1[ch] = (bx[ch]*aa - ax[ch]*ab) / det
	}
	return e0, e1, true
}

func bc6hEvaluate(tgt *[16][4]float32, e0, e1 [4]float32, w [4]float32, signed bool) bc6hFit {
	var f bc6hFit
	var u [2][3]int32
	for ch := 0; ch < 3; ch++ {
		f.q[0][ch] = bc6hQuantize(e0[ch], signed)
		f.q[1][ch] = bc6hQuantize(e1[ch], signed)
		u[0][ch] = bc6hUnquantize(f.q[0][ch], 10, signed)
		u[1][ch] = bc6hUnquantize(f.q[1][ch], 10, signed)
	}
	var pal [16][3]float32
	for k, wt := range bc7Weights4 {
		for ch := 0; ch < 3; ch++ {
			h := bc6hFinish(bc7Interpolate(u[0][ch], u[1][ch], wt), signed)
			pal[k][ch] = halfTarget(h, signed)
		}
	}
	for i := range tgt {
		bestK, bestE := 0, float32(math.MaxFloat32)
		for k := range pal {
			var e float32
			for ch := 0; ch < 3; ch++ {
				d := tgt[i][ch] - pal[k][ch]
				e += w[ch] * d * d
			}
			if e < bestE {
				bestK, bestE = k, e
			}
		}
		f.idx[i] = uint8(bestK)
		f.err += bestE
	}
	return f
}

// halfTarget maps decoded half bits back to the domain of bc6hTarget.
func halfTarget(h uint16, signed bool) float32 {
	mag := float32(h & 0x7FFF)
	if !signed {
		return mag * 64 / 31
	}
	t := mag * 32 / 31
	if h&0x8000 != 0 {
		return -t
	}
	return t
}
