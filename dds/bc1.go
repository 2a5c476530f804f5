package dds

import "math"

// rgbaBlock is a 4x4 block of 8-bit RGBA texels in row-major order.
type rgbaBlock [16][4]uint8

// blockParams carries the per-call encoder settings into block encoders.
type blockParams struct {
	weights [4]float32
	speed   Speed
	dither  bool
}

func expand5(v uint16) uint8 { return uint8(v<<3 | v>>2) }
func expand6(v uint16) uint8 { return uint8(v<<2 | v>>4) }

func unpack565(c uint16) [3]uint8 {
	return [3]uint8{expand5(c >> 11 & 31), expand6(c >> 5 & 63), expand5(c & 31)}
}

func pack565(r, g, b float32) uint16 {
	q := func(v float32, m float32) uint16 {
		return uint16(clamp01(v/255)*m + 0.5)
	}
	return q(r, 31)<<11 | q(g, 63)<<5 | q(b, 31)
}

// colorPalette returns the four palette entries of a BC1 colour block.
// threeColor selects the punch-through layout used when c0 <= c1 in BC1.
func colorPalette(c0, c1 uint16, threeColor bool) (pal [4][4]uint8) {
	a, b := unpack565(c0), unpack565(c1)
	for ch := 0; ch < 3; ch++ {
		x, y := uint16(a[ch]), uint16(b[ch])
		pal[0][ch], pal[1][ch] = a[ch], b[ch]
		if threeColor {
			pal[2][ch] = uint8((x + y) / 2)
			pal[3][ch] = 0
		} else {
			pal[2][ch] = uint8((2*x + y) / 3)
			pal[3][ch] = uint8((x + 2*y) / 3)
		}
	}
	pal[0][3], pal[1][3], pal[2][3], pal[3][3] = 255, 255, 255, 255
	if threeColor {
		pal[3][3] = 0
	}
	return pal
}

// decodeColorBlock decodes the 8-byte colour half of a BC1/BC2/BC3 block.
// Only BC1 honours the three colour layout.
func decodeColorBlock(src []byte, out *rgbaBlock, bc1 bool) {
	c0 := uint16(src[0]) | uint16(src[1])<<8
	c1 := uint16(src[2]) | uint16(src[3])<<8
	pal := colorPalette(c0, c1, bc1 && c0 <= c1)
	idx := get32(src[4:])
	for i := 0; i < 16; i++ {
		out[i] = pal[idx>>(2*uint(i))&3]
	}
}

func decodeBC1(src []byte, out *rgbaBlock) { decodeColorBlock(src, out, true) }

func decodeBC2(src []byte, out *rgbaBlock) {
	decodeColorBlock(src[8:], out, false)
	for i := 0; i < 16; i++ {
		a := src[i/2] >> (4 * uint(i&1)) & 0xF
		out[i][3] = a * 17
	}
}

func decodeBC3(src []byte, out *rgbaBlock) {
	decodeColorBlock(src[8:], out, false)
	var a [16]int32
	decodeAlphaBlock(src, &a, false)
	for i := 0; i < 16; i++ {
		out[i][3] = uint8(a[i])
	}
}

func encodeBC1(dst []byte, blk *rgbaBlock, p *blockParams) {
	encodeColorBlock(dst, blk, p, true)
}

func encodeBC2(dst []byte, blk *rgbaBlock, p *blockParams) {
	for i := 0; i < 16; i += 2 {
		lo := (uint16(blk[i][3])*15 + 127) / 255
		hi := (uint16(blk[i+1][3])*15 + 127) / 255
		dst[i/2] = byte(lo | hi<<4)
	}
	encodeColorBlock(dst[8:], blk, p, false)
}

func encodeBC3(dst []byte, blk *rgbaBlock, p *blockParams) {
	var a [16]int32
	for i := range a {
		a[i] = int32(blk[i][3])
	}
	encodeAlphaBlock(dst, &a, false, p.speed)
	encodeColorBlock(dst[8:], blk, p, false)
}

// encodeColorBlock writes an 8-byte colour block. With punchThrough, texels
// with alpha below 128 are encoded transparent using the three colour layout.
func encodeColorBlock(dst []byte, in *rgbaBlock, p *blockParams, punchThrough bool) {
	blk := *in
	if p.dither {
		var flat [64]byte
		for i := range blk {
			copy(flat[i*4:], blk[i][:])
		}
		orderedDitherBlock(&flat, [3]float32{31, 63, 31})
		for i := range blk {
			copy(blk[i][:], flat[i*4:i*4+4])
		}
	}

	var mask uint16 // bit i set when texel i takes part in colour fitting
	for i := range blk {
		if !punchThrough || blk[i][3] >= 128 {
			mask |= 1 << uint(i)
		}
	}
	if mask == 0 {
		// Fully transparent: three colour mode, every index 3.
		put32(dst, 0)
		put32(dst[4:], 0xFFFFFFFF)
		return
	}
	transparent := punchThrough && mask != 0xFFFF

	w := p.weights
	c0, c1 := fitColorEndpoints(&blk, mask, w)
	best := colorCandidate{c0: c0, c1: c1}
	best.evaluate(&blk, mask, w, transparent)

	refine := 0
	switch p.speed {
	case SpeedMedium:
		refine = 1
	case SpeedSlow:
		refine = 3
	}
	for it := 0; it < refine; it++ {
		n0, n1, ok := refineColorEndpoints(&blk, mask, &best, transparent)
		if !ok {
			break
		}
		cand := colorCandidate{c0: n0, c1: n1}
		cand.evaluate(&blk, mask, w, transparent)
		if cand.err >= best.err {
			break
		}
		best = cand
	}
	if punchThrough && !transparent && p.speed == SpeedSlow {
		cand := colorCandidate{c0: best.c0, c1: best.c1, three: true}
		cand.evaluate(&blk, mask, w, true)
		if cand.err < best.err {
			best = cand
		}
	}
	best.write(dst, punchThrough)
}

type colorCandidate struct {
	c0, c1 uint16
	three  bool
	idx    [16]uint8
	err    float32
}

// evaluate chooses per-texel indices. Endpoint order is fixed up by write, so
// the palette here is built in the unswapped order.
func (c *colorCandidate) evaluate(blk *rgbaBlock, mask uint16, w [4]float32, transparent bool) {
	three := c.three || transparent
	c.three = three
	pal := colorPalette(c.c0, c.c1, three)
	c.err = 0
	for i := range blk {
		if mask&(1<<uint(i)) == 0 {
			c.idx[i] = 3
			continue
		}
		bestIdx, bestErr := 0, float32(math.MaxFloat32)
		n := 4
		if three {
			n = 3
		}
		for k := 0; k < n; k++ {
			e := colorDistance(blk[i], pal[k], w)
			if e < bestErr {
				bestIdx, bestErr = k, e
			}
		}
		c.idx[i] = uint8(bestIdx)
		c.err += bestErr
	}
}

func colorDistance(a, b [4]uint8, w [4]float32) float32 {
	dr := float32(a[0]) - float32(b[0])
	dg := float32(a[1]) - float32(b[1])
	db := float32(a[2]) - float32(b[2])
	return w[0]*dr*dr + w[1]*dg*dg + w[2]*db*db
}

// write stores the candidate, ordering endpoints so that BC1 decoders pick
// the intended layout: c0 > c1 for four colours, c0 <= c1 for three.
func (c *colorCandidate) write(dst []byte, bc1 bool) {
	c0, c1 := c.c0, c.c1
	idx := c.idx
	if !c.three {
		if bc1 && c0 < c1 {
			c0, c1 = c1, c0
			for i := range idx {
				idx[i] ^= 1
			}
		}
		if bc1 && c0 == c1 {
			// Equal endpoints decode as three colour; index 0 is still exact.
			for i := range idx {
				idx[i] = 0
			}
		}
	} else if c0 > c1 {
		c0, c1 = c1, c0
		for i := range idx {
			switch idx[i] {
			case 0:
				idx[i] = 1
			case 1:
				idx[i] = 0
			}
		}
	}
	dst[0], dst[1] = byte(c0), byte(c0>>8)
	dst[2], dst[3] = byte(c1), byte(c1>>8)
	var bits uint32
	for i := 15; i >= 0; i-- {
		bits = bits<<2 | uint32(idx[i])
	}
	put32(dst[4:], bits)
}

// fitColorEndpoints finds endpoints along the weighted principal axis of the
// masked texels.
func fitColorEndpoints(blk *rgbaBlock, mask uint16, w [4]float32) (uint16, uint16) {
	var sw [3]float32
	for ch := 0; ch < 3; ch++ {
		sw[ch] = float32(math.Sqrt(float64(w[ch])))
		if sw[ch] == 0 {
			sw[ch] = 1
		}
	}
	var pts [16][4]float32
	n := 0
	var mean [4]float32
	for i := range blk {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		for ch := 0; ch < 3; ch++ {
			pts[n][ch] = float32(blk[i][ch]) * sw[ch]
			mean[ch] += pts[n][ch]
		}
		n++
	}
	for ch := range mean {
		mean[ch] /= float32(n)
	}
	axis := principalAxisN(pts[:n], mean, 0, 3)
	lo, hi := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	for _, pt := range pts[:n] {
		t := (pt[0]-mean[0])*axis[0] + (pt[1]-mean[1])*axis[1] + (pt[2]-mean[2])*axis[2]
		lo = min(lo, t)
		hi = max(hi, t)
	}
	var e0, e1 [3]float32
	for ch := 0; ch < 3; ch++ {
		e0[ch] = (mean[ch] + hi*axis[ch]) / sw[ch]
		e1[ch] = (mean[ch] + lo*axis[ch]) / sw[ch]
	}
	return pack565(e0[0], e0[1], e0[2]), pack565(e1[0], e1[1], e1[2])
}

// principalAxisN returns the dominant eigenvector of the covariance of the
// channels [lo, hi) of pts, by power iteration. A degenerate set yields the
// diagonal.
func principalAxisN(pts [][4]float32, mean [4]float32, lo, hi int) [4]float32 {
	var cov [4][4]float32
	for _, p := range pts {
		for a := lo; a < hi; a++ {
			da := p[a] - mean[a]
			for b := lo; b < hi; b++ {
				cov[a][b] += da * (p[b] - mean[b])
			}
		}
	}
	var v [4]float32
	for ch := lo; ch < hi; ch++ {
		v[ch] = 1
	}
	for it := 0; it < 8; it++ {
		var next [4]float32
		var m float32
		for a := lo; a < hi; a++ {
			for b := lo; b < hi; b++ {
				next[a] += cov[a][b] * v[b]
			}
			m = max(m, abs32(next[a]))
		}
		if m == 0 {
			break
		}
		for a := lo; a < hi; a++ {
			v[a] = next[a] / m
		}
	}
	var l float32
	for ch := lo; ch < hi; ch++ {
		l += v[ch] * v[ch]
	}
	l = float32(math.Sqrt(float64(l)))
	for ch := lo; ch < hi; ch++ {
		v[ch] /= l
	}
	return v
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// refineColorEndpoints solves the least squares endpoints for the current
// index assignment.
func refineColorEndpoints(blk *rgbaBlock, mask uint16, c *colorCandidate, transparent bool) (uint16, uint16, bool) {
	var aa, ab, bb float32
	var ax, bx [3]float32
	for i := range blk {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		var wa float32
		switch c.idx[i] {
		case 0:
			wa = 1
		case 1:
			wa = 0
		case 2:
			if c.three || transparent {
				wa = 0.5
			} else {
				wa = 2.0 / 3
			}
		case 3:
			wa = 1.0 / 3
		}
		wb := 1 - wa
		aa += wa * wa
		ab += wa * wb
		bb += wb * wb
		for ch := 0; ch < 3; ch++ {
			v := float32(blk[i][ch])
			ax[ch] += wa * v
			bx[ch] += wb * v
		}
	}
	det := aa*bb - ab*ab
	if abs32(det) < 1e-6 {
		return 0, 0, false
	}
	var e0, e1 [3]float32
	for ch := 0; ch < 3; ch++ {
		e0[ch] = (ax[ch]*bb - bx[ch]*ab) / det
		e1[ch] = (bx[ch]*aa - ax[ch]*ab) / det
	}
	return pack565(e0[0], e0[1], e0[2]), pack565(e1[0], e1[1], e1[2]), true
}
