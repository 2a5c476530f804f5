package dds

// Single channel blocks (BC4, the BC3 alpha half and both BC5 halves) store two
// 8-bit endpoints and sixteen 3-bit indices. Values are carried as int32:
// 0..255 unsigned, -127..127 signed.

func alphaPalette(a0, a1 int32, signed bool) (pal [8]int32) {
	pal[0], pal[1] = a0, a1
	if a0 > a1 {
		for k := int32(1); k <= 6; k++ {
			pal[k+1] = ((7-k)*a0 + k*a1) / 7
		}
		return pal
	}
	for k := int32(1); k <= 4; k++ {
		pal[k+1] = ((5-k)*a0 + k*a1) / 5
	}
	if signed {
		pal[6], pal[7] = -127, 127
	} else {
		pal[6], pal[7] = 0, 255
	}
	return pal
}

func endpointValue(b byte, signed bool) int32 {
	if !signed {
		return int32(b)
	}
	v := int32(int8(b))
	if v == -128 {
		v = -127
	}
	return v
}

func decodeAlphaBlock(src []byte, out *[16]int32, signed bool) {
	a0 := endpointValue(src[0], signed)
	a1 := endpointValue(src[1], signed)
	pal := alphaPalette(a0, a1, signed)
	var bits uint64
	for i := 7; i >= 2; i-- {
		bits = bits<<8 | uint64(src[i])
	}
	for i := 0; i < 16; i++ {
		out[i] = pal[bits>>(3*uint(i))&7]
	}
}

func encodeAlphaBlock(dst []byte, v *[16]int32, signed bool, speed Speed) {
	lo, hi := v[0], v[0]
	for _, x := range v {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	if lo == hi {
		writeAlphaBlock(dst, lo, lo, &[16]uint8{}, signed)
		return
	}
	best := alphaCandidate(v, hi, lo, signed)

	// Six value mode keeps the extremes exact when the block hits them.
	minV, maxV := int32(0), int32(255)
	if signed {
		minV, maxV = -127, 127
	}
	ilo, ihi := maxV, minV
	for _, x := range v {
		if x != minV && x != maxV {
			ilo = min(ilo, x)
			ihi = max(ihi, x)
		}
	}
	if ilo <= ihi {
		if c := alphaCandidate(v, ilo, ihi, signed); c.err < best.err {
			best = c
		}
	}
	if speed == SpeedSlow {
		for d0 := int32(-2); d0 <= 2; d0++ {
			for d1 := int32(-2); d1 <= 2; d1++ {
				a0, a1 := hi+d0, lo+d1
				if a0 <= a1 || a0 > maxV || a1 < minV {
					continue
				}
				if c := alphaCandidate(v, a0, a1, signed); c.err < best.err {
					best = c
				}
			}
		}
	}
	writeAlphaBlock(dst, best.a0, best.a1, &best.idx, signed)
}

type alphaFit struct {
	a0, a1 int32
	idx    [16]uint8
	err    int64
}

func alphaCandidate(v *[16]int32, a0, a1 int32, signed bool) alphaFit {
	f := alphaFit{a0: a0, a1: a1}
	pal := alphaPalette(a0, a1, signed)
	for i, x := range v {
		bestK, bestE := 0, int64(1)<<62
		for k, p := range pal {
			d := int64(x - p)
			if d*d < bestE {
				bestK, bestE = k, d*d
			}
		}
		f.idx[i] = uint8(bestK)
		f.err += bestE
	}
	return f
}

func writeAlphaBlock(dst []byte, a0, a1 int32, idx *[16]uint8, signed bool) {
	dst[0], dst[1] = byte(a0), byte(a1)
	if signed {
		dst[0], dst[1] = byte(int8(a0)), byte(int8(a1))
	}
	var bits uint64
	for i := 15; i >= 0; i-- {
		bits = bits<<3 | uint64(idx[i])
	}
	for i := 2; i < 8; i++ {
		dst[i] = byte(bits)
		bits >>= 8
	}
}

// decodeBC4 writes red as unsigned into out, green and blue zero, alpha opaque.
func decodeBC4(src []byte, out *rgbaBlock) {
	var r [16]int32
	decodeAlphaBlock(src, &r, false)
	for i := range out {
		out[i] = [4]uint8{uint8(r[i]), 0, 0, 255}
	}
}

func decodeBC5(src []byte, out *rgbaBlock) {
	var r, g [16]int32
	decodeAlphaBlock(src, &r, false)
	decodeAlphaBlock(src[8:], &g, false)
	for i := range out {
		out[i] = [4]uint8{uint8(r[i]), uint8(g[i]), 0, 255}
	}
}

// decodeBC4S and decodeBC5S store raw signed bytes in the red and green lanes.
func decodeBC4S(src []byte, out *rgbaBlock) {
	var r [16]int32
	decodeAlphaBlock(src, &r, true)
	for i := range out {
		out[i] = [4]uint8{uint8(int8(r[i])), 0, 0, 0}
	}
}

func decodeBC5S(src []byte, out *rgbaBlock) {
	var r, g [16]int32
	decodeAlphaBlock(src, &r, true)
	decodeAlphaBlock(src[8:], &g, true)
	for i := range out {
		out[i] = [4]uint8{uint8(int8(r[i])), uint8(int8(g[i])), 0, 0}
	}
}

func channelValues(blk *rgbaBlock, ch int, signed bool) (v [16]int32) {
	for i := range blk {
		if signed {
			v[i] = endpointValue(blk[i][ch], true)
		} else {
			v[i] = int32(blk[i][ch])
		}
	}
	return v
}

func encodeBC4(dst []byte, blk *rgbaBlock, p *blockParams) {
	r := channelValues(blk, 0, false)
	encodeAlphaBlock(dst, &r, false, p.speed)
}

func encodeBC5(dst []byte, blk *rgbaBlock, p *blockParams) {
	r := channelValues(blk, 0, false)
	g := channelValues(blk, 1, false)
	encodeAlphaBlock(dst, &r, false, p.speed)
	encodeAlphaBlock(dst[8:], &g, false, p.speed)
}

// encodeBC4S and encodeBC5S read signed bytes from the red and green lanes.
func encodeBC4S(dst []byte, blk *rgbaBlock, p *blockParams) {
	r := channelValues(blk, 0, true)
	encodeAlphaBlock(dst, &r, true, p.speed)
}

func encodeBC5S(dst []byte, blk *rgbaBlock, p *blockParams) {
	r := channelValues(blk, 0, true)
	g := channelValues(blk, 1, true)
	encodeAlphaBlock(dst, &r, true, p.speed)
	encodeAlphaBlock(dst[8:], &g, true, p.speed)
}
