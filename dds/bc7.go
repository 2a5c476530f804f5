package dds

// bitReader reads little-endian bit fields from a 128-bit block.
type bitReader struct {
	lo, hi uint64
	pos    uint
}

func newBitReader(b []byte) bitReader {
	return bitReader{lo: le64(b), hi: le64(b[8:])}
}

func le64(b []byte) uint64 {
	return uint64(get32(b)) | uint64(get32(b[4:]))<<32
}

func (r *bitReader) read(n int) uint32 {
	var v uint64
	for i := 0; i < n; i++ {
		var bit uint64
		if r.pos < 64 {
			bit = r.lo >> r.pos & 1
		} else if r.pos < 128 {
			bit = r.hi >> (r.pos - 64) & 1
		}
		v |= bit << uint(i)
		r.pos++
	}
	return uint32(v)
}

type bitWriter struct {
	lo, hi uint64
	pos    uint
}

func (w *bitWriter) write(v uint32, n int) {
	for i := 0; i < n; i++ {
		bit := uint64(v>>uint(i)) & 1
		if w.pos < 64 {
			w.lo |= bit << w.pos
		} else if w.pos < 128 {
			w.hi |= bit << (w.pos - 64)
		}
		w.pos++
	}
}

func (w *bitWriter) bytes(dst []byte) {
	put32(dst, uint32(w.lo))
	put32(dst[4:], uint32(w.lo>>32))
	put32(dst[8:], uint32(w.hi))
	put32(dst[12:], uint32(w.hi>>32))
}

// bc7Unquantize expands an n-bit endpoint component to 8 bits.
func bc7Unquantize(v uint32, n int) int32 {
	if n >= 8 {
		return int32(v)
	}
	v <<= uint(8 - n)
	return int32(v | v>>uint(n))
}

// decodeBC7 decodes one block. Reserved mode 8 blocks decode as transparent black.
func decodeBC7(src []byte, out *rgbaBlock) {
	r := newBitReader(src)
	mode := 0
	for mode < 8 && r.read(1) == 0 {
		mode++
	}
	if mode == 8 {
		*out = rgbaBlock{}
		return
	}
	m := &bc7Modes[mode]
	part := int(r.read(m.partitionBits))
	rotation := r.read(m.rotationBits)
	indexSel := r.read(m.indexSelBits)

	var ep [3][2][4]uint32
	for ch := 0; ch < 3; ch++ {
		for s := 0; s < m.subsets; s++ {
			ep[s][0][ch] = r.read(m.colorBits)
			ep[s][1][ch] = r.read(m.colorBits)
		}
	}
	if m.alphaBits > 0 {
		for s := 0; s < m.subsets; s++ {
			ep[s][0][3] = r.read(m.alphaBits)
			ep[s][1][3] = r.read(m.alphaBits)
		}
	}
	cbits, abits := m.colorBits, m.alphaBits
	switch {
	case m.endpointPBits:
		for s := 0; s < m.subsets; s++ {
			for e := 0; e < 2; e++ {
				p := r.read(1)
				for ch := 0; ch < 4; ch++ {
					ep[s][e][ch] = ep[s][e][ch]<<1 | p
				}
			}
		}
		cbits++
		if abits > 0 {
			abits++
		}
	case m.sharedPBits:
		for s := 0; s < m.subsets; s++ {
			p := r.read(1)
			for e := 0; e < 2; e++ {
				for ch := 0; ch < 4; ch++ {
					ep[s][e][ch] = ep[s][e][ch]<<1 | p
				}
			}
		}
		cbits++
	}

	var endpoints [3][2][4]int32
	for s := 0; s < m.subsets; s++ {
		for e := 0; e < 2; e++ {
			for ch := 0; ch < 3; ch++ {
				endpoints[s][e][ch] = bc7Unquantize(ep[s][e][ch], cbits)
			}
			if abits > 0 {
				endpoints[s][e][3] = bc7Unquantize(ep[s][e][3], abits)
			} else {
				endpoints[s][e][3] = 255
			}
		}
	}

	var idx, idx2 [16]uint32
	for i := 0; i < 16; i++ {
		n := m.indexBits
		if bc7IsAnchor(m.subsets, part, i) {
			n--
		}
		idx[i] = r.read(n)
	}
	if m.secondaryIndex > 0 {
		for i := 0; i < 16; i++ {
			n := m.secondaryIndex
			if i == 0 {
				n--
			}
			idx2[i] = r.read(n)
		}
	}

	for i := 0; i < 16; i++ {
		s := bc7Subset(m.subsets, part, i)
		e0, e1 := endpoints[s][0], endpoints[s][1]
		cIdx, cBits := idx[i], m.indexBits
		aIdx, aBits := idx[i], m.indexBits
		if m.secondaryIndex > 0 {
			aIdx, aBits = idx2[i], m.secondaryIndex
			if indexSel == 1 {
				cIdx, cBits, aIdx, aBits = aIdx, aBits, cIdx, cBits
			}
		}
		cw := bc7WeightTable(cBits)[cIdx]
		aw := bc7WeightTable(aBits)[aIdx]
		var px [4]int32
		for ch := 0; ch < 3; ch++ {
			px[ch] = bc7Interpolate(e0[ch], e1[ch], cw)
		}
		px[3] = bc7Interpolate(e0[3], e1[3], aw)
		switch rotation {
		case 1:
			px[0], px[3] = px[3], px[0]
		case 2:
			px[1], px[3] = px[3], px[1]
		case 3:
			px[2], px[3] = px[3], px[2]
		}
		out[i] = [4]uint8{uint8(px[0]), uint8(px[1]), uint8(px[2]), uint8(px[3])}
	}
}
