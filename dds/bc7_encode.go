package dds

import (
	"math"
	"slices"
)

// bc7Preset bounds the BC7 search for a Speed.
type bc7Preset struct {
	modes []int
	// partitions is how many of the best ranked partitions get a full fit.
	partitions int
	refine     int
	// exhaustive tries every rotation and index selection of modes 4 and 5.
	exhaustive bool
}

func bc7PresetFor(s Speed) bc7Preset {
	switch s {
	case SpeedFast:
		return bc7Preset{modes: []int{6}}
	case SpeedSlow:
		return bc7Preset{modes: []int{6, 5, 4, 1, 3, 7, 0, 2}, partitions: 16, refine: 2, exhaustive: true}
	default:
		return bc7Preset{modes: []int{6, 5, 1, 7}, partitions: 4, refine: 1}
	}
}

type pbitKind uint8

const (
	pbitNone pbitKind = iota
	pbitEndpoint
	pbitShared
)

func (m *bc7Mode) pbits() pbitKind {
	switch {
	case m.endpointPBits:
		return pbitEndpoint
	case m.sharedPBits:
		return pbitShared
	}
	return pbitNone
}

type bc7Candidate struct {
	mode     int
	part     int
	rotation int
	indexSel int
	q        [3][2][4]uint32
	p        [3][2]uint32
	idx      [16]uint8
	idx2     [16]uint8
	err      float32
}

func encodeBC7(dst []byte, blk *rgbaBlock, bp *blockParams) {
	var px [16][4]float32
	opaque := true
	for i := range blk {
		for ch := 0; ch < 4; ch++ {
			px[i][ch] = float32(blk[i][ch])
		}
		if blk[i][3] != 255 {
			opaque = false
		}
	}
	preset := bc7PresetFor(bp.speed)
	best := bc7Candidate{err: math.MaxFloat32}
	consider := func(c bc7Candidate) {
		if c.err < best.err {
			best = c
		}
	}
	for _, mode := range preset.modes {
		m := &bc7Modes[mode]
		if m.alphaBits == 0 && !opaque {
			continue
		}
		if bp.speed == SpeedMedium && mode == 7 && opaque {
			continue
		}
		switch {
		case m.rotationBits > 0:
			rotations, sels := 1, 1
			if preset.exhaustive {
				rotations = 4
				if m.indexSelBits > 0 {
					sels = 2
				}
			}
			for r := 0; r < rotations; r++ {
				for s := 0; s < sels; s++ {
					consider(encodeBC7Separate(&px, mode, r, s, bp.weights, preset.refine))
				}
			}
		case m.subsets == 1:
			consider(encodeBC7Partitioned(&px, mode, 0, bp.weights, preset.refine))
		default:
			for _, part := range rankBC7Partitions(&px, m, preset.partitions, bp.weights) {
				consider(encodeBC7Partitioned(&px, mode, part, bp.weights, preset.refine))
			}
		}
		if best.err == 0 {
			break
		}
	}
	best.write(dst)
}

func bc7Members(subsets, part, s int) []int {
	out := make([]int, 0, 16)
	for i := 0; i < 16; i++ {
		if bc7Subset(subsets, part, i) == s {
			out = append(out, i)
		}
	}
	return out
}

func encodeBC7Partitioned(px *[16][4]float32, mode, part int, w [4]float32, refine int) bc7Candidate {
	m := &bc7Modes[mode]
	c := bc7Candidate{mode: mode, part: part}
	hi := 3
	if m.alphaBits > 0 {
		hi = 4
	}
	for s := 0; s < m.subsets; s++ {
		members := bc7Members(m.subsets, part, s)
		fit := bc7FitSubset(px, members, 0, hi, m.colorBits, m.pbits(), m.indexBits, w, refine)
		fit.anchorFix(bc7Anchor(m.subsets, part, s), members, m.indexBits, 0, hi)
		c.q[s], c.p[s] = fit.q, fit.p
		for _, i := range members {
			c.idx[i] = fit.idx[i]
		}
		c.err += fit.err
	}
	return c
}

// encodeBC7Separate fits modes 4 and 5, whose colour and alpha carry
// independent indices. rotation swaps a colour channel into alpha first.
func encodeBC7Separate(px *[16][4]float32, mode, rotation, sel int, w [4]float32, refine int) bc7Candidate {
	m := &bc7Modes[mode]
	rp := *px
	if rotation > 0 {
		ch := rotation - 1
		for i := range rp {
			rp[i][ch], rp[i][3] = rp[i][3], rp[i][ch]
		}
		w[ch], w[3] = w[3], w[ch]
	}
	cBits, aBits := m.indexBits, m.secondaryIndex
	if sel == 1 {
		cBits, aBits = aBits, cBits
	}
	all := bc7Members(1, 0, 0)
	color := bc7FitSubset(&rp, all, 0, 3, m.colorBits, pbitNone, cBits, w, refine)
	color.anchorFix(0, all, cBits, 0, 3)
	alpha := bc7FitSubset(&rp, all, 3, 4, m.alphaBits, pbitNone, aBits, w, refine)
	alpha.anchorFix(0, all, aBits, 3, 4)

	c := bc7Candidate{mode: mode, rotation: rotation, indexSel: sel, err: color.err + alpha.err}
	for e := 0; e < 2; e++ {
		c.q[0][e] = color.q[e]
		c.q[0][e][3] = alpha.q[e][3]
	}
	if sel == 0 {
		c.idx, c.idx2 = color.idx, alpha.idx
	} else {
		c.idx, c.idx2 = alpha.idx, color.idx
	}
	return c
}

type bc7Fit struct {
	q   [2][4]uint32
	p   [2]uint32
	idx [16]uint8
	err float32
}

// anchorFix swaps endpoints so the anchor texel's index has a clear top bit.
func (f *bc7Fit) anchorFix(anchor int, members []int, ib int, lo, hi int) {
	half := uint8(1) << uint(ib-1)
	if f.idx[anchor] < half {
		return
	}
	top := uint8(1)<<uint(ib) - 1
	for ch := lo; ch < hi; ch++ {
		f.q[0][ch], f.q[1][ch] = f.q[1][ch], f.q[0][ch]
	}
	f.p[0], f.p[1] = f.p[1], f.p[0]
	for _, i := range members {
		f.idx[i] = top - f.idx[i]
	}
}

func bc7FitSubset(px *[16][4]float32, members []int, lo, hi, bits int, pk pbitKind, ib int, w [4]float32, refine int) bc7Fit {
	e0, e1 := bc7InitialEndpoints(px, members, lo, hi, w)
	best := bc7Evaluate(px, members, lo, hi, bits, pk, ib, w, e0, e1)
	for it := 0; it < refine; it++ {
		n0, n1, ok := bc7LeastSquares(px, members, lo, hi, ib, &best)
		if !ok {
			break
		}
		c := bc7Evaluate(px, members, lo, hi, bits, pk, ib, w, n0, n1)
		if c.err >= best.err {
			break
		}
		best = c
	}
	return best
}

// bc7InitialEndpoints projects the members onto their weighted principal axis.
func bc7InitialEndpoints(px *[16][4]float32, members []int, lo, hi int, w [4]float32) (e0, e1 [4]float32) {
	var sw [4]float32
	for ch := lo; ch < hi; ch++ {
		sw[ch] = float32(math.Sqrt(float64(max(w[ch], 1e-4))))
	}
	pts := make([][4]float32, len(members))
	var mean [4]float32
	for k, i := range members {
		for ch := lo; ch < hi; ch++ {
			pts[k][ch] = px[i][ch] * sw[ch]
			mean[ch] += pts[k][ch]
		}
	}
	for ch := lo; ch < hi; ch++ {
		mean[ch] /= float32(len(members))
	}
	axis := principalAxisN(pts, mean, lo, hi)
	tlo, thi := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	for _, p := range pts {
		var t float32
		for ch := lo; ch < hi; ch++ {
			t += (p[ch] - mean[ch]) * axis[ch]
		}
		tlo = min(tlo, t)
		thi = max(thi, t)
	}
	for ch := lo; ch < hi; ch++ {
		e0[ch] = clamp255((mean[ch] + tlo*axis[ch]) / sw[ch])
		e1[ch] = clamp255((mean[ch] + thi*axis[ch]) / sw[ch])
	}
	return e0, e1
}

func clamp255(v float32) float32 {
	if v < 0 || v != v {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func bc7QuantizeChannel(v float32, bits int, p int) (uint32, int32) {
	maxq := 1<<uint(bits) - 1
	n := bits
	var q0 int
	if p < 0 {
		q0 = int(v*float32(maxq)/255 + 0.5)
	} else {
		n = bits + 1
		q0 = int((v*float32(int(1)<<uint(n)-1)/255-float32(p))/2 + 0.5)
	}
	bestQ, bestE, bestD := 0, int32(0), float32(math.MaxFloat32)
	for q := q0 - 1; q <= q0+1; q++ {
		if q < 0 || q > maxq {
			continue
		}
		raw := uint32(q)
		if p >= 0 {
			raw = raw<<1 | uint32(p)
		}
		e := bc7Unquantize(raw, n)
		d := abs32(float32(e) - v)
		if d < bestD {
			bestQ, bestE, bestD = q, e, d
		}
	}
	return uint32(bestQ), bestE
}

func bc7QuantizeEndpoint(v [4]float32, lo, hi, bits, p int, w [4]float32) (q [4]uint32, e [4]int32, err float32) {
	for ch := lo; ch < hi; ch++ {
		q[ch], e[ch] = bc7QuantizeChannel(v[ch], bits, p)
		d := float32(e[ch]) - v[ch]
		err += w[ch] * d * d
	}
	return q, e, err
}

// bc7Evaluate quantizes the endpoints, picks indices and returns the fit.
func bc7Evaluate(px *[16][4]float32, members []int, lo, hi, bits int, pk pbitKind, ib int, w [4]float32, e0, e1 [4]float32) bc7Fit {
	var f bc7Fit
	var E [2][4]int32
	switch pk {
	case pbitNone:
		f.q[0], E[0], _ = bc7QuantizeEndpoint(e0, lo, hi, bits, -1, w)
		f.q[1], E[1], _ = bc7QuantizeEndpoint(e1, lo, hi, bits, -1, w)
	case pbitEndpoint:
		for k, v := range [2][4]float32{e0, e1} {
			q0, x0, d0 := bc7QuantizeEndpoint(v, lo, hi, bits, 0, w)
			q1, x1, d1 := bc7QuantizeEndpoint(v, lo, hi, bits, 1, w)
			if d1 < d0 {
				f.q[k], E[k], f.p[k] = q1, x1, 1
			} else {
				f.q[k], E[k], f.p[k] = q0, x0, 0
			}
		}
	case pbitShared:
		bestD := float32(math.MaxFloat32)
		for p := 0; p < 2; p++ {
			qa, xa, da := bc7QuantizeEndpoint(e0, lo, hi, bits, p, w)
			qb, xb, db := bc7QuantizeEndpoint(e1, lo, hi, bits, p, w)
			if da+db < bestD {
				bestD = da + db
				f.q[0], f.q[1], E[0], E[1] = qa, qb, xa, xb
				f.p[0], f.p[1] = uint32(p), uint32(p)
			}
		}
	}

	weights := bc7WeightTable(ib)
	var pal [16][4]int32
	for k, wt := range weights {
		for ch := lo; ch < hi; ch++ {
			pal[k][ch] = bc7Interpolate(E[0][ch], E[1][ch], wt)
		}
	}
	for _, i := range members {
		bestK, bestE := 0, float32(math.MaxFloat32)
		for k := range weights {
			var e float32
			for ch := lo; ch < hi; ch++ {
				d := px[i][ch] - float32(pal[k][ch])
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

func bc7LeastSquares(px *[16][4]float32, members []int, lo, hi, ib int, f *bc7Fit) (e0, e1 [4]float32, ok bool) {
	weights := bc7WeightTable(ib)
	var aa, ab, bb float32
	var ax, bx [4]float32
	for _, i := range members {
		t := float32(weights[f.idx[i]]) / 64
		a, b := 1-t, t
		aa += a * a
		ab += a * b
		bb += b * b
		for ch := lo; ch < hi; ch++ {
			ax[ch] += a * px[i][ch]
			bx[ch] += b * px[i][ch]
		}
	}
	det := aa*bb - ab*ab
	if abs32(det) < 1e-6 {
		return e0, e1, false
	}
	for ch := lo; ch < hi; ch++ {
		e0[ch] = clamp255((ax[ch]*bb - bx[ch]*ab) / det)
		e1[ch] = clamp255((bx[ch]*aa - ax[ch]*ab) / det)
	}
	return e0, e1, true
}

// rankBC7Partitions returns the n partitions with the lowest unquantized
// fitting error for m.
func rankBC7Partitions(px *[16][4]float32, m *bc7Mode, n int, w [4]float32) []int {
	count := 1 << uint(m.partitionBits)
	hi := 3
	if m.alphaBits > 0 {
		hi = 4
	}
	type scored struct {
		part int
		err  float32
	}
	scores := make([]scored, 0, count)
	levels := bc7WeightTable(m.indexBits)
	for part := 0; part < count; part++ {
		var total float32
		for s := 0; s < m.subsets; s++ {
			members := bc7Members(m.subsets, part, s)
			e0, e1 := bc7InitialEndpoints(px, members, 0, hi, w)
			for _, i := range members {
				bestE := float32(math.MaxFloat32)
				for _, wt := range levels {
					t := float32(wt) / 64
					var e float32
					for ch := 0; ch < hi; ch++ {
						d := px[i][ch] - (e0[ch] + (e1[ch]-e0[ch])*t)
						e += w[ch] * d * d
					}
					bestE = min(bestE, e)
				}
				total += bestE
			}
		}
		scores = append(scores, scored{part, total})
	}
	slices.SortStableFunc(scores, func(a, b scored) int {
		switch {
		case a.err < b.err:
			return -1
		case a.err > b.err:
			return 1
		}
		return 0
	})
	n = min(max(n, 1), len(scores))
	out := make([]int, n)
	for i := range out {
		out[i] = scores[i].part
	}
	return out
}

func (c *bc7Candidate) write(dst []byte) {
	m := &bc7Modes[c.mode]
	var w bitWriter
	w.write(1<<uint(c.mode), c.mode+1)
	w.write(uint32(c.part), m.partitionBits)
	w.write(uint32(c.rotation), m.rotationBits)
	w.write(uint32(c.indexSel), m.indexSelBits)
	for ch := 0; ch < 3; ch++ {
		for s := 0; s < m.subsets; s++ {
			w.write(c.q[s][0][ch], m.colorBits)
			w.write(c.q[s][1][ch], m.colorBits)
		}
	}
	if m.alphaBits > 0 {
		for s := 0; s < m.subsets; s++ {
			w.write(c.q[s][0][3], m.alphaBits)
			w.write(c.q[s][1][3], m.alphaBits)
		}
	}
	switch {
	case m.endpointPBits:
		for s := 0; s < m.subsets; s++ {
			w.write(c.p[s][0], 1)
			w.write(c.p[s][1], 1)
		}
	case m.sharedPBits:
		for s := 0; s < m.subsets; s++ {
			w.write(c.p[s][0], 1)
		}
	}
	for i := 0; i < 16; i++ {
		n := m.indexBits
		if bc7IsAnchor(m.subsets, c.part, i) {
			n--
		}
		w.write(uint32(c.idx[i]), n)
	}
	if m.secondaryIndex > 0 {
		for i := 0; i < 16; i++ {
			n := m.secondaryIndex
			if i == 0 {
				n--
			}
			w.write(uint32(c.idx2[i]), n)
		}
	}
	w.bytes(dst)
}
