package dds

// bayer4 is the 4x4 ordered dither matrix, scaled to [0,16).
var bayer4 = [4][4]float32{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// bayerOffset returns the ordered dither offset at (x, y) for a channel
// quantized to levels steps, centred on zero.
func bayerOffset(x, y int, levels float32) float32 {
	return ((bayer4[y&3][x&3]+0.5)/16 - 0.5) / levels
}

// unormBits returns the stored bit depth of R, G, B and A for UNORM layouts,
// or false when f is not a fixed-point UNORM format.
func unormBits(f Format) ([4]int, bool) {
	switch f {
	case FormatR8G8B8A8Unorm, FormatR8G8B8A8UnormSRGB, FormatB8G8R8A8Unorm, FormatB8G8R8A8UnormSRGB:
		return [4]int{8, 8, 8, 8}, true
	case FormatB8G8R8X8Unorm, FormatB8G8R8X8UnormSRGB, FormatLegacyB8G8R8, FormatLegacyR8G8B8X8:
		return [4]int{8, 8, 8, 0}, true
	case FormatB5G6R5Unorm:
		return [4]int{5, 6, 5, 0}, true
	case FormatB5G5R5A1Unorm:
		return [4]int{5, 5, 5, 1}, true
	case FormatB4G4R4A4Unorm:
		return [4]int{4, 4, 4, 4}, true
	case FormatR10G10B10A2Unorm:
		return [4]int{10, 10, 10, 2}, true
	case FormatR16G16B16A16Unorm:
		return [4]int{16, 16, 16, 16}, true
	case FormatR16G16Unorm:
		return [4]int{16, 16, 0, 0}, true
	case FormatR8G8Unorm:
		return [4]int{8, 8, 0, 0}, true
	case FormatR16Unorm:
		return [4]int{16, 0, 0, 0}, true
	case FormatR8Unorm:
		return [4]int{8, 0, 0, 0}, true
	case FormatA8Unorm:
		return [4]int{0, 0, 0, 8}, true
	}
	return [4]int{}, false
}

// diffuseError quantizes pix (w x h RGBA floats) to the bit depths in bits
// using Floyd-Steinberg error diffusion. Channels with zero bits are left alone.
func diffuseError(pix []float32, w, h int, bits [4]int) {
	var levels [4]float32
	for c, b := range bits {
		if b > 0 {
			levels[c] = float32(int(1)<<b - 1)
		}
	}
	cur := make([]float32, (w+2)*4)
	next := make([]float32, (w+2)*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := pix[(y*w+x)*4:]
			e := cur[(x+1)*4:]
			for c := 0; c < 4; c++ {
				if levels[c] == 0 {
					continue
				}
				v := clamp01(p[c] + e[c])
				q := float32(int(v*levels[c]+0.5)) / levels[c]
				p[c] = q
				err := v - q
				cur[(x+2)*4+c] += err * 7 / 16
				next[x*4+c] += err * 3 / 16
				next[(x+1)*4+c] += err * 5 / 16
				next[(x+2)*4+c] += err * 1 / 16
			}
		}
		cur, next = next, cur
		clear(next)
	}
}

// orderedDitherBlock perturbs a 4x4 RGBA8 block in place before quantisation
// to a colour endpoint precision of 5:6:5 bits.
func orderedDitherBlock(block *[64]byte, levels [3]float32) {
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			p := block[(y*4+x)*4:]
			for c := 0; c < 3; c++ {
				v := float32(p[c])/255 + bayerOffset(x, y, levels[c])
				p[c] = byte(unorm(v, 255))
			}
		}
	}
}
