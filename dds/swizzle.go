package dds

// SwizzleHint names a channel permutation stored by some BC3 normal-map
// variants. The pipeline only reports it.
type SwizzleHint uint8

const (
	SwizzleNone SwizzleHint = iota
	// SwizzleRXBG swaps green and alpha (GRXB, RXBG).
	SwizzleRXBG
	// SwizzleRGXB swaps blue and alpha (BRGX, RGXB).
	SwizzleRGXB
	// SwizzleRBXG moves blue to green and green to alpha (RBXG).
	SwizzleRBXG
	// SwizzleXGBR swaps red and alpha (RXGB).
	SwizzleXGBR
	// SwizzleXRBG moves red to green and green to alpha (GXRB, XRBG).
	SwizzleXRBG
	// SwizzleXGXR is a two channel layout with red in alpha (xGxR).
	SwizzleXGXR
)

func (s SwizzleHint) String() string {
	switch s {
	case SwizzleRXBG:
		return "RXBG"
	case SwizzleRGXB:
		return "RGXB"
	case SwizzleRBXG:
		return "RBXG"
	case SwizzleXGBR:
		return "XGBR"
	case SwizzleXRBG:
		return "XRBG"
	case SwizzleXGXR:
		return "XGXR"
	default:
		return "none"
	}
}

// MakeFourCC packs four characters the way DDS headers store them.
func MakeFourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

func fourCCString(cc uint32) string {
	return string([]byte{byte(cc), byte(cc >> 8), byte(cc >> 16), byte(cc >> 24)})
}

var swizzleFourCCs = map[uint32]SwizzleHint{
	MakeFourCC('R', 'X', 'G', 'B'): SwizzleXGBR,
	MakeFourCC('G', 'R', 'X', 'B'): SwizzleRXBG,
	MakeFourCC('R', 'X', 'B', 'G'): SwizzleRXBG,
	MakeFourCC('B', 'R', 'G', 'X'): SwizzleRGXB,
	MakeFourCC('R', 'G', 'X', 'B'): SwizzleRGXB,
	MakeFourCC('R', 'B', 'X', 'G'): SwizzleRBXG,
	MakeFourCC('G', 'X', 'R', 'B'): SwizzleXRBG,
	MakeFourCC('X', 'R', 'B', 'G'): SwizzleXRBG,
	MakeFourCC('x', 'G', 'x', 'R'): SwizzleXGXR,
}

// DetectSwizzle maps a legacy FourCC to its SwizzleHint.
func DetectSwizzle(fourCC uint32) SwizzleHint {
	return swizzleFourCCs[fourCC]
}

// swizzleFourCC returns the FourCC written for hint s.
func swizzleFourCC(s SwizzleHint) uint32 {
	switch s {
	case SwizzleXGBR:
		return MakeFourCC('R', 'X', 'G', 'B')
	case SwizzleRXBG:
		return MakeFourCC('R', 'X', 'B', 'G')
	case SwizzleRGXB:
		return MakeFourCC('R', 'G', 'X', 'B')
	case SwizzleRBXG:
		return MakeFourCC('R', 'B', 'X', 'G')
	case SwizzleXRBG:
		return MakeFourCC('X', 'R', 'B', 'G')
	case SwizzleXGXR:
		return MakeFourCC('x', 'G', 'x', 'R')
	}
	return 0
}

// Unswizzle returns a copy of img (an 8-bit RGBA image) with the permutation
// undone for display. Alpha is set to opaque since swizzled layouts carry no
// transparency.
func (s SwizzleHint) Unswizzle(img *TextureImage) (*TextureImage, error) {
	return s.permute(img, false)
}

// Swizzle applies the permutation to a straight RGBA8 image before encoding.
func (s SwizzleHint) Swizzle(img *TextureImage) (*TextureImage, error) {
	return s.permute(img, true)
}

func (s SwizzleHint) permute(img *TextureImage, forward bool) (*TextureImage, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	f := img.Metadata.Format
	if f != FormatR8G8B8A8Unorm && f != FormatR8G8B8A8UnormSRGB {
		return nil, newErrorf(ErrUnsupportedFormat, "dds: swizzle requires RGBA8, got %v", f)
	}
	out := img.Clone()
	if s == SwizzleNone {
		return out, nil
	}
	for i := range out.Slices {
		sl := &out.Slices[i]
		for y := 0; y < sl.Height; y++ {
			row := sl.Pixels[y*sl.RowPitch : y*sl.RowPitch+sl.Width*4]
			for x := 0; x < len(row); x += 4 {
				p := (*[4]byte)(row[x : x+4])
				if forward {
					s.swizzlePixel(p)
				} else {
					s.unswizzlePixel(p)
				}
			}
		}
	}
	return out, nil
}

func (s SwizzleHint) unswizzlePixel(p *[4]byte) {
	r, g, b, a := p[0], p[1], p[2], p[3]
	switch s {
	case SwizzleRXBG:
		p[0], p[1], p[2] = r, a, b
	case SwizzleRGXB:
		p[0], p[1], p[2] = r, g, a
	case SwizzleRBXG:
		p[0], p[1], p[2] = r, a, g
	case SwizzleXGBR, SwizzleXGXR:
		p[0], p[1], p[2] = a, g, b
	case SwizzleXRBG:
		p[0], p[1], p[2] = g, a, b
	}
	p[3] = 255
}

func (s SwizzleHint) swizzlePixel(p *[4]byte) {
	r, g, b := p[0], p[1], p[2]
	switch s {
	case SwizzleRXBG:
		*p = [4]byte{r, 0, b, g}
	case SwizzleRGXB:
		*p = [4]byte{r, g, 0, b}
	case SwizzleRBXG:
		*p = [4]byte{r, b, 0, g}
	case SwizzleXGBR:
		*p = [4]byte{0, g, b, r}
	case SwizzleXRBG:
		*p = [4]byte{0, r, b, g}
	case SwizzleXGXR:
		*p = [4]byte{0, g, 0, r}
	}
}
