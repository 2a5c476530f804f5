package dds

// BT.601 studio-swing conversions on normalized values.

const (
	yuvLumaOffset   = 16.0 / 255
	yuvChromaOffset = 128.0 / 255
)

func rgbToYUV(r, g, b float32) (y, u, v float32) {
	y = yuvLumaOffset + (65.481*r+128.553*g+24.966*b)/255
	u = yuvChromaOffset + (-37.797*r-74.203*g+112.0*b)/255
	v = yuvChromaOffset + (112.0*r-93.786*g-18.214*b)/255
	return y, u, v
}

func yuvToRGB(y, u, v float32) (r, g, b float32) {
	c := (y - yuvLumaOffset) * 1.164384
	d := u - yuvChromaOffset
	e := v - yuvChromaOffset
	r = clamp01(c + 1.596027*e)
	g = clamp01(c - 0.391762*d - 0.812968*e)
	b = clamp01(c + 2.017232*d)
	return r, g, b
}

// MergePlanes interleaves a planar YUV image into its packed equivalent:
// NV12 and NV11 become AYUV, P010 and P016 become Y416. Chroma is
// replicated to full resolution.
func MergePlanes(img *TextureImage) (*TextureImage, error) {
	if img == nil || len(img.Slices) == 0 {
		return nil, newError(ErrInvalidArgument, "dds: nil image")
	}
	src := img.Metadata.Format
	var dst Format
	wide := false
	switch src {
	case FormatNV12, FormatNV11:
		dst = FormatAYUV
	case FormatP010, FormatP016:
		dst = FormatY416
		wide = true
	default:
		return nil, newErrorf(ErrConversionFailed, "dds: cannot merge planes of %v", src)
	}
	out, err := deriveImage(img.Metadata, dst)
	if err != nil {
		return nil, wrapError(ErrConversionFailed, "dds: merge planes", err)
	}
	for i := range img.Slices {
		if err := mergeSlice(src, &img.Slices[i], &out.Slices[i], wide); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func mergeSlice(f Format, in, out *Slice, wide bool) error {
	w, h := in.Width, in.Height
	bpe := 1
	if wide {
		bpe = 2
	}
	// Horizontal and vertical chroma subsampling.
	sx, sy := 2, 2
	if f == FormatNV11 {
		sx, sy = 4, 1
	}
	lumaPitch := in.RowPitch
	chromaRows := (h + sy - 1) / sy
	need := lumaPitch*h + lumaPitch*chromaRows
	if len(in.Pixels) < need || lumaPitch < w*bpe {
		return newError(ErrConversionFailed, "dds: planar buffer shorter than its planes")
	}
	luma := in.Pixels[:lumaPitch*h]
	chroma := in.Pixels[lumaPitch*h:]
	read := func(b []byte, off int) uint32 {
		if wide {
			return uint32(b[off]) | uint32(b[off+1])<<8
		}
		return uint32(b[off])
	}
	for y := 0; y < h; y++ {
		dst := out.Pixels[y*out.RowPitch:]
		crow := chroma[(y/sy)*lumaPitch:]
		for x := 0; x < w; x++ {
			Y := read(luma, y*lumaPitch+x*bpe)
			c := (x / sx) * 2 * bpe
			U := read(crow, c)
			V := read(crow, c+bpe)
			if wide {
				o := x * 8
				put16(dst[o:], uint16(U))
				put16(dst[o+2:], uint16(Y))
				put16(dst[o+4:], uint16(V))
				put16(dst[o+6:], 0xFFFF)
			} else {
				o := x * 4
				dst[o], dst[o+1], dst[o+2], dst[o+3] = byte(V), byte(U), byte(Y), 0xFF
			}
		}
	}
	return nil
}
