package dds

// Cross layouts place the six faces (+X, -X, +Y, -Y, +Z, -Z) on a grid of
// face-sized cells:
//
//	horizontal          vertical
//	    [+Y]                [+Y]
//	[-X][+Z][+X][-Z]    [-X][+Z][+X]
//	    [-Y]                [-Y]
//	                        [-Z]
var (
	horizontalCross = [6][2]int{{2, 1}, {0, 1}, {1, 0}, {1, 2}, {1, 1}, {3, 1}}
	verticalCross   = [6][2]int{{2, 1}, {0, 1}, {1, 0}, {1, 2}, {1, 1}, {1, 3}}
)

// IsCrossSize reports whether a w x h image can hold a horizontal (4:3) or
// vertical (3:4) cube cross.
func IsCrossSize(w, h int) bool {
	switch {
	case w > h:
		return w/4 == h/3
	case h > w:
		return w/3 == h/4
	}
	return false
}

func crossPixelBytes(f Format) (int, error) {
	fi, ok := f.Info()
	if !ok || fi.Compressed || fi.Planar || fi.PairPacked || fi.BitsPerPixel%8 != 0 {
		return 0, newErrorf(ErrUnsupportedFormat, "dds: cannot lay out %v as a cube cross", f)
	}
	return fi.BitsPerPixel / 8, nil
}

// ToCross flattens the top level of every cube in img into a horizontal
// cross. Cells without a face are zero.
func ToCross(img *TextureImage) (*TextureImage, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	m := img.Metadata
	if !m.IsCubemap || m.ArraySize%6 != 0 {
		return nil, newError(ErrInvalidArgument, "dds: image is not a cubemap")
	}
	bpp, err := crossPixelBytes(m.Format)
	if err != nil {
		return nil, err
	}

	meta := m
	meta.Width, meta.Height = m.Width*4, m.Height*3
	meta.ArraySize = m.ArraySize / 6
	meta.MipLevels = 1
	meta.IsCubemap = false
	out, err := NewTextureImage(meta)
	if err != nil {
		return nil, err
	}
	for cube := 0; cube < meta.ArraySize; cube++ {
		dst := out.Slice(0, cube, 0)
		for face, cell := range horizontalCross {
			src := img.Slice(0, cube*6+face, 0)
			blit(dst, cell[0]*m.Width, cell[1]*m.Height, src, 0, 0, m.Width, m.Height, bpp)
		}
	}
	return out, nil
}

// FromCross splits every cross in img into six cube faces.
func FromCross(img *TextureImage, horizontal bool) (*TextureImage, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	m := img.Metadata
	bpp, err := crossPixelBytes(m.Format)
	if err != nil {
		return nil, err
	}
	cols, rows, cells := 3, 4, verticalCross
	if horizontal {
		cols, rows, cells = 4, 3, horizontalCross
	}
	if m.Width%cols != 0 || m.Height%rows != 0 {
		return nil, newErrorf(ErrInvalidLayout, "dds: %dx%d is not a %dx%d grid of faces", m.Width, m.Height, cols, rows)
	}
	fw, fh := m.Width/cols, m.Height/rows
	if fw != fh {
		return nil, newErrorf(ErrInvalidLayout, "dds: cross faces are %dx%d, not square", fw, fh)
	}

	meta := m
	meta.Width, meta.Height = fw, fh
	meta.ArraySize = m.ArraySize * 6
	meta.MipLevels = 1
	meta.IsCubemap = true
	out, err := NewTextureImage(meta)
	if err != nil {
		return nil, err
	}
	for cross := 0; cross < m.ArraySize; cross++ {
		src := img.Slice(0, cross, 0)
		for face, cell := range cells {
			dst := out.Slice(0, cross*6+face, 0)
			blit(dst, 0, 0, src, cell[0]*fw, cell[1]*fh, fw, fh, bpp)
		}
	}
	return out, nil
}

func blit(dst *Slice, dx, dy int, src *Slice, sx, sy, w, h, bpp int) {
	for y := 0; y < h; y++ {
		d := dst.Pixels[(dy+y)*dst.RowPitch+dx*bpp:]
		s := src.Pixels[(sy+y)*src.RowPitch+sx*bpp:]
		copy(d[:w*bpp], s[:w*bpp])
	}
}
