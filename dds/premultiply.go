package dds

// PremultiplyAlpha scales colour by alpha, or divides it back out when
// reverse is set. Formats without alpha, and A8_UNORM, are returned as is.
// Reversal maps fully transparent pixels to colour 0.
func PremultiplyAlpha(img *TextureImage, reverse bool) (*TextureImage, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	f := img.Metadata.Format
	fi, _ := f.Info()
	if !fi.HasAlpha() || f == FormatA8Unorm {
		return img, nil
	}
	if fi.Compressed || !canPack(f) {
		return nil, newErrorf(ErrUnsupportedFormat, "dds: cannot premultiply %v", f)
	}
	out := img.Clone()
	srgb := f.IsSRGB()
	bounded := fi.Kind != KindFloat
	for i := range out.Slices {
		s := &out.Slices[i]
		row := make([]float32, s.Width*4)
		for y := 0; y < s.Height; y++ {
			line := s.Pixels[y*s.RowPitch:]
			if err := unpackRow(f, line, s.Width, row, FilterBox); err != nil {
				return nil, err
			}
			if srgb {
				decodeGammaRow(row)
			}
			if reverse {
				unpremultiplyRow(row, bounded)
			} else {
				premultiplyRow(row)
			}
			if srgb {
				encodeGammaRow(row)
			}
			if err := packRow(f, row, s.Width, line); err != nil {
				return nil, err
			}
		}
	}
	if reverse {
		out.Metadata.AlphaMode = AlphaModeStraight
	} else {
		out.Metadata.AlphaMode = AlphaModePremultiplied
	}
	return out, nil
}

func premultiplyRow(row []float32) {
	for i := 0; i+3 < len(row); i += 4 {
		a := row[i+3]
		row[i] *= a
		row[i+1] *= a
		row[i+2] *= a
	}
}

func unpremultiplyRow(row []float32, bounded bool) {
	for i := 0; i+3 < len(row); i += 4 {
		a := row[i+3]
		if a <= 0 {
			row[i], row[i+1], row[i+2] = 0, 0, 0
			continue
		}
		row[i] /= a
		row[i+1] /= a
		row[i+2] /= a
		if bounded {
			row[i] = clampSigned(row[i])
			row[i+1] = clampSigned(row[i+1])
			row[i+2] = clampSigned(row[i+2])
		}
	}
}
