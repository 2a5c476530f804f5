package dds

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// GenerateMipMaps rebuilds the mip chain of a 2D image, array or cubemap
// from its top level. Each level is filtered from the one above it.
func GenerateMipMaps(img *TextureImage, opts MipOptions) (*TextureImage, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	m := img.Metadata
	if m.IsVolumeMap {
		return nil, newError(ErrUnsupportedFormat, "dds: mip generation for volume maps is not supported")
	}
	if m.Format.IsCompressed() || m.Format.IsPlanar() || !canPack(m.Format) {
		return nil, newErrorf(ErrUnsupportedFormat, "dds: cannot filter %v", m.Format)
	}

	full := fullMipCount(m.Width, m.Height, 1)
	levels := opts.Levels
	if levels <= 0 || levels > full {
		levels = full
	}
	meta := m
	meta.MipLevels = levels
	out, err := NewTextureImage(meta)
	if err != nil {
		return nil, err
	}

	srgb := m.Format.IsSRGB()
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for item := 0; item < m.ArraySize; item++ {
		g.Go(func() error {
			top := img.Slice(0, item, 0)
			copySlice(m.Format, out.Slice(0, item, 0), top)

			pix, err := unpackSlice(m.Format, top, FilterLinear)
			if err != nil {
				return err
			}
			if srgb {
				decodeGammaRow(pix)
			}
			if !opts.SeparateAlpha {
				premultiplyRow(pix)
			}
			w, h := top.Width, top.Height
			for mip := 1; mip < levels; mip++ {
				dst := out.Slice(mip, item, 0)
				pix = resample(pix, w, h, dst.Width, dst.Height, opts.Filter)
				w, h = dst.Width, dst.Height

				level := append([]float32(nil), pix...)
				if !opts.SeparateAlpha {
					unpremultiplyRow(level, true)
				}
				if srgb {
					encodeGammaRow(level)
				}
				if err := packSlice(m.Format, level, dst); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
