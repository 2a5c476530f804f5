package dds

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Convert returns img re-encoded as target. When img is already in target it
// is returned as is. Compressed sources are decompressed first; compressed
// targets are rejected, use Compress.
func Convert(img *TextureImage, target Format, opts ConvertOptions) (*TextureImage, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	src := img.Metadata.Format
	if src == target {
		return img, nil
	}
	fi, ok := target.Info()
	if !ok {
		return nil, newErrorf(ErrUnsupportedFormat, "dds: unknown target format %v", target)
	}
	if fi.Compressed {
		return nil, newErrorf(ErrInvalidArgument, "dds: convert cannot produce compressed %v", target)
	}
	if !canPack(target) {
		return nil, newErrorf(ErrUnsupportedFormat, "dds: no encoder for %v", target)
	}
	if src.IsCompressed() {
		dec, err := Decompress(img)
		if err != nil {
			return nil, err
		}
		if dec.Metadata.Format == target {
			return dec, nil
		}
		return convertUncompressed(dec, target, opts)
	}
	if src.IsPlanar() {
		merged, err := MergePlanes(img)
		if err != nil {
			return nil, err
		}
		if merged.Metadata.Format == target {
			return merged, nil
		}
		return convertUncompressed(merged, target, opts)
	}
	return convertUncompressed(img, target, opts)
}

func convertUncompressed(img *TextureImage, target Format, opts ConvertOptions) (*TextureImage, error) {
	src := img.Metadata.Format
	if !canPack(src) {
		return nil, newErrorf(ErrUnsupportedFormat, "dds: no decoder for %v", src)
	}
	out, err := deriveImage(img.Metadata, target)
	if err != nil {
		return nil, wrapError(ErrConversionFailed, "dds: allocate converted image", err)
	}
	decode := src.IsSRGB() && !target.IsSRGB()
	encode := target.IsSRGB() && !src.IsSRGB()
	bits, ditherable := unormBits(target)
	dither := opts.Dither && ditherable

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := range img.Slices {
		in, dst := &img.Slices[i], &out.Slices[i]
		g.Go(func() error {
			pix, err := unpackSlice(src, in, opts.Filter)
			if err != nil {
				return err
			}
			if decode {
				decodeGammaRow(pix)
			} else if encode {
				encodeGammaRow(pix)
			}
			if dither {
				diffuseError(pix, in.Width, in.Height, bits)
			}
			return packSlice(target, pix, dst)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !target.HasAlpha() {
		out.Metadata.AlphaMode = AlphaModeOpaque
	}
	return out, nil
}
