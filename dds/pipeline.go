package dds

import (
	"bytes"
	"context"
	"io"
	"slices"
)

// Load decodes a DDS file into an editable image: the top level of every
// item in 8-bit RGBA (sRGB when the file is), straight alpha, and cubemaps
// flattened into a horizontal cross. The returned metadata describes the
// file. Data that is not a DDS file is decoded as PNG, BMP, JPEG, GIF, TIFF
// or WebP when opts.DetectForeign is set.
func Load(data []byte, opts *LoadOptions) (ImageMetadata, *TextureImage, error) {
	if len(data) == 0 {
		return ImageMetadata{}, nil, newError(ErrInvalidArgument, "dds: empty input")
	}
	o := DefaultLoadOptions()
	if opts != nil {
		o = *opts
	}
	codec := o.Codec
	if codec == nil {
		codec = DDSCodec{}
	}

	if _, native := codec.(DDSCodec); native && !IsDDS(data) {
		if !o.DetectForeign {
			return ImageMetadata{}, nil, newError(ErrInvalidArgument, "dds: missing DDS magic")
		}
		kind := DetectForeignFormat(data)
		if kind == ForeignNone {
			return ImageMetadata{}, nil, newError(ErrUnsupportedFormat, "dds: unrecognised image data")
		}
		slogger().Debug("dds: foreign image fallback", "format", string(kind))
		img, err := decodeForeign(kind, data)
		if err != nil {
			return ImageMetadata{}, nil, err
		}
		return img.Metadata, img, nil
	}

	raw, hdr, err := codec.Decode(data)
	if err != nil {
		return ImageMetadata{}, nil, err
	}
	m := raw.Metadata
	if !o.AllowArrays {
		if m.IsVolumeMap && m.Depth > 1 {
			return ImageMetadata{}, nil, newError(ErrUnsupportedFormat, "dds: volume maps are not supported")
		}
		if (m.IsCubemap && m.ArraySize > 6) || (!m.IsCubemap && m.ArraySize > 1) {
			return ImageMetadata{}, nil, newError(ErrUnsupportedFormat, "dds: texture arrays are not supported")
		}
	}

	norm, err := NormalizeMetadata(raw, hdr)
	if err != nil {
		return ImageMetadata{}, nil, err
	}
	meta := norm.Metadata

	img, err := topLevel(norm)
	if err != nil {
		return ImageMetadata{}, nil, err
	}
	canonical := FormatR8G8B8A8Unorm
	if meta.Format.IsSRGB() {
		canonical = FormatR8G8B8A8UnormSRGB
	}
	if img.Metadata.Format.IsCompressed() {
		if img, err = Decompress(img); err != nil {
			return ImageMetadata{}, nil, err
		}
	}
	if img, err = Convert(img, canonical, ConvertOptions{}); err != nil {
		return ImageMetadata{}, nil, err
	}
	if meta.PremultipliedAlpha() {
		if img, err = PremultiplyAlpha(img, true); err != nil {
			return ImageMetadata{}, nil, err
		}
	}
	if meta.IsCubemap && !o.KeepCubemap {
		if img, err = ToCross(img); err != nil {
			return ImageMetadata{}, nil, err
		}
	}
	return meta, img, nil
}

// LoadFrom reads r to the end and calls Load.
func LoadFrom(r io.Reader, opts *LoadOptions) (ImageMetadata, *TextureImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ImageMetadata{}, nil, err
	}
	return Load(data, opts)
}

// topLevel returns a copy of the first mip level of img.
func topLevel(img *TextureImage) (*TextureImage, error) {
	if img.Metadata.MipLevels == 1 {
		return img, nil
	}
	m := img.Metadata
	m.MipLevels = 1
	_, _, d := m.MipSize(0)
	out := &TextureImage{Metadata: m, Slices: make([]Slice, m.ArraySize*d)}
	for i := range out.Slices {
		s := img.Slices[i]
		s.Pixels = slices.Clone(s.Pixels)
		out.Slices[i] = s
	}
	return out, out.check()
}

// Save encodes an uncompressed image as a DDS file.
func Save(img *TextureImage, opts SaveOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := SaveTo(&buf, img, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveTo encodes img and writes the DDS file to w. Nothing is written when
// an earlier stage fails.
func SaveTo(w io.Writer, img *TextureImage, opts SaveOptions) error {
	return saveContext(context.Background(), w, img, opts)
}

func saveContext(ctx context.Context, w io.Writer, img *TextureImage, opts SaveOptions) (err error) {
	if err := img.check(); err != nil {
		return err
	}
	m := img.Metadata
	if m.Format.IsCompressed() || m.IsVolumeMap {
		return newErrorf(ErrInvalidArgument, "dds: save needs an uncompressed 2D image, got %v", m.Format)
	}
	target, fileOpts, err := opts.Format.Target()
	if err != nil {
		return err
	}

	if opts.CubemapFromCross && !m.IsCubemap && IsCrossSize(m.Width, m.Height) {
		if img, err = FromCross(img, m.Width > m.Height); err != nil {
			return err
		}
	}

	if opts.GenerateMipMaps {
		w, h := img.Metadata.Width, img.Metadata.Height
		if (w%2 != 0 || h%2 != 0) && !opts.AllowOddMipDimensions {
			slogger().Debug("dds: skipping mip generation for odd dimensions", "width", w, "height", h)
		} else {
			mo := DefaultMipOptions()
			mo.Filter = opts.MipFilter
			if img, err = GenerateMipMaps(img, mo); err != nil {
				return err
			}
		}
	}

	alpha, err := detectAlphaMode(img)
	if err != nil {
		return err
	}
	if opts.Premultiply && alpha != AlphaModeOpaque {
		if img, err = PremultiplyAlpha(img, false); err != nil {
			return err
		}
		alpha = AlphaModePremultiplied
	}

	img = matchGamma(img, target)
	if fileOpts.ForceBC3ToRXGB {
		if img, err = Convert(img, FormatR8G8B8A8Unorm, ConvertOptions{}); err != nil {
			return err
		}
		if img, err = SwizzleXGBR.Swizzle(img); err != nil {
			return err
		}
		img.Metadata.Swizzle = SwizzleXGBR
	}

	progress := func(fraction float64) bool {
		if opts.Progress == nil {
			return true
		}
		return opts.Progress(fraction * 100)
	}

	var out *TextureImage
	if target.IsCompressed() {
		co := CompressOptions{CompressionOptions: opts.Compression, Progress: progress}
		if target.IsComputeCapable() && opts.Compression.HardwareAcceleration {
			dev := acquireDevice(opts.DeviceProvider)
			if dev != nil {
				defer func() {
					if cerr := dev.Close(); cerr != nil && err == nil {
						err = wrapError(ErrDeviceLost, "dds: close compute device", cerr)
					}
				}()
				co.Device = dev
			}
		}
		if out, err = Compress(ctx, img, target, co); err != nil {
			return err
		}
	} else {
		if !progress(0) {
			return newError(ErrCancelled, "dds: save cancelled")
		}
		if out, err = Convert(img, target, ConvertOptions{Dither: opts.Compression.Dither}); err != nil {
			return err
		}
		if !progress(1) {
			return newError(ErrCancelled, "dds: save cancelled")
		}
	}
	out.Metadata.AlphaMode = alpha
	if !target.HasAlpha() {
		out.Metadata.AlphaMode = AlphaModeOpaque
	}

	codec := opts.Codec
	if codec == nil {
		codec = DDSCodec{}
	}
	var buf bytes.Buffer
	if err := codec.Encode(&buf, out, fileOpts); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// acquireDevice runs the provider. Failures are not errors: the caller
// encodes in software instead.
func acquireDevice(provider DeviceProvider) ComputeDevice {
	if provider == nil {
		provider = DefaultDeviceProvider
	}
	dev, err := provider()
	if err != nil {
		slogger().Debug("dds: compute device unavailable, using software", "err", err)
		return nil
	}
	slogger().Debug("dds: compute device acquired", "device", dev.Name())
	return dev
}

// matchGamma relabels 8-bit RGBA data with the sRGB flag of target without
// touching the pixels, so encoded values equal the edited values.
func matchGamma(img *TextureImage, target Format) *TextureImage {
	f := img.Metadata.Format
	want := MakeLinear(f)
	if target.IsSRGB() {
		want = MakeSRGB(f)
	}
	if want == f {
		return img
	}
	c := *img
	c.Metadata.Format = want
	return &c
}

// detectAlphaMode reports AlphaModeOpaque when every texel has full alpha.
func detectAlphaMode(img *TextureImage) (AlphaMode, error) {
	f := img.Metadata.Format
	if !f.HasAlpha() {
		return AlphaModeOpaque, nil
	}
	for i := range img.Slices {
		pix, err := unpackSlice(f, &img.Slices[i], FilterLinear)
		if err != nil {
			return AlphaModeUnknown, err
		}
		for j := 3; j < len(pix); j += 4 {
			if pix[j] < 1 {
				return AlphaModeStraight, nil
			}
		}
	}
	return AlphaModeOpaque, nil
}
