package dds

// ContainerHeader carries the container fields that influence how pixel data
// is interpreted but are not part of ImageMetadata.
type ContainerHeader struct {
	// FourCC is the legacy pixel format code, or 0.
	FourCC uint32
	// AlphaMode is the alpha mode the header declares.
	AlphaMode AlphaMode
	// DX10 reports an extended header.
	DX10 bool
}

var premultipliedFourCCs = map[uint32]bool{
	MakeFourCC('D', 'X', 'T', '2'): true,
	MakeFourCC('D', 'X', 'T', '4'): true,
}

// NormalizeMetadata resolves the container-specific quirks of a decoded
// image: typeless formats become UNORM, planar YUV is interleaved, swizzled
// BC3 variants are flagged and premultiplied legacy codes set the alpha mode.
func NormalizeMetadata(img *TextureImage, hdr ContainerHeader) (*TextureImage, error) {
	if img == nil {
		return nil, newError(ErrInvalidArgument, "dds: nil image")
	}
	out := img
	f := img.Metadata.Format

	if f.IsTypeless() {
		u, ok := MakeTypelessUNORM(f)
		if !ok {
			return nil, newErrorf(ErrUnsupportedFormat, "dds: typeless format %v has no UNORM equivalent", f)
		}
		c := *img
		c.Metadata.Format = u
		out = &c
	}

	if out.Metadata.Format.IsPlanar() {
		merged, err := MergePlanes(out)
		if err != nil {
			return nil, err
		}
		out = merged
	}

	meta := out.Metadata
	if hdr.AlphaMode != AlphaModeUnknown {
		meta.AlphaMode = hdr.AlphaMode
	}
	if premultipliedFourCCs[hdr.FourCC] {
		meta.AlphaMode = AlphaModePremultiplied
	}
	if f := meta.Format; f == FormatBC3Unorm || f == FormatBC3UnormSRGB {
		meta.Swizzle = DetectSwizzle(hdr.FourCC)
	}
	if meta != out.Metadata {
		if out == img {
			c := *img
			out = &c
		}
		out.Metadata = meta
	}
	return out, nil
}
