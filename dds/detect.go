package dds

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ForeignFormat names a non-DDS image format recognised by its signature.
type ForeignFormat string

const (
	ForeignNone ForeignFormat = ""
	ForeignPNG  ForeignFormat = "PNG"
	ForeignBMP  ForeignFormat = "BMP"
	ForeignJPEG ForeignFormat = "JPEG"
	ForeignGIF  ForeignFormat = "GIF"
	ForeignTIFF ForeignFormat = "TIFF"
	ForeignWebP ForeignFormat = "WEBP"
	ForeignTGA  ForeignFormat = "TGA"
)

var (
	pngSignature  = []byte{137, 80, 78, 71, 13, 10, 26, 10}
	bmpSignature  = []byte("BM")
	jpegSignature = []byte{0xff, 0xd8, 0xff}
	gif87a        = []byte("GIF87a")
	gif89a        = []byte("GIF89a")
	tiffBE        = []byte{0x4d, 0x4d, 0x00, 0x2a}
	tiffLE        = []byte{0x49, 0x49, 0x2a, 0x00}
	// TGA 2.0 footer; older TGA files carry no signature.
	tgaFooter = []byte("TRUEVISION-XFILE.\x00")
)

// DetectForeignFormat identifies data that is not a DDS file by its leading
// signature, or by the TGA 2.0 footer.
func DetectForeignFormat(data []byte) ForeignFormat {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return ForeignPNG
	case bytes.HasPrefix(data, bmpSignature):
		return ForeignBMP
	case bytes.HasPrefix(data, jpegSignature):
		return ForeignJPEG
	case bytes.HasPrefix(data, gif87a), bytes.HasPrefix(data, gif89a):
		return ForeignGIF
	case bytes.HasPrefix(data, tiffBE), bytes.HasPrefix(data, tiffLE):
		return ForeignTIFF
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return ForeignWebP
	case len(data) > len(tgaFooter) && bytes.HasSuffix(data, tgaFooter):
		return ForeignTGA
	}
	return ForeignNone
}

// decodeForeign decodes a recognised foreign image into straight RGBA8.
func decodeForeign(kind ForeignFormat, data []byte) (*TextureImage, error) {
	r := bytes.NewReader(data)
	var (
		src image.Image
		err error
	)
	switch kind {
	case ForeignPNG:
		src, err = png.Decode(r)
	case ForeignBMP:
		src, err = bmp.Decode(r)
	case ForeignJPEG:
		src, err = jpeg.Decode(r)
	case ForeignGIF:
		src, err = gif.Decode(r)
	case ForeignTIFF:
		src, err = tiff.Decode(r)
	case ForeignWebP:
		src, err = webp.Decode(r)
	default:
		return nil, newErrorf(ErrUnsupportedFormat, "dds: no decoder for %s data", kind)
	}
	if err != nil {
		return nil, wrapError(ErrInvalidArgument, "dds: decode "+string(kind), err)
	}
	return FromImage(src)
}
