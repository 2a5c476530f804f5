package dds

import (
	"image"

	"golang.org/x/image/draw"
)

// FromImage copies a Go image into a single-level R8G8B8A8_UNORM texture
// with straight alpha.
func FromImage(src image.Image) (*TextureImage, error) {
	b := src.Bounds()
	img, err := NewTextureImage(ImageMetadata{
		Width:     b.Dx(),
		Height:    b.Dy(),
		ArraySize: 1,
		MipLevels: 1,
		Format:    FormatR8G8B8A8Unorm,
		AlphaMode: AlphaModeStraight,
	})
	if err != nil {
		return nil, err
	}
	s := &img.Slices[0]
	dst := &image.NRGBA{Pix: s.Pixels, Stride: s.RowPitch, Rect: image.Rect(0, 0, s.Width, s.Height)}
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return img, nil
}

// ToImage returns the top level of the first item of img as an
// *image.NRGBA, converting from the stored format.
func ToImage(img *TextureImage) (*image.NRGBA, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	target := FormatR8G8B8A8Unorm
	if img.Metadata.Format.IsSRGB() {
		target = FormatR8G8B8A8UnormSRGB
	}
	rgba, err := Convert(img, target, ConvertOptions{})
	if err != nil {
		return nil, err
	}
	if rgba.Metadata.PremultipliedAlpha() {
		if rgba, err = PremultiplyAlpha(rgba, true); err != nil {
			return nil, err
		}
	}
	s := rgba.Slices[0]
	out := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
	for y := 0; y < s.Height; y++ {
		copy(out.Pix[y*out.Stride:], s.Pixels[y*s.RowPitch:y*s.RowPitch+s.Width*4])
	}
	return out, nil
}
