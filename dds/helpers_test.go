package dds_test

import (
	"testing"

	"github.com/ddsplus/ddsplus/dds"
)

// newRGBA8 allocates a single-slice image and fills every RGBA8 pixel with fn.
func newRGBA8(t *testing.T, w, h int, fn func(x, y int) [4]uint8) *dds.TextureImage {
	t.Helper()
	img, err := dds.NewTextureImage(dds.ImageMetadata{
		Width: w, Height: h, Depth: 1, ArraySize: 1, MipLevels: 1,
		Format: dds.FormatR8G8B8A8Unorm,
	})
	if err != nil {
		t.Fatalf("NewTextureImage: %v", err)
	}
	fillRGBA8(&img.Slices[0], fn)
	return img
}

func fillRGBA8(s *dds.Slice, fn func(x, y int) [4]uint8) {
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			p := fn(x, y)
			copy(s.Pixels[y*s.RowPitch+x*4:], p[:])
		}
	}
}

func pixelAt(s *dds.Slice, x, y int) [4]uint8 {
	var p [4]uint8
	copy(p[:], s.Pixels[y*s.RowPitch+x*4:])
	return p
}

func gradient(x, y int) [4]uint8 {
	return [4]uint8{uint8(x*8 + 16), uint8(y*8 + 32), uint8(128 + x*2 - y*2), uint8(255 - x*3)}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// channelErrors returns the per-channel maximum and mean absolute difference
// between two RGBA8 slices of equal size.
func channelErrors(a, b *dds.Slice) (maxErr [4]int, meanErr [4]float64) {
	n := 0
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			pa, pb := pixelAt(a, x, y), pixelAt(b, x, y)
			for c := 0; c < 4; c++ {
				d := absDiff(pa[c], pb[c])
				maxErr[c] = max(maxErr[c], d)
				meanErr[c] += float64(d)
			}
			n++
		}
	}
	for c := range meanErr {
		meanErr[c] /= float64(n)
	}
	return maxErr, meanErr
}

// cubeFaces returns a 6-face cubemap whose faces differ in every pixel.
func cubeFaces(t *testing.T, size int) *dds.TextureImage {
	t.Helper()
	img, err := dds.NewTextureImage(dds.ImageMetadata{
		Width: size, Height: size, Depth: 1, ArraySize: 6, MipLevels: 1,
		Format: dds.FormatR8G8B8A8Unorm, IsCubemap: true,
	})
	if err != nil {
		t.Fatalf("NewTextureImage: %v", err)
	}
	for face := 0; face < 6; face++ {
		f := face
		fillRGBA8(img.Slice(0, face, 0), func(x, y int) [4]uint8 {
			return [4]uint8{uint8(f*40 + 1), uint8(x), uint8(y), 255}
		})
	}
	return img
}

func wantCode(t *testing.T, what string, err error, code dds.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: got nil error want %v", what, dds.ErrorString(code))
	}
	if got := dds.ErrorCodeOf(err); got != code {
		t.Fatalf("%s: got %v want %v (%v)", what, dds.ErrorString(got), dds.ErrorString(code), err)
	}
}
