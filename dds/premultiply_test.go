package dds_test

import (
	"bytes"
	"testing"

	"github.com/ddsplus/ddsplus/dds"
)

func TestPremultiply_RoundTrip(t *testing.T) {
	img := newRGBA8(t, 4, 4, func(x, y int) [4]uint8 {
		alpha := [2]uint8{51, 255}[(x+y)%2]
		return [4]uint8{uint8(x * 50), uint8(y * 60), 250, alpha}
	})
	pm, err := dds.PremultiplyAlpha(img, false)
	if err != nil {
		t.Fatalf("PremultiplyAlpha: %v", err)
	}
	if pm.Metadata.AlphaMode != dds.AlphaModePremultiplied {
		t.Fatalf("AlphaMode: got %v want premultiplied", pm.Metadata.AlphaMode)
	}
	if got := pixelAt(&pm.Slices[0], 1, 1); got != [4]uint8{10, 12, 50, 51} {
		t.Fatalf("premultiplied (1,1): got %v want [10 12 50 51]", got)
	}
	back, err := dds.PremultiplyAlpha(pm, true)
	if err != nil {
		t.Fatalf("PremultiplyAlpha(reverse): %v", err)
	}
	if back.Metadata.AlphaMode != dds.AlphaModeStraight {
		t.Fatalf("AlphaMode: got %v want straight", back.Metadata.AlphaMode)
	}
	if !bytes.Equal(back.Slices[0].Pixels, img.Slices[0].Pixels) {
		t.Fatalf("reverse(apply(x)) != x")
	}
}

func TestPremultiply_ZeroAlphaReversesToBlack(t *testing.T) {
	img := newRGBA8(t, 2, 2, func(x, y int) [4]uint8 { return [4]uint8{200, 100, 50, 0} })
	out, err := dds.PremultiplyAlpha(img, true)
	if err != nil {
		t.Fatalf("PremultiplyAlpha: %v", err)
	}
	if got := pixelAt(&out.Slices[0], 1, 1); got != [4]uint8{0, 0, 0, 0} {
		t.Fatalf("alpha 0: got %v want [0 0 0 0]", got)
	}
}

func TestPremultiply_SkipsFormatsWithoutAlpha(t *testing.T) {
	img := newRGBA8(t, 4, 4, gradient)
	rgb, err := dds.Convert(img, dds.FormatB8G8R8X8Unorm, dds.ConvertOptions{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	out, err := dds.PremultiplyAlpha(rgb, false)
	if err != nil {
		t.Fatalf("PremultiplyAlpha: %v", err)
	}
	if out != rgb {
		t.Fatalf("PremultiplyAlpha(BGRX): got a new image want the input")
	}
}
