package dds_test

import (
	"bytes"
	"testing"

	"github.com/ddsplus/ddsplus/dds"
)

func TestConvert_SameFormatIsNoOp(t *testing.T) {
	img := newRGBA8(t, 8, 8, gradient)
	out, err := dds.Convert(img, dds.FormatR8G8B8A8Unorm, dds.ConvertOptions{Dither: true})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if out != img {
		t.Fatalf("Convert(same format): got a new image want the input")
	}
}

func TestConvert_LosslessRoundTrips(t *testing.T) {
	img := newRGBA8(t, 16, 16, gradient)
	for _, f := range []dds.Format{
		dds.FormatB8G8R8A8Unorm,
		dds.FormatR16G16B16A16Unorm,
		dds.FormatR16G16B16A16Float,
		dds.FormatR32G32B32A32Float,
	} {
		mid, err := dds.Convert(img, f, dds.ConvertOptions{})
		if err != nil {
			t.Fatalf("Convert(%v): %v", f, err)
		}
		back, err := dds.Convert(mid, dds.FormatR8G8B8A8Unorm, dds.ConvertOptions{})
		if err != nil {
			t.Fatalf("Convert(%v -> RGBA8): %v", f, err)
		}
		if !bytes.Equal(back.Slices[0].Pixels, img.Slices[0].Pixels) {
			t.Fatalf("%v: round trip changed pixels", f)
		}
	}
}

func TestConvert_SRGBEndpointsStable(t *testing.T) {
	img := newRGBA8(t, 2, 1, func(x, y int) [4]uint8 {
		if x == 0 {
			return [4]uint8{0, 0, 0, 255}
		}
		return [4]uint8{255, 255, 255, 128}
	})
	out, err := dds.Convert(img, dds.FormatR8G8B8A8UnormSRGB, dds.ConvertOptions{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got := pixelAt(&out.Slices[0], 0, 0); got != [4]uint8{0, 0, 0, 255} {
		t.Fatalf("black: got %v", got)
	}
	if got := pixelAt(&out.Slices[0], 1, 0); got != [4]uint8{255, 255, 255, 128} {
		t.Fatalf("white: got %v (alpha must not be gamma encoded)", got)
	}
}

func TestConvert_MidGreyGammaEncoded(t *testing.T) {
	img := newRGBA8(t, 1, 1, func(x, y int) [4]uint8 { return [4]uint8{128, 128, 128, 255} })
	out, err := dds.Convert(img, dds.FormatR8G8B8A8UnormSRGB, dds.ConvertOptions{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	// linear 0.502 encodes to sRGB 0.7356.
	if got := pixelAt(&out.Slices[0], 0, 0)[0]; absDiff(got, 188) > 1 {
		t.Fatalf("sRGB(128): got %d want 188", got)
	}
}

func TestConvert_RejectsCompressedTarget(t *testing.T) {
	_, err := dds.Convert(newRGBA8(t, 4, 4, gradient), dds.FormatBC1Unorm, dds.ConvertOptions{})
	wantCode(t, "Convert(BC1)", err, dds.ErrInvalidArgument)
}

func TestConvert_DropsAlpha(t *testing.T) {
	img := newRGBA8(t, 4, 4, gradient)
	out, err := dds.Convert(img, dds.FormatB5G6R5Unorm, dds.ConvertOptions{Dither: true})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if out.Metadata.AlphaMode != dds.AlphaModeOpaque {
		t.Fatalf("AlphaMode: got %v want %v", out.Metadata.AlphaMode, dds.AlphaModeOpaque)
	}
}
