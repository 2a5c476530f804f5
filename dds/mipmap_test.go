package dds_test

import (
	"testing"

	"github.com/ddsplus/ddsplus/dds"
)

func TestGenerateMipMaps_FullChain(t *testing.T) {
	cases := []struct{ w, h, levels int }{
		{32, 16, 6},
		{16, 16, 5},
		{64, 2, 7},
		{1, 1, 1},
	}
	for _, c := range cases {
		img := newRGBA8(t, c.w, c.h, gradient)
		out, err := dds.GenerateMipMaps(img, dds.DefaultMipOptions())
		if err != nil {
			t.Fatalf("%dx%d: GenerateMipMaps: %v", c.w, c.h, err)
		}
		if got := out.Metadata.MipLevels; got != c.levels {
			t.Fatalf("%dx%d: MipLevels: got %d want %d", c.w, c.h, got, c.levels)
		}
		w, h := c.w, c.h
		for mip := 0; mip < c.levels; mip++ {
			s := out.Slice(mip, 0, 0)
			if s.Width != w || s.Height != h {
				t.Fatalf("%dx%d mip %d: got %dx%d want %dx%d", c.w, c.h, mip, s.Width, s.Height, w, h)
			}
			w, h = max(w/2, 1), max(h/2, 1)
		}
		last := out.Slice(c.levels-1, 0, 0)
		if last.Width != 1 || last.Height != 1 {
			t.Fatalf("%dx%d: last level %dx%d want 1x1", c.w, c.h, last.Width, last.Height)
		}
	}
}

func TestGenerateMipMaps_ConstantStaysConstant(t *testing.T) {
	want := [4]uint8{90, 160, 30, 200}
	for _, f := range []dds.Filter{dds.FilterBox, dds.FilterNearest, dds.FilterLinear, dds.FilterCubic, dds.FilterWide} {
		img := newRGBA8(t, 16, 8, func(x, y int) [4]uint8 { return want })
		out, err := dds.GenerateMipMaps(img, dds.MipOptions{Filter: f, Levels: 3})
		if err != nil {
			t.Fatalf("%v: GenerateMipMaps: %v", f, err)
		}
		if out.Metadata.MipLevels != 3 {
			t.Fatalf("%v: MipLevels: got %d want 3", f, out.Metadata.MipLevels)
		}
		s := out.Slice(2, 0, 0)
		for y := 0; y < s.Height; y++ {
			for x := 0; x < s.Width; x++ {
				got := pixelAt(s, x, y)
				for c := 0; c < 4; c++ {
					if absDiff(got[c], want[c]) > 1 {
						t.Fatalf("%v mip 2 (%d,%d): got %v want %v", f, x, y, got, want)
					}
				}
			}
		}
	}
}

func TestGenerateMipMaps_BoxAverages(t *testing.T) {
	img := newRGBA8(t, 2, 2, func(x, y int) [4]uint8 {
		if (x+y)%2 == 0 {
			return [4]uint8{0, 0, 0, 255}
		}
		return [4]uint8{200, 100, 50, 255}
	})
	out, err := dds.GenerateMipMaps(img, dds.DefaultMipOptions())
	if err != nil {
		t.Fatalf("GenerateMipMaps: %v", err)
	}
	if got := pixelAt(out.Slice(1, 0, 0), 0, 0); got != [4]uint8{100, 50, 25, 255} {
		t.Fatalf("1x1 level: got %v want [100 50 25 255]", got)
	}
}

func TestGenerateMipMaps_Cubemap(t *testing.T) {
	out, err := dds.GenerateMipMaps(cubeFaces(t, 8), dds.DefaultMipOptions())
	if err != nil {
		t.Fatalf("GenerateMipMaps: %v", err)
	}
	if out.Metadata.MipLevels != 4 || out.Metadata.ArraySize != 6 || !out.Metadata.IsCubemap {
		t.Fatalf("metadata: got %+v", out.Metadata)
	}
	// Each face keeps its own red value down the chain.
	for face := 0; face < 6; face++ {
		if got := pixelAt(out.Slice(3, face, 0), 0, 0)[0]; got != uint8(face*40+1) {
			t.Fatalf("face %d 1x1 red: got %d want %d", face, got, face*40+1)
		}
	}
}

func TestGenerateMipMaps_RejectsVolume(t *testing.T) {
	img, err := dds.NewTextureImage(dds.ImageMetadata{
		Width: 4, Height: 4, Depth: 4, ArraySize: 1, MipLevels: 1,
		Format: dds.FormatR8G8B8A8Unorm, IsVolumeMap: true,
	})
	if err != nil {
		t.Fatalf("NewTextureImage: %v", err)
	}
	_, err = dds.GenerateMipMaps(img, dds.DefaultMipOptions())
	wantCode(t, "GenerateMipMaps(volume)", err, dds.ErrUnsupportedFormat)
}
