package dds_test

import (
	"bytes"
	"testing"

	"github.com/ddsplus/ddsplus/dds"
)

func TestToCross_64CubeIs256x192(t *testing.T) {
	faces := cubeFaces(t, 64)
	cross, err := dds.ToCross(faces)
	if err != nil {
		t.Fatalf("ToCross: %v", err)
	}
	m := cross.Metadata
	if m.Width != 256 || m.Height != 192 {
		t.Fatalf("cross size: got %dx%d want 256x192", m.Width, m.Height)
	}
	if m.IsCubemap || m.ArraySize != 1 || m.MipLevels != 1 {
		t.Fatalf("cross metadata: got cube=%v array=%d mips=%d want false/1/1", m.IsCubemap, m.ArraySize, m.MipLevels)
	}
	// The top-left cell holds no face.
	if got := pixelAt(&cross.Slices[0], 10, 10); got != [4]uint8{} {
		t.Fatalf("empty cell: got %v want zero", got)
	}
	// +Z sits in the second column of the middle row.
	if got := pixelAt(&cross.Slices[0], 64+3, 64+5); got != [4]uint8{4*40 + 1, 3, 5, 255} {
		t.Fatalf("+Z cell: got %v", got)
	}
}

func TestCross_RoundTrip(t *testing.T) {
	for _, horizontal := range []bool{true, false} {
		faces := cubeFaces(t, 16)
		var cross *dds.TextureImage
		var err error
		if horizontal {
			cross, err = dds.ToCross(faces)
		} else {
			cross, err = verticalCross(t, faces)
		}
		if err != nil {
			t.Fatalf("horizontal=%v: layout: %v", horizontal, err)
		}
		if !dds.IsCrossSize(cross.Metadata.Width, cross.Metadata.Height) {
			t.Fatalf("horizontal=%v: IsCrossSize(%dx%d): got false want true", horizontal,
				cross.Metadata.Width, cross.Metadata.Height)
		}
		back, err := dds.FromCross(cross, horizontal)
		if err != nil {
			t.Fatalf("horizontal=%v: FromCross: %v", horizontal, err)
		}
		if !back.Metadata.IsCubemap || back.Metadata.ArraySize != 6 {
			t.Fatalf("horizontal=%v: got cube=%v array=%d want true/6", horizontal, back.Metadata.IsCubemap, back.Metadata.ArraySize)
		}
		for face := 0; face < 6; face++ {
			if !bytes.Equal(back.Slice(0, face, 0).Pixels, faces.Slice(0, face, 0).Pixels) {
				t.Fatalf("horizontal=%v: face %d differs after round trip", horizontal, face)
			}
		}
	}
}

// verticalCross lays faces out 3 wide and 4 tall with -Z under -Y.
func verticalCross(t *testing.T, faces *dds.TextureImage) (*dds.TextureImage, error) {
	t.Helper()
	n := faces.Metadata.Width
	img, err := dds.NewTextureImage(dds.ImageMetadata{
		Width: 3 * n, Height: 4 * n, Depth: 1, ArraySize: 1, MipLevels: 1,
		Format: dds.FormatR8G8B8A8Unorm,
	})
	if err != nil {
		return nil, err
	}
	cells := [6][2]int{{2, 1}, {0, 1}, {1, 0}, {1, 2}, {1, 1}, {1, 3}}
	dst := &img.Slices[0]
	for face, c := range cells {
		src := faces.Slice(0, face, 0)
		for y := 0; y < n; y++ {
			copy(dst.Pixels[(c[1]*n+y)*dst.RowPitch+c[0]*n*4:], src.Pixels[y*src.RowPitch:y*src.RowPitch+n*4])
		}
	}
	return img, nil
}

func TestIsCrossSize(t *testing.T) {
	cases := []struct {
		w, h int
		want bool
	}{
		{256, 192, true},
		{192, 256, true},
		{256, 256, false},
		{200, 100, false},
		{4, 3, true},
	}
	for _, c := range cases {
		if got := dds.IsCrossSize(c.w, c.h); got != c.want {
			t.Fatalf("IsCrossSize(%d, %d): got %v want %v", c.w, c.h, got, c.want)
		}
	}
}

func TestFromCross_InvalidLayout(t *testing.T) {
	// 4:3 overall but the faces are not square.
	img := newRGBA8(t, 260, 192, gradient)
	_, err := dds.FromCross(img, true)
	wantCode(t, "FromCross(260x192)", err, dds.ErrInvalidLayout)

	img = newRGBA8(t, 258, 195, gradient)
	_, err = dds.FromCross(img, true)
	wantCode(t, "FromCross(258x195)", err, dds.ErrInvalidLayout)
}

func TestToCross_RejectsNonCube(t *testing.T) {
	_, err := dds.ToCross(newRGBA8(t, 8, 8, gradient))
	wantCode(t, "ToCross(2D)", err, dds.ErrInvalidArgument)
}
