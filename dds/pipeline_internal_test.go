package dds

import (
	"bytes"
	"testing"
)

func TestTopLevel_DoesNotAliasInput(t *testing.T) {
	img, err := NewTextureImage(ImageMetadata{
		Width: 4, Height: 4, Depth: 1, ArraySize: 2, MipLevels: 2, Format: FormatR8G8B8A8Unorm,
	})
	if err != nil {
		t.Fatalf("NewTextureImage: %v", err)
	}
	for i := range img.Slices {
		for j := range img.Slices[i].Pixels {
			img.Slices[i].Pixels[j] = byte(i + j)
		}
	}
	want := img.Clone()

	out, err := topLevel(img)
	if err != nil {
		t.Fatalf("topLevel: %v", err)
	}
	if len(out.Slices) != 2 || out.Metadata.MipLevels != 1 {
		t.Fatalf("topLevel: got %d slices and %d mips want 2 and 1", len(out.Slices), out.Metadata.MipLevels)
	}
	for i := range out.Slices {
		if !bytes.Equal(out.Slices[i].Pixels, want.Slices[i].Pixels) {
			t.Fatalf("slice %d: pixels differ from the top mip", i)
		}
		out.Slices[i].Pixels[0] ^= 0xFF
		out.Slices[i].Width = 99
	}
	out.Slices = append(out.Slices, Slice{})

	if len(img.Slices) != len(want.Slices) {
		t.Fatalf("input slices: got %d want %d", len(img.Slices), len(want.Slices))
	}
	for i := range img.Slices {
		if img.Slices[i].Width != want.Slices[i].Width {
			t.Fatalf("input slice %d width: got %d want %d", i, img.Slices[i].Width, want.Slices[i].Width)
		}
		if !bytes.Equal(img.Slices[i].Pixels, want.Slices[i].Pixels) {
			t.Fatalf("input slice %d: pixels changed through the top-level copy", i)
		}
	}
}
