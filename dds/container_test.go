package dds_test

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ddsplus/ddsplus/dds"
)

// Byte offsets into a DDS file, magic included.
const (
	offPFFlags   = 80
	offFourCC    = 84
	offCaps2     = 112
	offDX10      = 128
	offDX10Array = 140
	offDX10Misc  = 136
)

func patterned(t *testing.T, meta dds.ImageMetadata) *dds.TextureImage {
	t.Helper()
	img, err := dds.NewTextureImage(meta)
	if err != nil {
		t.Fatalf("NewTextureImage(%v): %v", meta.Format, err)
	}
	for i := range img.Slices {
		for j := range img.Slices[i].Pixels {
			img.Slices[i].Pixels[j] = byte(i*31 + j*7)
		}
	}
	return img
}

func encodeFile(t *testing.T, img *dds.TextureImage, opts dds.FileOptions) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := (dds.DDSCodec{}).Encode(&buf, img, opts); err != nil {
		t.Fatalf("Encode(%v): %v", img.Metadata.Format, err)
	}
	return buf.Bytes()
}

func TestDDSCodec_RoundTrip(t *testing.T) {
	formats := []dds.Format{
		dds.FormatR8G8B8A8Unorm, dds.FormatR8G8B8A8UnormSRGB, dds.FormatB8G8R8A8Unorm,
		dds.FormatB8G8R8X8Unorm, dds.FormatB5G6R5Unorm, dds.FormatB5G5R5A1Unorm,
		dds.FormatB4G4R4A4Unorm, dds.FormatR10G10B10A2Unorm, dds.FormatR16G16B16A16Float,
		dds.FormatR16G16B16A16Unorm, dds.FormatR32G32B32A32Float, dds.FormatR32Float,
		dds.FormatR16G16Unorm, dds.FormatR16G16Snorm, dds.FormatR8Unorm, dds.FormatR16Unorm,
		dds.FormatR8G8Unorm, dds.FormatR8G8Snorm, dds.FormatA8Unorm, dds.FormatR11G11B10Float,
		dds.FormatR9G9B9E5SharedExp, dds.FormatYUY2, dds.FormatAYUV, dds.FormatLegacyB8G8R8,
		dds.FormatLegacyR8G8B8X8, dds.FormatBC1Unorm, dds.FormatBC2Unorm, dds.FormatBC3Unorm,
		dds.FormatBC4Unorm, dds.FormatBC4Snorm, dds.FormatBC5Unorm, dds.FormatBC5Snorm,
		dds.FormatBC6HUF16, dds.FormatBC7UnormSRGB,
	}
	for _, f := range formats {
		img := patterned(t, dds.ImageMetadata{
			Width: 8, Height: 6, Depth: 1, ArraySize: 1, MipLevels: 3, Format: f,
		})
		got, _, err := dds.DDSCodec{}.Decode(encodeFile(t, img, dds.FileOptions{}))
		if err != nil {
			t.Fatalf("%v: Decode: %v", f, err)
		}
		if diff := cmp.Diff(img, got); diff != "" {
			t.Fatalf("%v: round trip mismatch (-want +got):\n%s", f, diff)
		}
	}
}

func TestDDSCodec_HeaderKinds(t *testing.T) {
	cases := []struct {
		format dds.Format
		opts   dds.FileOptions
		fourCC uint32
	}{
		{dds.FormatBC1Unorm, dds.FileOptions{}, dds.MakeFourCC('D', 'X', 'T', '1')},
		{dds.FormatBC2Unorm, dds.FileOptions{}, dds.MakeFourCC('D', 'X', 'T', '3')},
		{dds.FormatBC3Unorm, dds.FileOptions{}, dds.MakeFourCC('D', 'X', 'T', '5')},
		{dds.FormatBC3Unorm, dds.FileOptions{ForceBC3ToRXGB: true}, dds.MakeFourCC('R', 'X', 'G', 'B')},
		{dds.FormatBC4Unorm, dds.FileOptions{}, dds.MakeFourCC('B', 'C', '4', 'U')},
		{dds.FormatBC4Unorm, dds.FileOptions{ForceLegacyDX9: true}, dds.MakeFourCC('A', 'T', 'I', '1')},
		{dds.FormatBC5Unorm, dds.FileOptions{}, dds.MakeFourCC('B', 'C', '5', 'U')},
		{dds.FormatBC5Unorm, dds.FileOptions{ForceLegacyDX9: true}, dds.MakeFourCC('A', 'T', 'I', '2')},
		{dds.FormatBC5Snorm, dds.FileOptions{}, dds.MakeFourCC('B', 'C', '5', 'S')},
		{dds.FormatR16G16B16A16Float, dds.FileOptions{}, 113},
		{dds.FormatBC7Unorm, dds.FileOptions{}, dds.MakeFourCC('D', 'X', '1', '0')},
		{dds.FormatBC6HUF16, dds.FileOptions{}, dds.MakeFourCC('D', 'X', '1', '0')},
		{dds.FormatR8G8B8A8UnormSRGB, dds.FileOptions{}, dds.MakeFourCC('D', 'X', '1', '0')},
		{dds.FormatR8G8B8A8Unorm, dds.FileOptions{}, 0},
	}
	for _, c := range cases {
		img := patterned(t, dds.ImageMetadata{Width: 4, Height: 4, Depth: 1, ArraySize: 1, MipLevels: 1, Format: c.format})
		data := encodeFile(t, img, c.opts)
		if got := binary.LittleEndian.Uint32(data[offFourCC:]); got != c.fourCC {
			t.Fatalf("%v %+v: FourCC got %#x want %#x", c.format, c.opts, got, c.fourCC)
		}
		got, hdr, err := dds.DDSCodec{}.Decode(data)
		if err != nil {
			t.Fatalf("%v: Decode: %v", c.format, err)
		}
		if got.Metadata.Format != c.format {
			t.Fatalf("%v %+v: decoded format %v", c.format, c.opts, got.Metadata.Format)
		}
		if hdr.DX10 != (c.fourCC == dds.MakeFourCC('D', 'X', '1', '0')) {
			t.Fatalf("%v: DX10 got %v", c.format, hdr.DX10)
		}
	}
}

func TestDDSCodec_Cubemaps(t *testing.T) {
	one := patterned(t, dds.ImageMetadata{
		Width: 4, Height: 4, Depth: 1, ArraySize: 6, MipLevels: 2, Format: dds.FormatBC1Unorm, IsCubemap: true,
	})
	data := encodeFile(t, one, dds.FileOptions{})
	if caps2 := binary.LittleEndian.Uint32(data[offCaps2:]); caps2&0xFE00 != 0xFE00 {
		t.Fatalf("single cube caps2: got %#x want all faces", caps2)
	}
	got, _, err := dds.DDSCodec{}.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(one, got); diff != "" {
		t.Fatalf("cube round trip (-want +got):\n%s", diff)
	}

	two := patterned(t, dds.ImageMetadata{
		Width: 4, Height: 4, Depth: 1, ArraySize: 12, MipLevels: 1, Format: dds.FormatBC1Unorm, IsCubemap: true,
	})
	data = encodeFile(t, two, dds.FileOptions{})
	if got := binary.LittleEndian.Uint32(data[offDX10Array:]); got != 2 {
		t.Fatalf("cube array DX10 array size: got %d want 2", got)
	}
	if got := binary.LittleEndian.Uint32(data[offDX10Misc:]); got&0x4 == 0 {
		t.Fatalf("cube array misc flag: got %#x want cube bit", got)
	}
	got, _, err = dds.DDSCodec{}.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(two, got); diff != "" {
		t.Fatalf("cube array round trip (-want +got):\n%s", diff)
	}
}

func TestDDSCodec_Volume(t *testing.T) {
	img := patterned(t, dds.ImageMetadata{
		Width: 8, Height: 4, Depth: 4, ArraySize: 1, MipLevels: 3, Format: dds.FormatR8G8B8A8Unorm, IsVolumeMap: true,
	})
	got, _, err := dds.DDSCodec{}.Decode(encodeFile(t, img, dds.FileOptions{}))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(img, got); diff != "" {
		t.Fatalf("volume round trip (-want +got):\n%s", diff)
	}
}

func TestDDSCodec_AlphaModeInDX10(t *testing.T) {
	img := patterned(t, dds.ImageMetadata{
		Width: 4, Height: 4, Depth: 1, ArraySize: 1, MipLevels: 1, Format: dds.FormatBC7Unorm,
		AlphaMode: dds.AlphaModePremultiplied,
	})
	got, hdr, err := dds.DDSCodec{}.Decode(encodeFile(t, img, dds.FileOptions{}))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if hdr.AlphaMode != dds.AlphaModePremultiplied || got.Metadata.AlphaMode != dds.AlphaModePremultiplied {
		t.Fatalf("alpha mode: header %v image %v want premultiplied", hdr.AlphaMode, got.Metadata.AlphaMode)
	}
}

func TestDDSCodec_LegacyOnlyArrays(t *testing.T) {
	img := patterned(t, dds.ImageMetadata{
		Width: 4, Height: 4, Depth: 1, ArraySize: 2, MipLevels: 1, Format: dds.FormatLegacyB8G8R8,
	})
	err := (dds.DDSCodec{}).Encode(&bytes.Buffer{}, img, dds.FileOptions{})
	wantCode(t, "Encode(B8G8R8 array)", err, dds.ErrUnsupportedFormat)
}

func TestDDSCodec_AlphaOnlyTolerance(t *testing.T) {
	img := patterned(t, dds.ImageMetadata{Width: 4, Height: 4, Depth: 1, ArraySize: 1, MipLevels: 1, Format: dds.FormatA8Unorm})
	data := encodeFile(t, img, dds.FileOptions{})
	// Some writers also set DDPF_ALPHAPIXELS on alpha-only surfaces.
	flags := binary.LittleEndian.Uint32(data[offPFFlags:])
	binary.LittleEndian.PutUint32(data[offPFFlags:], flags|0x1)
	got, _, err := dds.DDSCodec{}.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Metadata.Format != dds.FormatA8Unorm {
		t.Fatalf("format: got %v want %v", got.Metadata.Format, dds.FormatA8Unorm)
	}
}

func TestDDSCodec_DecodeErrors(t *testing.T) {
	img := patterned(t, dds.ImageMetadata{Width: 4, Height: 4, Depth: 1, ArraySize: 1, MipLevels: 1, Format: dds.FormatBC1Unorm})
	data := encodeFile(t, img, dds.FileOptions{})

	_, _, err := dds.DDSCodec{}.Decode(data[:60])
	wantCode(t, "Decode(short header)", err, dds.ErrInvalidArgument)

	bad := append([]byte(nil), data...)
	copy(bad, "DDX ")
	_, _, err = dds.DDSCodec{}.Decode(bad)
	wantCode(t, "Decode(bad magic)", err, dds.ErrInvalidArgument)

	bad = append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[offFourCC:], dds.MakeFourCC('Z', 'Z', 'Z', 'Z'))
	_, _, err = dds.DDSCodec{}.Decode(bad)
	wantCode(t, "Decode(unknown FourCC)", err, dds.ErrUnsupportedFormat)

	_, _, err = dds.DDSCodec{}.Decode(data[:len(data)-1])
	wantCode(t, "Decode(truncated pixels)", err, dds.ErrInvalidArgument)
}

func TestDDSCodec_OversizedHeaderRejectedBeforeAllocating(t *testing.T) {
	small := patterned(t, dds.ImageMetadata{Width: 4, Height: 4, Depth: 1, ArraySize: 1, MipLevels: 1, Format: dds.FormatR8G8B8A8Unorm})
	huge := encodeFile(t, small, dds.FileOptions{})
	binary.LittleEndian.PutUint32(huge[12:], 16384)
	binary.LittleEndian.PutUint32(huge[16:], 16384)

	bc7 := patterned(t, dds.ImageMetadata{Width: 4, Height: 4, Depth: 1, ArraySize: 2, MipLevels: 1, Format: dds.FormatBC7Unorm})
	manyItems := encodeFile(t, bc7, dds.FileOptions{})
	binary.LittleEndian.PutUint32(manyItems[offDX10Array:], 1<<30)

	for _, c := range []struct {
		name string
		data []byte
	}{
		{"16384x16384 legacy", huge},
		{"2^30 array items", manyItems},
	} {
		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)
		_, _, err := dds.DDSCodec{}.Decode(c.data)
		runtime.ReadMemStats(&after)
		wantCode(t, "Decode("+c.name+")", err, dds.ErrInvalidArgument)
		if got := after.TotalAlloc - before.TotalAlloc; got > 1<<20 {
			t.Fatalf("Decode(%s): got %d bytes allocated want at most %d", c.name, got, 1<<20)
		}
	}
}

func TestDDSCodec_PartialCubemap(t *testing.T) {
	img := patterned(t, dds.ImageMetadata{
		Width: 4, Height: 4, Depth: 1, ArraySize: 6, MipLevels: 1, Format: dds.FormatR8G8B8A8Unorm, IsCubemap: true,
	})
	data := encodeFile(t, img, dds.FileOptions{})
	caps2 := binary.LittleEndian.Uint32(data[offCaps2:])
	binary.LittleEndian.PutUint32(data[offCaps2:], caps2&^0x8000)
	_, _, err := dds.DDSCodec{}.Decode(data)
	wantCode(t, "Decode(5 faces)", err, dds.ErrUnsupportedFormat)
}
