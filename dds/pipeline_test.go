package dds_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ddsplus/ddsplus/dds"
)

func saveAs(t *testing.T, img *dds.TextureImage, ff dds.FileFormat, edit func(*dds.SaveOptions)) []byte {
	t.Helper()
	opts := dds.DefaultSaveOptions()
	opts.Format = ff
	opts.Compression.HardwareAcceleration = false
	if edit != nil {
		edit(&opts)
	}
	data, err := dds.Save(img, opts)
	if err != nil {
		t.Fatalf("Save(%v): %v", ff, err)
	}
	return data
}

func decodeFile(t *testing.T, data []byte) (*dds.TextureImage, dds.ContainerHeader) {
	t.Helper()
	img, hdr, err := dds.DDSCodec{}.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return img, hdr
}

func TestSaveLoad_RGBA8Lossless(t *testing.T) {
	img := newRGBA8(t, 16, 16, gradient)
	data := saveAs(t, img, dds.FileFormatR8G8B8A8, nil)
	meta, got, err := dds.Load(data, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantMeta := dds.ImageMetadata{
		Width: 16, Height: 16, Depth: 1, ArraySize: 1, MipLevels: 1,
		Format: dds.FormatR8G8B8A8Unorm,
	}
	if diff := cmp.Diff(wantMeta, meta); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if !bytes.Equal(got.Slices[0].Pixels, img.Slices[0].Pixels) {
		t.Fatalf("pixels changed through Save/Load")
	}
}

func TestSaveLoad_EveryFileFormat(t *testing.T) {
	img := newRGBA8(t, 8, 8, gradient)
	for _, ff := range dds.FileFormats() {
		data := saveAs(t, img, ff, nil)
		target, _, err := ff.Target()
		if err != nil {
			t.Fatalf("%v: Target: %v", ff, err)
		}
		meta, out, err := dds.Load(data, nil)
		if err != nil {
			t.Fatalf("%v: Load: %v", ff, err)
		}
		if meta.Format != target {
			t.Fatalf("%v: format: got %v want %v", ff, meta.Format, target)
		}
		if f := out.Metadata.Format; f != dds.FormatR8G8B8A8Unorm && f != dds.FormatR8G8B8A8UnormSRGB {
			t.Fatalf("%v: loaded format: got %v want RGBA8", ff, f)
		}
		if out.Metadata.Width != 8 || out.Metadata.Height != 8 {
			t.Fatalf("%v: size: got %dx%d", ff, out.Metadata.Width, out.Metadata.Height)
		}
	}
}

func TestSave_SRGBTargetKeepsBytes(t *testing.T) {
	img := newRGBA8(t, 4, 4, gradient)
	data := saveAs(t, img, dds.FileFormatR8G8B8A8Srgb, nil)
	meta, out, err := dds.Load(data, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Format != dds.FormatR8G8B8A8UnormSRGB || out.Metadata.Format != dds.FormatR8G8B8A8UnormSRGB {
		t.Fatalf("format: got %v / %v want sRGB", meta.Format, out.Metadata.Format)
	}
	if !bytes.Equal(out.Slices[0].Pixels, img.Slices[0].Pixels) {
		t.Fatalf("sRGB save altered pixel values")
	}
}

func TestSave_AlphaMode(t *testing.T) {
	opaque := newRGBA8(t, 4, 4, func(x, y int) [4]uint8 { return [4]uint8{1, 2, 3, 255} })
	_, hdr := decodeFile(t, saveAs(t, opaque, dds.FileFormatBC7, nil))
	if hdr.AlphaMode != dds.AlphaModeOpaque {
		t.Fatalf("opaque image: got %v want opaque", hdr.AlphaMode)
	}
	_, hdr = decodeFile(t, saveAs(t, newRGBA8(t, 4, 4, gradient), dds.FileFormatBC7, nil))
	if hdr.AlphaMode != dds.AlphaModeStraight {
		t.Fatalf("translucent image: got %v want straight", hdr.AlphaMode)
	}
}

func TestSave_PremultipliedBC3IsDXT4(t *testing.T) {
	img := newRGBA8(t, 8, 8, func(x, y int) [4]uint8 { return [4]uint8{200, 100, 50, 51} })
	data := saveAs(t, img, dds.FileFormatBC3, func(o *dds.SaveOptions) { o.Premultiply = true })
	_, hdr := decodeFile(t, data)
	if hdr.FourCC != dds.MakeFourCC('D', 'X', 'T', '4') {
		t.Fatalf("FourCC: got %#x want DXT4", hdr.FourCC)
	}
	meta, out, err := dds.Load(data, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !meta.PremultipliedAlpha() {
		t.Fatalf("metadata: premultiplied alpha not reported")
	}
	if out.Metadata.AlphaMode != dds.AlphaModeStraight {
		t.Fatalf("loaded alpha mode: got %v want straight", out.Metadata.AlphaMode)
	}
	got := pixelAt(&out.Slices[0], 3, 3)
	for c, want := range [4]uint8{200, 100, 50, 51} {
		if absDiff(got[c], want) > 16 {
			t.Fatalf("unpremultiplied pixel: got %v want ~[200 100 50 51]", got)
		}
	}
}

func TestSave_RXGBSwizzle(t *testing.T) {
	img := newRGBA8(t, 4, 4, func(x, y int) [4]uint8 { return [4]uint8{240, 120, 60, 255} })
	data := saveAs(t, img, dds.FileFormatBC3Rxgb, nil)
	_, hdr := decodeFile(t, data)
	if hdr.FourCC != dds.MakeFourCC('R', 'X', 'G', 'B') {
		t.Fatalf("FourCC: got %#x want RXGB", hdr.FourCC)
	}
	meta, out, err := dds.Load(data, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Swizzle != dds.SwizzleXGBR {
		t.Fatalf("swizzle: got %v want %v", meta.Swizzle, dds.SwizzleXGBR)
	}
	// Red lives in alpha until the host undoes the swizzle.
	if got := pixelAt(&out.Slices[0], 0, 0)[3]; absDiff(got, 240) > 1 {
		t.Fatalf("stored alpha: got %d want 240", got)
	}
	plain, err := meta.Swizzle.Unswizzle(out)
	if err != nil {
		t.Fatalf("Unswizzle: %v", err)
	}
	got := pixelAt(&plain.Slices[0], 0, 0)
	for c, want := range [4]uint8{240, 120, 60, 255} {
		if absDiff(got[c], want) > 8 {
			t.Fatalf("unswizzled: got %v want ~[240 120 60 255]", got)
		}
	}
}

func TestSave_MipGeneration(t *testing.T) {
	cases := []struct {
		w, h     int
		allowOdd bool
		mips     int
	}{
		{32, 32, false, 6},
		{33, 32, false, 1},
		{32, 17, false, 1},
		{33, 32, true, 6},
	}
	for _, c := range cases {
		img := newRGBA8(t, c.w, c.h, gradient)
		data := saveAs(t, img, dds.FileFormatBC1, func(o *dds.SaveOptions) {
			o.GenerateMipMaps = true
			o.AllowOddMipDimensions = c.allowOdd
		})
		got, _ := decodeFile(t, data)
		if got.Metadata.MipLevels != c.mips {
			t.Fatalf("%dx%d allowOdd=%v: mips got %d want %d", c.w, c.h, c.allowOdd, got.Metadata.MipLevels, c.mips)
		}
	}
}

func TestSave_ProgressPercent(t *testing.T) {
	var seen []float64
	saveAs(t, newRGBA8(t, 16, 16, gradient), dds.FileFormatBC1, func(o *dds.SaveOptions) {
		o.Compression.Workers = 1
		o.Progress = func(p float64) bool {
			seen = append(seen, p)
			return true
		}
	})
	if len(seen) < 2 || seen[0] != 0 || seen[len(seen)-1] != 100 {
		t.Fatalf("progress: got %v want 0 ... 100", seen)
	}
}

func TestSave_CubemapFromCross(t *testing.T) {
	faces := cubeFaces(t, 32)
	cross, err := dds.ToCross(faces)
	if err != nil {
		t.Fatalf("ToCross: %v", err)
	}
	data := saveAs(t, cross, dds.FileFormatR8G8B8A8, func(o *dds.SaveOptions) { o.CubemapFromCross = true })
	file, _ := decodeFile(t, data)
	if !file.Metadata.IsCubemap || file.Metadata.ArraySize != 6 || file.Metadata.Width != 32 {
		t.Fatalf("file metadata: got %+v", file.Metadata)
	}

	opts := dds.DefaultLoadOptions()
	opts.KeepCubemap = true
	_, kept, err := dds.Load(data, &opts)
	if err != nil {
		t.Fatalf("Load(KeepCubemap): %v", err)
	}
	for face := 0; face < 6; face++ {
		if !bytes.Equal(kept.Slice(0, face, 0).Pixels, faces.Slice(0, face, 0).Pixels) {
			t.Fatalf("face %d differs", face)
		}
	}

	_, flat, err := dds.Load(data, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if flat.Metadata.Width != 128 || flat.Metadata.Height != 96 || flat.Metadata.IsCubemap {
		t.Fatalf("cross metadata: got %+v", flat.Metadata)
	}
	if !bytes.Equal(flat.Slices[0].Pixels, cross.Slices[0].Pixels) {
		t.Fatalf("cross differs after Save/Load")
	}
}

func TestSave_RejectsCompressedInput(t *testing.T) {
	data := saveAs(t, newRGBA8(t, 4, 4, gradient), dds.FileFormatBC1, nil)
	bc1, _ := decodeFile(t, data)
	_, err := dds.Save(bc1, dds.DefaultSaveOptions())
	wantCode(t, "Save(BC1 image)", err, dds.ErrInvalidArgument)
}

func typelessFile(t *testing.T, f dds.Format) []byte {
	t.Helper()
	img, err := dds.NewTextureImage(dds.ImageMetadata{
		Width: 4, Height: 4, Depth: 1, ArraySize: 1, MipLevels: 1, Format: f,
	})
	if err != nil {
		t.Fatalf("NewTextureImage: %v", err)
	}
	var buf bytes.Buffer
	if err := (dds.DDSCodec{}).Encode(&buf, img, dds.FileOptions{}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return buf.Bytes()
}

func TestLoad_Typeless(t *testing.T) {
	_, _, err := dds.Load(typelessFile(t, dds.FormatR32G32B32A32Typeless), nil)
	wantCode(t, "Load(R32G32B32A32_TYPELESS)", err, dds.ErrUnsupportedFormat)

	meta, _, err := dds.Load(typelessFile(t, dds.FormatR8G8B8A8Typeless), nil)
	if err != nil {
		t.Fatalf("Load(R8G8B8A8_TYPELESS): %v", err)
	}
	if meta.Format != dds.FormatR8G8B8A8Unorm {
		t.Fatalf("format: got %v want %v", meta.Format, dds.FormatR8G8B8A8Unorm)
	}
}

func TestLoad_BadInput(t *testing.T) {
	_, _, err := dds.Load([]byte{}, nil)
	wantCode(t, "Load(empty)", err, dds.ErrInvalidArgument)

	junk := []byte("not an image at all")
	_, _, err = dds.Load(junk, nil)
	wantCode(t, "Load(junk)", err, dds.ErrUnsupportedFormat)

	_, _, err = dds.Load(junk, &dds.LoadOptions{})
	wantCode(t, "Load(junk, no detection)", err, dds.ErrInvalidArgument)

	data := saveAs(t, newRGBA8(t, 16, 16, gradient), dds.FileFormatBC1, nil)
	_, _, err = dds.Load(data[:len(data)-10], nil)
	wantCode(t, "Load(truncated)", err, dds.ErrInvalidArgument)
}

func TestLoad_ArraysNeedOptIn(t *testing.T) {
	img, err := dds.NewTextureImage(dds.ImageMetadata{
		Width: 4, Height: 4, Depth: 1, ArraySize: 3, MipLevels: 1, Format: dds.FormatR8G8B8A8Unorm,
	})
	if err != nil {
		t.Fatalf("NewTextureImage: %v", err)
	}
	var buf bytes.Buffer
	if err := (dds.DDSCodec{}).Encode(&buf, img, dds.FileOptions{}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, _, err = dds.Load(buf.Bytes(), nil)
	wantCode(t, "Load(array)", err, dds.ErrUnsupportedFormat)

	opts := dds.DefaultLoadOptions()
	opts.AllowArrays = true
	meta, out, err := dds.Load(buf.Bytes(), &opts)
	if err != nil {
		t.Fatalf("Load(array, AllowArrays): %v", err)
	}
	if meta.ArraySize != 3 || out.Metadata.ArraySize != 3 {
		t.Fatalf("array size: got %d / %d want 3", meta.ArraySize, out.Metadata.ArraySize)
	}
}

func TestLoad_PNGFallback(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			src.SetNRGBA(x, y, color.NRGBA{uint8(x * 50), uint8(y * 80), 7, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	if got := dds.DetectForeignFormat(buf.Bytes()); got != dds.ForeignPNG {
		t.Fatalf("DetectForeignFormat: got %q want %q", got, dds.ForeignPNG)
	}
	meta, img, err := dds.LoadFrom(&buf, nil)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if meta.Width != 5 || meta.Height != 3 || meta.Format != dds.FormatR8G8B8A8Unorm {
		t.Fatalf("metadata: got %+v", meta)
	}
	back, err := dds.ToImage(img)
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	if !bytes.Equal(back.Pix, src.Pix) {
		t.Fatalf("pixels differ after PNG fallback")
	}
}

func TestDetectForeignFormat(t *testing.T) {
	cases := []struct {
		data []byte
		want dds.ForeignFormat
	}{
		{[]byte("BM\x00\x00"), dds.ForeignBMP},
		{[]byte{0xff, 0xd8, 0xff, 0xe0}, dds.ForeignJPEG},
		{[]byte("GIF89a..."), dds.ForeignGIF},
		{[]byte{0x49, 0x49, 0x2a, 0x00, 1}, dds.ForeignTIFF},
		{[]byte("RIFF\x00\x00\x00\x00WEBPVP8 "), dds.ForeignWebP},
		{append([]byte{0, 0, 2}, []byte("TRUEVISION-XFILE.\x00")...), dds.ForeignTGA},
		{[]byte("DDS \x7c"), dds.ForeignNone},
	}
	for _, c := range cases {
		if got := dds.DetectForeignFormat(c.data); got != c.want {
			t.Fatalf("DetectForeignFormat(%q): got %q want %q", c.data, got, c.want)
		}
	}
}
