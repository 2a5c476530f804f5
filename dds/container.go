package dds

import (
	"bytes"
	"encoding/binary"
	"io"
)

// ContainerCodec reads and writes a texture container.
type ContainerCodec interface {
	Decode(data []byte) (*TextureImage, ContainerHeader, error)
	Encode(w io.Writer, img *TextureImage, opts FileOptions) error
}

var ddsMagic = [4]byte{'D', 'D', 'S', ' '}

const (
	ddsHeaderSize      = 124
	ddsPixelFormatSize = 32
	ddsDX10HeaderSize  = 20
)

// Header flags.
const (
	hdrCaps        = 0x1
	hdrHeight      = 0x2
	hdrWidth       = 0x4
	hdrPitch       = 0x8
	hdrPixelFormat = 0x1000
	hdrMipMapCount = 0x20000
	hdrLinearSize  = 0x80000
	hdrDepth       = 0x800000
)

// Caps.
const (
	capsComplex = 0x8
	capsTexture = 0x1000
	capsMipMap  = 0x400000

	caps2Cubemap    = 0x200
	caps2AllFaces   = 0xFC00
	caps2Volume     = 0x200000
	dx10MiscCube    = 0x4
	dx10AlphaMask   = 0x7
	dimTexture2D    = 3
	dimTexture3D    = 4
	fourCCDX10Value = 0x30315844 // "DX10"
)

type ddsPixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      uint32
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

type ddsHeader struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       ddsPixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

type ddsHeaderDX10 struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// IsDDS reports whether data starts with the DDS magic.
func IsDDS(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], ddsMagic[:])
}

// DDSCodec reads and writes DirectDraw Surface files, with or without the
// DX10 extension header.
type DDSCodec struct{}

func (DDSCodec) Decode(data []byte) (*TextureImage, ContainerHeader, error) {
	var ch ContainerHeader
	if !IsDDS(data) {
		return nil, ch, newError(ErrInvalidArgument, "dds: missing DDS magic")
	}
	r := bytes.NewReader(data[4:])
	var h ddsHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, ch, wrapError(ErrInvalidArgument, "dds: truncated header", err)
	}
	if h.Size != ddsHeaderSize || h.PixelFormat.Size != ddsPixelFormatSize {
		return nil, ch, newErrorf(ErrInvalidArgument, "dds: bad header size %d/%d", h.Size, h.PixelFormat.Size)
	}

	meta := ImageMetadata{
		Width:     int(h.Width),
		Height:    int(h.Height),
		Depth:     1,
		ArraySize: 1,
		MipLevels: max(int(h.MipMapCount), 1),
	}
	if h.Caps2&caps2Volume != 0 {
		meta.IsVolumeMap = true
		meta.Depth = max(int(h.Depth), 1)
	}

	pf := h.PixelFormat
	ch.FourCC = pf.FourCC
	if pf.Flags&pfFourCC != 0 && pf.FourCC == fourCCDX10Value {
		var x ddsHeaderDX10
		if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
			return nil, ch, wrapError(ErrInvalidArgument, "dds: truncated DX10 header", err)
		}
		ch.DX10 = true
		ch.FourCC = 0
		ch.AlphaMode = AlphaMode(x.MiscFlags2 & dx10AlphaMask)
		meta.Format = Format(x.DXGIFormat)
		meta.ArraySize = max(int(x.ArraySize), 1)
		switch x.ResourceDimension {
		case dimTexture3D:
			meta.IsVolumeMap = true
			meta.Depth = max(int(h.Depth), 1)
			meta.ArraySize = 1
		default:
			meta.IsVolumeMap = false
			meta.Depth = 1
		}
		if x.MiscFlag&dx10MiscCube != 0 {
			meta.IsCubemap = true
			meta.ArraySize *= 6
		}
	} else {
		f, ok := legacyFormatOf(pf)
		if !ok {
			return nil, ch, newErrorf(ErrUnsupportedFormat, "dds: unsupported pixel format (flags %#x, fourcc %q, %d bits)",
				pf.Flags, fourCCString(pf.FourCC), pf.RGBBitCount)
		}
		meta.Format = f
		if h.Caps2&caps2Cubemap != 0 {
			if h.Caps2&caps2AllFaces != caps2AllFaces {
				return nil, ch, newError(ErrUnsupportedFormat, "dds: partial cubemaps are not supported")
			}
			meta.IsCubemap = true
			meta.ArraySize = 6
		}
	}
	if _, ok := meta.Format.Info(); !ok {
		return nil, ch, newErrorf(ErrUnsupportedFormat, "dds: unsupported DXGI format %d", uint32(meta.Format))
	}
	meta.AlphaMode = ch.AlphaMode
	if err := meta.Validate(); err != nil {
		return nil, ch, err
	}

	payload := data[len(data)-r.Len():]
	need, err := fileDataSize(meta, len(payload))
	if err != nil {
		return nil, ch, err
	}
	if need > len(payload) {
		return nil, ch, newErrorf(ErrInvalidArgument, "dds: truncated pixel data: need at least %d bytes, have %d", need, len(payload))
	}
	img, err := NewTextureImage(meta)
	if err != nil {
		return nil, ch, err
	}
	off := 0
	err = forEachFileSlice(img, func(s *Slice) error {
		n := len(s.Pixels)
		if off+n > len(payload) {
			return newErrorf(ErrInvalidArgument, "dds: truncated pixel data: need %d bytes, have %d", off+n, len(payload))
		}
		copy(s.Pixels, payload[off:off+n])
		off += n
		return nil
	})
	if err != nil {
		return nil, ch, err
	}
	return img, ch, nil
}

// fileDataSize sums the stored size of every surface in file order. It stops
// counting once the total passes limit.
func fileDataSize(m ImageMetadata, limit int) (int, error) {
	total := 0
	for item := 0; item < m.ArraySize; item++ {
		for mip := 0; mip < m.MipLevels; mip++ {
			w, h, d := m.MipSize(mip)
			pitch, rows, err := rowPitch(m.Format, w, h)
			if err != nil {
				return 0, err
			}
			for z := 0; z < d; z++ {
				total += pitch * rows
				if total > limit {
					return total, nil
				}
			}
		}
	}
	return total, nil
}

// forEachFileSlice visits slices in file order: every mip of an array item
// before the next item.
func forEachFileSlice(img *TextureImage, fn func(s *Slice) error) error {
	m := img.Metadata
	for item := 0; item < m.ArraySize; item++ {
		for mip := 0; mip < m.MipLevels; mip++ {
			_, _, d := m.MipSize(mip)
			for z := 0; z < d; z++ {
				if err := fn(img.Slice(mip, item, z)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (DDSCodec) Encode(w io.Writer, img *TextureImage, opts FileOptions) error {
	if err := img.check(); err != nil {
		return err
	}
	m := img.Metadata
	fi, _ := m.Format.Info()

	h := ddsHeader{
		Size:        ddsHeaderSize,
		Flags:       hdrCaps | hdrHeight | hdrWidth | hdrPixelFormat,
		Height:      uint32(m.Height),
		Width:       uint32(m.Width),
		MipMapCount: uint32(m.MipLevels),
		Caps:        capsTexture,
	}
	h.PixelFormat.Size = ddsPixelFormatSize
	if m.MipLevels > 1 {
		h.Flags |= hdrMipMapCount
		h.Caps |= capsComplex | capsMipMap
	}
	pitch, rows, err := rowPitch(m.Format, m.Width, m.Height)
	if err != nil {
		return err
	}
	if fi.Compressed {
		h.Flags |= hdrLinearSize
		h.PitchOrLinearSize = uint32(pitch * rows)
	} else {
		h.Flags |= hdrPitch
		h.PitchOrLinearSize = uint32(pitch)
	}
	if m.IsVolumeMap {
		h.Flags |= hdrDepth
		h.Depth = uint32(m.Depth)
		h.Caps |= capsComplex
		h.Caps2 |= caps2Volume
	}
	if m.IsCubemap {
		h.Caps |= capsComplex
		h.Caps2 |= caps2Cubemap | caps2AllFaces
	}

	// Arrays, including more than one cube, need the DX10 header.
	items := m.ArraySize
	if m.IsCubemap {
		items /= 6
	}
	pf, legacy := legacyPixelFormat(m.Format, m, opts)
	if items > 1 {
		if legacyOnly(m.Format) {
			return newErrorf(ErrUnsupportedFormat, "dds: %v cannot be stored as an array", m.Format)
		}
		legacy = false
	}

	var buf bytes.Buffer
	buf.Write(ddsMagic[:])
	if legacy {
		h.PixelFormat = pf
		binary.Write(&buf, binary.LittleEndian, &h)
	} else {
		h.PixelFormat.Flags = pfFourCC
		h.PixelFormat.FourCC = fourCCDX10Value
		x := ddsHeaderDX10{
			DXGIFormat:        uint32(m.Format),
			ResourceDimension: dimTexture2D,
			ArraySize:         uint32(items),
			MiscFlags2:        uint32(m.AlphaMode) & dx10AlphaMask,
		}
		if m.IsVolumeMap {
			x.ResourceDimension = dimTexture3D
		}
		if m.IsCubemap {
			x.MiscFlag |= dx10MiscCube
		}
		binary.Write(&buf, binary.LittleEndian, &h)
		binary.Write(&buf, binary.LittleEndian, &x)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	return forEachFileSlice(img, func(s *Slice) error {
		p, rows, err := rowPitch(m.Format, s.Width, s.Height)
		if err != nil {
			return err
		}
		for y := 0; y < rows; y++ {
			if _, err := w.Write(s.Pixels[y*s.RowPitch : y*s.RowPitch+p]); err != nil {
				return err
			}
		}
		return nil
	})
}
