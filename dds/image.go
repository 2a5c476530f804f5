package dds

// AlphaMode describes how the alpha channel relates to colour.
type AlphaMode uint8

const (
	AlphaModeUnknown AlphaMode = iota
	AlphaModeStraight
	AlphaModePremultiplied
	AlphaModeOpaque
	AlphaModeCustom
)

func (m AlphaMode) String() string {
	switch m {
	case AlphaModeStraight:
		return "straight"
	case AlphaModePremultiplied:
		return "premultiplied"
	case AlphaModeOpaque:
		return "opaque"
	case AlphaModeCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ImageMetadata describes the shape and format of a TextureImage.
type ImageMetadata struct {
	Width, Height, Depth int
	ArraySize            int
	MipLevels            int
	Format               Format

	IsCubemap   bool
	IsVolumeMap bool
	AlphaMode   AlphaMode

	// Swizzle is advisory; the pipeline never applies it.
	Swizzle SwizzleHint
}

// PremultipliedAlpha reports whether colour is stored pre-scaled by alpha.
func (m ImageMetadata) PremultipliedAlpha() bool { return m.AlphaMode == AlphaModePremultiplied }

// Validate checks the structural invariants of m.
func (m ImageMetadata) Validate() error {
	if m.Width < 1 || m.Height < 1 {
		return newErrorf(ErrInvalidArgument, "dds: invalid dimensions %dx%d", m.Width, m.Height)
	}
	if m.MipLevels < 1 {
		return newError(ErrInvalidArgument, "dds: mip level count must be at least 1")
	}
	if m.ArraySize < 1 {
		return newError(ErrInvalidArgument, "dds: array size must be at least 1")
	}
	if m.depth() < 1 {
		return newError(ErrInvalidArgument, "dds: depth must be at least 1")
	}
	if m.IsCubemap {
		if m.ArraySize%6 != 0 {
			return newErrorf(ErrInvalidArgument, "dds: cubemap array size %d is not a multiple of 6", m.ArraySize)
		}
		if m.Width != m.Height {
			return newError(ErrInvalidArgument, "dds: cubemap faces must be square")
		}
	}
	if m.IsVolumeMap && (m.ArraySize != 1 || m.IsCubemap) {
		return newError(ErrInvalidArgument, "dds: volume maps cannot be arrays or cubemaps")
	}
	if m.MipLevels > fullMipCount(m.Width, m.Height, m.depth()) {
		return newErrorf(ErrInvalidArgument, "dds: %d mip levels exceed the full chain", m.MipLevels)
	}
	if _, ok := m.Format.Info(); !ok {
		return newErrorf(ErrUnsupportedFormat, "dds: unknown format %v", m.Format)
	}
	return nil
}

func (m ImageMetadata) depth() int {
	if !m.IsVolumeMap {
		return 1
	}
	return m.Depth
}

// MipSize returns the dimensions of mip level mip.
func (m ImageMetadata) MipSize(mip int) (w, h, d int) {
	return mipDim(m.Width, mip), mipDim(m.Height, mip), mipDim(m.depth(), mip)
}

func mipDim(v, mip int) int {
	v >>= uint(mip)
	if v < 1 {
		return 1
	}
	return v
}

// fullMipCount returns 1 + floor(log2(max(w, h, d))).
func fullMipCount(w, h, d int) int {
	m := max(w, h, d)
	n := 1
	for m > 1 {
		m >>= 1
		n++
	}
	return n
}

// Slice is one (mip, item, depth) pixel surface.
type Slice struct {
	Width, Height int
	// RowPitch is the byte stride of one row, or of one block row for
	// compressed formats.
	RowPitch int
	Pixels   []byte
}

// TextureImage is a set of slices ordered mip-major: for every mip, every
// array item (or depth slice of a volume).
type TextureImage struct {
	Metadata ImageMetadata
	Slices   []Slice
}

// NewTextureImage allocates a tightly packed, zeroed image for meta.
func NewTextureImage(meta ImageMetadata) (*TextureImage, error) {
	if meta.Depth == 0 {
		meta.Depth = 1
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	img := &TextureImage{Metadata: meta}
	total := 0
	for mip := 0; mip < meta.MipLevels; mip++ {
		w, h, d := meta.MipSize(mip)
		pitch, rows, err := rowPitch(meta.Format, w, h)
		if err != nil {
			return nil, err
		}
		n := meta.ArraySize * d
		for i := 0; i < n; i++ {
			if total > maxSurfaceBytes-pitch*rows {
				return nil, newError(ErrOutOfMemory, "dds: image size overflow")
			}
			total += pitch * rows
			img.Slices = append(img.Slices, Slice{
				Width:    w,
				Height:   h,
				RowPitch: pitch,
				Pixels:   make([]byte, pitch*rows),
			})
		}
	}
	return img, nil
}

// SliceIndex returns the index of (mip, item, z) in Slices, or -1.
func (img *TextureImage) SliceIndex(mip, item, z int) int {
	m := img.Metadata
	if mip < 0 || mip >= m.MipLevels || item < 0 || item >= m.ArraySize {
		return -1
	}
	idx := 0
	for l := 0; l < mip; l++ {
		_, _, d := m.MipSize(l)
		idx += m.ArraySize * d
	}
	_, _, d := m.MipSize(mip)
	if z < 0 || z >= d {
		return -1
	}
	return idx + item*d + z
}

// Slice returns the slice at (mip, item, z), or nil when out of range.
func (img *TextureImage) Slice(mip, item, z int) *Slice {
	i := img.SliceIndex(mip, item, z)
	if i < 0 || i >= len(img.Slices) {
		return nil
	}
	return &img.Slices[i]
}

// Clone returns a deep copy of img.
func (img *TextureImage) Clone() *TextureImage {
	out := &TextureImage{Metadata: img.Metadata, Slices: make([]Slice, len(img.Slices))}
	for i, s := range img.Slices {
		s.Pixels = append([]byte(nil), s.Pixels...)
		out.Slices[i] = s
	}
	return out
}

// check verifies that the slice list matches the metadata.
func (img *TextureImage) check() error {
	if img == nil {
		return newError(ErrInvalidArgument, "dds: nil image")
	}
	if err := img.Metadata.Validate(); err != nil {
		return err
	}
	m := img.Metadata
	want := 0
	for mip := 0; mip < m.MipLevels; mip++ {
		_, _, d := m.MipSize(mip)
		want += m.ArraySize * d
	}
	if len(img.Slices) != want {
		return newErrorf(ErrInvalidArgument, "dds: image has %d slices, want %d", len(img.Slices), want)
	}
	i := 0
	for mip := 0; mip < m.MipLevels; mip++ {
		w, h, d := m.MipSize(mip)
		minPitch, rows, err := rowPitch(m.Format, w, h)
		if err != nil {
			return err
		}
		for n := 0; n < m.ArraySize*d; n++ {
			s := img.Slices[i]
			i++
			if s.Width != w || s.Height != h {
				return newErrorf(ErrInvalidArgument, "dds: slice %d is %dx%d, want %dx%d", i-1, s.Width, s.Height, w, h)
			}
			if s.RowPitch < minPitch || len(s.Pixels) < s.RowPitch*rows {
				return newErrorf(ErrInvalidArgument, "dds: slice %d buffer too small", i-1)
			}
		}
	}
	return nil
}

// deriveImage allocates an image shaped like src with a different format.
func deriveImage(src ImageMetadata, f Format) (*TextureImage, error) {
	m := src
	m.Format = f
	return NewTextureImage(m)
}

// copySlice copies pixel rows between slices of the same format and size
// whose row pitches may differ.
func copySlice(f Format, dst, src *Slice) {
	pitch, rows, err := rowPitch(f, src.Width, src.Height)
	if err != nil {
		return
	}
	for y := 0; y < rows; y++ {
		copy(dst.Pixels[y*dst.RowPitch:y*dst.RowPitch+pitch], src.Pixels[y*src.RowPitch:])
	}
}
