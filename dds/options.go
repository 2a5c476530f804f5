package dds

import (
	"fmt"
	"strings"
)

// Filter selects a resampling kernel.
type Filter uint8

const (
	// FilterBox averages the source footprint (Fant). It is the default.
	FilterBox Filter = iota
	FilterNearest
	FilterLinear
	// FilterCubic is Catmull-Rom.
	FilterCubic
	// FilterWide is a Lanczos-3 windowed sinc.
	FilterWide
)

func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterLinear:
		return "linear"
	case FilterCubic:
		return "cubic"
	case FilterWide:
		return "wide"
	default:
		return "box"
	}
}

// ParseFilter parses the names returned by Filter.String.
func ParseFilter(s string) (Filter, error) {
	for f := FilterBox; f <= FilterWide; f++ {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return 0, newErrorf(ErrInvalidArgument, "dds: unknown filter %q", s)
}

// ErrorMetric weights channel errors when choosing block codewords.
type ErrorMetric uint8

const (
	// ErrorMetricPerceptual weights luma (Rec. 709 coefficients).
	ErrorMetricPerceptual ErrorMetric = iota
	ErrorMetricUniform
)

func (m ErrorMetric) String() string {
	if m == ErrorMetricUniform {
		return "uniform"
	}
	return "perceptual"
}

// channelWeights returns the RGBA error weights for m.
func (m ErrorMetric) channelWeights() [4]float32 {
	if m == ErrorMetricUniform {
		return [4]float32{1, 1, 1, 1}
	}
	return [4]float32{0.2126 * 3, 0.7152 * 3, 0.0722 * 3, 1}
}

// Speed trades encode time for quality on BC6H and BC7.
type Speed uint8

const (
	SpeedMedium Speed = iota
	SpeedFast
	SpeedSlow
)

func (s Speed) String() string {
	switch s {
	case SpeedFast:
		return "fast"
	case SpeedSlow:
		return "slow"
	default:
		return "medium"
	}
}

// ParseSpeed parses "fast", "medium" or "slow".
func ParseSpeed(s string) (Speed, error) {
	switch strings.ToLower(s) {
	case "fast":
		return SpeedFast, nil
	case "medium", "":
		return SpeedMedium, nil
	case "slow":
		return SpeedSlow, nil
	}
	return 0, newErrorf(ErrInvalidArgument, "dds: unknown speed %q", s)
}

// ParseErrorMetric parses "perceptual" or "uniform".
func ParseErrorMetric(s string) (ErrorMetric, error) {
	switch strings.ToLower(s) {
	case "perceptual", "":
		return ErrorMetricPerceptual, nil
	case "uniform":
		return ErrorMetricUniform, nil
	}
	return 0, newErrorf(ErrInvalidArgument, "dds: unknown error metric %q", s)
}

// CompressionOptions tunes block compression. The zero value is the default:
// perceptual metric, medium speed, no dither, software only, automatic workers.
type CompressionOptions struct {
	ErrorMetric ErrorMetric
	Speed       Speed
	// Dither enables ordered dithering for non compute-capable targets.
	Dither bool
	// HardwareAcceleration permits probing for a compute device.
	HardwareAcceleration bool
	// Workers bounds software parallelism; 0 uses the logical CPU count.
	Workers int
}

// DefaultCompressionOptions returns the options used by the pipeline when the
// caller supplies none.
func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{
		ErrorMetric:          ErrorMetricPerceptual,
		Speed:                SpeedMedium,
		HardwareAcceleration: true,
	}
}

// ConvertOptions controls uncompressed format conversion.
type ConvertOptions struct {
	Filter Filter
	Dither bool
}

// MipOptions controls mip chain generation.
type MipOptions struct {
	Filter Filter
	// Levels is the total level count including the base; 0 builds the full chain.
	Levels int
	// SeparateAlpha filters alpha independently of colour.
	SeparateAlpha bool
}

// DefaultMipOptions returns a box-filtered full chain with separate alpha.
func DefaultMipOptions() MipOptions {
	return MipOptions{Filter: FilterBox, SeparateAlpha: true}
}

// FileFormat is a save target as offered to users.
type FileFormat uint8

const (
	FileFormatBC1 FileFormat = iota
	FileFormatBC1Srgb
	FileFormatBC2
	FileFormatBC2Srgb
	FileFormatBC3
	FileFormatBC3Srgb
	FileFormatBC4Unsigned
	FileFormatBC5Unsigned
	FileFormatBC5Signed
	FileFormatBC6HUnsigned
	FileFormatBC7
	FileFormatBC7Srgb
	FileFormatB8G8R8A8
	FileFormatB8G8R8A8Srgb
	FileFormatB8G8R8X8
	FileFormatB8G8R8X8Srgb
	FileFormatR8G8B8A8
	FileFormatR8G8B8A8Srgb
	FileFormatR8G8B8X8
	FileFormatB5G5R5A1
	FileFormatB4G4R4A4
	FileFormatB5G6R5
	FileFormatB8G8R8
	FileFormatR8Unsigned
	FileFormatR8G8Unsigned
	FileFormatR8G8Signed
	FileFormatR32Float
	FileFormatBC4Ati1
	FileFormatBC5Ati2
	FileFormatBC3Rxgb

	fileFormatCount
)

var fileFormatNames = [fileFormatCount]string{
	"BC1", "BC1Srgb", "BC2", "BC2Srgb", "BC3", "BC3Srgb", "BC4Unsigned",
	"BC5Unsigned", "BC5Signed", "BC6HUnsigned", "BC7", "BC7Srgb", "B8G8R8A8",
	"B8G8R8A8Srgb", "B8G8R8X8", "B8G8R8X8Srgb", "R8G8B8A8", "R8G8B8A8Srgb",
	"R8G8B8X8", "B5G5R5A1", "B4G4R4A4", "B5G6R5", "B8G8R8", "R8Unsigned",
	"R8G8Unsigned", "R8G8Signed", "R32Float", "BC4Ati1", "BC5Ati2", "BC3Rxgb",
}

func (f FileFormat) String() string {
	if f < fileFormatCount {
		return fileFormatNames[f]
	}
	return fmt.Sprintf("FileFormat(%d)", uint8(f))
}

// ParseFileFormat parses a FileFormat name, case-insensitively.
func ParseFileFormat(s string) (FileFormat, error) {
	for i, n := range fileFormatNames {
		if strings.EqualFold(s, n) {
			return FileFormat(i), nil
		}
	}
	return 0, newErrorf(ErrInvalidArgument, "dds: unknown file format %q", s)
}

// FileFormats lists every save target in declaration order.
func FileFormats() []FileFormat {
	out := make([]FileFormat, fileFormatCount)
	for i := range out {
		out[i] = FileFormat(i)
	}
	return out
}

// FileOptions are container encoding flags.
type FileOptions struct {
	// ForceLegacyDX9 writes ATI1/ATI2 FourCCs for BC4/BC5.
	ForceLegacyDX9 bool
	// ForceBC3ToRXGB writes the RXGB FourCC for BC3 data.
	ForceBC3ToRXGB bool
}

// Target returns the pixel format and container flags written for f.
func (f FileFormat) Target() (Format, FileOptions, error) {
	var opts FileOptions
	var out Format
	switch f {
	case FileFormatBC1:
		out = FormatBC1Unorm
	case FileFormatBC1Srgb:
		out = FormatBC1UnormSRGB
	case FileFormatBC2:
		out = FormatBC2Unorm
	case FileFormatBC2Srgb:
		out = FormatBC2UnormSRGB
	case FileFormatBC3:
		out = FormatBC3Unorm
	case FileFormatBC3Srgb:
		out = FormatBC3UnormSRGB
	case FileFormatBC4Unsigned:
		out = FormatBC4Unorm
	case FileFormatBC5Unsigned:
		out = FormatBC5Unorm
	case FileFormatBC5Signed:
		out = FormatBC5Snorm
	case FileFormatBC6HUnsigned:
		out = FormatBC6HUF16
	case FileFormatBC7:
		out = FormatBC7Unorm
	case FileFormatBC7Srgb:
		out = FormatBC7UnormSRGB
	case FileFormatB8G8R8A8:
		out = FormatB8G8R8A8Unorm
	case FileFormatB8G8R8A8Srgb:
		out = FormatB8G8R8A8UnormSRGB
	case FileFormatB8G8R8X8:
		out = FormatB8G8R8X8Unorm
	case FileFormatB8G8R8X8Srgb:
		out = FormatB8G8R8X8UnormSRGB
	case FileFormatR8G8B8A8:
		out = FormatR8G8B8A8Unorm
	case FileFormatR8G8B8A8Srgb:
		out = FormatR8G8B8A8UnormSRGB
	case FileFormatR8G8B8X8:
		out = FormatLegacyR8G8B8X8
	case FileFormatB5G5R5A1:
		out = FormatB5G5R5A1Unorm
	case FileFormatB4G4R4A4:
		out = FormatB4G4R4A4Unorm
	case FileFormatB5G6R5:
		out = FormatB5G6R5Unorm
	case FileFormatB8G8R8:
		out = FormatLegacyB8G8R8
	case FileFormatR8Unsigned:
		out = FormatR8Unorm
	case FileFormatR8G8Unsigned:
		out = FormatR8G8Unorm
	case FileFormatR8G8Signed:
		out = FormatR8G8Snorm
	case FileFormatR32Float:
		out = FormatR32Float
	case FileFormatBC4Ati1:
		out = FormatBC4Unorm
		opts.ForceLegacyDX9 = true
	case FileFormatBC5Ati2:
		out = FormatBC5Unorm
		opts.ForceLegacyDX9 = true
	case FileFormatBC3Rxgb:
		out = FormatBC3Unorm
		opts.ForceBC3ToRXGB = true
	default:
		return 0, opts, newErrorf(ErrUnsupportedFormat, "dds: unknown file format %v", f)
	}
	return out, opts, nil
}

// LoadOptions controls Load. A nil *LoadOptions means DefaultLoadOptions.
type LoadOptions struct {
	// DetectForeign decodes PNG, BMP, JPEG, GIF, TIFF and WebP data that is
	// not a DDS container.
	DetectForeign bool
	// AllowArrays keeps texture arrays and volume maps instead of rejecting them.
	AllowArrays bool
	// KeepCubemap skips the cross layout and returns the six faces.
	KeepCubemap bool
	// Codec overrides the container codec.
	Codec ContainerCodec
}

// DefaultLoadOptions enables foreign format detection.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{DetectForeign: true}
}

// PercentFunc receives Save progress in percent and returns false to cancel.
type PercentFunc func(percent float64) bool

// SaveOptions controls Save.
type SaveOptions struct {
	Format      FileFormat
	Compression CompressionOptions

	// CubemapFromCross splits a cross-proportioned image into six faces.
	CubemapFromCross bool
	GenerateMipMaps  bool
	MipFilter        Filter
	// AllowOddMipDimensions generates mips even when width or height is odd.
	AllowOddMipDimensions bool
	// Premultiply stores premultiplied alpha.
	Premultiply bool

	Progress PercentFunc
	// DeviceProvider creates the compute device; nil uses the built-in probe.
	DeviceProvider DeviceProvider
	// Codec overrides the container codec.
	Codec ContainerCodec
}

// DefaultSaveOptions returns BC1 with the default compression options.
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{
		Format:      FileFormatBC1,
		Compression: DefaultCompressionOptions(),
		MipFilter:   FilterBox,
	}
}
