package dds

// Pixel format flags.
const (
	pfAlphaPixels = 0x1
	pfAlpha       = 0x2
	pfFourCC      = 0x4
	pfRGB         = 0x40
	pfYUV         = 0x200
	pfLuminance   = 0x20000
	pfBumpDUDV    = 0x80000
)

// legacyFormat pairs a pre-DX10 pixel format with the Format it holds.
// FourCC entries match on the code alone, the rest on flags and masks.
type legacyFormat struct {
	format Format
	pf     ddsPixelFormat
}

func fourCCFormat(f Format, cc uint32) legacyFormat {
	return legacyFormat{format: f, pf: ddsPixelFormat{Size: 32, Flags: pfFourCC, FourCC: cc}}
}

func maskFormat(f Format, flags, bits, r, g, b, a uint32) legacyFormat {
	return legacyFormat{format: f, pf: ddsPixelFormat{
		Size: 32, Flags: flags, RGBBitCount: bits,
		RBitMask: r, GBitMask: g, BBitMask: b, ABitMask: a,
	}}
}

// D3DFMT values stored directly in the FourCC field.
const (
	d3dfmtA16B16G16R16  = 36
	d3dfmtQ16W16V16U16  = 110
	d3dfmtR16F          = 111
	d3dfmtG16R16F       = 112
	d3dfmtA16B16G16R16F = 113
	d3dfmtR32F          = 114
	d3dfmtG32R32F       = 115
	d3dfmtA32B32G32R32F = 116
)

// legacyFormats is ordered by preference: the first entry for a Format is
// the one written on encode.
var legacyFormats = []legacyFormat{
	fourCCFormat(FormatBC1Unorm, MakeFourCC('D', 'X', 'T', '1')),
	fourCCFormat(FormatBC2Unorm, MakeFourCC('D', 'X', 'T', '3')),
	fourCCFormat(FormatBC2Unorm, MakeFourCC('D', 'X', 'T', '2')),
	fourCCFormat(FormatBC3Unorm, MakeFourCC('D', 'X', 'T', '5')),
	fourCCFormat(FormatBC3Unorm, MakeFourCC('D', 'X', 'T', '4')),
	fourCCFormat(FormatBC4Unorm, MakeFourCC('B', 'C', '4', 'U')),
	fourCCFormat(FormatBC4Unorm, MakeFourCC('A', 'T', 'I', '1')),
	fourCCFormat(FormatBC4Snorm, MakeFourCC('B', 'C', '4', 'S')),
	fourCCFormat(FormatBC5Unorm, MakeFourCC('B', 'C', '5', 'U')),
	fourCCFormat(FormatBC5Unorm, MakeFourCC('A', 'T', 'I', '2')),
	fourCCFormat(FormatBC5Snorm, MakeFourCC('B', 'C', '5', 'S')),
	fourCCFormat(FormatR8G8B8G8Unorm, MakeFourCC('R', 'G', 'B', 'G')),
	fourCCFormat(FormatG8R8G8B8Unorm, MakeFourCC('G', 'R', 'G', 'B')),
	fourCCFormat(FormatYUY2, MakeFourCC('Y', 'U', 'Y', '2')),

	fourCCFormat(FormatR16G16B16A16Unorm, d3dfmtA16B16G16R16),
	fourCCFormat(FormatR16G16B16A16Snorm, d3dfmtQ16W16V16U16),
	fourCCFormat(FormatR16Float, d3dfmtR16F),
	fourCCFormat(FormatR16G16Float, d3dfmtG16R16F),
	fourCCFormat(FormatR16G16B16A16Float, d3dfmtA16B16G16R16F),
	fourCCFormat(FormatR32Float, d3dfmtR32F),
	fourCCFormat(FormatR32G32Float, d3dfmtG32R32F),
	fourCCFormat(FormatR32G32B32A32Float, d3dfmtA32B32G32R32F),

	maskFormat(FormatR8G8B8A8Unorm, pfRGB|pfAlphaPixels, 32, 0xff, 0xff00, 0xff0000, 0xff000000),
	maskFormat(FormatB8G8R8A8Unorm, pfRGB|pfAlphaPixels, 32, 0xff0000, 0xff00, 0xff, 0xff000000),
	maskFormat(FormatB8G8R8X8Unorm, pfRGB, 32, 0xff0000, 0xff00, 0xff, 0),
	maskFormat(FormatLegacyR8G8B8X8, pfRGB, 32, 0xff, 0xff00, 0xff0000, 0),
	maskFormat(FormatR10G10B10A2Unorm, pfRGB|pfAlphaPixels, 32, 0x3ff, 0xffc00, 0x3ff00000, 0xc0000000),
	maskFormat(FormatR16G16Unorm, pfRGB, 32, 0xffff, 0xffff0000, 0, 0),
	maskFormat(FormatLegacyB8G8R8, pfRGB, 24, 0xff0000, 0xff00, 0xff, 0),
	maskFormat(FormatB5G6R5Unorm, pfRGB, 16, 0xf800, 0x7e0, 0x1f, 0),
	maskFormat(FormatB5G5R5A1Unorm, pfRGB|pfAlphaPixels, 16, 0x7c00, 0x3e0, 0x1f, 0x8000),
	maskFormat(FormatB4G4R4A4Unorm, pfRGB|pfAlphaPixels, 16, 0xf00, 0xf0, 0xf, 0xf000),
	maskFormat(FormatR8Unorm, pfLuminance, 8, 0xff, 0, 0, 0),
	maskFormat(FormatR16Unorm, pfLuminance, 16, 0xffff, 0, 0, 0),
	maskFormat(FormatR8G8Unorm, pfLuminance|pfAlphaPixels, 16, 0xff, 0, 0, 0xff00),
	maskFormat(FormatA8Unorm, pfAlpha, 8, 0, 0, 0, 0xff),
	maskFormat(FormatR8G8Snorm, pfBumpDUDV, 16, 0xff, 0xff00, 0, 0),
	maskFormat(FormatR8G8B8A8Snorm, pfBumpDUDV, 32, 0xff, 0xff00, 0xff0000, 0xff000000),
	maskFormat(FormatR16G16Snorm, pfBumpDUDV, 32, 0xffff, 0xffff0000, 0, 0),
}

// legacyFormatOf maps a pixel format block to a Format.
func legacyFormatOf(pf ddsPixelFormat) (Format, bool) {
	if pf.Flags&pfFourCC != 0 {
		if DetectSwizzle(pf.FourCC) != SwizzleNone {
			return FormatBC3Unorm, true
		}
		for _, l := range legacyFormats {
			if l.pf.Flags == pfFourCC && l.pf.FourCC == pf.FourCC {
				return l.format, true
			}
		}
		return FormatUnknown, false
	}
	for _, l := range legacyFormats {
		if l.pf.Flags == pfFourCC {
			continue
		}
		// Writers disagree on whether alpha-only formats also set pfAlphaPixels.
		flags := pf.Flags
		if l.pf.Flags == pfAlpha {
			flags &^= pfAlphaPixels
		}
		if flags == l.pf.Flags && pf.RGBBitCount == l.pf.RGBBitCount &&
			pf.RBitMask == l.pf.RBitMask && pf.GBitMask == l.pf.GBitMask &&
			pf.BBitMask == l.pf.BBitMask && pf.ABitMask == l.pf.ABitMask {
			return l.format, true
		}
	}
	return FormatUnknown, false
}

// legacyPixelFormat returns the pre-DX10 pixel format written for f.
func legacyPixelFormat(f Format, meta ImageMetadata, opts FileOptions) (ddsPixelFormat, bool) {
	switch f {
	case FormatBC2Unorm:
		if meta.PremultipliedAlpha() {
			return fourCCFormat(f, MakeFourCC('D', 'X', 'T', '2')).pf, true
		}
	case FormatBC3Unorm:
		switch {
		case opts.ForceBC3ToRXGB:
			return fourCCFormat(f, swizzleFourCC(SwizzleXGBR)).pf, true
		case meta.Swizzle != SwizzleNone:
			return fourCCFormat(f, swizzleFourCC(meta.Swizzle)).pf, true
		case meta.PremultipliedAlpha():
			return fourCCFormat(f, MakeFourCC('D', 'X', 'T', '4')).pf, true
		}
	case FormatBC4Unorm:
		if opts.ForceLegacyDX9 {
			return fourCCFormat(f, MakeFourCC('A', 'T', 'I', '1')).pf, true
		}
	case FormatBC5Unorm:
		if opts.ForceLegacyDX9 {
			return fourCCFormat(f, MakeFourCC('A', 'T', 'I', '2')).pf, true
		}
	}
	for _, l := range legacyFormats {
		if l.format == f {
			return l.pf, true
		}
	}
	return ddsPixelFormat{}, false
}

// legacyOnly reports formats that have no DXGI value.
func legacyOnly(f Format) bool {
	return f == FormatLegacyB8G8R8 || f == FormatLegacyR8G8B8X8
}
