package dds

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"
)

// Rows are unpacked to RGBA float32: UNORM in [0,1], SNORM in [-1,1], float
// formats unchanged. Missing colour channels read as 0 and missing alpha as 1.
// YUV formats are converted to RGB on unpack and back on pack.

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	if v != v {
		return 0
	}
	return v
}

func clampSigned(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	if v != v {
		return 0
	}
	return v
}

func unorm(v float32, maxv float32) uint32 {
	return uint32(clamp01(v)*maxv + 0.5)
}

func snorm(v float32, maxv float32) int32 {
	f := clampSigned(v) * maxv
	if f < 0 {
		return int32(f - 0.5)
	}
	return int32(f + 0.5)
}

func fromSnorm(v int32, maxv float32) float32 {
	f := float32(v) / maxv
	if f < -1 {
		return -1
	}
	return f
}

func get16(b []byte) uint16    { return binary.LittleEndian.Uint16(b) }
func put16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func get32(b []byte) uint32    { return binary.LittleEndian.Uint32(b) }
func put32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

func getHalf(b []byte) float32 { return float16.Frombits(get16(b)).Float32() }
func putHalf(b []byte, v float32) {
	put16(b, float16.Fromfloat32(v).Bits())
}
func getF32(b []byte) float32    { return math.Float32frombits(get32(b)) }
func putF32(b []byte, v float32) { put32(b, math.Float32bits(v)) }

// canPack reports whether packRow supports f.
func canPack(f Format) bool {
	switch f {
	case FormatR32G32B32A32Float, FormatR32G32B32Float, FormatR16G16B16A16Float,
		FormatR16G16B16A16Unorm, FormatR16G16B16A16Snorm, FormatR32G32Float,
		FormatR10G10B10A2Unorm, FormatR11G11B10Float, FormatR8G8B8A8Unorm,
		FormatR8G8B8A8UnormSRGB, FormatR8G8B8A8Snorm, FormatR16G16Float,
		FormatR16G16Unorm, FormatR16G16Snorm, FormatR32Float, FormatR8G8Unorm,
		FormatR8G8Snorm, FormatR16Float, FormatR16Unorm, FormatR16Snorm,
		FormatR8Unorm, FormatR8Snorm, FormatA8Unorm, FormatB5G6R5Unorm,
		FormatB5G5R5A1Unorm, FormatB8G8R8A8Unorm, FormatB8G8R8A8UnormSRGB,
		FormatB8G8R8X8Unorm, FormatB8G8R8X8UnormSRGB, FormatB4G4R4A4Unorm,
		FormatR9G9B9E5SharedExp, FormatAYUV, FormatY416, FormatYUY2,
		FormatR8G8B8G8Unorm, FormatG8R8G8B8Unorm, FormatLegacyB8G8R8,
		FormatLegacyR8G8B8X8:
		return true
	}
	return false
}

// unpackRow decodes width pixels of src into dst (4 floats per pixel).
// chroma selects reconstruction for horizontally subsampled formats.
func unpackRow(f Format, src []byte, width int, dst []float32, chroma Filter) error {
	for x := 0; x < width; x++ {
		d := dst[x*4 : x*4+4 : x*4+4]
		d[0], d[1], d[2], d[3] = 0, 0, 0, 1
		switch f {
		case FormatR32G32B32A32Float:
			p := src[x*16:]
			d[0], d[1], d[2], d[3] = getF32(p), getF32(p[4:]), getF32(p[8:]), getF32(p[12:])
		case FormatR32G32B32Float:
			p := src[x*12:]
			d[0], d[1], d[2] = getF32(p), getF32(p[4:]), getF32(p[8:])
		case FormatR16G16B16A16Float:
			p := src[x*8:]
			d[0], d[1], d[2], d[3] = getHalf(p), getHalf(p[2:]), getHalf(p[4:]), getHalf(p[6:])
		case FormatR16G16B16A16Unorm:
			p := src[x*8:]
			for c := 0; c < 4; c++ {
				d[c] = float32(get16(p[c*2:])) / 65535
			}
		case FormatR16G16B16A16Snorm:
			p := src[x*8:]
			for c := 0; c < 4; c++ {
				d[c] = fromSnorm(int32(int16(get16(p[c*2:]))), 32767)
			}
		case FormatR32G32Float:
			p := src[x*8:]
			d[0], d[1] = getF32(p), getF32(p[4:])
		case FormatR10G10B10A2Unorm:
			v := get32(src[x*4:])
			d[0] = float32(v&0x3FF) / 1023
			d[1] = float32(v>>10&0x3FF) / 1023
			d[2] = float32(v>>20&0x3FF) / 1023
			d[3] = float32(v>>30) / 3
		case FormatR11G11B10Float:
			v := get32(src[x*4:])
			d[0] = float16.Frombits(uint16(v&0x7FF) << 4).Float32()
			d[1] = float16.Frombits(uint16(v>>11&0x7FF) << 4).Float32()
			d[2] = float16.Frombits(uint16(v>>22&0x3FF) << 5).Float32()
		case FormatR8G8B8A8Unorm, FormatR8G8B8A8UnormSRGB:
			p := src[x*4:]
			d[0], d[1], d[2], d[3] = float32(p[0])/255, float32(p[1])/255, float32(p[2])/255, float32(p[3])/255
		case FormatR8G8B8A8Snorm:
			p := src[x*4:]
			for c := 0; c < 4; c++ {
				d[c] = fromSnorm(int32(int8(p[c])), 127)
			}
		case FormatR16G16Float:
			p := src[x*4:]
			d[0], d[1] = getHalf(p), getHalf(p[2:])
		case FormatR16G16Unorm:
			p := src[x*4:]
			d[0], d[1] = float32(get16(p))/65535, float32(get16(p[2:]))/65535
		case FormatR16G16Snorm:
			p := src[x*4:]
			d[0] = fromSnorm(int32(int16(get16(p))), 32767)
			d[1] = fromSnorm(int32(int16(get16(p[2:]))), 32767)
		case FormatR32Float:
			d[0] = getF32(src[x*4:])
		case FormatR8G8Unorm:
			d[0], d[1] = float32(src[x*2])/255, float32(src[x*2+1])/255
		case FormatR8G8Snorm:
			d[0] = fromSnorm(int32(int8(src[x*2])), 127)
			d[1] = fromSnorm(int32(int8(src[x*2+1])), 127)
		case FormatR16Float:
			d[0] = getHalf(src[x*2:])
		case FormatR16Unorm:
			d[0] = float32(get16(src[x*2:])) / 65535
		case FormatR16Snorm:
			d[0] = fromSnorm(int32(int16(get16(src[x*2:]))), 32767)
		case FormatR8Unorm:
			d[0] = float32(src[x]) / 255
		case FormatR8Snorm:
			d[0] = fromSnorm(int32(int8(src[x])), 127)
		case FormatA8Unorm:
			d[3] = float32(src[x]) / 255
		case FormatB5G6R5Unorm:
			v := get16(src[x*2:])
			d[2] = float32(v&0x1F) / 31
			d[1] = float32(v>>5&0x3F) / 63
			d[0] = float32(v>>11) / 31
		case FormatB5G5R5A1Unorm:
			v := get16(src[x*2:])
			d[2] = float32(v&0x1F) / 31
			d[1] = float32(v>>5&0x1F) / 31
			d[0] = float32(v>>10&0x1F) / 31
			d[3] = float32(v >> 15)
		case FormatB4G4R4A4Unorm:
			v := get16(src[x*2:])
			d[2] = float32(v&0xF) / 15
			d[1] = float32(v>>4&0xF) / 15
			d[0] = float32(v>>8&0xF) / 15
			d[3] = float32(v>>12) / 15
		case FormatB8G8R8A8Unorm, FormatB8G8R8A8UnormSRGB:
			p := src[x*4:]
			d[0], d[1], d[2], d[3] = float32(p[2])/255, float32(p[1])/255, float32(p[0])/255, float32(p[3])/255
		case FormatB8G8R8X8Unorm, FormatB8G8R8X8UnormSRGB:
			p := src[x*4:]
			d[0], d[1], d[2] = float32(p[2])/255, float32(p[1])/255, float32(p[0])/255
		case FormatLegacyB8G8R8:
			p := src[x*3:]
			d[0], d[1], d[2] = float32(p[2])/255, float32(p[1])/255, float32(p[0])/255
		case FormatLegacyR8G8B8X8:
			p := src[x*4:]
			d[0], d[1], d[2] = float32(p[0])/255, float32(p[1])/255, float32(p[2])/255
		case FormatR9G9B9E5SharedExp:
			d[0], d[1], d[2] = unpackSharedExp(get32(src[x*4:]))
		case FormatAYUV:
			p := src[x*4:]
			d[0], d[1], d[2] = yuvToRGB(float32(p[2])/255, float32(p[1])/255, float32(p[0])/255)
			d[3] = float32(p[3]) / 255
		case FormatY416:
			p := src[x*8:]
			d[0], d[1], d[2] = yuvToRGB(float32(get16(p[2:]))/65535, float32(get16(p))/65535, float32(get16(p[4:]))/65535)
			d[3] = float32(get16(p[6:])) / 65535
		case FormatYUY2, FormatR8G8B8G8Unorm, FormatG8R8G8B8Unorm:
			unpackPairPixel(f, src, width, x, d, chroma)
		default:
			return newErrorf(ErrUnsupportedFormat, "dds: cannot unpack %v", f)
		}
	}
	return nil
}

// pairChannels returns the byte offsets, inside a 4-byte pair unit, of the
// two per-pixel samples and the two shared samples.
func pairChannels(f Format) (s0, s1, c0, c1 int) {
	switch f {
	case FormatYUY2: // Y0 U Y1 V
		return 0, 2, 1, 3
	case FormatR8G8B8G8Unorm: // R G0 B G1
		return 1, 3, 0, 2
	default: // G0 R G1 B
		return 0, 2, 1, 3
	}
}

func unpackPairPixel(f Format, src []byte, width, x int, d []float32, chroma Filter) {
	s0, s1, c0, c1 := pairChannels(f)
	pair := x >> 1
	unit := src[pair*4 : pair*4+4]
	sample := float32(unit[s0]) / 255
	if x&1 == 1 {
		sample = float32(unit[s1]) / 255
	}
	a := float32(unit[c0]) / 255
	b := float32(unit[c1]) / 255
	if x&1 == 1 && chroma != FilterNearest && (pair+1)*2 < width {
		next := src[(pair+1)*4 : (pair+1)*4+4]
		a = (a + float32(next[c0])/255) / 2
		b = (b + float32(next[c1])/255) / 2
	}
	if f == FormatYUY2 {
		d[0], d[1], d[2] = yuvToRGB(sample, a, b)
		return
	}
	d[0], d[1], d[2] = a, sample, b
}

// packRow encodes width pixels of src (4 floats per pixel) into dst.
func packRow(f Format, src []float32, width int, dst []byte) error {
	if f == FormatYUY2 || f == FormatR8G8B8G8Unorm || f == FormatG8R8G8B8Unorm {
		packPairRow(f, src, width, dst)
		return nil
	}
	for x := 0; x < width; x++ {
		s := src[x*4 : x*4+4 : x*4+4]
		switch f {
		case FormatR32G32B32A32Float:
			p := dst[x*16:]
			putF32(p, s[0])
			putF32(p[4:], s[1])
			putF32(p[8:], s[2])
			putF32(p[12:], s[3])
		case FormatR32G32B32Float:
			p := dst[x*12:]
			putF32(p, s[0])
			putF32(p[4:], s[1])
			putF32(p[8:], s[2])
		case FormatR16G16B16A16Float:
			p := dst[x*8:]
			for c := 0; c < 4; c++ {
				putHalf(p[c*2:], s[c])
			}
		case FormatR16G16B16A16Unorm:
			p := dst[x*8:]
			for c := 0; c < 4; c++ {
				put16(p[c*2:], uint16(unorm(s[c], 65535)))
			}
		case FormatR16G16B16A16Snorm:
			p := dst[x*8:]
			for c := 0; c < 4; c++ {
				put16(p[c*2:], uint16(int16(snorm(s[c], 32767))))
			}
		case FormatR32G32Float:
			p := dst[x*8:]
			putF32(p, s[0])
			putF32(p[4:], s[1])
		case FormatR10G10B10A2Unorm:
			put32(dst[x*4:], unorm(s[0], 1023)|unorm(s[1], 1023)<<10|unorm(s[2], 1023)<<20|unorm(s[3], 3)<<30)
		case FormatR11G11B10Float:
			put32(dst[x*4:], packSmallFloat(s[0], 4)|packSmallFloat(s[1], 4)<<11|packSmallFloat(s[2], 5)<<22)
		case FormatR8G8B8A8Unorm, FormatR8G8B8A8UnormSRGB:
			p := dst[x*4 : x*4+4]
			p[0], p[1], p[2], p[3] = byte(unorm(s[0], 255)), byte(unorm(s[1], 255)), byte(unorm(s[2], 255)), byte(unorm(s[3], 255))
		case FormatR8G8B8A8Snorm:
			p := dst[x*4 : x*4+4]
			for c := 0; c < 4; c++ {
				p[c] = byte(int8(snorm(s[c], 127)))
			}
		case FormatR16G16Float:
			putHalf(dst[x*4:], s[0])
			putHalf(dst[x*4+2:], s[1])
		case FormatR16G16Unorm:
			put16(dst[x*4:], uint16(unorm(s[0], 65535)))
			put16(dst[x*4+2:], uint16(unorm(s[1], 65535)))
		case FormatR16G16Snorm:
			put16(dst[x*4:], uint16(int16(snorm(s[0], 32767))))
			put16(dst[x*4+2:], uint16(int16(snorm(s[1], 32767))))
		case FormatR32Float:
			putF32(dst[x*4:], s[0])
		case FormatR8G8Unorm:
			dst[x*2], dst[x*2+1] = byte(unorm(s[0], 255)), byte(unorm(s[1], 255))
		case FormatR8G8Snorm:
			dst[x*2], dst[x*2+1] = byte(int8(snorm(s[0], 127))), byte(int8(snorm(s[1], 127)))
		case FormatR16Float:
			putHalf(dst[x*2:], s[0])
		case FormatR16Unorm:
			put16(dst[x*2:], uint16(unorm(s[0], 65535)))
		case FormatR16Snorm:
			put16(dst[x*2:], uint16(int16(snorm(s[0], 32767))))
		case FormatR8Unorm:
			dst[x] = byte(unorm(s[0], 255))
		case FormatR8Snorm:
			dst[x] = byte(int8(snorm(s[0], 127)))
		case FormatA8Unorm:
			dst[x] = byte(unorm(s[3], 255))
		case FormatB5G6R5Unorm:
			put16(dst[x*2:], uint16(unorm(s[2], 31)|unorm(s[1], 63)<<5|unorm(s[0], 31)<<11))
		case FormatB5G5R5A1Unorm:
			put16(dst[x*2:], uint16(unorm(s[2], 31)|unorm(s[1], 31)<<5|unorm(s[0], 31)<<10|unorm(s[3], 1)<<15))
		case FormatB4G4R4A4Unorm:
			put16(dst[x*2:], uint16(unorm(s[2], 15)|unorm(s[1], 15)<<4|unorm(s[0], 15)<<8|unorm(s[3], 15)<<12))
		case FormatB8G8R8A8Unorm, FormatB8G8R8A8UnormSRGB:
			p := dst[x*4 : x*4+4]
			p[0], p[1], p[2], p[3] = byte(unorm(s[2], 255)), byte(unorm(s[1], 255)), byte(unorm(s[0], 255)), byte(unorm(s[3], 255))
		case FormatB8G8R8X8Unorm, FormatB8G8R8X8UnormSRGB:
			p := dst[x*4 : x*4+4]
			p[0], p[1], p[2], p[3] = byte(unorm(s[2], 255)), byte(unorm(s[1], 255)), byte(unorm(s[0], 255)), 0xFF
		case FormatLegacyB8G8R8:
			p := dst[x*3 : x*3+3]
			p[0], p[1], p[2] = byte(unorm(s[2], 255)), byte(unorm(s[1], 255)), byte(unorm(s[0], 255))
		case FormatLegacyR8G8B8X8:
			p := dst[x*4 : x*4+4]
			p[0], p[1], p[2], p[3] = byte(unorm(s[0], 255)), byte(unorm(s[1], 255)), byte(unorm(s[2], 255)), 0xFF
		case FormatR9G9B9E5SharedExp:
			put32(dst[x*4:], packSharedExp(s[0], s[1], s[2]))
		case FormatAYUV:
			y, u, v := rgbToYUV(clamp01(s[0]), clamp01(s[1]), clamp01(s[2]))
			p := dst[x*4 : x*4+4]
			p[0], p[1], p[2], p[3] = byte(unorm(v, 255)), byte(unorm(u, 255)), byte(unorm(y, 255)), byte(unorm(s[3], 255))
		case FormatY416:
			y, u, v := rgbToYUV(clamp01(s[0]), clamp01(s[1]), clamp01(s[2]))
			p := dst[x*8:]
			put16(p, uint16(unorm(u, 65535)))
			put16(p[2:], uint16(unorm(y, 65535)))
			put16(p[4:], uint16(unorm(v, 65535)))
			put16(p[6:], uint16(unorm(s[3], 65535)))
		default:
			return newErrorf(ErrUnsupportedFormat, "dds: cannot pack %v", f)
		}
	}
	return nil
}

func packPairRow(f Format, src []float32, width int, dst []byte) {
	s0, s1, c0, c1 := pairChannels(f)
	for pair := 0; pair*2 < width; pair++ {
		x0 := pair * 2
		x1 := x0 + 1
		if x1 >= width {
			x1 = x0
		}
		p0 := src[x0*4 : x0*4+4]
		p1 := src[x1*4 : x1*4+4]
		unit := dst[pair*4 : pair*4+4]
		if f == FormatYUY2 {
			y0, u0, v0 := rgbToYUV(clamp01(p0[0]), clamp01(p0[1]), clamp01(p0[2]))
			y1, u1, v1 := rgbToYUV(clamp01(p1[0]), clamp01(p1[1]), clamp01(p1[2]))
			unit[s0], unit[s1] = byte(unorm(y0, 255)), byte(unorm(y1, 255))
			unit[c0], unit[c1] = byte(unorm((u0+u1)/2, 255)), byte(unorm((v0+v1)/2, 255))
			continue
		}
		unit[s0], unit[s1] = byte(unorm(p0[1], 255)), byte(unorm(p1[1], 255))
		unit[c0] = byte(unorm((p0[0]+p1[0])/2, 255))
		unit[c1] = byte(unorm((p0[2]+p1[2])/2, 255))
	}
}

// packSmallFloat converts v to an unsigned 11-bit (shift 4) or 10-bit
// (shift 5) float by rounding the half-float representation.
func packSmallFloat(v float32, shift uint) uint32 {
	if v != v || v <= 0 {
		return 0
	}
	mask := uint32(0x7FF)
	if shift == 5 {
		mask = 0x3FF
	}
	h := uint32(float16.Fromfloat32(v).Bits() & 0x7FFF)
	if h >= 0x7C00 {
		// Largest finite value.
		return mask &^ (1 << (10 - shift))
	}
	r := (h + (1 << (shift - 1))) >> shift
	if r >= 0x7C00>>shift {
		return (0x7C00 >> shift) - 1
	}
	return r
}

func unpackSharedExp(v uint32) (r, g, b float32) {
	e := int(v>>27) - 15 - 9
	scale := float32(math.Ldexp(1, e))
	return float32(v&0x1FF) * scale, float32(v>>9&0x1FF) * scale, float32(v>>18&0x1FF) * scale
}

func packSharedExp(r, g, b float32) uint32 {
	const maxVal = float32(0x1FF) / 512 * 65536
	clampC := func(c float32) float32 {
		if c != c || c < 0 {
			return 0
		}
		if c > maxVal {
			return maxVal
		}
		return c
	}
	r, g, b = clampC(r), clampC(g), clampC(b)
	m := max(r, g, b)
	if m == 0 {
		return 0
	}
	_, exp := math.Frexp(float64(m))
	e := max(exp, -15) + 15
	denom := math.Ldexp(1, e-15-9)
	if int(math.Floor(float64(m)/denom+0.5)) == 512 {
		e++
		denom *= 2
	}
	q := func(c float32) uint32 {
		return uint32(math.Floor(float64(c)/denom + 0.5))
	}
	return q(r) | q(g)<<9 | q(b)<<18 | uint32(e)<<27
}

// unpackSlice decodes a whole slice into a tight RGBA float buffer.
func unpackSlice(f Format, s *Slice, chroma Filter) ([]float32, error) {
	out := make([]float32, s.Width*s.Height*4)
	for y := 0; y < s.Height; y++ {
		if err := unpackRow(f, s.Pixels[y*s.RowPitch:], s.Width, out[y*s.Width*4:], chroma); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func packSlice(f Format, src []float32, s *Slice) error {
	for y := 0; y < s.Height; y++ {
		if err := packRow(f, src[y*s.Width*4:], s.Width, s.Pixels[y*s.RowPitch:]); err != nil {
			return err
		}
	}
	return nil
}
