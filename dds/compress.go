package dds

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CompressOptions extends CompressionOptions with per-call state.
type CompressOptions struct {
	CompressionOptions

	// Progress, when set, receives the completed fraction and may cancel.
	Progress ProgressFunc

	// Device is used for BC6H and BC7 when HardwareAcceleration is set.
	// Compress never closes it.
	Device ComputeDevice
}

type blockEncoder func(dst []byte, blk *rgbaBlock, p *blockParams)

type blockDecoder func(src []byte, out *rgbaBlock)

var blockEncoders = map[Format]blockEncoder{
	FormatBC1Unorm:     encodeBC1,
	FormatBC1UnormSRGB: encodeBC1,
	FormatBC2Unorm:     encodeBC2,
	FormatBC2UnormSRGB: encodeBC2,
	FormatBC3Unorm:     encodeBC3,
	FormatBC3UnormSRGB: encodeBC3,
	FormatBC4Unorm:     encodeBC4,
	FormatBC4Snorm:     encodeBC4S,
	FormatBC5Unorm:     encodeBC5,
	FormatBC5Snorm:     encodeBC5S,
	FormatBC7Unorm:     encodeBC7,
	FormatBC7UnormSRGB: encodeBC7,
}

var blockDecoders = map[Format]blockDecoder{
	FormatBC1Unorm:     decodeBC1,
	FormatBC1UnormSRGB: decodeBC1,
	FormatBC2Unorm:     decodeBC2,
	FormatBC2UnormSRGB: decodeBC2,
	FormatBC3Unorm:     decodeBC3,
	FormatBC3UnormSRGB: decodeBC3,
	FormatBC4Unorm:     decodeBC4,
	FormatBC4Snorm:     decodeBC4S,
	FormatBC5Unorm:     decodeBC5,
	FormatBC5Snorm:     decodeBC5S,
	FormatBC7Unorm:     decodeBC7,
	FormatBC7UnormSRGB: decodeBC7,
}

// encoderInput returns the uncompressed format the block encoder for f reads.
func encoderInput(f Format) Format {
	switch f {
	case FormatBC6HUF16, FormatBC6HSF16:
		return FormatR32G32B32A32Float
	case FormatBC4Snorm, FormatBC5Snorm:
		return FormatR8G8B8A8Snorm
	}
	if f.IsSRGB() {
		return FormatR8G8B8A8UnormSRGB
	}
	return FormatR8G8B8A8Unorm
}

// decoderOutput returns the format Decompress produces for f.
func decoderOutput(f Format) Format {
	switch f {
	case FormatBC6HUF16, FormatBC6HSF16:
		return FormatR16G16B16A16Float
	case FormatBC4Snorm:
		return FormatR8Snorm
	case FormatBC5Snorm:
		return FormatR8G8Snorm
	}
	if f.IsSRGB() {
		return FormatR8G8B8A8UnormSRGB
	}
	return FormatR8G8B8A8Unorm
}

type blockRow struct {
	slice, y int
}

// encodeJob is one Compress call split into block rows. Every row writes a
// disjoint range of dst.
type encodeJob struct {
	target   Format
	src      *TextureImage
	dst      *TextureImage
	params   blockParams
	rows     []blockRow
	progress *progressTracker
}

func (j *encodeJob) encodeRow(r blockRow) {
	in, out := &j.src.Slices[r.slice], &j.dst.Slices[r.slice]
	bb := formatTable[j.target].BlockBytes
	blocksX := (in.Width + 3) / 4
	row := out.Pixels[r.y*out.RowPitch:]

	switch j.target {
	case FormatBC6HUF16, FormatBC6HSF16:
		signed := j.target == FormatBC6HSF16
		var blk floatBlock
		for bx := 0; bx < blocksX; bx++ {
			gatherFloatBlock(in, bx*4, r.y*4, &blk)
			encodeBC6H(row[bx*bb:], &blk, &j.params, signed)
		}
	default:
		enc := blockEncoders[j.target]
		var blk rgbaBlock
		for bx := 0; bx < blocksX; bx++ {
			gatherBlock(in, bx*4, r.y*4, &blk)
			enc(row[bx*bb:], &blk, &j.params)
		}
	}
}

// gatherBlock copies the 4x4 RGBA8 block at (x0, y0), replicating the last
// row and column for blocks that straddle the edge.
func gatherBlock(s *Slice, x0, y0 int, blk *rgbaBlock) {
	for y := 0; y < 4; y++ {
		sy := min(y0+y, s.Height-1)
		for x := 0; x < 4; x++ {
			sx := min(x0+x, s.Width-1)
			copy(blk[y*4+x][:], s.Pixels[sy*s.RowPitch+sx*4:])
		}
	}
}

func gatherFloatBlock(s *Slice, x0, y0 int, blk *floatBlock) {
	for y := 0; y < 4; y++ {
		sy := min(y0+y, s.Height-1)
		for x := 0; x < 4; x++ {
			sx := min(x0+x, s.Width-1)
			off := sy*s.RowPitch + sx*16
			for ch := 0; ch < 4; ch++ {
				blk[y*4+x][ch] = getF32(s.Pixels[off+ch*4:])
			}
		}
	}
}

// Compress encodes an uncompressed image into the block-compressed target.
// The result carries the source metadata with the target format.
func Compress(ctx context.Context, img *TextureImage, target Format, opts CompressOptions) (*TextureImage, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	if img.Metadata.Format.IsCompressed() {
		return nil, newErrorf(ErrInvalidArgument, "dds: compress source %v is already compressed", img.Metadata.Format)
	}
	target, ok := MakeTypelessUNORM(target)
	if !ok {
		return nil, newErrorf(ErrUnsupportedFormat, "dds: no concrete format for %v", target)
	}
	if !target.IsCompressed() {
		return nil, newErrorf(ErrInvalidArgument, "dds: %v is not a block format", target)
	}
	if _, ok := blockEncoders[target]; !ok && target != FormatBC6HUF16 && target != FormatBC6HSF16 {
		return nil, newErrorf(ErrUnsupportedFormat, "dds: no encoder for %v", target)
	}

	src, err := Convert(img, encoderInput(target), ConvertOptions{})
	if err != nil {
		return nil, err
	}
	dst, err := deriveImage(img.Metadata, target)
	if err != nil {
		return nil, err
	}

	job := &encodeJob{
		target: target,
		src:    src,
		dst:    dst,
		params: blockParams{
			weights: opts.ErrorMetric.channelWeights(),
			speed:   opts.Speed,
			dither:  opts.Dither && !target.IsComputeCapable(),
		},
		progress: newProgressTracker(opts.Progress, 0),
	}
	for i := range dst.Slices {
		blocksY := (dst.Slices[i].Height + 3) / 4
		for y := 0; y < blocksY; y++ {
			job.rows = append(job.rows, blockRow{slice: i, y: y})
		}
	}
	job.progress.total = uint64(max(len(job.rows), 1))

	backend := selectBackend(target, &opts)
	slogger().Debug("dds: compress",
		"format", target.String(),
		"backend", backend.Name(),
		"speed", opts.Speed.String(),
		"rows", len(job.rows))

	if !job.progress.start() {
		return nil, job.progress.err()
	}
	if err := backend.Encode(ctx, job); err != nil {
		return nil, err
	}
	if !job.progress.finish() {
		return nil, job.progress.err()
	}
	return dst, nil
}

// Decompress decodes a block-compressed image. BC1-BC5 and BC7 produce
// R8G8B8A8 (sRGB when the source is), signed BC4 and BC5 produce R8_SNORM
// and R8G8_SNORM, and BC6H produces R16G16B16A16_FLOAT.
func Decompress(img *TextureImage) (*TextureImage, error) {
	if err := img.check(); err != nil {
		return nil, err
	}
	src, ok := MakeTypelessUNORM(img.Metadata.Format)
	if !ok {
		return nil, newErrorf(ErrUnsupportedFormat, "dds: no concrete format for %v", img.Metadata.Format)
	}
	if !src.IsCompressed() {
		return nil, newErrorf(ErrInvalidArgument, "dds: %v is not a block format", src)
	}
	dec, isBC6H := blockDecoders[src], src == FormatBC6HUF16 || src == FormatBC6HSF16
	if dec == nil && !isBC6H {
		return nil, newErrorf(ErrUnsupportedFormat, "dds: no decoder for %v", src)
	}
	outFmt := decoderOutput(src)
	out, err := deriveImage(img.Metadata, outFmt)
	if err != nil {
		return nil, err
	}
	bb := formatTable[src].BlockBytes
	bpp := formatTable[outFmt].BitsPerPixel / 8

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := range img.Slices {
		in, dst := &img.Slices[i], &out.Slices[i]
		g.Go(func() error {
			blocksX, blocksY := (in.Width+3)/4, (in.Height+3)/4
			for by := 0; by < blocksY; by++ {
				row := in.Pixels[by*in.RowPitch:]
				for bx := 0; bx < blocksX; bx++ {
					if isBC6H {
						scatterHalfBlock(row[bx*bb:], dst, bx*4, by*4, src == FormatBC6HSF16)
						continue
					}
					var blk rgbaBlock
					dec(row[bx*bb:], &blk)
					scatterBlock(&blk, dst, bx*4, by*4, bpp)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// scatterBlock writes the first bpp lanes of each texel inside the slice.
func scatterBlock(blk *rgbaBlock, s *Slice, x0, y0, bpp int) {
	for y := 0; y < 4 && y0+y < s.Height; y++ {
		for x := 0; x < 4 && x0+x < s.Width; x++ {
			copy(s.Pixels[(y0+y)*s.RowPitch+(x0+x)*bpp:], blk[y*4+x][:bpp])
		}
	}
}

func scatterHalfBlock(src []byte, s *Slice, x0, y0 int, signed bool) {
	var blk halfBlock
	decodeBC6H(src, &blk, signed)
	for y := 0; y < 4 && y0+y < s.Height; y++ {
		for x := 0; x < 4 && x0+x < s.Width; x++ {
			p := s.Pixels[(y0+y)*s.RowPitch+(x0+x)*8:]
			t := blk[y*4+x]
			put16(p, t[0])
			put16(p[2:], t[1])
			put16(p[4:], t[2])
			put16(p[6:], 0x3C00)
		}
	}
}
