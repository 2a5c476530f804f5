package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/ddsplus/ddsplus/dds"
	"github.com/ddsplus/ddsplus/dds/compute"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "decode":
		decodeCmd(os.Args[2:])
	case "encode":
		encodeCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  ddsbench decode --in <file.dds> [--iters N] [--checksum fnv|none]")
	fmt.Fprintln(os.Stderr, "  ddsbench encode -w W -h H [--format BC7] [--speed fast|medium|slow] [--device software|hardware] [--workers N] [--iters N] [--out file.dds] [--checksum fnv|none]")
}

type profiling struct {
	cpuprofile  string
	memprofile  string
	memprofRate int
}

func (p *profiling) register(fs *flag.FlagSet) {
	fs.StringVar(&p.cpuprofile, "cpuprofile", "", "optional CPU profile output path")
	fs.StringVar(&p.memprofile, "memprofile", "", "optional memory profile output path")
	fs.IntVar(&p.memprofRate, "memprofilerate", 0, "optional runtime.MemProfileRate override (0 = default)")
}

// start begins CPU profiling and returns the function that stops it and
// writes the heap profile.
func (p *profiling) start() func() {
	if p.memprofRate > 0 {
		runtime.MemProfileRate = p.memprofRate
	}
	var cpuFile *os.File
	if p.cpuprofile != "" {
		f, err := os.Create(p.cpuprofile)
		if err != nil {
			fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			fatal(err)
		}
		cpuFile = f
	}
	return func() {
		if cpuFile != nil {
			pprof.StopCPUProfile()
			_ = cpuFile.Close()
		}
		if p.memprofile == "" {
			return
		}
		f, err := os.Create(p.memprofile)
		if err != nil {
			fatal(err)
		}
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			_ = f.Close()
			fatal(err)
		}
		_ = f.Close()
	}
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	var (
		inPath      string
		iters       int
		checksumOpt string
		prof        profiling
	)
	fs.StringVar(&inPath, "in", "", "input .dds file")
	fs.IntVar(&iters, "iters", 50, "iterations")
	fs.StringVar(&checksumOpt, "checksum", "fnv", "checksum: fnv|none")
	prof.register(fs)
	_ = fs.Parse(args)

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "missing --in")
		os.Exit(2)
	}
	if iters <= 0 {
		fmt.Fprintln(os.Stderr, "iters must be > 0")
		os.Exit(2)
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		fatal(err)
	}
	img, _, err := dds.DDSCodec{}.Decode(data)
	if err != nil {
		fatal(err)
	}
	m := img.Metadata
	if !m.Format.IsCompressed() {
		fmt.Fprintf(os.Stderr, "%v is not block compressed\n", m.Format)
		os.Exit(2)
	}

	stop := prof.start()
	doChecksum := strings.ToLower(strings.TrimSpace(checksumOpt)) != "none"
	var checksum uint64
	start := time.Now()
	for i := 0; i < iters; i++ {
		out, err := dds.Decompress(img)
		if err != nil {
			fatal(err)
		}
		if doChecksum {
			for j := range out.Slices {
				checksum = fnv1a64(checksum, out.Slices[j].Pixels)
			}
		}
	}
	dur := time.Since(start)
	stop()

	fmt.Printf("RESULT mode=decode format=%v size=%dx%d mips=%d array=%d iters=%d seconds=%.6f mpix/s=%.3f checksum=%s\n",
		m.Format, m.Width, m.Height, m.MipLevels, m.ArraySize, iters,
		dur.Seconds(), mpixPerSecond(img, iters, dur), checksumString(checksum, doChecksum))
}

func encodeCmd(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	var (
		width, height int
		format        string
		speed         string
		device        string
		workers       int
		iters         int
		outPath       string
		checksumOpt   string
		prof          profiling
	)
	fs.IntVarP(&width, "width", "w", 1024, "image width")
	fs.IntVarP(&height, "height", "h", 1024, "image height")
	fs.StringVar(&format, "format", "BC7", "save target")
	fs.StringVar(&speed, "speed", "medium", "fast|medium|slow")
	fs.StringVar(&device, "device", "software", "software|hardware")
	fs.IntVar(&workers, "workers", 0, "software workers (0 = all CPUs)")
	fs.IntVar(&iters, "iters", 5, "iterations")
	fs.StringVar(&outPath, "out", "", "optional output .dds of the last iteration")
	fs.StringVar(&checksumOpt, "checksum", "fnv", "checksum: fnv|none")
	prof.register(fs)
	_ = fs.Parse(args)

	if width <= 0 || height <= 0 || iters <= 0 {
		fmt.Fprintln(os.Stderr, "width, height and iters must be > 0")
		os.Exit(2)
	}
	ff, err := dds.ParseFileFormat(format)
	if err != nil {
		fatal(err)
	}
	target, fileOpts, err := ff.Target()
	if err != nil {
		fatal(err)
	}
	if !target.IsCompressed() {
		fmt.Fprintf(os.Stderr, "%v is not block compressed\n", target)
		os.Exit(2)
	}
	sp, err := dds.ParseSpeed(speed)
	if err != nil {
		fatal(err)
	}

	src, err := dds.NewTextureImage(dds.ImageMetadata{
		Width: width, Height: height, Depth: 1, ArraySize: 1, MipLevels: 1,
		Format: dds.FormatR8G8B8A8Unorm,
	})
	if err != nil {
		fatal(err)
	}
	fillPatternRGBA8(&src.Slices[0])

	opts := dds.CompressOptions{CompressionOptions: dds.DefaultCompressionOptions()}
	opts.Speed = sp
	opts.Workers = workers
	opts.HardwareAcceleration = false
	switch strings.ToLower(strings.TrimSpace(device)) {
	case "software", "sw":
	case "hardware", "hw":
		dev, err := compute.Probe()
		if err != nil {
			fatal(err)
		}
		defer dev.Close()
		opts.HardwareAcceleration = true
		opts.Device = dev
	default:
		fmt.Fprintf(os.Stderr, "invalid --device %q (want software|hardware)\n", device)
		os.Exit(2)
	}

	stop := prof.start()
	doChecksum := strings.ToLower(strings.TrimSpace(checksumOpt)) != "none"
	var checksum uint64
	var out *dds.TextureImage
	start := time.Now()
	for i := 0; i < iters; i++ {
		out, err = dds.Compress(context.Background(), src, target, opts)
		if err != nil {
			fatal(err)
		}
		if doChecksum {
			checksum = fnv1a64(checksum, out.Slices[0].Pixels)
		}
	}
	dur := time.Since(start)
	stop()

	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fatal(err)
		}
		if err := (dds.DDSCodec{}).Encode(f, out, fileOpts); err != nil {
			_ = f.Close()
			fatal(err)
		}
		if err := f.Close(); err != nil {
			fatal(err)
		}
	}

	fmt.Printf("RESULT mode=encode format=%v speed=%v device=%s size=%dx%d iters=%d seconds=%.6f mpix/s=%.3f checksum=%s\n",
		target, sp, device, width, height, iters,
		dur.Seconds(), mpixPerSecond(src, iters, dur), checksumString(checksum, doChecksum))
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func mpixPerSecond(img *dds.TextureImage, iters int, dur time.Duration) float64 {
	var pix int
	for i := range img.Slices {
		pix += img.Slices[i].Width * img.Slices[i].Height
	}
	if dur <= 0 {
		return 0
	}
	return float64(pix) * float64(iters) / dur.Seconds() / 1e6
}

func fillPatternRGBA8(s *dds.Slice) {
	for y := 0; y < s.Height; y++ {
		row := s.Pixels[y*s.RowPitch:]
		for x := 0; x < s.Width; x++ {
			off := x * 4
			row[off+0] = uint8(x*3 + y*5)
			row[off+1] = uint8(x*11 + y*13)
			row[off+2] = uint8(x ^ y)
			row[off+3] = uint8(255 - (x*5+y*7)&0xFF)
		}
	}
}

func fnv1a64(seed uint64, data []byte) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := seed
	if h == 0 {
		h = offset64
	}
	for _, b := range data {
		h ^= uint64(b)
		h *= prime64
	}
	return h
}

func checksumString(v uint64, enabled bool) string {
	if !enabled {
		return "none"
	}
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[7-i] = byte(v >> uint(i*8))
	}
	return hex.EncodeToString(b[:])
}
