package main

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ddsplus/ddsplus/dds"
	"github.com/ddsplus/ddsplus/dds/compute"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "ddsconv",
		Short:         "Inspect, decode and encode DDS textures",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			dds.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline decisions to stderr")
	root.AddCommand(newInfoCmd(), newDecodeCmd(), newEncodeCmd(), newProbeCmd())
	return root
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.dds>",
		Short: "Print container metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			img, hdr, err := dds.DDSCodec{}.Decode(data)
			if err != nil {
				return err
			}
			norm, err := dds.NormalizeMetadata(img, hdr)
			if err != nil {
				return err
			}
			m := norm.Metadata
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "size:      %dx%dx%d\n", m.Width, m.Height, m.Depth)
			fmt.Fprintf(w, "format:    %v\n", m.Format)
			fmt.Fprintf(w, "mips:      %d\n", m.MipLevels)
			fmt.Fprintf(w, "array:     %d\n", m.ArraySize)
			fmt.Fprintf(w, "cubemap:   %t\n", m.IsCubemap)
			fmt.Fprintf(w, "volume:    %t\n", m.IsVolumeMap)
			fmt.Fprintf(w, "alpha:     %v\n", m.AlphaMode)
			fmt.Fprintf(w, "swizzle:   %v\n", m.Swizzle)
			fmt.Fprintf(w, "dx10:      %t\n", hdr.DX10)
			return nil
		},
	}
}

func newDecodeCmd() *cobra.Command {
	var keepCube bool
	cmd := &cobra.Command{
		Use:   "decode <in.dds> <out.png>",
		Short: "Decode the top level of a DDS file to PNG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			opts := dds.DefaultLoadOptions()
			opts.KeepCubemap = keepCube
			_, img, err := dds.LoadFrom(f, &opts)
			if err != nil {
				return err
			}
			rgba, err := dds.ToImage(img)
			if err != nil {
				return err
			}
			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := png.Encode(out, rgba); err != nil {
				_ = out.Close()
				return err
			}
			return out.Close()
		},
	}
	cmd.Flags().BoolVar(&keepCube, "keep-cubemap", false, "write the +X face instead of a cross")
	return cmd
}

type encodeFlags struct {
	format    string
	speed     string
	metric    string
	dither    bool
	hw        bool
	mipmaps   bool
	mipFilter string
	cubemap   bool
	allowOdd  bool
	premul    bool
	workers   int
	progress  bool
}

func newEncodeCmd() *cobra.Command {
	var fl encodeFlags
	cmd := &cobra.Command{
		Use:   "encode <in.png|bmp|jpg|gif|tiff|webp|dds> <out.dds>",
		Short: "Encode an image as DDS",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := fl.saveOptions()
			if err != nil {
				return err
			}
			if fl.progress {
				last := -1
				opts.Progress = func(percent float64) bool {
					if p := int(percent); p/10 != last/10 {
						last = p
						fmt.Fprintf(cmd.ErrOrStderr(), "%3d%%\n", p)
					}
					return true
				}
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			_, img, err := dds.Load(data, nil)
			if err != nil {
				return err
			}
			out, err := dds.Save(img, opts)
			if err != nil {
				return err
			}
			return os.WriteFile(args[1], out, 0o644)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&fl.format, "format", "f", "BC1", "target: "+fileFormatList())
	f.StringVar(&fl.speed, "speed", "medium", "compression speed: fast|medium|slow")
	f.StringVar(&fl.metric, "metric", "perceptual", "error metric: perceptual|uniform")
	f.BoolVar(&fl.dither, "dither", false, "dither BC1-BC3 and 16-bit targets")
	f.BoolVar(&fl.hw, "hw", true, "use a compute device for BC6H and BC7 when available")
	f.BoolVarP(&fl.mipmaps, "mipmaps", "m", false, "generate a full mip chain")
	f.StringVar(&fl.mipFilter, "mip-filter", "box", "mip filter: box|nearest|linear|cubic|wide")
	f.BoolVar(&fl.cubemap, "cubemap", false, "split a cross-shaped image into a cubemap")
	f.BoolVar(&fl.allowOdd, "allow-odd", false, "generate mips for odd dimensions")
	f.BoolVar(&fl.premul, "premultiply", false, "store premultiplied alpha")
	f.IntVar(&fl.workers, "workers", 0, "software encoder workers (0 = all CPUs)")
	f.BoolVar(&fl.progress, "progress", false, "print progress to stderr")
	return cmd
}

func (fl *encodeFlags) saveOptions() (dds.SaveOptions, error) {
	opts := dds.DefaultSaveOptions()
	var err error
	if opts.Format, err = dds.ParseFileFormat(fl.format); err != nil {
		return opts, err
	}
	if opts.Compression.Speed, err = dds.ParseSpeed(fl.speed); err != nil {
		return opts, err
	}
	if opts.Compression.ErrorMetric, err = dds.ParseErrorMetric(fl.metric); err != nil {
		return opts, err
	}
	if opts.MipFilter, err = dds.ParseFilter(fl.mipFilter); err != nil {
		return opts, err
	}
	opts.Compression.Dither = fl.dither
	opts.Compression.HardwareAcceleration = fl.hw
	opts.Compression.Workers = fl.workers
	opts.GenerateMipMaps = fl.mipmaps
	opts.CubemapFromCross = fl.cubemap
	opts.AllowOddMipDimensions = fl.allowOdd
	opts.Premultiply = fl.premul
	return opts, nil
}

func fileFormatList() string {
	names := make([]string, 0, len(dds.FileFormats()))
	for _, f := range dds.FileFormats() {
		names = append(names, f.String())
	}
	return strings.Join(names, "|")
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report the compute device used for BC6H and BC7",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "compute: %t\n", compute.Enabled())
			fmt.Fprintf(w, "caps:    %v\n", compute.Detect())
			dev, err := compute.Probe()
			if err != nil {
				fmt.Fprintf(w, "device:  none (%v)\n", err)
				return nil
			}
			defer dev.Close()
			fmt.Fprintf(w, "device:  %s\n", dev.Name())
			return nil
		},
	}
}
