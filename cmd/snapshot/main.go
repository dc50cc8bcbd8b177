package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scheerer/screen-ambilight/internal/lights"
	"github.com/scheerer/screen-ambilight/internal/lights/serial"
	"github.com/scheerer/screen-ambilight/internal/screen"
)

type options struct {
	out   string
	count int
}

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture the screen and print the color the ambilight would send",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", opts.count)
			}
			return run(cmd, screen.NewSampler(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the last downsampled frame to this PNG file")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 1, "number of frames to capture")
	return cmd
}

type sampler interface {
	Capture() (*image.RGBA, error)
}

func run(cmd *cobra.Command, s sampler, opts options) error {
	analyzer := screen.NewAnalyzer()
	w := cmd.OutOrStdout()

	var img *image.RGBA
	var analysis time.Duration
	for i := 0; i < opts.count; i++ {
		var err error
		img, err = s.Capture()
		if err != nil {
			return err
		}

		start := time.Now()
		crop, ok := screen.DetectCrop(img)
		c := lights.FromRGBA(analyzer.DominantColor(img))
		analysis += time.Since(start)

		if !ok {
			fmt.Fprintf(w, "frame %d: %dx%d all black, color %v, message %s\n",
				i, img.Rect.Dx(), img.Rect.Dy(), c, serial.Encode(c))
			continue
		}
		fmt.Fprintf(w, "frame %d: %dx%d crop %v, color %v, message %s\n",
			i, img.Rect.Dx(), img.Rect.Dy(), crop, c, serial.Encode(c))
	}
	fmt.Fprintf(w, "average analysis time: %v\n", analysis/time.Duration(opts.count))

	if opts.out == "" {
		return nil
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", opts.out, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", opts.out, err)
	}
	return f.Close()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
