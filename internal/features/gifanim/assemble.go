package gifanim

// GIF export.
// Frames are rasterized to PNG files in a run-scoped work directory by a
// bounded pool of workers, read back in frame order, quantized and encoded.
// The work directory is removed whether or not the run succeeds.

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"fundrace/internal/frames"
	"fundrace/internal/infra/fs"
	logging "fundrace/internal/infra/log"
	"fundrace/internal/infra/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultDelay is the per-frame delay in hundredths of a second (0.05s).
const DefaultDelay = 5

var ErrNoFrames = errors.New("no frames to encode")

// FrameRenderer writes one frame as a PNG file.
type FrameRenderer interface {
	RenderPNG(fr frames.Frame, path string) error
}

// Options tune one export.
type Options struct {
	Workers  int    // defaults to runtime.NumCPU()
	Delay    int    // hundredths of a second, defaults to DefaultDelay
	TempRoot string // parent of the work directory, defaults to os.TempDir()
	RunID    string
	Metrics  *metrics.Recorder
}

// Assemble renders every frame and writes an endlessly looping GIF to out.
// A failed frame cancels the remaining work and is returned; no frame is skipped.
func Assemble(ctx context.Context, r FrameRenderer, all []frames.Frame, out string, opts Options) error {
	if len(all) == 0 {
		return ErrNoFrames
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}

	wd, err := fs.NewWorkDir(opts.TempRoot, opts.RunID)
	if err != nil {
		return err
	}
	defer wd.Remove()

	logging.LogInfo("Saving frames to GIF",
		zap.String("run_id", opts.RunID),
		zap.Int("frames", len(all)),
		zap.Int("workers", opts.Workers),
		zap.String("work_dir", wd.Path))

	paths, err := renderAll(ctx, r, all, wd.Path, opts)
	if err != nil {
		opts.Metrics.Failed("render")
		return err
	}

	if err := encode(paths, out, opts.Delay); err != nil {
		opts.Metrics.Failed("encode")
		return err
	}

	logging.LogSuccess("GIF saved", zap.String("path", out), zap.Int("frames", len(paths)))
	return nil
}

// renderAll returns the PNG paths indexed like all.
func renderAll(ctx context.Context, r FrameRenderer, all []frames.Frame, dir string, opts Options) ([]string, error) {
	paths := make([]string, len(all))

	var done atomic.Int64
	progress := rate.Sometimes{First: 1, Interval: time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, fr := range all {
		i, fr := i, fr
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			path := filepath.Join(dir, fmt.Sprintf("frame_%d.png", i))
			if err := r.RenderPNG(fr, path); err != nil {
				return fmt.Errorf("frame %d (%s): %w", i, fr.Date, err)
			}
			paths[i] = path
			opts.Metrics.FrameRendered(time.Since(start))

			n := done.Add(1)
			progress.Do(func() {
				logging.LogInfo("Processing frames", zap.Int64("done", n), zap.Int("total", len(all)))
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func encode(paths []string, out string, delay int) error {
	anim := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(paths)),
		Delay:     make([]int, 0, len(paths)),
		LoopCount: 0,
	}

	for _, path := range paths {
		img, err := readPNG(path)
		if err != nil {
			return err
		}
		anim.Image = append(anim.Image, quantize(img))
		anim.Delay = append(anim.Delay, delay)
	}

	if err := fs.EnsureParentDir(out); err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create gif: %w", err)
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close gif: %w", err)
	}
	return nil
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame image: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame image %s: %w", path, err)
	}
	return img, nil
}

func quantize(img image.Image) *image.Paletted {
	bounds := img.Bounds()
	pm := image.NewPaletted(bounds, palette.Plan9)
	draw.FloydSteinberg.Draw(pm, bounds, img, bounds.Min)
	return pm
}
