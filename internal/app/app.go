package app

// One render run: load, pick the top funds, build frames, hand them to a renderer.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"fundrace/internal/config"
	"fundrace/internal/dataset"
	"fundrace/internal/features/figure"
	"fundrace/internal/features/gifanim"
	"fundrace/internal/features/history"
	"fundrace/internal/features/page"
	"fundrace/internal/features/publish"
	"fundrace/internal/features/raster"
	"fundrace/internal/frames"
	"fundrace/internal/infra/fs"
	logging "fundrace/internal/infra/log"
	"fundrace/internal/infra/metrics"
	"fundrace/internal/palette"
	"fundrace/internal/ranking"

	"go.uber.org/zap"
)

var ErrNoData = errors.New("no observations to chart")

// PublishFunc delivers a finished GIF.
type PublishFunc func(ctx context.Context, path, caption string) error

// Runner holds everything scoped to a single run.
type Runner struct {
	Config  *config.Config
	RunID   string
	Metrics *metrics.Recorder
	// Publish overrides the Telegram publisher built from Config.Telegram.
	Publish PublishFunc
}

// Result describes what a run produced.
type Result struct {
	RunID     string
	Output    string
	Frames    int
	Entities  []string
	Published bool
}

func New(cfg *config.Config) *Runner {
	return &Runner{
		Config:  cfg,
		RunID:   logging.NewRunID(),
		Metrics: metrics.NewRecorder(),
	}
}

// Run renders the animation described by cfg.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	return New(cfg).Render(ctx)
}

type prepared struct {
	ds     *dataset.Dataset
	set    []string
	colors palette.ColorMap
}

func (r *Runner) prepare() (*prepared, error) {
	cfg := r.Config
	ds, err := dataset.Load(cfg.Input.File, dataset.LoadOptions{
		Measure: cfg.Input.Measure,
		Sheet:   cfg.Input.Sheet,
	})
	if err != nil {
		r.Metrics.Failed("load")
		return nil, err
	}
	r.Metrics.ObservationsLoaded(ds.Len())
	if ds.Len() == 0 {
		r.Metrics.Failed("load")
		return nil, fmt.Errorf("%w: measure %q in %s", ErrNoData, ds.Measure, cfg.Input.File)
	}

	colors := palette.Assign(ds.Entities(), palette.Prism, palette.DefaultExcluded)
	colors = palette.Merge(colors, palette.DefaultOverrides)
	colors = palette.Merge(colors, cfg.Chart.Overrides)

	k := cfg.Chart.TopK
	if k <= 0 {
		k = ranking.DefaultK
	}
	set := ranking.TopK(ds.Observations, k)

	logging.LogInfo("Top funds selected",
		zap.String("run_id", r.RunID),
		zap.Int("k", k),
		zap.Strings("funds", set))

	return &prepared{ds: ds, set: set, colors: colors}, nil
}

// Render builds every frame and writes the interactive page, or the GIF when
// Output.GIF is set. A GIF is published when Telegram is configured.
func (r *Runner) Render(ctx context.Context) (res *Result, err error) {
	cfg := r.Config
	started := time.Now()
	defer r.finish("render", started, &err)

	p, err := r.prepare()
	if err != nil {
		return nil, err
	}

	all, err := frames.BuildAll(p.ds, p.set, p.colors)
	if err != nil {
		r.Metrics.Failed("frames")
		return nil, err
	}
	r.Metrics.FramesBuilt(len(all))

	logoURI, logoPath := r.logo()
	fig, err := figure.New(all, p.ds.MaxValue(), figure.Options{
		Title:       cfg.Chart.Title,
		XAxisTitle:  cfg.Chart.XTitle,
		YAxisTitle:  cfg.Chart.YTitle,
		SourceText:  cfg.Chart.SourceText,
		Logo:        logoURI,
		LogoPath:    logoPath,
		Interactive: !cfg.Output.GIF,
	})
	if err != nil {
		return nil, err
	}

	res = &Result{RunID: r.RunID, Frames: len(all), Entities: p.set}

	if !cfg.Output.GIF {
		if err := page.Show(cfg.Output.HTMLFile, fig, cfg.Output.Open); err != nil {
			r.Metrics.Failed("page")
			return nil, err
		}
		res.Output = cfg.Output.HTMLFile
		if cfg.Telegram.Enabled() {
			logging.LogWarn("Telegram publishing needs GIF output, skipped", zap.String("run_id", r.RunID))
		}
		return res, nil
	}

	renderer, err := raster.NewRenderer(fig, raster.Options{
		Width:    cfg.Chart.Width,
		Height:   cfg.Chart.Height,
		FontPath: cfg.Chart.Font,
	})
	if err != nil {
		r.Metrics.Failed("render")
		return nil, err
	}
	if err := gifanim.Assemble(ctx, renderer, fig.Frames, cfg.Output.GIFFile, gifanim.Options{
		Workers: cfg.Render.Workers,
		Delay:   cfg.Chart.FrameDelayCS,
		RunID:   r.RunID,
		Metrics: r.Metrics,
	}); err != nil {
		return nil, err
	}
	res.Output = cfg.Output.GIFFile

	if cfg.Telegram.Enabled() {
		if err := r.publish(ctx, cfg.Output.GIFFile); err != nil {
			r.Metrics.Failed("publish")
			return res, err
		}
		res.Published = true
	}
	return res, nil
}

// History writes the static line chart of the top funds.
func (r *Runner) History(ctx context.Context) (path string, err error) {
	cfg := r.Config
	defer r.finish("history", time.Now(), &err)

	p, err := r.prepare()
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	err = history.RenderFile(cfg.Output.HistoryFile, p.ds, p.set, p.colors, history.Options{
		Title:  cfg.Chart.Title,
		YTitle: cfg.Chart.XTitle,
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
	})
	if err != nil {
		r.Metrics.Failed("history")
		return "", err
	}
	return cfg.Output.HistoryFile, nil
}

// Export writes the normalized observations as CSV.
func (r *Runner) Export(ctx context.Context) (path string, err error) {
	cfg := r.Config
	defer r.finish("export", time.Now(), &err)

	ds, err := dataset.Load(cfg.Input.File, dataset.LoadOptions{
		Measure: cfg.Input.Measure,
		Sheet:   cfg.Input.Sheet,
	})
	if err != nil {
		r.Metrics.Failed("load")
		return "", err
	}
	r.Metrics.ObservationsLoaded(ds.Len())
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out := cfg.Output.ExportFile
	if err := fs.EnsureParentDir(out); err != nil {
		return "", err
	}
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := ds.WriteCSV(f); err != nil {
		f.Close()
		r.Metrics.Failed("export")
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}

	logging.LogSuccess("Observations exported", zap.String("path", out), zap.Int("rows", ds.Len()))
	return out, nil
}

// logo returns the data URI and path of the configured logo. A missing logo
// only costs the watermark.
func (r *Runner) logo() (string, string) {
	path := r.Config.Chart.Logo
	if path == "" {
		return "", ""
	}
	uri, err := fs.DataURI(path)
	if err != nil {
		logging.LogWarn("Logo not loaded, rendering without it",
			zap.String("run_id", r.RunID), zap.String("path", path), zap.Error(err))
		return "", ""
	}
	return uri, path
}

func (r *Runner) publish(ctx context.Context, path string) error {
	fn := r.Publish
	if fn == nil {
		p, err := publish.NewBot(r.Config.Telegram.BotToken, r.Config.Telegram.ChatIDs, publish.DefaultOptions())
		if err != nil {
			return err
		}
		fn = p.PublishGIF
	}
	return fn(ctx, path, r.Config.Telegram.Caption)
}

func (r *Runner) finish(stage string, started time.Time, errp *error) {
	fields := []zap.Field{
		zap.String("run_id", r.RunID),
		zap.String("stage", stage),
		zap.Duration("elapsed", time.Since(started)),
	}
	if *errp != nil {
		logging.LogError("Run failed", append(fields, zap.Error(*errp))...)
	} else {
		logging.LogSuccess("Run finished", fields...)
	}

	if path := r.Config.Metrics.Textfile; path != "" {
		err := fs.EnsureParentDir(path)
		if err == nil {
			err = r.Metrics.WriteTextfile(path)
		}
		if err != nil {
			logging.LogWarn("Failed to write metrics", zap.String("path", path), zap.Error(err))
		}
	}
}
