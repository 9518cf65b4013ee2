package history

// Static line chart of each top fund's value across all dates.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"fundrace/internal/dataset"
	"fundrace/internal/infra/fs"
	logging "fundrace/internal/infra/log"
	"fundrace/internal/palette"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

var ErrTooFewDates = errors.New("history chart needs at least two dates")

// Options control the chart.
type Options struct {
	Title  string
	YTitle string
	Width  int
	Height int
}

// Render writes a PNG line chart with one series per entity in set.
func Render(w io.Writer, ds *dataset.Dataset, set []string, colors palette.ColorMap, opts Options) error {
	dates := ds.Dates()
	if len(dates) < 2 {
		return ErrTooFewDates
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	times := make([]time.Time, len(dates))
	for i, d := range dates {
		t, err := time.Parse(dataset.DateLayout, d)
		if err != nil {
			return fmt.Errorf("bad date %q: %w", d, err)
		}
		times[i] = t
	}

	series := make([]chart.Series, 0, len(set))
	for _, name := range set {
		c, err := palette.Parse(colors[name])
		if err != nil {
			return fmt.Errorf("entity %s: %w", name, err)
		}
		series = append(series, chart.TimeSeries{
			Name:    name,
			XValues: times,
			YValues: ds.Series(name, dates),
			Style: chart.Style{
				StrokeColor: drawing.Color{R: c.R, G: c.G, B: c.B, A: 255},
				StrokeWidth: 2,
			},
		})
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           opts.YTitle,
			ValueFormatter: millions,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render history chart: %w", err)
	}
	return nil
}

// RenderFile renders the chart into path.
func RenderFile(path string, ds *dataset.Dataset, set []string, colors palette.ColorMap, opts Options) error {
	if err := fs.EnsureParentDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create history chart: %w", err)
	}
	if err := Render(f, ds, set, colors, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close history chart: %w", err)
	}

	logging.LogSuccess("History chart saved", zap.String("path", path), zap.Int("series", len(set)))
	return nil
}

func millions(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("$%.0fM", f/1e6)
	}
	return ""
}
