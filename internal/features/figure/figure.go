package figure

// Chart-level configuration shared by the HTML page and the raster renderer.
// Overlay positions are in paper coordinates: (0,0) is the bottom-left corner
// of the plot area and (1,1) the top-right.

import (
	"errors"

	"fundrace/internal/frames"
)

const (
	DefaultTitle      = "Growth of RWA Treasuries by Fund"
	DefaultXAxisTitle = "Total Asset Value (Dollar)"
	DefaultYAxisTitle = "Fund Name"
	DefaultSource     = "Source: RWA.xyz and Securitize Research"
	DarkTheme         = "plotly_dark"

	// RangePadding stretches the x axis past the largest value of the run.
	RangePadding = 1.1

	PlayFrameMs   = 50
	SliderFrameMs = 25
)

var ErrNoFrames = errors.New("no frames to render")

// Overlay places a text or image element on the chart.
type Overlay struct {
	X, Y     float64
	SizeX    float64 // images only
	SizeY    float64
	FontSize float64 // text only
	Opacity  float64
}

var (
	DateOverlay   = Overlay{X: 0.66, Y: 0.35, FontSize: 24, Opacity: 0.7}
	SourceOverlay = Overlay{X: 0.0, Y: -0.1, FontSize: 12, Opacity: 0.7}
	LogoOverlay   = Overlay{X: 0.6, Y: 0.1, SizeX: 0.5, SizeY: 0.5, Opacity: 0.5}
)

// Options are the caller-controlled parts of a figure.
type Options struct {
	Title      string
	XAxisTitle string
	YAxisTitle string
	SourceText string
	// Logo is a data URI for the HTML page.
	Logo string
	// LogoPath is the file behind Logo; raster output can only use PNG or JPEG.
	LogoPath string
	// Interactive adds play/pause and the date slider.
	Interactive bool
}

// Figure is everything a renderer needs for one run.
type Figure struct {
	Title       string
	XAxisTitle  string
	YAxisTitle  string
	SourceText  string
	Logo        string
	LogoPath    string
	Theme       string
	XRange      [2]float64
	Frames      []frames.Frame
	Interactive bool
}

// New builds a figure. globalMax is the largest value in the whole dataset.
func New(fs []frames.Frame, globalMax float64, opts Options) (*Figure, error) {
	if len(fs) == 0 {
		return nil, ErrNoFrames
	}

	f := &Figure{
		Title:       orDefault(opts.Title, DefaultTitle),
		XAxisTitle:  orDefault(opts.XAxisTitle, DefaultXAxisTitle),
		YAxisTitle:  orDefault(opts.YAxisTitle, DefaultYAxisTitle),
		SourceText:  orDefault(opts.SourceText, DefaultSource),
		Logo:        opts.Logo,
		LogoPath:    opts.LogoPath,
		Theme:       DarkTheme,
		XRange:      [2]float64{0, globalMax * RangePadding},
		Frames:      fs,
		Interactive: opts.Interactive,
	}
	return f, nil
}

// Initial is the frame shown before the animation starts.
func (f *Figure) Initial() frames.Frame {
	return f.Frames[0]
}

// Dates lists the frame dates in order.
func (f *Figure) Dates() []string {
	out := make([]string, len(f.Frames))
	for i, fr := range f.Frames {
		out[i] = fr.Date
	}
	return out
}

// DateLabel is the annotation text for a frame.
func DateLabel(date string) string {
	return "Date: " + date
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
