package raster

// Static frame images for GIF export, drawn with gg.

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"sort"

	"fundrace/internal/features/figure"
	"fundrace/internal/frames"
	"fundrace/internal/infra/fs"
	logging "fundrace/internal/infra/log"
	"fundrace/internal/palette"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 720

	marginLeft   = 80.0
	marginRight  = 80.0
	marginTop    = 100.0
	marginBottom = 110.0

	barFill    = 0.8 // share of a row slot covered by the bar
	labelPad   = 6.0
	tickCount  = 5
	tickLength = 5.0

	titleFontSize = 17.0
	axisFontSize  = 14.0
	tickFontSize  = 12.0
	labelFontSize = 14.0
)

var (
	background = color.RGBA{17, 17, 17, 255}
	foreground = color.RGBA{242, 245, 250, 255}
	gridColor  = color.RGBA{40, 52, 66, 255}
)

// Options size the output image.
type Options struct {
	Width    int
	Height   int
	FontPath string
}

// Renderer draws frames of one figure. Render may be called from several
// goroutines at once.
type Renderer struct {
	fig    *figure.Figure
	width  int
	height int
	fonts  *fontSet
	logo   image.Image
}

// NewRenderer loads fonts and the logo once for the whole run.
func NewRenderer(fig *figure.Figure, opts Options) (*Renderer, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	fonts, err := loadFonts(opts.FontPath)
	if err != nil {
		return nil, err
	}

	r := &Renderer{fig: fig, width: opts.Width, height: opts.Height, fonts: fonts}

	if fig.LogoPath != "" {
		if !fs.IsRaster(fig.LogoPath) {
			logging.LogWarn("Logo is not PNG or JPEG, skipping watermark in raster frames", zap.String("path", fig.LogoPath))
		} else {
			img, err := gg.LoadImage(fig.LogoPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load logo: %w", err)
			}
			r.logo = r.prepareLogo(img)
		}
	}
	return r, nil
}

// Size is the output image size in pixels.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

type plotArea struct {
	left, top, right, bottom float64
}

func (p plotArea) width() float64  { return p.right - p.left }
func (p plotArea) height() float64 { return p.bottom - p.top }

// paper maps paper coordinates to pixels.
func (p plotArea) paper(x, y float64) (float64, float64) {
	return p.left + x*p.width(), p.bottom - y*p.height()
}

func (r *Renderer) area() plotArea {
	return plotArea{
		left:   marginLeft,
		top:    marginTop,
		right:  float64(r.width) - marginRight,
		bottom: float64(r.height) - marginBottom,
	}
}

// prepareLogo scales the logo into its overlay box and bakes in its opacity.
func (r *Renderer) prepareLogo(img image.Image) image.Image {
	area := r.area()
	o := figure.LogoOverlay
	boxW, boxH := o.SizeX*area.width(), o.SizeY*area.height()

	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	scale := math.Min(boxW/w, boxH/h)
	if scale <= 0 || math.IsInf(scale, 0) {
		return nil
	}

	scaledCtx := gg.NewContext(int(w*scale), int(h*scale))
	scaledCtx.Scale(scale, scale)
	scaledCtx.DrawImage(img, 0, 0)
	scaled := scaledCtx.Image()

	faded := image.NewRGBA(scaled.Bounds())
	mask := image.NewUniform(color.Alpha{A: uint8(255 * o.Opacity)})
	draw.DrawMask(faded, faded.Bounds(), scaled, scaled.Bounds().Min, mask, image.Point{}, draw.Over)
	return faded
}

// Render draws fr. Bars are ordered largest on top; the frame's own row order
// only fixes which entities are present.
func (r *Renderer) Render(fr frames.Frame) (image.Image, error) {
	dc := gg.NewContext(r.width, r.height)
	dc.SetColor(background)
	dc.Clear()

	area := r.area()

	if r.logo != nil {
		x, y := area.paper(figure.LogoOverlay.X, figure.LogoOverlay.Y)
		dc.DrawImageAnchored(r.logo, int(x), int(y), 0.5, 0.5)
	}

	r.drawAxes(dc, area)

	if err := r.drawBars(dc, area, fr); err != nil {
		return nil, err
	}

	r.drawText(dc, area, fr.Date)
	return dc.Image(), nil
}

// RenderPNG renders fr into a PNG file at path.
func (r *Renderer) RenderPNG(fr frames.Frame, path string) error {
	img, err := r.Render(fr)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	if err := gg.NewContextForImage(img).EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode frame %s: %w", fr.Date, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close frame file: %w", err)
	}
	return nil
}

func (r *Renderer) xScale(area plotArea) func(float64) float64 {
	max := r.fig.XRange[1]
	if max <= 0 {
		max = 1
	}
	return func(v float64) float64 {
		return area.left + math.Min(v/max, 1)*area.width()
	}
}

func (r *Renderer) drawAxes(dc *gg.Context, area plotArea) {
	toX := r.xScale(area)
	step := niceStep(r.fig.XRange[1] / tickCount)

	dc.SetFontFace(r.fonts.face(tickFontSize, false))
	dc.SetLineWidth(1)
	for v := 0.0; step > 0 && v <= r.fig.XRange[1]; v += step {
		x := toX(v)
		dc.SetColor(gridColor)
		dc.DrawLine(x, area.top, x, area.bottom)
		dc.Stroke()

		dc.SetColor(foreground)
		dc.DrawLine(x, area.bottom, x, area.bottom+tickLength)
		dc.Stroke()
		dc.DrawStringAnchored(formatTick(v), x, area.bottom+tickLength+10, 0.5, 0.5)
	}

	dc.SetFontFace(r.fonts.face(axisFontSize, false))
	dc.SetColor(foreground)
	dc.DrawStringAnchored(r.fig.XAxisTitle, area.left+area.width()/2, area.bottom+45, 0.5, 0.5)

	dc.Push()
	yx, yy := area.left-25, area.top+area.height()/2
	dc.RotateAbout(gg.Radians(-90), yx, yy)
	dc.DrawStringAnchored(r.fig.YAxisTitle, yx, yy, 0.5, 0.5)
	dc.Pop()
}

func (r *Renderer) drawBars(dc *gg.Context, area plotArea, fr frames.Frame) error {
	rows := make([]frames.Row, len(fr.Rows))
	copy(rows, fr.Rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })

	if len(rows) == 0 {
		return nil
	}

	toX := r.xScale(area)
	slot := area.height() / float64(len(rows))
	thickness := slot * barFill

	dc.SetFontFace(r.fonts.face(labelFontSize, true))
	for i, row := range rows {
		fill, err := palette.Parse(row.Color)
		if err != nil {
			return fmt.Errorf("frame %s: %w", fr.Date, err)
		}

		y := area.top + float64(i)*slot + (slot-thickness)/2
		end := toX(row.Value)

		dc.SetColor(fill)
		dc.DrawRectangle(area.left, y, end-area.left, thickness)
		dc.Fill()

		midY := y + thickness/2
		if row.Placement == frames.Outside {
			dc.SetColor(foreground)
			dc.DrawStringAnchored(row.Label, end+labelPad, midY, 0, 0.5)
			continue
		}
		dc.SetColor(textColor(row.TextColor))
		dc.DrawStringAnchored(row.Label, end-labelPad, midY, 1, 0.5)
	}
	return nil
}

func (r *Renderer) drawText(dc *gg.Context, area plotArea, date string) {
	dc.SetFontFace(r.fonts.face(titleFontSize, false))
	dc.SetColor(foreground)
	dc.DrawStringAnchored(r.fig.Title, area.left, marginTop/2, 0, 0.5)

	d := figure.DateOverlay
	dc.SetFontFace(r.fonts.face(d.FontSize, false))
	dc.SetRGBA(1, 1, 1, d.Opacity)
	x, y := area.paper(d.X, d.Y)
	dc.DrawStringAnchored(figure.DateLabel(date), x, y, 0.5, 0.5)

	s := figure.SourceOverlay
	dc.SetFontFace(r.fonts.face(s.FontSize, false))
	dc.SetRGBA255(int(foreground.R), int(foreground.G), int(foreground.B), int(255*s.Opacity))
	x, y = area.paper(s.X, s.Y)
	dc.DrawStringAnchored(r.fig.SourceText, x, y+40, 0, 0.5)
}

func textColor(name string) color.Color {
	if name == "black" {
		return color.Black
	}
	return color.White
}

// niceStep rounds raw up to 1, 2 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	exp := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / exp; {
	case f <= 1:
		return exp
	case f <= 2:
		return 2 * exp
	case f <= 5:
		return 5 * exp
	default:
		return 10 * exp
	}
}

// formatTick renders axis values with B/M/k suffixes.
func formatTick(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%gB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%gM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%gk", v/1e3)
	default:
		return fmt.Sprintf("%g", v)
	}
}
