package frames

// Per-date chart frames.
// Every frame has one row per member of the entity set, in the set's order,
// so bar geometry never changes between frames.

import (
	"errors"
	"fmt"

	"fundrace/internal/dataset"
	"fundrace/internal/palette"
)

// Label placement relative to the bar.
const (
	Inside  = "inside"
	Outside = "outside"
)

// OutsideRatio: bars shorter than this share of the frame maximum get their label outside.
const OutsideRatio = 0.1

var ErrNoColor = errors.New("no color assigned")

// Row is one bar with everything a renderer needs to draw it.
type Row struct {
	Entity    string
	Value     float64
	Color     string
	TextColor string
	Label     string
	Placement string
}

// Frame is the chart state for one date.
type Frame struct {
	Date string
	Rows []Row
	Max  float64
}

// Values returns the row values in row order.
func (f Frame) Values() []float64 {
	out := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r.Value
	}
	return out
}

// FormatValue renders dollars as whole millions, e.g. "$12M".
func FormatValue(v float64) string {
	return fmt.Sprintf("$%.0fM", v/1e6)
}

// FormatLabel renders "<entity>: $<millions>M".
func FormatLabel(entity string, v float64) string {
	return entity + ": " + FormatValue(v)
}

// Placement is Outside for values under 10% of the frame maximum.
func Placement(v, frameMax float64) string {
	if v < frameMax*OutsideRatio {
		return Outside
	}
	return Inside
}

// Build assembles the frame for date. Entities in set with no observation on
// that date get a zero row.
func Build(ds *dataset.Dataset, set []string, colors palette.ColorMap, date string) (Frame, error) {
	values := ds.On(date)

	f := Frame{Date: date, Rows: make([]Row, len(set))}
	for i, name := range set {
		v := values[name]
		f.Rows[i] = Row{Entity: name, Value: v}
		if v > f.Max {
			f.Max = v
		}
	}

	for i := range f.Rows {
		r := &f.Rows[i]

		c, ok := colors[r.Entity]
		if !ok {
			return Frame{}, fmt.Errorf("%w: %s", ErrNoColor, r.Entity)
		}
		text, err := palette.TextColor(c)
		if err != nil {
			return Frame{}, fmt.Errorf("frame %s: %w", date, err)
		}

		r.Color = c
		r.TextColor = text
		r.Label = FormatLabel(r.Entity, r.Value)
		r.Placement = Placement(r.Value, f.Max)
	}
	return f, nil
}

// BuildAll builds one frame per dataset date, in date order.
func BuildAll(ds *dataset.Dataset, set []string, colors palette.ColorMap) ([]Frame, error) {
	dates := ds.Dates()
	out := make([]Frame, 0, len(dates))
	for _, date := range dates {
		f, err := Build(ds, set, colors, date)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
