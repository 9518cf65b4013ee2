package dataset

// Long-format fund observations.
// A Dataset is built once by Normalize and never modified afterwards.

import "errors"

const (
	// DefaultMeasure selects the total asset value rows of an RWA export.
	DefaultMeasure = "Total Asset Value (Dollar)"

	DateColumn      = "Date"
	MeasureColumn   = "Measure"
	TimestampColumn = "Timestamp"

	// DateLayout is the canonical rendering of an observation date.
	DateLayout = "2006-01-02"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrBadDate       = errors.New("unparseable date")
)

// Observation is one fund value on one date. Value is always > 0.
type Observation struct {
	Entity string
	Date   string // YYYY-MM-DD
	Value  float64
}

// Dataset holds observations sorted by date ascending, then value descending.
type Dataset struct {
	Measure      string
	Observations []Observation
}

// Len is the number of observations.
func (d *Dataset) Len() int {
	return len(d.Observations)
}

// Dates returns the distinct dates in ascending order.
func (d *Dataset) Dates() []string {
	var dates []string
	seen := make(map[string]struct{})
	for _, o := range d.Observations {
		if _, ok := seen[o.Date]; ok {
			continue
		}
		seen[o.Date] = struct{}{}
		dates = append(dates, o.Date)
	}
	return dates
}

// Entities returns the distinct entity names in the order they first appear.
func (d *Dataset) Entities() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, o := range d.Observations {
		if _, ok := seen[o.Entity]; ok {
			continue
		}
		seen[o.Entity] = struct{}{}
		names = append(names, o.Entity)
	}
	return names
}

// MaxValue is the largest value over all observations, 0 for an empty set.
func (d *Dataset) MaxValue() float64 {
	var max float64
	for _, o := range d.Observations {
		if o.Value > max {
			max = o.Value
		}
	}
	return max
}

// On returns the observations for one date, keyed by entity.
func (d *Dataset) On(date string) map[string]float64 {
	out := make(map[string]float64)
	for _, o := range d.Observations {
		if o.Date == date {
			out[o.Entity] = o.Value
		}
	}
	return out
}

// Series returns the value of entity on every date in dates, 0 where absent.
func (d *Dataset) Series(entity string, dates []string) []float64 {
	byDate := make(map[string]float64)
	for _, o := range d.Observations {
		if o.Entity == entity {
			byDate[o.Date] = o.Value
		}
	}
	out := make([]float64, len(dates))
	for i, date := range dates {
		out[i] = byDate[date]
	}
	return out
}
