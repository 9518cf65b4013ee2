package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// extra layouts tried after cast's own list, which has no slash dates
var dateLayouts = []string{
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06",
	"01-02-06",
	"Jan 2, 2006",
	"02-Jan-2006",
}

// Normalize turns a wide export into sorted, positive observations:
//
//  1. keep rows whose Measure equals measure
//  2. drop the Timestamp and Measure columns, then exact duplicate rows
//  3. unpivot every remaining column except Date into (date, entity, value)
//  4. parse dates and render them as YYYY-MM-DD
//  5. coerce values to numbers, anything unparseable becomes 0
//  6. keep the first row for each (date, entity)
//  7. sort by date ascending, value descending
//  8. drop values <= 0
//
// A measure with no matching rows yields an empty Dataset, not an error.
func Normalize(t *Table, measure string) (*Dataset, error) {
	dateIdx, measureIdx, tsIdx := -1, -1, -1
	for i, name := range t.Header {
		switch strings.TrimSpace(name) {
		case DateColumn:
			dateIdx = i
		case MeasureColumn:
			measureIdx = i
		case TimestampColumn:
			tsIdx = i
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, DateColumn)
	}
	if measureIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, MeasureColumn)
	}

	// Column order after Timestamp and Measure are gone: Date first, then entities.
	var valueCols []int
	for i := range t.Header {
		if i == dateIdx || i == measureIdx || i == tsIdx {
			continue
		}
		valueCols = append(valueCols, i)
	}

	kept := make([][]string, 0, len(t.Rows))
	seenRows := make(map[string]struct{})
	for _, row := range t.Rows {
		if cell(row, measureIdx) != measure {
			continue
		}
		key := rowKey(row, dateIdx, valueCols)
		if _, dup := seenRows[key]; dup {
			continue
		}
		seenRows[key] = struct{}{}
		kept = append(kept, row)
	}

	dates := make([]string, len(kept))
	for i, row := range kept {
		d, err := ParseDate(cell(row, dateIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		dates[i] = d.Format(DateLayout)
	}

	type pair struct{ date, entity string }
	seen := make(map[pair]struct{})
	obs := make([]Observation, 0, len(kept)*len(valueCols))

	// Column-major, like a melt: every row of the first entity, then the next.
	for _, col := range valueCols {
		entity := strings.TrimSpace(t.Header[col])
		for i, row := range kept {
			p := pair{dates[i], entity}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			obs = append(obs, Observation{
				Entity: entity,
				Date:   dates[i],
				Value:  CoerceValue(cell(row, col)),
			})
		}
	}

	sort.SliceStable(obs, func(i, j int) bool {
		if obs[i].Date != obs[j].Date {
			return obs[i].Date < obs[j].Date
		}
		return obs[i].Value > obs[j].Value
	})

	positive := obs[:0]
	for _, o := range obs {
		if o.Value > 0 {
			positive = append(positive, o)
		}
	}

	return &Dataset{Measure: measure, Observations: positive}, nil
}

// ParseDate accepts the common export date layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrBadDate)
	}
	if t, err := cast.ToTimeInDefaultLocationE(s, time.UTC); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// CoerceValue parses a numeric cell. Blank, malformed, NaN and infinite cells become 0.
func CoerceValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func rowKey(row []string, dateIdx int, cols []int) string {
	var b strings.Builder
	b.WriteString(cell(row, dateIdx))
	for _, c := range cols {
		b.WriteByte(0x1f)
		b.WriteString(cell(row, c))
	}
	return b.String()
}
