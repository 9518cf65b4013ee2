package frames

import (
	"strings"
	"testing"

	"fundrace/internal/dataset"
	"fundrace/internal/palette"
	"fundrace/internal/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	table, err := dataset.ReadCSV(strings.NewReader(`Date,Measure,Timestamp,A,B,C
2024-01-01,Total Asset Value (Dollar),1,100,50,10
2024-01-02,Total Asset Value (Dollar),2,200,40,30
2024-01-03,Total Asset Value (Dollar),3,300,,
`))
	require.NoError(t, err)
	ds, err := dataset.Normalize(table, dataset.DefaultMeasure)
	require.NoError(t, err)
	return ds
}

func TestFormatLabel(t *testing.T) {
	assert.Equal(t, "X: $12M", FormatLabel("X", 12_345_678))
	assert.Equal(t, "$0M", FormatValue(0))
	assert.Equal(t, "$1M", FormatValue(1_499_999))
	assert.Equal(t, "$1235M", FormatValue(1_234_500_001))
}

func TestPlacement(t *testing.T) {
	assert.Equal(t, Outside, Placement(5, 100))
	assert.Equal(t, Inside, Placement(50, 100))
	assert.Equal(t, Inside, Placement(10, 100))
	assert.Equal(t, Inside, Placement(0, 0))
}

func TestBuildAll_ReindexesToEntitySet(t *testing.T) {
	ds := exampleDataset(t)
	set := ranking.TopK(ds.Observations, ranking.DefaultK)
	require.Equal(t, []string{"A", "B", "C"}, set)

	colors := palette.Merge(palette.Assign(ds.Entities(), palette.Prism, palette.DefaultExcluded), palette.DefaultOverrides)

	all, err := BuildAll(ds, set, colors)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, "2024-01-01", all[0].Date)
	assert.Equal(t, []float64{100, 50, 10}, all[0].Values())
	assert.Equal(t, []float64{200, 40, 30}, all[1].Values())
	assert.Equal(t, []float64{300, 0, 0}, all[2].Values())

	for _, f := range all {
		require.Len(t, f.Rows, len(set))
		for i, r := range f.Rows {
			assert.Equal(t, set[i], r.Entity)
			assert.Equal(t, colors[r.Entity], r.Color)
			assert.Contains(t, []string{"black", "white"}, r.TextColor)
		}
	}

	assert.Equal(t, 200.0, all[1].Max)
	assert.Equal(t, Inside, all[1].Rows[2].Placement)
	assert.Equal(t, Inside, all[0].Rows[2].Placement) // exactly 10% stays inside
	assert.Equal(t, Outside, all[2].Rows[1].Placement)
}

func TestBuild_ZeroFillsMissing(t *testing.T) {
	ds := exampleDataset(t)
	colors := palette.ColorMap{"A": "#ffffff", "B": "#000000", "C": "rgb(255,0,0)"}

	f, err := Build(ds, []string{"A", "B", "C"}, colors, "2024-01-03")
	require.NoError(t, err)

	assert.Equal(t, Row{Entity: "A", Value: 300, Color: "#ffffff", TextColor: "black", Label: "A: $0M", Placement: Inside}, f.Rows[0])
	assert.Equal(t, Row{Entity: "B", Value: 0, Color: "#000000", TextColor: "white", Label: "B: $0M", Placement: Outside}, f.Rows[1])
	assert.Equal(t, "white", f.Rows[2].TextColor)
}

func TestBuild_Errors(t *testing.T) {
	ds := exampleDataset(t)

	_, err := Build(ds, []string{"A", "B"}, palette.ColorMap{"A": "#ffffff"}, "2024-01-01")
	assert.ErrorIs(t, err, ErrNoColor)

	_, err = Build(ds, []string{"A"}, palette.ColorMap{"A": "teal"}, "2024-01-01")
	assert.ErrorIs(t, err, palette.ErrBadColor)
}
