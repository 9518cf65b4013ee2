package history

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fundrace/internal/dataset"
	"fundrace/internal/palette"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, csvText string) *dataset.Dataset {
	t.Helper()
	table, err := dataset.ReadCSV(strings.NewReader(csvText))
	require.NoError(t, err)
	ds, err := dataset.Normalize(table, "M")
	require.NoError(t, err)
	return ds
}

func TestRender(t *testing.T) {
	ds := load(t, `Date,Measure,A,B
2024-01-01,M,100000000,50000000
2024-01-02,M,200000000,
2024-01-03,M,250000000,90000000
`)
	colors := palette.ColorMap{"A": "#1f77b4", "B": "rgb(15, 133, 84)"}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, ds, []string{"A", "B"}, colors, Options{Title: "History", Width: 640, Height: 360}))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 360, cfg.Height)
}

func TestRender_Errors(t *testing.T) {
	one := load(t, "Date,Measure,A\n2024-01-01,M,1\n")
	assert.ErrorIs(t, Render(&bytes.Buffer{}, one, []string{"A"}, palette.ColorMap{"A": "#000000"}, Options{}), ErrTooFewDates)

	two := load(t, "Date,Measure,A\n2024-01-01,M,1\n2024-01-02,M,2\n")
	assert.ErrorIs(t, Render(&bytes.Buffer{}, two, []string{"A"}, palette.ColorMap{}, Options{}), palette.ErrBadColor)
}

func TestRenderFile_RemovesPartialOutput(t *testing.T) {
	one := load(t, "Date,Measure,A\n2024-01-01,M,1\n")
	path := filepath.Join(t.TempDir(), "charts", "history.png")

	require.Error(t, RenderFile(path, one, []string{"A"}, palette.ColorMap{"A": "#000000"}, Options{}))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestMillions(t *testing.T) {
	assert.Equal(t, "$12M", millions(12_345_678.0))
	assert.Equal(t, "", millions("x"))
}
