package figure

import (
	"testing"

	"fundrace/internal/frames"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	fs := []frames.Frame{{Date: "2024-01-01"}, {Date: "2024-01-02"}}

	f, err := New(fs, 200, Options{Title: "Custom"})
	require.NoError(t, err)

	assert.Equal(t, "Custom", f.Title)
	assert.Equal(t, DefaultXAxisTitle, f.XAxisTitle)
	assert.Equal(t, DefaultSource, f.SourceText)
	assert.Equal(t, DarkTheme, f.Theme)
	assert.InDelta(t, 220.0, f.XRange[1], 1e-9)
	assert.Zero(t, f.XRange[0])
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, f.Dates())
	assert.Equal(t, "2024-01-01", f.Initial().Date)
	assert.Equal(t, "Date: 2024-01-02", DateLabel("2024-01-02"))
}

func TestNew_NoFrames(t *testing.T) {
	_, err := New(nil, 10, Options{})
	assert.ErrorIs(t, err, ErrNoFrames)
}
