package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURI(t *testing.T) {
	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.svg")
	require.NoError(t, os.WriteFile(logo, []byte("<svg/>"), 0644))

	uri, err := DataURI(logo)
	require.NoError(t, err)
	assert.Equal(t, "data:image/svg+xml;base64,PHN2Zy8+", uri)

	_, err = DataURI(filepath.Join(dir, "missing.svg"))
	assert.Error(t, err)
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "image/png", MimeType("a/b.PNG"))
	assert.Equal(t, "image/jpeg", MimeType("x.jpeg"))
	assert.True(t, IsRaster("x.jpg"))
	assert.False(t, IsRaster("x.svg"))
}

func TestWorkDir(t *testing.T) {
	w, err := NewWorkDir(t.TempDir(), "run")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(w.Path, "frame_0.png"), []byte("x"), 0644))

	w.Remove()
	_, err = os.Stat(w.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestEnsureParentDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out", "nested", "anim.gif")
	require.NoError(t, EnsureParentDir(target))
	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NoError(t, EnsureParentDir("anim.gif"))
}
