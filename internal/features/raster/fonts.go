package raster

import (
	"fmt"
	"os"
	"path/filepath"

	logging "fundrace/internal/infra/log"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// fontPaths are probed in order when no font is configured.
// truetype cannot read .otf/.ttc collections, so only .ttf files are listed.
var fontPaths = []string{
	"etc/fonts/Inter-Regular.ttf",
	"./etc/fonts/Inter-Regular.ttf",
	"~/Library/Fonts/Inter-Regular.ttf",
	"/Library/Fonts/Inter-Regular.ttf",
	"/usr/share/fonts/truetype/inter/Inter-Regular.ttf",
	"/usr/local/share/fonts/Inter-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/usr/share/fonts/truetype/msttcorefonts/Arial.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// fontSet holds the parsed regular and bold faces. truetype.Font is read-only
// after parsing, so one set is shared by every render goroutine; faces are
// created per frame.
type fontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
	source  string
}

func (s *fontSet) face(size float64, bold bool) font.Face {
	f := s.regular
	if bold {
		f = s.bold
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// loadFonts uses path when given, otherwise probes fontPaths, otherwise falls
// back to the embedded Go fonts.
func loadFonts(path string) (*fontSet, error) {
	if path != "" {
		f, err := parseFontFile(expandPath(path))
		if err != nil {
			return nil, err
		}
		return &fontSet{regular: f, bold: f, source: path}, nil
	}

	for _, candidate := range fontPaths {
		expanded := expandPath(candidate)
		if _, err := os.Stat(expanded); err != nil {
			continue
		}
		f, err := parseFontFile(expanded)
		if err != nil {
			logging.LogWarn("Font file exists but failed to load", zap.String("path", expanded), zap.Error(err))
			continue
		}
		logging.LogInfo("Loaded font", zap.String("path", expanded))
		return &fontSet{regular: f, bold: f, source: expanded}, nil
	}

	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded bold font: %w", err)
	}
	logging.LogDebug("Using embedded Go fonts", zap.Int("paths_checked", len(fontPaths)))
	return &fontSet{regular: regular, bold: bold, source: "gofont"}, nil
}

func parseFontFile(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return f, nil
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
