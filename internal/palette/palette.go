package palette

// Display colours for funds.
// Assign gives every fund a colour from a qualitative palette in the order the
// funds are first seen, Merge layers the reserved colours of well-known funds
// on top, TextColor picks a readable label colour for a bar.

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	logging "fundrace/internal/infra/log"

	"go.uber.org/zap"
)

// ColorMap maps an entity name to a colour string (#rrggbb or rgb(r, g, b)).
type ColorMap map[string]string

// ErrBadColor is returned for colour strings that are neither rgb(...) nor #rrggbb.
var ErrBadColor = errors.New("unrecognized color")

// Prism is the carto "Prism" qualitative palette.
var Prism = []string{
	"rgb(95, 70, 144)",
	"rgb(29, 105, 150)",
	"rgb(56, 166, 165)",
	"rgb(15, 133, 84)",
	"rgb(115, 175, 72)",
	"rgb(237, 173, 8)",
	"rgb(225, 124, 5)",
	"rgb(204, 80, 62)",
	"rgb(148, 52, 110)",
	"rgb(111, 64, 112)",
	"rgb(102, 102, 102)",
}

// DefaultExcluded are kept out of the cyclic assignment because overrides use them.
var DefaultExcluded = []string{"#1f77b4", "#9467bd", "#17becf"}

// DefaultOverrides pins the colours of the best-known funds.
var DefaultOverrides = ColorMap{
	"BUIDL": "#1f77b4",
	"FOBBX": "#2ca02c",
	"OUSG":  "#ff7f0e",
	"USDY":  "#ffbb78",
}

// Assign walks entities in order and hands out palette colours cyclically,
// skipping any palette entry listed in excluded. The same input order always
// produces the same map.
func Assign(entities []string, palette []string, excluded []string) ColorMap {
	skip := make(map[string]struct{}, len(excluded))
	for _, c := range excluded {
		skip[strings.ToLower(c)] = struct{}{}
	}

	filtered := make([]string, 0, len(palette))
	for _, c := range palette {
		if _, ok := skip[strings.ToLower(c)]; ok {
			continue
		}
		filtered = append(filtered, c)
	}

	out := make(ColorMap, len(entities))
	if len(filtered) == 0 {
		return out
	}

	i := 0
	for _, name := range entities {
		if _, seen := out[name]; seen {
			continue
		}
		out[name] = filtered[i%len(filtered)]
		i++
	}
	return out
}

// Merge returns a new map holding base with every override applied on top.
// Neither argument is modified.
func Merge(base, overrides ColorMap) ColorMap {
	out := make(ColorMap, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Parse reads "rgb(r, g, b)" or "#rrggbb".
func Parse(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		parts := strings.Split(s[4:len(s)-1], ",")
		if len(parts) != 3 {
			return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		var rgb [3]uint8
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
			}
			rgb[i] = uint8(n)
		}
		return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, nil
	}

	if len(s) == 7 && s[0] == '#' {
		n, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, nil
	}

	return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
}

// Luminance is the perceptual brightness of c in [0, 1].
func Luminance(c color.RGBA) float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
}

// TextColor returns "black" for light backgrounds and "white" for dark ones.
func TextColor(background string) (string, error) {
	c, err := Parse(background)
	if err != nil {
		logging.LogError("Error with color", zap.String("color", background), zap.Error(err))
		return "", err
	}
	if Luminance(c) > 0.5 {
		return "black", nil
	}
	return "white", nil
}
