package main

// go run ./etc/tools -i export.csv -d 2024-06-30
// Renders one GIF frame to etc/charts/frame_preview.png for checking the layout.

import (
	"fmt"
	"os"
	"path/filepath"

	"fundrace/internal/dataset"
	"fundrace/internal/features/figure"
	"fundrace/internal/features/raster"
	"fundrace/internal/frames"
	"fundrace/internal/infra/fs"
	"fundrace/internal/palette"
	"fundrace/internal/ranking"

	"github.com/spf13/pflag"
)

func main() {
	input := pflag.StringP("input", "i", "rwa-asset-timeseries-export.csv", "Input CSV or XLSX file")
	date := pflag.StringP("date", "d", "", "Frame date (YYYY-MM-DD), default is the last date")
	out := pflag.StringP("out", "o", filepath.Join("etc", "charts", "frame_preview.png"), "Output PNG")
	logo := pflag.String("logo", "", "PNG or JPEG logo watermark")
	pflag.Parse()

	if err := preview(*input, *date, *out, *logo); err != nil {
		fmt.Printf("Error generating preview: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Preview generated successfully: %s\n", *out)
}

func preview(input, date, out, logo string) error {
	ds, err := dataset.Load(input, dataset.LoadOptions{})
	if err != nil {
		return err
	}
	dates := ds.Dates()
	if len(dates) == 0 {
		return fmt.Errorf("no observations in %s", input)
	}
	if date == "" {
		date = dates[len(dates)-1]
	}

	colors := palette.Merge(palette.Assign(ds.Entities(), palette.Prism, palette.DefaultExcluded), palette.DefaultOverrides)
	set := ranking.TopK(ds.Observations, ranking.DefaultK)

	fr, err := frames.Build(ds, set, colors, date)
	if err != nil {
		return err
	}
	fig, err := figure.New([]frames.Frame{fr}, ds.MaxValue(), figure.Options{LogoPath: logo})
	if err != nil {
		return err
	}
	r, err := raster.NewRenderer(fig, raster.Options{})
	if err != nil {
		return err
	}
	if err := fs.EnsureParentDir(out); err != nil {
		return err
	}
	return r.RenderPNG(fr, out)
}
