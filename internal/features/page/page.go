package page

// Interactive animation as a self-contained HTML file.

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"fundrace/internal/features/figure"
	"fundrace/internal/infra/exec"
	"fundrace/internal/infra/fs"
	logging "fundrace/internal/infra/log"

	"go.uber.org/zap"
)

// PlotlyURL is the plotly.js bundle the page loads.
const PlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.PlotlyURL}}"></script>
<style>
html, body { margin: 0; height: 100%; background: #111111; }
#chart { width: 100vw; height: 100vh; }
</style>
</head>
<body>
<div id="chart"></div>
<script>
const fig = {{.Document}};
Plotly.newPlot("chart", fig.data, fig.layout).then(function (gd) {
  return Plotly.addFrames(gd, fig.frames);
});
</script>
</body>
</html>
`))

type pageData struct {
	Title     string
	PlotlyURL string
	Document  Document
}

// Write renders the page for fig.
func Write(w io.Writer, fig *figure.Figure) error {
	data := pageData{
		Title:     fig.Title,
		PlotlyURL: PlotlyURL,
		Document:  NewDocument(fig),
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// Show writes the page to path and, when open is set, hands it to the browser.
func Show(path string, fig *figure.Figure, open bool) error {
	if err := fs.EnsureParentDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create page file: %w", err)
	}
	if err := Write(f, fig); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close page file: %w", err)
	}

	logging.LogSuccess("Animation page written", zap.String("path", path), zap.Int("frames", len(fig.Frames)))

	if !open {
		return nil
	}
	if output, err := exec.OpenInBrowser(path, 10*time.Second); err != nil {
		logging.LogWarn("Failed to open browser", zap.String("path", path), zap.String("output", string(output)), zap.Error(err))
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return nil
}
