package page

// plotly.js figure document.
// Field names follow the plotly.js schema so the page can hand the encoded
// document straight to Plotly.newPlot / Plotly.addFrames.

import (
	"fundrace/internal/features/figure"
	"fundrace/internal/frames"
)

type Document struct {
	Data   []Bar   `json:"data"`
	Layout Layout  `json:"layout"`
	Frames []Frame `json:"frames"`
}

type Frame struct {
	Name   string      `json:"name"`
	Data   []Bar       `json:"data"`
	Layout FrameLayout `json:"layout"`
}

type FrameLayout struct {
	Annotations []Annotation `json:"annotations"`
}

type Bar struct {
	Type           string    `json:"type"`
	X              []float64 `json:"x"`
	Y              []string  `json:"y"`
	Orientation    string    `json:"orientation"`
	Marker         Marker    `json:"marker"`
	Text           []string  `json:"text"`
	TextTemplate   string    `json:"texttemplate"`
	TextPosition   []string  `json:"textposition"`
	InsideTextFont Font      `json:"insidetextfont"`
}

type Marker struct {
	Color []string `json:"color"`
}

type Font struct {
	Color  any     `json:"color,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Family string  `json:"family,omitempty"`
	Weight string  `json:"weight,omitempty"`
}

type Title struct {
	Text string `json:"text"`
}

type Axis struct {
	Title          Title     `json:"title"`
	Range          []float64 `json:"range,omitempty"`
	ShowTickLabels *bool     `json:"showticklabels,omitempty"`
	CategoryOrder  string    `json:"categoryorder,omitempty"`
	GridColor      string    `json:"gridcolor,omitempty"`
}

type Layout struct {
	Title        Title        `json:"title"`
	XAxis        Axis         `json:"xaxis"`
	YAxis        Axis         `json:"yaxis"`
	PaperBGColor string       `json:"paper_bgcolor"`
	PlotBGColor  string       `json:"plot_bgcolor"`
	Font         Font         `json:"font"`
	Images       []Image      `json:"images,omitempty"`
	Annotations  []Annotation `json:"annotations"`
	UpdateMenus  []UpdateMenu `json:"updatemenus,omitempty"`
	Sliders      []Slider     `json:"sliders,omitempty"`
}

type Annotation struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	Text      string  `json:"text"`
	ShowArrow bool    `json:"showarrow"`
	Font      Font    `json:"font"`
	Opacity   float64 `json:"opacity"`
}

type Image struct {
	Source  string  `json:"source"`
	XRef    string  `json:"xref"`
	YRef    string  `json:"yref"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	SizeX   float64 `json:"sizex"`
	SizeY   float64 `json:"sizey"`
	XAnchor string  `json:"xanchor"`
	YAnchor string  `json:"yanchor"`
	Opacity float64 `json:"opacity"`
	Layer   string  `json:"layer"`
}

type Button struct {
	Args   []any  `json:"args"`
	Label  string `json:"label"`
	Method string `json:"method"`
}

type UpdateMenu struct {
	Buttons    []Button       `json:"buttons"`
	Direction  string         `json:"direction"`
	Pad        map[string]int `json:"pad"`
	ShowActive bool           `json:"showactive"`
	Type       string         `json:"type"`
	X          float64        `json:"x"`
	XAnchor    string         `json:"xanchor"`
	Y          float64        `json:"y"`
	YAnchor    string         `json:"yanchor"`
}

type SliderStep struct {
	Args   []any  `json:"args"`
	Label  string `json:"label"`
	Method string `json:"method"`
}

type Slider struct {
	Steps        []SliderStep   `json:"steps"`
	Transition   map[string]int `json:"transition"`
	X            float64        `json:"x"`
	Len          float64        `json:"len"`
	CurrentValue map[string]any `json:"currentvalue"`
	Pad          map[string]int `json:"pad"`
	XAnchor      string         `json:"xanchor"`
	YAnchor      string         `json:"yanchor"`
}

// plotly_dark colours; plotly.js only ships the template in the python package.
const (
	darkBackground = "rgb(17,17,17)"
	darkForeground = "#f2f5fa"
	darkGrid       = "#283442"
)

// NewDocument converts a figure into a plotly.js document.
func NewDocument(fig *figure.Figure) Document {
	initial := fig.Initial()

	doc := Document{
		Data:   []Bar{bar(initial)},
		Layout: layout(fig),
		Frames: make([]Frame, len(fig.Frames)),
	}
	doc.Layout.Annotations = annotations(fig, initial.Date)

	for i, fr := range fig.Frames {
		doc.Frames[i] = Frame{
			Name:   fr.Date,
			Data:   []Bar{bar(fr)},
			Layout: FrameLayout{Annotations: annotations(fig, fr.Date)},
		}
	}

	if fig.Interactive {
		doc.Layout.UpdateMenus = updateMenus()
		doc.Layout.Sliders = sliders(fig.Dates())
	}
	return doc
}

func bar(fr frames.Frame) Bar {
	n := len(fr.Rows)
	b := Bar{
		Type:         "bar",
		X:            make([]float64, n),
		Y:            make([]string, n),
		Orientation:  "h",
		Marker:       Marker{Color: make([]string, n)},
		Text:         make([]string, n),
		TextTemplate: "%{text}",
		TextPosition: make([]string, n),
	}
	textColors := make([]string, n)
	for i, r := range fr.Rows {
		b.X[i] = r.Value
		b.Y[i] = r.Entity
		b.Marker.Color[i] = r.Color
		b.Text[i] = r.Label
		b.TextPosition[i] = r.Placement
		textColors[i] = r.TextColor
	}
	b.InsideTextFont = Font{Color: textColors, Size: 14, Family: "Arial, sans-serif", Weight: "bold"}
	return b
}

func layout(fig *figure.Figure) Layout {
	hideTicks := false
	l := Layout{
		Title: Title{Text: fig.Title},
		XAxis: Axis{
			Title:     Title{Text: fig.XAxisTitle},
			Range:     []float64{fig.XRange[0], fig.XRange[1]},
			GridColor: darkGrid,
		},
		YAxis: Axis{
			Title:          Title{Text: fig.YAxisTitle},
			ShowTickLabels: &hideTicks,
			CategoryOrder:  "total ascending",
			GridColor:      darkGrid,
		},
		PaperBGColor: darkBackground,
		PlotBGColor:  darkBackground,
		Font:         Font{Color: darkForeground},
	}
	if fig.Logo != "" {
		o := figure.LogoOverlay
		l.Images = []Image{{
			Source:  fig.Logo,
			XRef:    "paper",
			YRef:    "paper",
			X:       o.X,
			Y:       o.Y,
			SizeX:   o.SizeX,
			SizeY:   o.SizeY,
			XAnchor: "center",
			YAnchor: "middle",
			Opacity: o.Opacity,
			Layer:   "below",
		}}
	}
	return l
}

func annotations(fig *figure.Figure, date string) []Annotation {
	d, s := figure.DateOverlay, figure.SourceOverlay
	return []Annotation{
		{
			X: d.X, Y: d.Y, XRef: "paper", YRef: "paper",
			Text:    figure.DateLabel(date),
			Font:    Font{Size: d.FontSize, Color: "white"},
			Opacity: d.Opacity,
		},
		{
			X: s.X, Y: s.Y, XRef: "paper", YRef: "paper",
			Text:    fig.SourceText,
			Font:    Font{Size: s.FontSize},
			Opacity: s.Opacity,
		},
	}
}

func updateMenus() []UpdateMenu {
	return []UpdateMenu{{
		Buttons: []Button{
			{
				Args: []any{nil, map[string]any{
					"frame":       map[string]any{"duration": figure.PlayFrameMs, "redraw": true},
					"fromcurrent": true,
				}},
				Label:  "Play",
				Method: "animate",
			},
			{
				Args: []any{[]any{nil}, map[string]any{
					"frame":      map[string]any{"duration": 0, "redraw": true},
					"mode":       "immediate",
					"transition": map[string]any{"duration": 0},
				}},
				Label:  "Pause",
				Method: "animate",
			},
		},
		Direction:  "left",
		Pad:        map[string]int{"r": 10, "t": 87},
		ShowActive: false,
		Type:       "buttons",
		X:          0.1,
		XAnchor:    "right",
		Y:          0,
		YAnchor:    "top",
	}}
}

func sliders(dates []string) []Slider {
	steps := make([]SliderStep, len(dates))
	for i, date := range dates {
		steps[i] = SliderStep{
			Args: []any{[]string{date}, map[string]any{
				"frame":      map[string]any{"duration": figure.SliderFrameMs, "redraw": true},
				"mode":       "immediate",
				"transition": map[string]any{"duration": 0},
			}},
			Label:  date,
			Method: "animate",
		}
	}
	return []Slider{{
		Steps:      steps,
		Transition: map[string]int{"duration": 0},
		X:          0.1,
		Len:        0.9,
		CurrentValue: map[string]any{
			"font":    map[string]int{"size": 20},
			"prefix":  "Date: ",
			"visible": true,
			"xanchor": "center",
		},
		Pad:     map[string]int{"b": 10, "t": 50},
		XAnchor: "left",
		YAnchor: "top",
	}}
}
