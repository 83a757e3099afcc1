package viz

import (
	"encoding/json"
)

// FocusNote is the figure annotation explaining focus markers.
const FocusNote = "** denotes focus of the network when filtered"

// Figure is a titled pair of traces ready for display.
type Figure struct {
	Title string
	Edges EdgeTrace
	Nodes NodeTrace
}

// Compose assembles a figure. It never fails.
func Compose(edges EdgeTrace, nodes NodeTrace, title string) *Figure {
	return &Figure{Title: title, Edges: edges, Nodes: nodes}
}

// IsEmpty reports whether the figure has no nodes.
func (f *Figure) IsEmpty() bool {
	return f.Nodes.Len() == 0
}

// Plotly figure JSON. Field names follow plotly.js.
type plotlyFigure struct {
	Data   []plotlyTrace `json:"data"`
	Layout plotlyLayout  `json:"layout"`
}

type plotlyTrace struct {
	Type          string        `json:"type"`
	Mode          string        `json:"mode"`
	X             interface{}   `json:"x"`
	Y             interface{}   `json:"y"`
	HoverInfo     string        `json:"hoverinfo"`
	HoverText     []string      `json:"hovertext,omitempty"`
	CustomData    []string      `json:"customdata,omitempty"`
	HoverTemplate string        `json:"hovertemplate,omitempty"`
	Line          *plotlyLine   `json:"line,omitempty"`
	Marker        *plotlyMarker `json:"marker,omitempty"`
}

type plotlyLine struct {
	Width float64 `json:"width"`
	Color string  `json:"color,omitempty"`
}

type plotlyMarker struct {
	ShowScale  bool             `json:"showscale"`
	Colorscale [][2]interface{} `json:"colorscale"`
	Color      []int            `json:"color"`
	CMin       int              `json:"cmin"`
	CMax       int              `json:"cmax"`
	Size       int              `json:"size"`
	Colorbar   plotlyColorbar   `json:"colorbar"`
	Line       plotlyLine       `json:"line"`
}

type plotlyColorbar struct {
	Thickness int        `json:"thickness"`
	XAnchor   string     `json:"xanchor"`
	Title     plotlyText `json:"title"`
}

type plotlyText struct {
	Text string      `json:"text"`
	Side string      `json:"side,omitempty"`
	Font *plotlyFont `json:"font,omitempty"`
}

type plotlyFont struct {
	Size int `json:"size"`
}

type plotlyLayout struct {
	Title        plotlyText         `json:"title"`
	ShowLegend   bool               `json:"showlegend"`
	HoverMode    string             `json:"hovermode"`
	Margin       map[string]int     `json:"margin"`
	Annotations  []plotlyAnnotation `json:"annotations"`
	XAxis        plotlyAxis         `json:"xaxis"`
	YAxis        plotlyAxis         `json:"yaxis"`
	PlotBGColor  string             `json:"plot_bgcolor"`
	PaperBGColor string             `json:"paper_bgcolor"`
}

type plotlyAnnotation struct {
	ShowArrow bool       `json:"showarrow"`
	XRef      string     `json:"xref"`
	YRef      string     `json:"yref"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Text      string     `json:"text"`
	Font      plotlyFont `json:"font"`
}

type plotlyAxis struct {
	ShowGrid       bool `json:"showgrid"`
	ZeroLine       bool `json:"zeroline"`
	ShowTickLabels bool `json:"showticklabels"`
}

// MarshalJSON encodes the figure as a plotly.js figure.
func (f *Figure) MarshalJSON() ([]byte, error) {
	hidden := plotlyAxis{}

	edges := plotlyTrace{
		Type:      "scatter",
		Mode:      "lines",
		X:         nonNilCoords(f.Edges.X),
		Y:         nonNilCoords(f.Edges.Y),
		HoverInfo: "none",
		Line:      &plotlyLine{Width: 0.25, Color: "#999999"},
	}

	nodes := plotlyTrace{
		Type:          "scatter",
		Mode:          "markers",
		X:             nonNilFloats(f.Nodes.X),
		Y:             nonNilFloats(f.Nodes.Y),
		HoverInfo:     "text",
		HoverText:     nonNilStrings(f.Nodes.Labels),
		CustomData:    nonNilStrings(f.Nodes.HoverText),
		HoverTemplate: "<b>%{hovertext}</b><br>%{customdata}<extra></extra>",
		Marker: &plotlyMarker{
			ShowScale:  true,
			Colorscale: plotlyColorscale(),
			Color:      nonNilInts(f.Nodes.Degrees),
			CMin:       0,
			CMax:       f.Nodes.MaxDegree,
			Size:       5,
			Colorbar: plotlyColorbar{
				Thickness: 20,
				XAnchor:   "left",
				Title:     plotlyText{Text: ColorbarTitle, Side: "top"},
			},
			Line: plotlyLine{Width: 0.5},
		},
	}

	return json.Marshal(plotlyFigure{
		Data: []plotlyTrace{edges, nodes},
		Layout: plotlyLayout{
			Title:      plotlyText{Text: f.Title, Font: &plotlyFont{Size: 20}},
			ShowLegend: false,
			HoverMode:  "closest",
			Margin:     map[string]int{"b": 20, "l": 5, "r": 5, "t": 40},
			Annotations: []plotlyAnnotation{{
				XRef: "paper",
				YRef: "paper",
				X:    0.005,
				Y:    -0.002,
				Text: FocusNote,
				Font: plotlyFont{Size: 14},
			}},
			XAxis:        hidden,
			YAxis:        hidden,
			PlotBGColor:  "white",
			PaperBGColor: "white",
		},
	})
}

func nonNilCoords(s []Coord) []Coord {
	if s == nil {
		return []Coord{}
	}
	return s
}

func nonNilFloats(s []float64) []float64 {
	if s == nil {
		return []float64{}
	}
	return s
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
