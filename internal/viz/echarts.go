package viz

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// EChartsOptions configures RenderECharts.
type EChartsOptions struct {
	PageTitle string
	Width     string
	Height    string
}

// RenderECharts writes fig as a standalone go-echarts HTML page. Node
// positions are fixed to the computed layout and colored by degree.
func RenderECharts(w io.Writer, fig *Figure, o EChartsOptions) error {
	if fig == nil {
		return fmt.Errorf("figure cannot be nil")
	}
	if o.PageTitle == "" {
		o.PageTitle = fig.Title
	}
	if o.Width == "" {
		o.Width = "100vw"
	}
	if o.Height == "" {
		o.Height = "100vh"
	}

	nodes, links := echartsElements(fig)

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.PageTitle,
			Width:     o.Width,
			Height:    o.Height,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fig.Title,
			Subtitle: FocusNote,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Type:       "continuous",
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxInt(fig.Nodes.MaxDegree, 1)),
			Text:       []string{ColorbarTitle},
			InRange:    &opts.VisualMapInRange{Color: Palette()},
		}),
	)
	graph.AddSeries(
		"co-authors",
		nodes,
		links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout:    "none",
			Roam:      opts.Bool(true),
			Draggable: opts.Bool(false),
		}),
		charts.WithLabelOpts(opts.Label{
			Show: opts.Bool(false),
		}),
		charts.WithLineStyleOpts(opts.LineStyle{
			Color: "#999999",
			Width: 0.5,
		}),
	)

	return graph.Render(w)
}

// echartsElements converts traces to go-echarts nodes and index-based links.
// The y axis is flipped since screen coordinates grow downward.
func echartsElements(fig *Figure) ([]opts.GraphNode, []opts.GraphLink) {
	const extent = 500

	index := make(map[string]int, fig.Nodes.Len())
	nodes := make([]opts.GraphNode, 0, fig.Nodes.Len())
	for i, name := range fig.Nodes.Names {
		index[name] = i
		size := 6
		if fig.Nodes.Labels[i] != name {
			size = 12
		}
		nodes = append(nodes, opts.GraphNode{
			Name:       fig.Nodes.Labels[i],
			X:          float32(fig.Nodes.X[i] * extent),
			Y:          float32(-fig.Nodes.Y[i] * extent),
			Value:      float32(fig.Nodes.Degrees[i]),
			Fixed:      opts.Bool(true),
			SymbolSize: size,
			ItemStyle:  &opts.ItemStyle{Color: fig.Nodes.Colors[i]},
		})
	}

	links := make([]opts.GraphLink, 0, len(fig.Edges.Pairs))
	for _, p := range fig.Edges.Pairs {
		src, ok := index[p.A]
		if !ok {
			continue
		}
		dst, ok := index[p.B]
		if !ok {
			continue
		}
		links = append(links, opts.GraphLink{Source: src, Target: dst})
	}
	return nodes, links
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
