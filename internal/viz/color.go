package viz

import (
	"fmt"
	"math"
)

// ColorscaleName is the Plotly name of the palette in thermalStops.
const ColorscaleName = "thermal"

// ColorbarTitle labels the degree scale bar.
const ColorbarTitle = "Co-authors"

// thermalStops is the cmocean thermal palette, evenly spaced over [0, 1].
var thermalStops = []string{
	"#032333", "#0d3064", "#35329b", "#5d3e99",
	"#7e4d8f", "#9e5987", "#c16479", "#e17161",
	"#f68b45", "#fbad3c", "#f6d346", "#e7fa5a",
}

// Palette returns a copy of the color stops used for degree coloring.
func Palette() []string {
	return append([]string(nil), thermalStops...)
}

// ScalePosition maps a degree to a color-scale position in [0, 1].
// It is non-decreasing in degree for a fixed maxDegree.
func ScalePosition(degree, maxDegree int) float64 {
	if maxDegree <= 0 || degree <= 0 {
		return 0
	}
	if degree >= maxDegree {
		return 1
	}
	return float64(degree) / float64(maxDegree)
}

// ColorAt returns the palette color at position t, linearly interpolated
// between stops. t is clamped to [0, 1].
func ColorAt(t float64) string {
	if math.IsNaN(t) || t <= 0 {
		return thermalStops[0]
	}
	if t >= 1 {
		return thermalStops[len(thermalStops)-1]
	}

	f := t * float64(len(thermalStops)-1)
	i := int(f)
	frac := f - float64(i)

	r0, g0, b0 := parseHex(thermalStops[i])
	r1, g1, b1 := parseHex(thermalStops[i+1])
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + frac*(float64(b)-float64(a))))
	}
	return fmt.Sprintf("#%02x%02x%02x", lerp(r0, r1), lerp(g0, g1), lerp(b0, b1))
}

func parseHex(s string) (r, g, b uint8) {
	fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
	return r, g, b
}

// plotlyColorscale returns the palette as Plotly [position, color] pairs.
func plotlyColorscale() [][2]interface{} {
	out := make([][2]interface{}, len(thermalStops))
	for i, c := range thermalStops {
		out[i] = [2]interface{}{float64(i) / float64(len(thermalStops)-1), c}
	}
	return out
}
