package sim

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/mattyoung101/ant-colony-hpc/util"
)

// Anchor colours of the inferno map, sampled at evenly spaced intensities.
// Intermediate intensities are blended between neighbouring anchors, which
// keeps the map monotonic in brightness and stable across ticks.
var infernoAnchors = []colorful.Color{
	{R: 0.000, G: 0.000, B: 0.016}, // 0.0
	{R: 0.086, G: 0.043, B: 0.224}, // 0.1
	{R: 0.259, G: 0.039, B: 0.408}, // 0.2
	{R: 0.416, G: 0.090, B: 0.431}, // 0.3
	{R: 0.576, G: 0.149, B: 0.404}, // 0.4
	{R: 0.737, G: 0.216, B: 0.329}, // 0.5
	{R: 0.867, G: 0.318, B: 0.227}, // 0.6
	{R: 0.953, G: 0.471, B: 0.098}, // 0.7
	{R: 0.988, G: 0.647, B: 0.039}, // 0.8
	{R: 0.965, G: 0.843, B: 0.275}, // 0.9
	{R: 0.988, G: 1.000, B: 0.643}, // 1.0
}

// infernoColour maps an intensity in [0, 1] to an RGB colour. Values outside
// the range are clamped.
func infernoColour(t float64) util.RGBColour {
	t = clamp(t, 0.0, 1.0)
	scaled := t * float64(len(infernoAnchors)-1)
	i := int(scaled)
	if i >= len(infernoAnchors)-1 {
		return toRGB(infernoAnchors[len(infernoAnchors)-1])
	}
	return toRGB(infernoAnchors[i].BlendRgb(infernoAnchors[i+1], scaled-float64(i)))
}

func toRGB(c colorful.Color) util.RGBColour {
	r, g, b := c.RGB255()
	return util.RGBColour{R: r, G: g, B: b}
}
