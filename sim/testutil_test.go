package sim

import (
	"image"
	"image/color"
	"testing"

	"github.com/mattyoung101/ant-colony-hpc/util"
)

// testParams returns the baseline tunables used by the end-to-end scenario
// tests. Individual tests override fields as needed.
func testParams() Params {
	return Params{
		GridFile:        "in-memory",
		RNGSeed:         42,
		SimulateTicks:   100,
		StartingAnts:    1,
		AntsPerTick:     2,
		HungerDrain:     0.01,
		HungerReplenish: 0.3,
		ReturnDistance:  0,
		DecayFactor:     0.1,
		GainFactor:      0.5,
		FuzzFactor:      0,
		MoveRightChance: 1.0,
		UsePheromone:    2.0,
		KillNotUseful:   400,
		Threads:         1,
		ColonyHalfSize:  2,
	}
}

// buildImage paints the given pixels onto a black (empty) raster.
func buildImage(width, height int, pixels map[util.Vector2i]util.RGBColour) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{A: 255})
		}
	}
	for pos, c := range pixels {
		img.Set(pos.X, pos.Y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}
	return img
}

// newTestWorld builds a world over a zeroed random buffer.
func newTestWorld(t *testing.T, img image.Image, p Params) *World {
	t.Helper()
	bounds := img.Bounds()
	w, err := NewWorldFromImage(img, make([]float64, bounds.Dx()*bounds.Dy()), p)
	if err != nil {
		t.Fatalf("NewWorldFromImage: %v", err)
	}
	t.Cleanup(w.Close)
	return w
}

var (
	food     = util.RGBColour{R: 0, G: 255, B: 0}
	obstacle = util.RGBColour{R: 128, G: 128, B: 128}
	colonyA  = util.RGBColour{R: 255, G: 0, B: 0}
	colonyB  = util.RGBColour{R: 0, G: 0, B: 255}
	colonyC  = util.RGBColour{R: 255, G: 255, B: 0}
	colonyD  = util.RGBColour{R: 255, G: 0, B: 255}
)

func vec(x, y int) util.Vector2i { return util.Vector2i{X: x, Y: y} }
