package util

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
)

// Vector2i is an integer position or offset on the grid.
type Vector2i struct {
	X, Y int
}

func (v Vector2i) Add(o Vector2i) Vector2i {
	return Vector2i{X: v.X + o.X, Y: v.Y + o.Y}
}

// Invert flips both components, used when an ant bounces off an obstacle.
func (v Vector2i) Invert() Vector2i {
	return Vector2i{X: -v.X, Y: -v.Y}
}

// Chebyshev returns max(|dx|, |dy|), the natural metric on an 8-connected grid.
func (v Vector2i) Chebyshev(o Vector2i) int {
	dx := abs(o.X - v.X)
	dy := abs(o.Y - v.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func (v Vector2i) String() string {
	return fmt.Sprintf("(%d, %d)", v.X, v.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// RGBColour is an 8-bit RGB triple. It doubles as colony identity in the seed
// image and as the colony's rendering colour.
type RGBColour struct {
	R, G, B uint8
}

// Scale multiplies each channel by x and rounds to 8-bit.
func (c RGBColour) Scale(x float64) RGBColour {
	return RGBColour{
		R: uint8(math.Round(float64(c.R) * x)),
		G: uint8(math.Round(float64(c.G) * x)),
		B: uint8(math.Round(float64(c.B) * x)),
	}
}

func (c RGBColour) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// TimeInfo stores a millisecond duration and a ticks-per-second measure.
type TimeInfo struct {
	TimeMs         float64
	TicksPerSecond float64
}

func (t TimeInfo) String() string {
	return fmt.Sprintf("%.2fms (%.2f ticks per second)", t.TimeMs, t.TicksPerSecond)
}

// ChecksumBools computes the CRC32 of a bool buffer. Used to verify grid
// exchanges in the distributed driver.
func ChecksumBools(buf []bool) uint32 {
	h := crc32.NewIEEE()
	b := [1]byte{}
	for _, v := range buf {
		if v {
			b[0] = 1
		} else {
			b[0] = 0
		}
		h.Write(b[:])
	}
	return h.Sum32()
}

// ChecksumFloat64s computes the CRC32 of a float64 buffer. Used to verify
// grid exchanges in the distributed driver.
func ChecksumFloat64s(buf []float64) uint32 {
	h := crc32.NewIEEE()
	b := [8]byte{}
	for _, v := range buf {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		h.Write(b[:])
	}
	return h.Sum32()
}
