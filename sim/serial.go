package sim

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/mattyoung101/ant-colony-hpc/util"
)

// Positional binary encoding for the distributed colony exchange:
//
//	colony count (u32), then per colony
//	  id (u32), colour (3 x u8), pos (2 x i32), hunger (f64), dead (u8),
//	  ant count (u32), then per ant
//	    id (u64), pos (2 x i32), holding food (u8), preferred dir (2 x i32),
//	    ticks since useful (i32), dead (u8), visited count (u32),
//	    visited positions (2 x i32 each)
//
// All integers little-endian. No field names, no padding. Visited positions
// are sorted so the blob is stable for a given state.

type wireWriter struct {
	buf []byte
}

func (w *wireWriter) u8(v uint8) { w.buf = append(w.buf, v) }

func (w *wireWriter) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

func (w *wireWriter) i32(v int32) { w.u32(uint32(v)) }
func (w *wireWriter) u64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *wireWriter) f64(v float64) {
	w.u64(math.Float64bits(v))
}

func (w *wireWriter) bool(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

type wireReader struct {
	buf []byte
	off int
	err error
}

func (r *wireReader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.buf) {
		r.err = errors.Errorf("colony blob truncated at offset %d (want %d more bytes of %d)",
			r.off, n, len(r.buf))
		return false
	}
	return true
}

func (r *wireReader) u8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *wireReader) bool() bool { return r.u8() != 0 }

func (r *wireReader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *wireReader) i32() int32 { return int32(r.u32()) }

func (r *wireReader) u64() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v
}

func (r *wireReader) f64() float64 { return math.Float64frombits(r.u64()) }

// EncodeColonies serialises the given colonies positionally.
func EncodeColonies(colonies []Colony) []byte {
	w := &wireWriter{}
	w.u32(uint32(len(colonies)))
	for i := range colonies {
		colony := &colonies[i]
		w.u32(colony.ID)
		w.u8(colony.Colour.R)
		w.u8(colony.Colour.G)
		w.u8(colony.Colour.B)
		w.i32(int32(colony.Pos.X))
		w.i32(int32(colony.Pos.Y))
		w.f64(colony.Hunger)
		w.bool(colony.Dead)
		w.u32(uint32(len(colony.Ants)))
		for a := range colony.Ants {
			ant := &colony.Ants[a]
			w.u64(ant.ID)
			w.i32(int32(ant.Pos.X))
			w.i32(int32(ant.Pos.Y))
			w.bool(ant.HoldingFood)
			w.i32(int32(ant.PreferredDir.X))
			w.i32(int32(ant.PreferredDir.Y))
			w.i32(int32(ant.TicksSinceUseful))
			w.bool(ant.Dead)

			visited := make([]util.Vector2i, 0, len(ant.Visited))
			for pos := range ant.Visited {
				visited = append(visited, pos)
			}
			sort.Slice(visited, func(i, j int) bool {
				if visited[i].X != visited[j].X {
					return visited[i].X < visited[j].X
				}
				return visited[i].Y < visited[j].Y
			})
			w.u32(uint32(len(visited)))
			for _, pos := range visited {
				w.i32(int32(pos.X))
				w.i32(int32(pos.Y))
			}
		}
	}
	return w.buf
}

// DecodeColonies parses a positional colony blob.
func DecodeColonies(blob []byte) ([]Colony, error) {
	r := &wireReader{buf: blob}
	count := int(r.u32())
	colonies := make([]Colony, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		colony := Colony{
			ID: r.u32(),
			Colour: util.RGBColour{
				R: r.u8(),
				G: r.u8(),
				B: r.u8(),
			},
		}
		colony.Pos = util.Vector2i{X: int(r.i32()), Y: int(r.i32())}
		colony.Hunger = r.f64()
		colony.Dead = r.bool()
		antCount := int(r.u32())
		colony.Ants = make([]Ant, 0, antCount)
		for a := 0; a < antCount && r.err == nil; a++ {
			ant := Ant{ID: r.u64()}
			ant.Pos = util.Vector2i{X: int(r.i32()), Y: int(r.i32())}
			ant.HoldingFood = r.bool()
			ant.PreferredDir = util.Vector2i{X: int(r.i32()), Y: int(r.i32())}
			ant.TicksSinceUseful = int(r.i32())
			ant.Dead = r.bool()
			visitedCount := int(r.u32())
			ant.Visited = make(map[util.Vector2i]struct{}, visitedCount)
			for v := 0; v < visitedCount && r.err == nil; v++ {
				pos := util.Vector2i{X: int(r.i32()), Y: int(r.i32())}
				ant.Visited[pos] = struct{}{}
			}
			colony.Ants = append(colony.Ants, ant)
		}
		colonies = append(colonies, colony)
	}
	if r.err != nil {
		return nil, errors.Wrap(r.err, "serial: failed to decode colonies")
	}
	if r.off != len(blob) {
		return nil, errors.Errorf("serial: %d trailing bytes after decoding %d colonies",
			len(blob)-r.off, count)
	}
	return colonies, nil
}
