package sim

import "math"

// decayPheromones applies the per-tick decay to every alive colony's layer,
// decaying each cell at a slightly different rate when the fuzz factor is
// non-zero.
//
// The phase is parallel over rows. The random buffer index is derived from
// the cell and colony alone, so the result is identical for every
// partitioning. The same random value is shared across the toColony and
// toFood channels of a cell; that reuse is an observable part of the
// simulation and must be preserved.
func (w *World) decayPheromones() {
	fuzz := w.params.FuzzFactor * w.params.DecayFactor
	decay := w.params.DecayFactor
	depth := w.pheromones.Depth()
	useFuzz := math.Abs(fuzz) >= 0.0001

	chunks := splitRange(w.Height, w.pool.workers)
	w.pool.run(func(worker int) {
		start, end := chunks[worker][0], chunks[worker][1]
		for y := start; y < end; y++ {
			for x := 0; x < w.Width; x++ {
				for c := 0; c < depth; c++ {
					// skip dead colonies to save doing extra work
					if w.colonies[c].Dead {
						continue
					}
					cur := w.pheromones.Read(x, y, c)
					if useFuzz {
						i := ((y*w.Width+x)*depth + c) % len(w.randomBuffer)
						randomness := w.randomBuffer[i] * fuzz
						cur.ToColony -= decay + randomness
						cur.ToFood -= decay + randomness
					} else {
						cur.ToColony -= decay
						cur.ToFood -= decay
					}
					cur.ToColony = clamp(cur.ToColony, 0.0, 1.0)
					cur.ToFood = clamp(cur.ToFood, 0.0, 1.0)
					w.pheromones.Write(x, y, c, cur)
				}
			}
		}
	})

	// force a commit so the ant phase sees the decayed field
	w.pheromones.Commit()
}
