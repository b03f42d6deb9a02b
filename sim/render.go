package sim

// pheromoneIntensity returns the strongest pheromone at a cell over every
// colony and both channels, for rendering.
func (w *World) pheromoneIntensity(x, y int) float64 {
	best := -9999.0
	for c := range w.colonies {
		ph := w.pheromones.Read(x, y, c)
		strength := ph.ToFood
		if ph.ToColony > strength {
			strength = ph.ToColony
		}
		if strength > best {
			best = strength
		}
	}
	return best
}

// RenderFrame renders the committed state to a packed RGB buffer of length
// 3*width*height. Cell priority is food, then obstacle, then the pheromone
// intensity mapped through the colour map; alive ants and colony squares are
// painted on top.
func (w *World) RenderFrame() []byte {
	out := make([]byte, 0, w.Width*w.Height*3)

	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			switch {
			case w.food.Read(x, y):
				out = append(out, 0, 255, 0)
			case w.obstacles.Read(x, y):
				out = append(out, 128, 128, 128)
			default:
				colour := infernoColour(w.pheromoneIntensity(x, y))
				out = append(out, colour.R, colour.G, colour.B)
			}
		}
	}

	const channels = 3
	for i := range w.colonies {
		colony := &w.colonies[i]
		if colony.Dead {
			continue
		}
		for a := range colony.Ants {
			ant := &colony.Ants[a]
			if ant.Dead {
				continue
			}
			p := channels * (ant.Pos.Y*w.Width + ant.Pos.X)
			out[p] = colony.Colour.R
			out[p+1] = colony.Colour.G
			out[p+2] = colony.Colour.B
		}

		// colony square, attenuated by hunger
		h := w.params.ColonyHalfSize
		colour := colony.Colour.Scale(colony.Hunger)
		for y := colony.Pos.Y - h; y < colony.Pos.Y+h; y++ {
			for x := colony.Pos.X - h; x < colony.Pos.X+h; x++ {
				if x < 0 || y < 0 || x >= w.Width || y >= w.Height {
					continue
				}
				p := channels * (y*w.Width + x)
				out[p] = colour.R
				out[p+1] = colour.G
				out[p+2] = colour.B
			}
		}
	}

	return out
}
