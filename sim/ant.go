package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/mattyoung101/ant-colony-hpc/util"
)

// The eight neighbour offsets in sense order: NW, N, NE, W, E, SW, S, SE.
// Ties in the pheromone scan resolve to the last eligible direction.
var directions = [8]util.Vector2i{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// Sentinel strength returned when no neighbour is eligible.
const noPheromone = float64(-2147483647)

// Extra noise added to the starvation threshold so whole generations of ants
// don't die on the same tick.
const killNoiseBound = 76

// sensePheromones scans the eight neighbours of the ant and returns the
// direction with the strongest relevant pheromone channel together with its
// strength. Out-of-bounds cells, obstacles and already-visited positions are
// skipped.
func (w *World) sensePheromones(colony *Colony, ant *Ant) (util.Vector2i, float64) {
	var bestDirection util.Vector2i
	bestStrength := noPheromone

	for _, direction := range directions {
		x := ant.Pos.X + direction.X
		y := ant.Pos.Y + direction.Y
		if x < 0 || y < 0 || x >= w.Width || y >= w.Height || w.obstacles.Read(x, y) {
			continue
		}
		if _, visited := ant.Visited[util.Vector2i{X: x, Y: y}]; visited {
			continue
		}

		var strength float64
		if ant.HoldingFood {
			// heading home, follow the "to colony" trail
			strength = w.pheromones.Read(x, y, int(colony.ID)).ToColony
		} else {
			// foraging, follow the "to food" trail
			strength = w.pheromones.Read(x, y, int(colony.ID)).ToFood
		}

		if strength >= bestStrength {
			bestStrength = strength
			bestDirection = direction
		}
	}
	return bestDirection, bestStrength
}

// randomMovement picks the ant's preferred direction with probability
// MoveRightChance, otherwise a uniform delta in {-1,0,1}^2. The zero vector
// is allowed, which gives a natural stutter.
func (w *World) randomMovement(ant *Ant, local *PCG32) util.Vector2i {
	if local.Float64() <= w.params.MoveRightChance {
		return ant.PreferredDir
	}
	return util.Vector2i{X: local.IntN(3) - 1, Y: local.IntN(3) - 1}
}

// updateAnt advances one ant by one tick: sense, decide, move or bounce,
// deposit, state transitions, starvation. Returns true when the ant made it
// home with food and its colony should be reinforced.
func (w *World) updateAnt(ant *Ant, colony *Colony, local *PCG32) bool {
	shouldAddMoreAnts := false

	newX := ant.Pos.X
	newY := ant.Pos.Y

	phVector, phStrength := w.sensePheromones(colony, ant)
	var movement util.Vector2i
	if phStrength >= w.params.UsePheromone {
		movement = phVector
	} else {
		movement = w.randomMovement(ant, local)
	}
	newX += movement.X
	newY += movement.Y

	// Only move if the target is in bounds and not an obstacle. Ants already
	// holding food may not walk onto food cells either.
	if newX < 0 || newY < 0 || newX >= w.Width || newY >= w.Height ||
		w.obstacles.Read(newX, newY) ||
		(ant.HoldingFood && w.food.Read(newX, newY)) {
		// bounce off: flip the preferred direction, keep the position
		ant.PreferredDir = ant.PreferredDir.Invert()
	} else {
		ant.Pos = util.Vector2i{X: newX, Y: newY}
		ant.Visited[ant.Pos] = struct{}{}
	}

	// Deposit on the (possibly unchanged) current position. The grid's
	// read-modify-write path is a critical section.
	w.depositMu.Lock()
	cur := w.pheromones.Read(ant.Pos.X, ant.Pos.Y, int(colony.ID))
	if ant.HoldingFood {
		cur.ToFood += w.params.GainFactor
	} else {
		cur.ToColony += w.params.GainFactor
	}
	w.pheromones.Write(ant.Pos.X, ant.Pos.Y, int(colony.ID), cur)
	w.depositMu.Unlock()

	if !ant.HoldingFood && w.food.Read(ant.Pos.X, ant.Pos.Y) {
		logrus.Tracef("Ant id %d in colony %d just found food at %v", ant.ID, colony.ID, ant.Pos)
		ant.HoldingFood = true
		ant.TicksSinceUseful = 0
		// head back the way we came
		ant.PreferredDir = ant.PreferredDir.Invert()
		ant.Visited = make(map[util.Vector2i]struct{})

		w.foodMu.Lock()
		w.food.Write(ant.Pos.X, ant.Pos.Y, false)
		w.foodMu.Unlock()
	} else if ant.HoldingFood && ant.Pos.Chebyshev(colony.Pos) <= w.params.ReturnDistance {
		logrus.Tracef("Ant id %d in colony %d just returned home with food", ant.ID, colony.ID)
		ant.HoldingFood = false
		ant.TicksSinceUseful = 0
		ant.Visited = make(map[util.Vector2i]struct{})
		shouldAddMoreAnts = true
	}

	if !ant.HoldingFood {
		ant.TicksSinceUseful++
	}
	if ant.TicksSinceUseful > w.params.KillNotUseful+local.IntN(killNoiseBound) {
		logrus.Tracef("Ant id %d in colony %d has died at %v", ant.ID, colony.ID, ant.Pos)
		ant.Dead = true
	}

	return shouldAddMoreAnts
}

// updateColonyRange runs the ant phase for colonies [start, end). Every
// colony derives its own RNG substream from the tick seed, so the outcome is
// independent of how colonies are distributed over workers.
func (w *World) updateColonyRange(start, end int, seed uint64) {
	for c := start; c < end; c++ {
		colony := &w.colonies[c]
		if colony.Dead {
			continue
		}
		local := NewPCG32(seed, uint64(colony.ID))
		for a := range colony.Ants {
			ant := &colony.Ants[a]
			if ant.Dead {
				continue
			}
			if w.updateAnt(ant, colony, local) {
				w.addAnts[colony.ID] = true
			}
		}
	}
}
