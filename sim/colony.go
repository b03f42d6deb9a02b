package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/mattyoung101/ant-colony-hpc/util"
)

// PheromoneStrength is one cell of one colony's pheromone layer.
type PheromoneStrength struct {
	// Strength of the trail leading back to the colony
	ToColony float64
	// Strength of the trail leading towards food
	ToFood float64
}

// Ant is a single agent. Dead ants stay in their colony's slice with Dead set
// so that indices remain stable for the whole tick.
type Ant struct {
	ID               uint64
	Pos              util.Vector2i
	HoldingFood      bool
	PreferredDir     util.Vector2i
	TicksSinceUseful int
	Visited          map[util.Vector2i]struct{}
	Dead             bool
}

// Colony groups the ants spawned from one seed pixel. Identity is the ID,
// which equals the colony's index in the world's colony slice.
type Colony struct {
	ID     uint32
	Colour util.RGBColour
	Pos    util.Vector2i
	Ants   []Ant
	Hunger float64
	Dead   bool
}

// AliveAnts counts the ants that have not died.
func (c *Colony) AliveAnts() int {
	alive := 0
	for i := range c.Ants {
		if !c.Ants[i].Dead {
			alive++
		}
	}
	return alive
}

// spawnAnt appends a fresh ant at the colony position with a uniform-random
// preferred direction. Only ever called from serial sections (init and
// bookkeeping), so it may use the world-scope RNG.
func (w *World) spawnAnt(colony *Colony) {
	ant := Ant{
		ID:           w.antID,
		Pos:          colony.Pos,
		PreferredDir: directions[w.rng.IntN(len(directions))],
		Visited:      make(map[util.Vector2i]struct{}),
	}
	w.antID++
	colony.Ants = append(colony.Ants, ant)
}

// applyReinforcements boosts every colony that had at least one ant return
// home this tick: replenish hunger and spawn AntsPerTick new ants. Iterates
// in ascending colony id order so spawn ids are deterministic.
func (w *World) applyReinforcements() {
	for id := range w.addAnts {
		if !w.addAnts[id] {
			continue
		}
		colony := &w.colonies[id]
		logrus.Tracef("Adding more ants to colony id %d", colony.ID)
		colony.Hunger += w.params.HungerReplenish
		for i := 0; i < w.params.AntsPerTick; i++ {
			w.spawnAnt(colony)
		}
	}
}

// processColonyStats drains hunger, applies colony death, and rolls up the
// alive-ant statistics. Returns the total number of alive ants.
func (w *World) processColonyStats() int {
	antsAlive := 0
	for i := range w.colonies {
		colony := &w.colonies[i]
		colony.Hunger -= w.params.HungerDrain
		colony.Hunger = clamp(colony.Hunger, 0.0, 1.0)

		if colony.Dead {
			continue
		}
		alive := colony.AliveAnts()
		if colony.Hunger <= 0 || alive == 0 {
			logrus.Tracef("Colony id %d has died! (hunger=%.2f, ants=%d)",
				colony.ID, colony.Hunger, alive)
			colony.Dead = true
			continue
		}
		antsAlive += alive

		if antsAlive > w.maxAnts {
			w.maxAnts = antsAlive
		}
		if antsAlive > w.maxAntsLastTick {
			w.maxAntsLastTick = antsAlive
		}
	}
	return antsAlive
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
