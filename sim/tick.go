package sim

import "github.com/sirupsen/logrus"

// Update advances the world by one tick: pheromone decay (parallel over
// rows), ant update (parallel over colonies), serial colony bookkeeping,
// commit and termination check. Returns true if the simulation should keep
// iterating.
func (w *World) Update() bool {
	w.maxAntsLastTick = 0

	// One seed per tick; every colony substream derives from it.
	seed := w.rng.Uint64()

	w.decayPheromones()

	for i := range w.addAnts {
		w.addAnts[i] = false
	}

	chunks := splitRange(len(w.colonies), w.pool.workers)
	w.pool.run(func(worker int) {
		w.updateColonyRange(chunks[worker][0], chunks[worker][1], seed)
	})

	return w.finishTick()
}

// finishTick runs the serial tail of a tick: reinforcement, colony stats,
// commits, the food scan and the termination decision. Shared between the
// single-process and distributed drivers.
func (w *World) finishTick() bool {
	w.applyReinforcements()
	antsAlive := w.processColonyStats()

	w.food.Commit()
	w.pheromones.Commit()
	// the obstacle grid is written once at init and never committed again

	foodRemaining := 0
	for _, hasFood := range w.food.Clean() {
		if hasFood {
			foodRemaining++
		}
	}

	if antsAlive <= 0 {
		logrus.Info("All ants have died")
		return false
	}
	if foodRemaining <= 0 {
		logrus.Info("All food has been eaten")
		return false
	}
	return true
}
