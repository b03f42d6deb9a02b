package sim

import (
	"testing"

	"github.com/mattyoung101/ant-colony-hpc/util"
)

func senseWorld(t *testing.T, pixels map[util.Vector2i]util.RGBColour, p Params) *World {
	t.Helper()
	return newTestWorld(t, buildImage(5, 5, pixels), p)
}

func TestSensePicksStrongestChannel(t *testing.T) {
	w := senseWorld(t, map[util.Vector2i]util.RGBColour{vec(2, 2): colonyA}, testParams())
	ant := &w.colonies[0].Ants[0]

	w.pheromones.Write(1, 2, 0, PheromoneStrength{ToFood: 0.8, ToColony: 0.1})
	w.pheromones.Write(3, 2, 0, PheromoneStrength{ToFood: 0.3, ToColony: 0.9})
	w.pheromones.Commit()

	// foraging ants read the to-food channel
	dir, strength := w.sensePheromones(&w.colonies[0], ant)
	if dir != vec(-1, 0) || strength != 0.8 {
		t.Errorf("foraging sense = %v/%f, want (-1,0)/0.8", dir, strength)
	}

	// homing ants read the to-colony channel
	ant.HoldingFood = true
	dir, strength = w.sensePheromones(&w.colonies[0], ant)
	if dir != vec(1, 0) || strength != 0.9 {
		t.Errorf("homing sense = %v/%f, want (1,0)/0.9", dir, strength)
	}
}

func TestSenseTieResolvesToLastDirection(t *testing.T) {
	w := senseWorld(t, map[util.Vector2i]util.RGBColour{vec(2, 2): colonyA}, testParams())
	ant := &w.colonies[0].Ants[0]
	// all neighbours are equal, so the last direction in scan order (SE) wins
	dir, strength := w.sensePheromones(&w.colonies[0], ant)
	if dir != vec(1, 1) || strength != 0 {
		t.Errorf("tie sense = %v/%f, want (1,1)/0", dir, strength)
	}
}

func TestSenseSkipsObstaclesVisitedAndBounds(t *testing.T) {
	w := senseWorld(t, map[util.Vector2i]util.RGBColour{
		vec(0, 0): colonyA,
		vec(1, 0): obstacle,
	}, testParams())
	ant := &w.colonies[0].Ants[0]
	ant.Visited[vec(1, 1)] = struct{}{}

	w.pheromones.Write(1, 0, 0, PheromoneStrength{ToFood: 0.9}) // obstacle
	w.pheromones.Write(1, 1, 0, PheromoneStrength{ToFood: 0.8}) // visited
	w.pheromones.Write(0, 1, 0, PheromoneStrength{ToFood: 0.2})
	w.pheromones.Commit()

	dir, strength := w.sensePheromones(&w.colonies[0], ant)
	if dir != vec(0, 1) || strength != 0.2 {
		t.Errorf("sense = %v/%f, want (0,1)/0.2", dir, strength)
	}
}

func TestSenseReturnsSentinelWhenHemmedIn(t *testing.T) {
	w := senseWorld(t, map[util.Vector2i]util.RGBColour{
		vec(0, 0): colonyA,
		vec(1, 0): obstacle,
		vec(1, 1): obstacle,
	}, testParams())
	ant := &w.colonies[0].Ants[0]
	ant.Visited[vec(0, 1)] = struct{}{}

	_, strength := w.sensePheromones(&w.colonies[0], ant)
	if strength != noPheromone {
		t.Errorf("strength = %f, want sentinel", strength)
	}
}

func TestBounceInvertsPreferredDirection(t *testing.T) {
	p := testParams()
	w := senseWorld(t, map[util.Vector2i]util.RGBColour{
		vec(4, 2): colonyA,
	}, p)
	ant := &w.colonies[0].Ants[0]
	ant.PreferredDir = vec(1, 0)

	local := NewPCG32(1, 0)
	w.updateAnt(ant, &w.colonies[0], local)
	if ant.Pos != vec(4, 2) {
		t.Errorf("ant moved to %v, want bounce in place", ant.Pos)
	}
	if ant.PreferredDir != vec(-1, 0) {
		t.Errorf("preferred dir = %v, want inverted (-1,0)", ant.PreferredDir)
	}
}

func TestHoldingAntRefusesFoodCell(t *testing.T) {
	w := senseWorld(t, map[util.Vector2i]util.RGBColour{
		vec(2, 2): colonyA,
		vec(3, 2): food,
	}, testParams())
	ant := &w.colonies[0].Ants[0]
	ant.HoldingFood = true
	ant.PreferredDir = vec(1, 0)

	local := NewPCG32(1, 0)
	w.updateAnt(ant, &w.colonies[0], local)
	if ant.Pos != vec(2, 2) {
		t.Errorf("holding ant stepped onto food cell, pos = %v", ant.Pos)
	}
	if ant.PreferredDir != vec(-1, 0) {
		t.Errorf("preferred dir = %v, want inverted", ant.PreferredDir)
	}
}

func TestDepositWritesColonyChannel(t *testing.T) {
	p := testParams()
	p.GainFactor = 0.5
	w := senseWorld(t, map[util.Vector2i]util.RGBColour{vec(2, 2): colonyA}, p)
	ant := &w.colonies[0].Ants[0]
	ant.PreferredDir = vec(1, 0)

	local := NewPCG32(1, 0)
	w.updateAnt(ant, &w.colonies[0], local)
	w.pheromones.Commit()

	if got := w.pheromones.Read(3, 2, 0); got.ToColony != 0.5 || got.ToFood != 0 {
		t.Errorf("deposit = %+v, want ToColony 0.5", got)
	}
}

func TestFoodPickupTransition(t *testing.T) {
	w := senseWorld(t, map[util.Vector2i]util.RGBColour{
		vec(2, 2): colonyA,
		vec(3, 2): food,
	}, testParams())
	ant := &w.colonies[0].Ants[0]
	ant.PreferredDir = vec(1, 0)
	ant.TicksSinceUseful = 10
	ant.Visited[vec(1, 2)] = struct{}{}

	local := NewPCG32(1, 0)
	w.updateAnt(ant, &w.colonies[0], local)

	if !ant.HoldingFood {
		t.Error("ant did not pick up food")
	}
	if ant.TicksSinceUseful != 0 {
		t.Errorf("TicksSinceUseful = %d, want reset", ant.TicksSinceUseful)
	}
	if ant.PreferredDir != vec(-1, 0) {
		t.Errorf("preferred dir = %v, want inverted", ant.PreferredDir)
	}
	if len(ant.Visited) != 0 {
		t.Errorf("visited set has %d entries, want cleared", len(ant.Visited))
	}
	w.food.Commit()
	if w.food.Read(3, 2) {
		t.Error("food cell still set after pickup")
	}
}

func TestReturnHomeSignalsReinforcement(t *testing.T) {
	p := testParams()
	p.ReturnDistance = 1
	w := senseWorld(t, map[util.Vector2i]util.RGBColour{vec(0, 0): colonyA}, p)
	ant := &w.colonies[0].Ants[0]
	ant.Pos = vec(2, 0)
	ant.HoldingFood = true
	ant.PreferredDir = vec(-1, 0)

	local := NewPCG32(1, 0)
	// moves to (1,0), Chebyshev distance 1 from home
	if !w.updateAnt(ant, &w.colonies[0], local) {
		t.Error("expected reinforcement signal")
	}
	if ant.HoldingFood {
		t.Error("ant still holding food after return")
	}
	// reset on return, then counted once by the starvation step because the
	// ant no longer holds food
	if ant.TicksSinceUseful != 1 {
		t.Errorf("TicksSinceUseful = %d, want 1", ant.TicksSinceUseful)
	}
}

func TestStarvationRespectsNoiseBound(t *testing.T) {
	p := testParams()
	p.KillNotUseful = 1
	w := senseWorld(t, map[util.Vector2i]util.RGBColour{vec(2, 2): colonyA}, p)
	ant := &w.colonies[0].Ants[0]
	ant.PreferredDir = vec(0, 1)

	local := NewPCG32(9, 0)
	died := -1
	for tick := 1; tick <= killNoiseBound+2; tick++ {
		w.updateAnt(ant, &w.colonies[0], local)
		if ant.Dead {
			died = tick
			break
		}
	}
	if died == -1 {
		t.Fatalf("ant still alive after %d updates", killNoiseBound+2)
	}
	if died > p.KillNotUseful+killNoiseBound {
		t.Errorf("ant died at update %d, beyond threshold %d", died, p.KillNotUseful+killNoiseBound)
	}
}
