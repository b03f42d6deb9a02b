package sim

import (
	"math"
	"testing"

	"github.com/mattyoung101/ant-colony-hpc/util"
)

func decayWorld(t *testing.T, p Params, random []float64) *World {
	t.Helper()
	img := buildImage(4, 4, map[util.Vector2i]util.RGBColour{
		vec(2, 2): colonyA,
	})
	if random == nil {
		random = make([]float64, 16)
	}
	w, err := NewWorldFromImage(img, random, p)
	if err != nil {
		t.Fatalf("NewWorldFromImage: %v", err)
	}
	t.Cleanup(w.Close)
	return w
}

func TestDecayWithoutFuzz(t *testing.T) {
	p := testParams()
	p.DecayFactor = 0.1
	p.FuzzFactor = 0
	w := decayWorld(t, p, nil)

	w.pheromones.Write(3, 2, 0, PheromoneStrength{ToColony: 0.5, ToFood: 0.3})
	w.pheromones.Commit()

	w.decayPheromones()
	got := w.pheromones.Read(3, 2, 0)
	if math.Abs(got.ToColony-0.4) > 1e-12 || math.Abs(got.ToFood-0.2) > 1e-12 {
		t.Errorf("after one decay: %+v, want 0.4/0.2", got)
	}

	w.decayPheromones()
	got = w.pheromones.Read(3, 2, 0)
	if math.Abs(got.ToColony-0.3) > 1e-12 || math.Abs(got.ToFood-0.1) > 1e-12 {
		t.Errorf("after two decays: %+v, want 0.3/0.1", got)
	}
}

func TestDecayClampsToZeroAndOne(t *testing.T) {
	p := testParams()
	p.DecayFactor = -0.5 // negative decay grows the field
	p.FuzzFactor = 0
	w := decayWorld(t, p, nil)

	w.pheromones.Write(0, 0, 0, PheromoneStrength{ToColony: 0.9, ToFood: 0.05})
	w.pheromones.Commit()
	w.decayPheromones()
	got := w.pheromones.Read(0, 0, 0)
	if got.ToColony != 1.0 {
		t.Errorf("ToColony = %f, want clamp to 1.0", got.ToColony)
	}

	p2 := testParams()
	p2.DecayFactor = 0.5
	w2 := decayWorld(t, p2, nil)
	w2.pheromones.Write(0, 0, 0, PheromoneStrength{ToColony: 0.2, ToFood: 0.1})
	w2.pheromones.Commit()
	w2.decayPheromones()
	got = w2.pheromones.Read(0, 0, 0)
	if got.ToColony != 0.0 || got.ToFood != 0.0 {
		t.Errorf("after decay: %+v, want clamp to 0", got)
	}
}

func TestDecayFuzzSharesOneDrawPerCell(t *testing.T) {
	p := testParams()
	p.DecayFactor = 0.1
	p.FuzzFactor = 1.0 // fuzz = 0.1
	random := make([]float64, 16)
	for i := range random {
		random[i] = 0.5
	}
	w := decayWorld(t, p, random)

	w.pheromones.Write(1, 1, 0, PheromoneStrength{ToColony: 0.8, ToFood: 0.6})
	w.pheromones.Commit()
	w.decayPheromones()

	// both channels lose decay + 0.5*fuzz = 0.15
	got := w.pheromones.Read(1, 1, 0)
	if math.Abs(got.ToColony-0.65) > 1e-12 {
		t.Errorf("ToColony = %f, want 0.65", got.ToColony)
	}
	if math.Abs(got.ToFood-0.45) > 1e-12 {
		t.Errorf("ToFood = %f, want 0.45", got.ToFood)
	}
}

func TestDecaySkipsDeadColonies(t *testing.T) {
	p := testParams()
	p.DecayFactor = 0.1
	w := decayWorld(t, p, nil)

	w.pheromones.Write(0, 0, 0, PheromoneStrength{ToColony: 0.5, ToFood: 0.5})
	w.pheromones.Commit()
	w.colonies[0].Dead = true
	w.decayPheromones()
	got := w.pheromones.Read(0, 0, 0)
	if got.ToColony != 0.5 || got.ToFood != 0.5 {
		t.Errorf("dead colony layer decayed: %+v", got)
	}
}

func TestDecayDeterministicAcrossThreadCounts(t *testing.T) {
	random := make([]float64, 16)
	rng := NewPCG32(7, 0)
	for i := range random {
		random[i] = rng.Float64()*2 - 1
	}

	results := make([][]PheromoneStrength, 0, 3)
	for _, threads := range []int{1, 2, 4} {
		p := testParams()
		p.DecayFactor = 0.05
		p.FuzzFactor = 0.5
		p.Threads = threads
		w := decayWorld(t, p, random)
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				w.pheromones.Write(x, y, 0, PheromoneStrength{ToColony: 0.9, ToFood: 0.7})
			}
		}
		w.pheromones.Commit()
		w.decayPheromones()
		results = append(results, append([]PheromoneStrength(nil), w.pheromones.Clean()...))
	}
	for i := 1; i < len(results); i++ {
		for j := range results[i] {
			if results[i][j] != results[0][j] {
				t.Fatalf("decay differs between thread counts at cell %d: %+v vs %+v",
					j, results[i][j], results[0][j])
			}
		}
	}
}
