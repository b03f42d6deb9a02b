package sim

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// Params carries every tunable of the simulation, loaded from the INI
// configuration document.
type Params struct {
	// [Simulation]
	GridFile          string
	RNGSeed           int64
	SimulateTicks     int
	RecordingEnabled  bool
	OutputPrefix      string
	RandomFile        string
	Threads           int
	DiskWriteInterval int
	ColonyHalfSize    int
	LogLevel          string

	// [Colony]
	StartingAnts    int
	AntsPerTick     int
	HungerDrain     float64
	HungerReplenish float64
	ReturnDistance  int

	// [Pheromones]
	DecayFactor float64
	GainFactor  float64
	FuzzFactor  float64

	// [Ants]
	MoveRightChance float64
	UsePheromone    float64
	KillNotUseful   int

	// [Distributed]
	DistributedEnabled bool
	Workers            []string
}

// LoadParams reads the configuration document at path.
func LoadParams(path string) (Params, error) {
	file, err := ini.Load(path)
	if err != nil {
		return Params{}, errors.Wrapf(err, "config: failed to load %s", path)
	}

	simulation := file.Section("Simulation")
	colony := file.Section("Colony")
	pheromones := file.Section("Pheromones")
	ants := file.Section("Ants")
	distributed := file.Section("Distributed")

	p := Params{
		GridFile:          simulation.Key("grid_file").String(),
		RNGSeed:           simulation.Key("rng_seed").MustInt64(0),
		SimulateTicks:     simulation.Key("simulate_ticks").MustInt(0),
		RecordingEnabled:  simulation.Key("recording_enabled").MustBool(false),
		OutputPrefix:      simulation.Key("output_prefix").String(),
		RandomFile:        simulation.Key("random_file").MustString("random.bin"),
		Threads:           simulation.Key("threads").MustInt(0),
		DiskWriteInterval: simulation.Key("disk_write_interval").MustInt(0),
		ColonyHalfSize:    simulation.Key("colony_half_size").MustInt(2),
		LogLevel:          simulation.Key("log_level").MustString("info"),

		StartingAnts:    colony.Key("starting_ants").MustInt(0),
		AntsPerTick:     colony.Key("ants_per_tick").MustInt(0),
		HungerDrain:     colony.Key("hunger_drain").MustFloat64(0),
		HungerReplenish: colony.Key("hunger_replenish").MustFloat64(0),
		ReturnDistance:  colony.Key("return_distance").MustInt(0),

		DecayFactor: pheromones.Key("decay_factor").MustFloat64(0),
		GainFactor:  pheromones.Key("gain_factor").MustFloat64(0),
		FuzzFactor:  pheromones.Key("fuzz_factor").MustFloat64(0),

		MoveRightChance: ants.Key("move_right_chance").MustFloat64(0),
		UsePheromone:    ants.Key("use_pheromone").MustFloat64(0),
		KillNotUseful:   ants.Key("kill_not_useful").MustInt(0),

		DistributedEnabled: distributed.Key("enabled").MustBool(false),
	}
	if workers := distributed.Key("workers").String(); workers != "" {
		for _, addr := range strings.Split(workers, ",") {
			addr = strings.TrimSpace(addr)
			if addr != "" {
				p.Workers = append(p.Workers, addr)
			}
		}
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate rejects configurations the engine cannot run.
func (p Params) Validate() error {
	if p.GridFile == "" {
		return errors.New("config: Simulation.grid_file is required")
	}
	if p.SimulateTicks <= 0 {
		return errors.New("config: Simulation.simulate_ticks must be positive")
	}
	if p.MoveRightChance < 0.0 || p.MoveRightChance > 1.0 {
		return errors.Errorf("config: Ants.move_right_chance must be in [0, 1], got %f", p.MoveRightChance)
	}
	if p.Threads < 0 {
		return errors.Errorf("config: Simulation.threads must be non-negative, got %d", p.Threads)
	}
	if p.DistributedEnabled && len(p.Workers) == 0 {
		return errors.New("config: Distributed.enabled is set but Distributed.workers is empty")
	}
	return nil
}
