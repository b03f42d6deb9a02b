package sim

// RPC message types for the distributed driver. The master ships full world
// state once at init; after that each tick is a single request/reply pair per
// worker carrying the broadcast (seed, dirty food, packed pheromones, the
// worker's authoritative colony chunk) and the gather (updated chunk,
// add-ants vector, dirty buffers, written masks). Obstacles never change
// after init and are never retransmitted.

// InitArgs bootstraps a worker with a full copy of the world.
type InitArgs struct {
	Width, Height int
	Obstacles     []bool
	Food          []bool
	// Packed [toColony, toFood, ...] in cell-major, colony-innermost order
	Pheromones []float64
	// Positional colony blob covering every colony
	Colonies     []byte
	RandomBuffer []float64
	Params       Params
	WorldSize    int
}

// TickArgs is the per-tick broadcast plus the worker's scattered chunk.
type TickArgs struct {
	Seed uint64
	Food []bool
	// Packed pheromone field, length w*h*C*2
	Pheromones []float64
	// Contiguous colony indices this worker owns for the tick
	ColonyIdx []int
	// Authoritative blob of exactly those colonies
	Colonies []byte
}

// TickReply is the worker's writeback.
type TickReply struct {
	// Updated chunk, positional, in ColonyIdx order
	Colonies []byte
	// Per chunk entry: -1, or the colony id that should gain ants
	AddAnts []int
	// Dirty food buffer and its written mask, length w*h each
	Food        []bool
	FoodWritten []bool
	// Packed dirty pheromone buffer (length w*h*C*2) and its written mask.
	// The mask is indexed with the native 3D stride x + w*y + w*h*z and has
	// length w*h*C; the data buffer uses the packed cell-major stride.
	Pheromones       []float64
	PheromoneWritten []bool
}
