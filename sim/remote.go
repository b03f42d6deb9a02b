package sim

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mattyoung101/ant-colony-hpc/util"
)

// Remote is the RPC service a worker node exposes. It mirrors the master's
// world and processes the colony chunk scattered to it each tick. Calls
// never overlap for a well-behaved master, but the mutex keeps a confused
// one from corrupting the world.
type Remote struct {
	mu    sync.Mutex
	world *World

	// Closed when the master asks the worker to exit.
	Quit chan struct{}

	quitOnce sync.Once
}

func NewRemote() *Remote {
	return &Remote{Quit: make(chan struct{})}
}

// Init builds the worker's mirror of the master's world.
func (r *Remote) Init(args InitArgs, _ *struct{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logrus.Infof("Init: %dx%d world, world size %d", args.Width, args.Height, args.WorldSize)

	colonies, err := DecodeColonies(args.Colonies)
	if err != nil {
		return errors.Wrap(err, "remote: bad init colony blob")
	}

	if r.world != nil {
		r.world.Close()
	}
	w := &World{
		Width:        args.Width,
		Height:       args.Height,
		colonies:     colonies,
		randomBuffer: args.RandomBuffer,
		params:       args.Params,
	}
	w.rng = NewWorldRNG(ResolveSeed(args.Params.RNGSeed))

	if len(args.Obstacles) != w.Width*w.Height || len(args.Food) != w.Width*w.Height {
		return errors.Errorf("remote: grid buffers hold %d/%d cells, want %d",
			len(args.Obstacles), len(args.Food), w.Width*w.Height)
	}
	w.obstacles = NewSnapGrid2D[bool](w.Width, w.Height)
	copy(w.obstacles.Dirty(), args.Obstacles)
	w.obstacles.Commit()

	w.food = NewSnapGrid2D[bool](w.Width, w.Height)
	copy(w.food.Dirty(), args.Food)
	w.food.Commit()

	w.pheromones = NewSnapGrid3D[PheromoneStrength](w.Width, w.Height, len(colonies))
	if err := w.unpackPheromones(args.Pheromones); err != nil {
		return errors.Wrap(err, "remote: bad init pheromone buffer")
	}
	w.pheromones.Commit()

	w.addAnts = make([]bool, len(colonies))
	w.pool = newWorkerPool(1)

	r.world = w
	return nil
}

// Tick processes the worker's scattered colony chunk for one tick and
// returns the writeback: updated colonies, the add-ants vector, and the
// dirty grid buffers with their written masks.
func (r *Remote) Tick(args TickArgs, reply *TickReply) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.world
	if w == nil {
		return errors.New("remote: tick before init")
	}

	// Unpack the broadcast straight into the dirty halves, then commit so
	// clean == dirty and the written masks are clear before any work.
	if len(args.Food) != w.Width*w.Height {
		return errors.Errorf("remote: food buffer holds %d cells, want %d",
			len(args.Food), w.Width*w.Height)
	}
	copy(w.food.Dirty(), args.Food)
	if err := w.unpackPheromones(args.Pheromones); err != nil {
		return err
	}

	chunk, err := DecodeColonies(args.Colonies)
	if err != nil {
		return errors.Wrap(err, "remote: bad tick colony blob")
	}
	if len(chunk) != len(args.ColonyIdx) {
		return errors.Errorf("remote: blob holds %d colonies but %d indices scattered",
			len(chunk), len(args.ColonyIdx))
	}
	for j, c := range args.ColonyIdx {
		if c < 0 || c >= len(w.colonies) {
			return errors.Errorf("remote: scattered colony index %d out of range", c)
		}
		if j > 0 && c != args.ColonyIdx[j-1]+1 {
			return errors.Errorf("remote: scattered colony indices not contiguous at %d", c)
		}
		w.colonies[c] = chunk[j]
	}

	w.food.Commit()
	w.pheromones.Commit()
	logrus.Tracef("Received foodGrid hash 0x%X, pheromone hash 0x%X",
		util.ChecksumBools(w.food.Clean()), util.ChecksumFloat64s(args.Pheromones))

	for i := range w.addAnts {
		w.addAnts[i] = false
	}
	if len(args.ColonyIdx) > 0 {
		start := args.ColonyIdx[0]
		end := args.ColonyIdx[len(args.ColonyIdx)-1] + 1
		w.updateColonyRange(start, end, args.Seed)
	}

	chunkColonies := make([]Colony, 0, len(args.ColonyIdx))
	addAnts := make([]int, 0, len(args.ColonyIdx))
	for _, c := range args.ColonyIdx {
		chunkColonies = append(chunkColonies, w.colonies[c])
		if w.addAnts[c] {
			addAnts = append(addAnts, c)
		} else {
			addAnts = append(addAnts, -1)
		}
	}

	reply.Colonies = EncodeColonies(chunkColonies)
	reply.AddAnts = addAnts
	reply.Food = append([]bool(nil), w.food.Dirty()...)
	reply.FoodWritten = append([]bool(nil), w.food.WrittenMask()...)
	reply.Pheromones = w.packPheromones(w.pheromones.Dirty())
	reply.PheromoneWritten = append([]bool(nil), w.pheromones.WrittenMask()...)

	// Commit for the next tick.
	w.food.Commit()
	w.pheromones.Commit()

	return nil
}

// Shutdown makes the worker process exit once the call returns.
func (r *Remote) Shutdown(_ struct{}, _ *struct{}) error {
	logrus.Info("Shutdown requested by master")
	r.quitOnce.Do(func() { close(r.Quit) })
	return nil
}
