package sim

import (
	"net/rpc"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mattyoung101/ant-colony-hpc/util"
)

// Cluster is the master's view of the worker nodes. The master holds the
// authoritative world; workers mirror it and process scattered colony
// chunks.
type Cluster struct {
	clients           []*rpc.Client
	addrs             []string
	worldSize         int
	coloniesPerWorker int
}

// ConnectCluster dials every configured worker and ships the initial world
// state. The colony count must divide evenly over the world size (master
// plus workers); anything else is fatal at init.
func (w *World) ConnectCluster() (*Cluster, error) {
	worldSize := len(w.params.Workers) + 1
	if len(w.colonies)%worldSize != 0 {
		return nil, errors.Errorf(
			"distributed: number of colonies (%d) is not divisible by number of workers (%d)",
			len(w.colonies), worldSize)
	}
	cl := &Cluster{
		addrs:             w.params.Workers,
		worldSize:         worldSize,
		coloniesPerWorker: len(w.colonies) / worldSize,
	}
	logrus.Infof("Distributed mode: %d colonies per worker (%d colonies total, %d workers)",
		cl.coloniesPerWorker, len(w.colonies), worldSize)

	args := InitArgs{
		Width:        w.Width,
		Height:       w.Height,
		Obstacles:    append([]bool(nil), w.obstacles.Clean()...),
		Food:         append([]bool(nil), w.food.Clean()...),
		Pheromones:   w.packPheromones(w.pheromones.Clean()),
		Colonies:     EncodeColonies(w.colonies),
		RandomBuffer: w.randomBuffer,
		Params:       w.params,
		WorldSize:    worldSize,
	}
	for _, addr := range w.params.Workers {
		client, err := rpc.Dial("tcp", addr)
		if err != nil {
			return nil, errors.Wrapf(err, "distributed: failed to dial worker %s", addr)
		}
		if err := client.Call("Remote.Init", args, &struct{}{}); err != nil {
			return nil, errors.Wrapf(err, "distributed: init failed on worker %s", addr)
		}
		cl.clients = append(cl.clients, client)
		logrus.Infof("Worker node %s registered", addr)
	}
	return cl, nil
}

// Shutdown asks every worker to exit and closes the connections.
func (cl *Cluster) Shutdown() {
	for i, client := range cl.clients {
		if err := client.Call("Remote.Shutdown", struct{}{}, &struct{}{}); err != nil {
			logrus.Debugf("Shutdown call to worker %s: %v", cl.addrs[i], err)
		}
		client.Close()
	}
}

// UpdateDistributed advances the world one tick with the colony work
// scattered over the cluster. The master works the first chunk itself, then
// merges every worker's writeback before running the serial bookkeeping.
// Returns false when the simulation should halt; any protocol error is fatal
// for the run.
func (w *World) UpdateDistributed(cl *Cluster) (bool, error) {
	w.maxAntsLastTick = 0

	seed := w.rng.Uint64()
	logrus.Tracef("Tick seed: 0x%X", seed)

	// Broadcast payload: the dirty halves (dirty == clean right after the
	// previous commit).
	food := append([]bool(nil), w.food.Dirty()...)
	pheromones := w.packPheromones(w.pheromones.Dirty())
	logrus.Tracef("Broadcast foodGrid hash 0x%X, pheromone hash 0x%X",
		util.ChecksumBools(food), util.ChecksumFloat64s(pheromones))

	// Scatter contiguous colony chunks: chunk 0 is the master's.
	calls := make([]*rpc.Call, len(cl.clients))
	replies := make([]TickReply, len(cl.clients))
	for i, client := range cl.clients {
		start := (i + 1) * cl.coloniesPerWorker
		end := start + cl.coloniesPerWorker
		idx := make([]int, 0, cl.coloniesPerWorker)
		for c := start; c < end; c++ {
			idx = append(idx, c)
		}
		args := TickArgs{
			Seed:       seed,
			Food:       food,
			Pheromones: pheromones,
			ColonyIdx:  idx,
			Colonies:   EncodeColonies(w.colonies[start:end]),
		}
		calls[i] = client.Go("Remote.Tick", args, &replies[i], nil)
	}

	for i := range w.addAnts {
		w.addAnts[i] = false
	}
	w.updateColonyRange(0, cl.coloniesPerWorker, seed)

	// Gather in worker order so conflicting cell writes resolve the same way
	// every run (last-merged worker wins).
	for i := range calls {
		<-calls[i].Done
		if calls[i].Error != nil {
			return false, errors.Wrapf(calls[i].Error, "distributed: tick failed on worker %s", cl.addrs[i])
		}
		if err := w.mergeWorkerReply(cl, i, &replies[i]); err != nil {
			return false, errors.Wrapf(err, "distributed: bad reply from worker %s", cl.addrs[i])
		}
	}

	return w.finishTick(), nil
}

// mergeWorkerReply folds one worker's writeback into the master state.
func (w *World) mergeWorkerReply(cl *Cluster, worker int, reply *TickReply) error {
	start := (worker + 1) * cl.coloniesPerWorker

	received, err := DecodeColonies(reply.Colonies)
	if err != nil {
		return err
	}
	if len(received) != cl.coloniesPerWorker {
		return errors.Errorf("reply holds %d colonies, want %d", len(received), cl.coloniesPerWorker)
	}
	for j := range received {
		w.colonies[start+j] = received[j]
	}

	if len(reply.AddAnts) != cl.coloniesPerWorker {
		return errors.Errorf("add-ants vector holds %d entries, want %d",
			len(reply.AddAnts), cl.coloniesPerWorker)
	}
	for _, id := range reply.AddAnts {
		if id == -1 {
			continue
		}
		if id < 0 || id >= len(w.addAnts) {
			return errors.Errorf("add-ants entry %d out of range", id)
		}
		w.addAnts[id] = true
	}

	if err := w.mergeFood(reply.Food, reply.FoodWritten); err != nil {
		return err
	}
	return w.mergePheromones(reply.Pheromones, reply.PheromoneWritten)
}

// mergeFood copies every cell the worker wrote into the master's dirty food
// grid.
func (w *World) mergeFood(food, written []bool) error {
	if len(food) != w.Width*w.Height || len(written) != w.Width*w.Height {
		return errors.Errorf("food buffers hold %d/%d cells, want %d",
			len(food), len(written), w.Width*w.Height)
	}
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			i := x + w.Width*y
			if written[i] {
				w.food.Write(x, y, food[i])
			}
		}
	}
	return nil
}

// mergePheromones copies every cell the worker wrote into the master's dirty
// pheromone grid. The written mask uses the native 3D stride while the data
// buffer is packed cell-major, colony-innermost.
func (w *World) mergePheromones(packed []float64, written []bool) error {
	depth := w.pheromones.Depth()
	if len(packed) != w.Width*w.Height*depth*2 {
		return errors.Errorf("pheromone buffer holds %d doubles, want %d",
			len(packed), w.Width*w.Height*depth*2)
	}
	if len(written) != w.Width*w.Height*depth {
		return errors.Errorf("pheromone mask holds %d cells, want %d",
			len(written), w.Width*w.Height*depth)
	}
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			for c := 0; c < depth; c++ {
				maskIdx := x + w.Width*y + w.Width*w.Height*c
				if !written[maskIdx] {
					continue
				}
				dataIdx := ((y*w.Width+x)*depth + c) * 2
				w.pheromones.Write(x, y, c, PheromoneStrength{
					ToColony: packed[dataIdx],
					ToFood:   packed[dataIdx+1],
				})
			}
		}
	}
	return nil
}
