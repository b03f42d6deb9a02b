// Ant colony simulator. Usage: ant-colony-hpc [config-path]
package main

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattyoung101/ant-colony-hpc/sim"
	"github.com/mattyoung101/ant-colony-hpc/util"
)

func main() {
	dumpRandom := flag.Bool("dump-random", false,
		"generate the random resource and exit; args: seed width height [path]")
	flag.Parse()

	if *dumpRandom {
		runDumpRandom(flag.Args())
		return
	}

	configPath := "antconfig.ini"
	if flag.NArg() > 0 {
		configPath = flag.Arg(0)
	}

	params, err := sim.LoadParams(configPath)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	if level, err := logrus.ParseLevel(params.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	logrus.Info("Ant colony simulator")

	world, err := sim.NewWorld(params)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	defer world.Close()

	var cluster *sim.Cluster
	if params.DistributedEnabled {
		cluster, err = world.ConnectCluster()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer cluster.Shutdown()
	}

	var recorder *sim.Recorder
	if params.RecordingEnabled {
		recorder = sim.NewRecorder(params.OutputPrefix, params.DiskWriteInterval)
	} else {
		logrus.Debug("PNG TAR recording disabled.")
	}

	logrus.Infof("Now running simulation for %d ticks", params.SimulateTicks)
	wallStart := time.Now()
	var simTime time.Duration
	ticks := 0
	for i := 0; i < params.SimulateTicks; i++ {
		logrus.Tracef("Iteration %d", i)
		tickStart := time.Now()

		shouldContinue := false
		if cluster != nil {
			shouldContinue, err = world.UpdateDistributed(cluster)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
		} else {
			shouldContinue = world.Update()
		}
		simTime += time.Since(tickStart)
		ticks++

		if recorder != nil {
			recorder.WriteFrame(i, world.Width, world.Height, world.RenderFrame())
			recorder.RecordTick(world.MaxAntsLastTick(), simTime)
		}
		if !shouldContinue {
			break
		}
	}
	wallTime := time.Since(wallStart)
	logrus.Info("Simulation done!")

	wallInfo := timeInfo(wallTime, ticks)
	simInfo := timeInfo(simTime, ticks)
	if recorder != nil {
		recorder.Finalise(ticks, wallInfo, simInfo)
	}

	surviving := 0
	for i := range world.Colonies() {
		if !world.Colonies()[i].Dead {
			surviving++
		}
	}
	logrus.Infof("Surviving colonies: %d", surviving)
	logrus.Infof("Max ants alive: %d", world.MaxAnts())
	logrus.Infof("Simulated %d ticks in %d ms (%.2f ticks per second)",
		ticks, wallTime.Milliseconds(), wallInfo.TicksPerSecond)
}

func timeInfo(d time.Duration, ticks int) util.TimeInfo {
	ms := float64(d.Microseconds()) / 1000.0
	tps := 0.0
	if ms > 0 {
		tps = float64(ticks) / (ms / 1000.0)
	}
	return util.TimeInfo{TimeMs: ms, TicksPerSecond: tps}
}

func runDumpRandom(args []string) {
	if len(args) < 3 {
		logrus.Error("Usage: ant-colony-hpc -dump-random <seed> <width> <height> [path]")
		os.Exit(1)
	}
	seed, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		logrus.Fatalf("Bad seed %q: %v", args[0], err)
	}
	width, err := strconv.Atoi(args[1])
	if err != nil {
		logrus.Fatalf("Bad width %q: %v", args[1], err)
	}
	height, err := strconv.Atoi(args[2])
	if err != nil {
		logrus.Fatalf("Bad height %q: %v", args[2], err)
	}
	path := "random.bin"
	if len(args) > 3 {
		path = args[3]
	}
	if err := sim.GenerateRandomResource(path, seed, width, height); err != nil {
		logrus.Fatalf("%v", err)
	}
	logrus.Info("Done")
}
