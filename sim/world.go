package sim

import (
	"encoding/binary"
	"image"
	"image/png"
	"math"
	"math/rand/v2"
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mattyoung101/ant-colony-hpc/util"
)

// Reserved seed-image colours. Any other colour marks a colony seed.
var (
	colourEmpty    = util.RGBColour{R: 0, G: 0, B: 0}
	colourFood     = util.RGBColour{R: 0, G: 255, B: 0}
	colourObstacle = util.RGBColour{R: 128, G: 128, B: 128}
)

// World owns the grids, the colonies and the tick counters for the lifetime
// of the simulation.
type World struct {
	Width, Height int

	food       *SnapGrid2D[bool]
	obstacles  *SnapGrid2D[bool]
	pheromones *SnapGrid3D[PheromoneStrength]

	colonies []Colony

	rng          *rand.Rand
	randomBuffer []float64

	params Params

	antID           uint64
	maxAnts         int
	maxAntsLastTick int

	// Per-tick reinforcement set, indexed by colony id. Each index is only
	// ever written by the goroutine that owns the colony, so no locking.
	addAnts []bool

	// Serialised write paths of the ant phase: the pheromone deposit
	// read-modify-write and the food clear.
	depositMu sync.Mutex
	foodMu    sync.Mutex

	pool *workerPool
}

// NewWorld builds a world from the seed image and random resource named in
// the configuration.
func NewWorld(p Params) (*World, error) {
	logrus.Infof("Creating world from PNG %s", p.GridFile)
	file, err := os.Open(p.GridFile)
	if err != nil {
		return nil, errors.Wrapf(err, "world: failed to open seed image %s", p.GridFile)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "world: failed to decode %s", p.GridFile)
	}

	bounds := img.Bounds()
	random, err := LoadRandomResource(p.RandomFile, bounds.Dx()*bounds.Dy())
	if err != nil {
		return nil, err
	}
	return NewWorldFromImage(img, random, p)
}

// NewWorldFromImage builds a world from a decoded raster and a preloaded
// random buffer of exactly width*height doubles.
func NewWorldFromImage(img image.Image, random []float64, p Params) (*World, error) {
	bounds := img.Bounds()
	w := &World{
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		randomBuffer: random,
		params:       p,
	}
	if len(random) != w.Width*w.Height {
		return nil, errors.Errorf("world: random buffer holds %d doubles, want %d",
			len(random), w.Width*w.Height)
	}

	seed := ResolveSeed(p.RNGSeed)
	logrus.Debugf("RNG seed is: %d", seed)
	w.rng = NewWorldRNG(seed)

	w.food = NewSnapGrid2D[bool](w.Width, w.Height)
	w.obstacles = NewSnapGrid2D[bool](w.Width, w.Height)

	// Mapping between each unique colony colour and its first position in
	// row-major scan order. Order of first occurrence decides colony ids.
	type seedPixel struct {
		colour util.RGBColour
		pos    util.Vector2i
	}
	var seeds []seedPixel
	seen := make(map[util.RGBColour]struct{})

	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			colour := util.RGBColour{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
			switch colour {
			case colourEmpty:
				// empty square, skip
			case colourFood:
				w.food.Write(x, y, true)
			case colourObstacle:
				w.obstacles.Write(x, y, true)
			default:
				if _, ok := seen[colour]; !ok {
					seen[colour] = struct{}{}
					seeds = append(seeds, seedPixel{colour: colour, pos: util.Vector2i{X: x, Y: y}})
				}
			}
		}
	}
	w.food.Commit()
	w.obstacles.Commit()
	logrus.Debugf("Have %d unique colours (unique colonies)", len(seeds))

	for i, s := range seeds {
		colony := Colony{
			ID:     uint32(i),
			Colour: s.colour,
			Pos:    s.pos,
			Hunger: 1.0,
		}
		logrus.Debugf("Colony colour %v at %v (id %d)", s.colour, s.pos, colony.ID)
		w.colonies = append(w.colonies, colony)
		for a := 0; a < p.StartingAnts; a++ {
			w.spawnAnt(&w.colonies[i])
		}
	}

	w.pheromones = NewSnapGrid3D[PheromoneStrength](w.Width, w.Height, len(w.colonies))
	w.pheromones.Commit()
	w.addAnts = make([]bool, len(w.colonies))

	threads := p.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	w.pool = newWorkerPool(threads)

	return w, nil
}

// Close stops the worker pool. The world must not be updated afterwards.
func (w *World) Close() {
	w.pool.stop()
}

// Colonies exposes the colony slice for rendering and bookkeeping consumers.
func (w *World) Colonies() []Colony { return w.colonies }

// MaxAnts returns the highest alive-ant count seen over the whole run.
func (w *World) MaxAnts() int { return w.maxAnts }

// MaxAntsLastTick returns the highest alive-ant count seen during the most
// recent tick.
func (w *World) MaxAntsLastTick() int { return w.maxAntsLastTick }

// LoadRandomResource reads count little-endian float64s from the binary file
// produced by the dump-random mode.
func LoadRandomResource(path string, count int) ([]float64, error) {
	logrus.Debugf("Attempting to acquire %d doubles from %s", count, path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "world: failed to read random resource %s", path)
	}
	if len(data) < count*8 {
		return nil, errors.Errorf("world: random resource %s holds %d bytes, want %d; file too small?",
			path, len(data), count*8)
	}
	buf := make([]float64, count)
	for i := range buf {
		buf[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return buf, nil
}

// GenerateRandomResource writes width*height uniform doubles in [-1, 1] to
// path, replacing the external dump tool.
func GenerateRandomResource(path string, seed uint64, width, height int) error {
	logrus.Infof("Seed: %d, width: %d, height: %d", seed, width, height)
	out := make([]byte, width*height*8)
	rng := NewPCG32(seed, 0)
	for i := 0; i < width*height; i++ {
		n := rng.Float64()*2.0 - 1.0
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(n))
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrapf(err, "world: failed to write random resource %s", path)
	}
	return nil
}

// packPheromones serialises the given pheromone buffer as a flat array of
// doubles [toColony, toFood, ...] in cell-major, colony-innermost order.
func (w *World) packPheromones(buf []PheromoneStrength) []float64 {
	depth := w.pheromones.Depth()
	out := make([]float64, w.Width*w.Height*depth*2)
	i := 0
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			for c := 0; c < depth; c++ {
				ph := buf[x+w.Width*y+w.Width*w.Height*c]
				out[i] = ph.ToColony
				out[i+1] = ph.ToFood
				i += 2
			}
		}
	}
	return out
}

// unpackPheromones loads a packed pheromone array straight into the dirty
// buffer, bypassing the written mask like a broadcast would.
func (w *World) unpackPheromones(packed []float64) error {
	depth := w.pheromones.Depth()
	if len(packed) != w.Width*w.Height*depth*2 {
		return errors.Errorf("world: packed pheromone buffer holds %d doubles, want %d",
			len(packed), w.Width*w.Height*depth*2)
	}
	dirty := w.pheromones.Dirty()
	i := 0
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			for c := 0; c < depth; c++ {
				dirty[x+w.Width*y+w.Width*w.Height*c] = PheromoneStrength{
					ToColony: packed[i],
					ToFood:   packed[i+1],
				}
				i += 2
			}
		}
	}
	return nil
}
