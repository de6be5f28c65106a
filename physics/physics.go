// Package physics implements the numerical parts of the engine: the
// Fruchterman-Reingold layout of the tech tree and the spring-rope chains
// drawn along its edges.
package physics

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/TFMV/techgraph/models"
)

// LayoutAlgorithm defines an interface for layout algorithms
type LayoutAlgorithm interface {
	Initialize(tree *models.TechTree)
	Step() bool // Returns true once the layout is finished
	Apply(tree *models.TechTree)
	GetName() string
}

// LayoutConfig holds the tunables of the force-directed layout
type LayoutConfig struct {
	Width              float64 `toml:"width"`
	Height             float64 `toml:"height"`
	Iterations         int     `toml:"iterations"`
	InitialTemperature float64 `toml:"initial_temperature"`
	Cooling            float64 `toml:"cooling"`
	Epsilon            float64 `toml:"epsilon"`
	Spread             float64 `toml:"spread"` // share of each dimension used for initial placement
	Seed               uint64  `toml:"seed"`   // 0 draws a seed from the clock
}

// DefaultLayoutConfig returns the default layout tuning
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Width:              1200,
		Height:             900,
		Iterations:         150,
		InitialTemperature: 200,
		Cooling:            0.95,
		Epsilon:            0.01,
		Spread:             0.8,
	}
}

// NewRand returns a generator seeded with seed, or from the clock when seed
// is zero
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ForceDirectedLayout implements a Fruchterman-Reingold force-directed layout.
// It keeps no state between runs: Initialize discards everything from the
// previous one.
type ForceDirectedLayout struct {
	cfg         LayoutConfig
	rng         *rand.Rand
	ids         []string
	positions   []models.Point
	disp        []models.Point
	edges       [][2]int
	temperature float64
	k           float64 // ideal edge length
	iterations  int
	mu          sync.Mutex
}

// NewForceDirectedLayout creates a new force-directed layout. A nil rng is
// replaced by one seeded from cfg.Seed.
func NewForceDirectedLayout(cfg LayoutConfig, rng *rand.Rand) *ForceDirectedLayout {
	def := DefaultLayoutConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = def.Epsilon
	}
	if cfg.Spread <= 0 || cfg.Spread > 1 {
		cfg.Spread = def.Spread
	}
	if cfg.Cooling <= 0 || cfg.Cooling >= 1 {
		cfg.Cooling = def.Cooling
	}
	if rng == nil {
		rng = NewRand(cfg.Seed)
	}
	return &ForceDirectedLayout{cfg: cfg, rng: rng}
}

// GetName returns the name of the layout algorithm
func (fd *ForceDirectedLayout) GetName() string {
	return "Fruchterman-Reingold Layout"
}

// Config returns the effective configuration
func (fd *ForceDirectedLayout) Config() LayoutConfig {
	return fd.cfg
}

// Initialize places every node at a random position inside the central
// Spread share of the bounding area and caches the edge list
func (fd *ForceDirectedLayout) Initialize(tree *models.TechTree) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	n := tree.Len()
	fd.ids = make([]string, n)
	fd.positions = make([]models.Point, n)
	fd.disp = make([]models.Point, n)
	fd.edges = fd.edges[:0]
	fd.iterations = 0
	fd.temperature = fd.cfg.InitialTemperature

	if n == 0 {
		fd.k = 0
		return
	}

	w, h := fd.cfg.Width, fd.cfg.Height
	fd.k = math.Sqrt(w * h / float64(n))

	marginX := w * (1 - fd.cfg.Spread) / 2
	marginY := h * (1 - fd.cfg.Spread) / 2
	index := make(map[string]int, n)
	for i, node := range tree.Nodes {
		fd.ids[i] = node.ID
		index[node.ID] = i
		fd.positions[i] = models.Point{
			X: marginX + fd.rng.Float64()*w*fd.cfg.Spread,
			Y: marginY + fd.rng.Float64()*h*fd.cfg.Spread,
		}
	}

	for _, e := range tree.Edges() {
		fd.edges = append(fd.edges, [2]int{index[e.Source], index[e.Target]})
	}
}

// Step performs one iteration of the layout algorithm. Every displacement of
// the iteration is computed from the positions at its start and applied
// afterwards.
func (fd *ForceDirectedLayout) Step() bool {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	if len(fd.ids) == 0 || fd.iterations >= fd.cfg.Iterations {
		return true
	}

	for i := range fd.disp {
		fd.disp[i] = models.Point{}
	}

	k2 := fd.k * fd.k

	// Repulsion between every unordered pair. A pair on exactly the same
	// point has no direction of its own, so it is pushed apart along a
	// random one.
	for i := 0; i < len(fd.positions); i++ {
		for j := i + 1; j < len(fd.positions); j++ {
			delta := fd.positions[i].Sub(fd.positions[j])
			distance := delta.Len()
			var dir models.Point
			if distance == 0 {
				dir = fd.randomDirection()
			} else {
				dir = delta.Scale(1 / distance)
			}
			push := dir.Scale(k2 / math.Max(fd.cfg.Epsilon, distance))
			fd.disp[i] = fd.disp[i].Add(push)
			fd.disp[j] = fd.disp[j].Sub(push)
		}
	}

	// Attraction along edges
	for _, e := range fd.edges {
		delta := fd.positions[e[1]].Sub(fd.positions[e[0]])
		distance := math.Max(fd.cfg.Epsilon, delta.Len())
		pull := delta.Scale(distance / fd.k)
		fd.disp[e[0]] = fd.disp[e[0]].Add(pull)
		fd.disp[e[1]] = fd.disp[e[1]].Sub(pull)
	}

	// Cap by temperature, apply, clamp to bounds
	for i, d := range fd.disp {
		magnitude := d.Len()
		if magnitude > fd.temperature && magnitude > 0 {
			d = d.Scale(fd.temperature / magnitude)
		}
		fd.positions[i] = fd.clamp(fd.positions[i].Add(d))
	}

	fd.temperature *= fd.cfg.Cooling
	fd.iterations++
	if fd.iterations < fd.cfg.Iterations {
		return false
	}
	fd.separateCoincident()
	return true
}

// clamp keeps p inside the bounding rectangle
func (fd *ForceDirectedLayout) clamp(p models.Point) models.Point {
	p.X = math.Max(0, math.Min(fd.cfg.Width, p.X))
	p.Y = math.Max(0, math.Min(fd.cfg.Height, p.Y))
	return p
}

func (fd *ForceDirectedLayout) randomDirection() models.Point {
	angle := fd.rng.Float64() * 2 * math.Pi
	return models.Point{X: math.Cos(angle), Y: math.Sin(angle)}
}

// maxNudges bounds the search for a free spot in separateCoincident
const maxNudges = 64

// separateCoincident moves nodes that finished on exactly the same point,
// as when the last iteration clamps two of them into one corner. Each
// extra node is nudged by about Epsilon until its spot is free.
func (fd *ForceDirectedLayout) separateCoincident() {
	taken := make(map[models.Point]bool, len(fd.positions))
	for i, p := range fd.positions {
		for n := 0; taken[p] && n < maxNudges; n++ {
			p = fd.nudge(p)
		}
		fd.positions[i] = p
		taken[p] = true
	}
}

// nudge moves p a short random step, reflected off the walls so that a
// node pinned in a corner moves inward
func (fd *ForceDirectedLayout) nudge(p models.Point) models.Point {
	step := fd.randomDirection().Scale(fd.cfg.Epsilon * (1 + fd.rng.Float64()))
	if x := p.X + step.X; x < 0 || x > fd.cfg.Width {
		step.X = -step.X
	}
	if y := p.Y + step.Y; y < 0 || y > fd.cfg.Height {
		step.Y = -step.Y
	}
	return fd.clamp(p.Add(step))
}

// Apply writes the computed positions to the tree's nodes
func (fd *ForceDirectedLayout) Apply(tree *models.TechTree) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	for i, id := range fd.ids {
		if node, ok := tree.FindNode(id); ok {
			node.SetPosition(fd.positions[i])
		}
	}
}

// Positions returns the current identifier → position mapping
func (fd *ForceDirectedLayout) Positions() map[string]models.Point {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	result := make(map[string]models.Point, len(fd.ids))
	for i, id := range fd.ids {
		result[id] = fd.positions[i]
	}
	return result
}

// Iterations returns the number of completed iterations
func (fd *ForceDirectedLayout) Iterations() int {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	return fd.iterations
}

// Run initializes the layout, steps it to completion and applies the
// result to the tree
func Run(layout LayoutAlgorithm, tree *models.TechTree) {
	layout.Initialize(tree)
	for !layout.Step() {
	}
	layout.Apply(tree)
}
