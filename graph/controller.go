package graph

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"time"

	"github.com/TFMV/techgraph/models"
	"github.com/TFMV/techgraph/physics"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/google/uuid"
)

// DefaultMaxFrameDelta caps the wall-clock delta handed to the ropes so a
// stalled host does not destabilize the explicit integrator
const DefaultMaxFrameDelta = 100 * time.Millisecond

// Option configures a Controller
type Option func(*Controller)

// WithLayoutConfig sets the layout tuning
func WithLayoutConfig(cfg physics.LayoutConfig) Option {
	return func(c *Controller) { c.layoutCfg = cfg }
}

// WithLayout replaces the default Fruchterman-Reingold layout
func WithLayout(layout physics.LayoutAlgorithm) Option {
	return func(c *Controller) { c.layout = layout }
}

// WithRopeConfig sets the rope tuning
func WithRopeConfig(cfg physics.RopeConfig) Option {
	return func(c *Controller) { c.ropeCfg = cfg }
}

// WithRand sets the random source shared by the layout and the ropes
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

// WithLogger sets the logger used for unlock and restore events
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithMaxFrameDelta sets the largest dt Frame will integrate in one call
func WithMaxFrameDelta(d time.Duration) Option {
	return func(c *Controller) { c.maxFrameDelta = d }
}

// Controller owns the node table and one rope per edge for the session. It
// is the only component that mutates node state or excites ropes. It is not
// safe for concurrent use; hosts that call it from several goroutines must
// serialize access.
type Controller struct {
	tree     *models.TechTree
	ledger   Ledger
	effects  EffectApplier
	notifier Notifier

	layout        physics.LayoutAlgorithm
	layoutCfg     physics.LayoutConfig
	ropeCfg       physics.RopeConfig
	rng           *rand.Rand
	logger        *log.Logger
	maxFrameDelta time.Duration

	edges     []models.Edge
	ropes     []*physics.Rope
	incident  map[string][]*physics.Rope
	sessionID string
	lastFrame time.Time
}

// NewController builds the session: initial states, one layout run with all
// positions published, then one rope per edge bound to its two nodes
func NewController(tree *models.TechTree, ledger Ledger, effects EffectApplier, notifier Notifier, opts ...Option) (*Controller, error) {
	if tree == nil {
		return nil, errors.New("tech tree is nil")
	}
	if ledger == nil {
		return nil, errors.New("ledger is nil")
	}
	if effects == nil {
		effects = nopEffects{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}

	c := &Controller{
		tree:          tree,
		ledger:        ledger,
		effects:       effects,
		notifier:      notifier,
		layoutCfg:     physics.DefaultLayoutConfig(),
		ropeCfg:       physics.DefaultRopeConfig(),
		maxFrameDelta: DefaultMaxFrameDelta,
		incident:      make(map[string][]*physics.Rope),
		sessionID:     uuid.New().String(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard, "", 0)
	}
	if c.rng == nil {
		c.rng = physics.NewRand(c.layoutCfg.Seed)
	}
	if err := c.ropeCfg.Validate(); err != nil {
		return nil, err
	}

	for _, node := range tree.Nodes {
		node.State = models.Locked
	}
	c.reevaluate()

	if c.layout == nil {
		fd := physics.NewForceDirectedLayout(c.layoutCfg, c.rng)
		c.layoutCfg = fd.Config()
		c.layout = fd
	}
	physics.Run(c.layout, tree)

	c.edges = tree.Edges()
	for _, e := range c.edges {
		source, _ := tree.FindNode(e.Source)
		target, _ := tree.FindNode(e.Target)

		rope, err := physics.NewRope(c.ropeCfg, c.rng)
		if err != nil {
			return nil, fmt.Errorf("failed to create rope %s -> %s: %w", e.Source, e.Target, err)
		}
		rope.Connect(source, target)
		rope.SetState(target.State)

		c.ropes = append(c.ropes, rope)
		c.incident[e.Source] = append(c.incident[e.Source], rope)
		if e.Target != e.Source {
			c.incident[e.Target] = append(c.incident[e.Target], rope)
		}
	}

	c.logger.Printf("session %s: %d nodes, %d ropes, layout %q", c.sessionID, tree.Len(), len(c.ropes), c.layout.GetName())
	return c, nil
}

// SessionID returns the random identifier of this session
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Tree returns the node table. Callers must not mutate node state.
func (c *Controller) Tree() *models.TechTree {
	return c.tree
}

// Ropes returns all ropes in edge order
func (c *Controller) Ropes() []*physics.Rope {
	out := make([]*physics.Rope, len(c.ropes))
	copy(out, c.ropes)
	return out
}

// RopesFor returns the ropes incident to a node
func (c *Controller) RopesFor(id string) []*physics.Rope {
	ropes := c.incident[id]
	out := make([]*physics.Rope, len(ropes))
	copy(out, ropes)
	return out
}

// Tick advances every rope by dt seconds
func (c *Controller) Tick(dt float64) {
	for _, rope := range c.ropes {
		rope.Update(dt)
	}
}

// Frame ticks the ropes with the wall-clock time elapsed since the previous
// frame and returns the dt it used. The first frame uses zero.
func (c *Controller) Frame(now time.Time) float64 {
	var dt float64
	if !c.lastFrame.IsZero() {
		elapsed := now.Sub(c.lastFrame)
		if elapsed < 0 {
			elapsed = 0
		}
		if c.maxFrameDelta > 0 && elapsed > c.maxFrameDelta {
			elapsed = c.maxFrameDelta
		}
		dt = elapsed.Seconds()
	}
	c.lastFrame = now
	c.Tick(dt)
	return dt
}

// Snapshot returns the current state of nodes and ropes for drawing
func (c *Controller) Snapshot() *models.Snapshot {
	snap := &models.Snapshot{
		Session: c.sessionID,
		Width:   c.layoutCfg.Width,
		Height:  c.layoutCfg.Height,
		Balance: c.ledger.Balance(),
		Nodes:   make([]models.NodeView, 0, c.tree.Len()),
		Ropes:   make([]models.RopeView, 0, len(c.ropes)),
	}
	for _, node := range c.tree.Nodes {
		snap.Nodes = append(snap.Nodes, models.NodeView{
			ID:         node.ID,
			Name:       node.Name,
			Cost:       node.Cost,
			State:      node.State,
			Affordable: c.Affordable(node.ID),
			X:          node.X,
			Y:          node.Y,
		})
	}
	for i, rope := range c.ropes {
		snap.Ropes = append(snap.Ropes, models.RopeView{
			ID:     rope.ID,
			Source: c.edges[i].Source,
			Target: c.edges[i].Target,
			State:  rope.State(),
			Points: rope.Points(),
		})
	}
	return snap
}

// AllUnlockedIDs returns the identifiers of all unlocked nodes, sorted
func (c *Controller) AllUnlockedIDs() []string {
	set := treeset.NewWithStringComparator()
	for _, node := range c.tree.Nodes {
		if node.State == models.Unlocked {
			set.Add(node.ID)
		}
	}
	ids := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		ids = append(ids, v.(string))
	}
	return ids
}
