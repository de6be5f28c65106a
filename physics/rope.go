package physics

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/TFMV/techgraph/models"
	"github.com/google/uuid"
)

// ErrInvalidRopeConfig is returned by NewRope for unusable tuning
var ErrInvalidRopeConfig = errors.New("invalid rope config")

// Anchor is anything a rope end can be pinned to. The rope only reads it.
type Anchor interface {
	Position() models.Point
}

// RopeConfig holds the spring-chain tuning shared by all ropes
type RopeConfig struct {
	Segments        int     `toml:"segments"` // interior mass points
	Stiffness       float64 `toml:"stiffness"`
	Damping         float64 `toml:"damping"`
	Mass            float64 `toml:"mass"`
	ImpulseStrength float64 `toml:"impulse_strength"`
	ImpulseJitter   float64 `toml:"impulse_jitter"`
	SwayAmplitude   float64 `toml:"sway_amplitude"`
	SwayFrequency   float64 `toml:"sway_frequency"`
}

// DefaultRopeConfig returns the default rope tuning
func DefaultRopeConfig() RopeConfig {
	return RopeConfig{
		Segments:        8,
		Stiffness:       80,
		Damping:         5,
		Mass:            1,
		ImpulseStrength: 120,
		ImpulseJitter:   0.3,
		SwayFrequency:   0.35,
	}
}

// Validate checks that the tuning can be integrated
func (c RopeConfig) Validate() error {
	switch {
	case c.Segments < 1:
		return fmt.Errorf("%w: segments must be at least 1, got %d", ErrInvalidRopeConfig, c.Segments)
	case !(c.Mass > 0) || math.IsInf(c.Mass, 0):
		return fmt.Errorf("%w: mass must be positive, got %v", ErrInvalidRopeConfig, c.Mass)
	case c.Stiffness < 0 || math.IsNaN(c.Stiffness):
		return fmt.Errorf("%w: stiffness must be non-negative, got %v", ErrInvalidRopeConfig, c.Stiffness)
	case c.Damping < 0 || math.IsNaN(c.Damping):
		return fmt.Errorf("%w: damping must be non-negative, got %v", ErrInvalidRopeConfig, c.Damping)
	case c.ImpulseJitter < 0 || c.ImpulseJitter > 1:
		return fmt.Errorf("%w: impulse jitter must be within [0,1], got %v", ErrInvalidRopeConfig, c.ImpulseJitter)
	case c.SwayAmplitude < 0:
		return fmt.Errorf("%w: sway amplitude must be non-negative, got %v", ErrInvalidRopeConfig, c.SwayAmplitude)
	}
	return nil
}

// Rope is a damped spring chain between two anchors. Point 0 and the last
// point are pinned to the anchors at the start of every update; the points
// in between carry their own position and velocity.
type Rope struct {
	ID string

	cfg      RopeConfig
	rng      *rand.Rand
	sway     *swayField
	from, to Anchor
	points   []models.Point
	velocity []models.Point
	elapsed  float64
	state    models.UnlockState
}

// NewRope creates an unconnected rope
func NewRope(cfg RopeConfig, rng *rand.Rand) (*Rope, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRand(0)
	}
	r := &Rope{
		ID:  uuid.New().String(),
		cfg: cfg,
		rng: rng,
	}
	if cfg.SwayAmplitude > 0 {
		r.sway = newSwayField(rng.Int64(), cfg.SwayAmplitude, cfg.SwayFrequency)
	}
	return r, nil
}

// Connect binds the rope to two anchors and lays the interior points on the
// straight line between them at rest
func (r *Rope) Connect(from, to Anchor) {
	r.from, r.to = from, to
	n := r.cfg.Segments + 2
	r.points = make([]models.Point, n)
	r.velocity = make([]models.Point, n)

	a, b := from.Position(), to.Position()
	last := float64(n - 1)
	for i := range r.points {
		r.points[i] = a.Lerp(b, float64(i)/last)
	}
	r.elapsed = 0
}

// Connected reports whether Connect was called
func (r *Rope) Connected() bool {
	return r.from != nil && r.to != nil
}

// Update advances the chain by dt seconds with semi-implicit Euler
func (r *Rope) Update(dt float64) {
	if !r.Connected() {
		return
	}

	n := len(r.points)
	a, b := r.from.Position(), r.to.Position()
	r.points[0] = a
	r.points[n-1] = b
	r.velocity[0] = models.Point{}
	r.velocity[n-1] = models.Point{}

	if dt <= 0 {
		return
	}
	r.elapsed += dt

	var normal models.Point
	if r.sway != nil {
		normal = perpendicular(a, b)
	}

	last := float64(n - 1)
	for i := 1; i < n-1; i++ {
		rest := a.Lerp(b, float64(i)/last)
		displacement := r.points[i].Sub(rest)
		force := displacement.Scale(-r.cfg.Stiffness).Sub(r.velocity[i].Scale(r.cfg.Damping))
		if r.sway != nil {
			force = force.Add(normal.Scale(r.sway.at(i, r.elapsed)))
		}

		r.velocity[i] = r.velocity[i].Add(force.Scale(dt / r.cfg.Mass))
		r.points[i] = r.points[i].Add(r.velocity[i].Scale(dt))
	}
}

// Excite plucks the rope: every interior point gets a velocity kick along
// the perpendicular of the anchor line with a random sign and a magnitude
// of strength ± ImpulseJitter. A non-positive strength uses the configured
// default.
func (r *Rope) Excite(strength float64) {
	if !r.Connected() {
		return
	}
	if strength <= 0 {
		strength = r.cfg.ImpulseStrength
	}

	n := len(r.points)
	normal := perpendicular(r.points[0], r.points[n-1])
	for i := 1; i < n-1; i++ {
		magnitude := strength * (1 + (r.rng.Float64()*2-1)*r.cfg.ImpulseJitter)
		if r.rng.IntN(2) == 0 {
			magnitude = -magnitude
		}
		r.velocity[i] = r.velocity[i].Add(normal.Scale(magnitude))
	}
}

// Points returns a copy of the current polyline
func (r *Rope) Points() []models.Point {
	out := make([]models.Point, len(r.points))
	copy(out, r.points)
	return out
}

// MaxDisplacement returns the largest distance of an interior point from
// its rest position on the current anchor line
func (r *Rope) MaxDisplacement() float64 {
	n := len(r.points)
	if n < 3 {
		return 0
	}
	a, b := r.points[0], r.points[n-1]
	last := float64(n - 1)
	maxDist := 0.0
	for i := 1; i < n-1; i++ {
		maxDist = math.Max(maxDist, r.points[i].Dist(a.Lerp(b, float64(i)/last)))
	}
	return maxDist
}

// State returns the visual unlock state of the rope
func (r *Rope) State() models.UnlockState {
	return r.state
}

// SetState sets the visual unlock state. It has no effect on the physics.
func (r *Rope) SetState(s models.UnlockState) {
	r.state = s
}

// Config returns the rope tuning
func (r *Rope) Config() RopeConfig {
	return r.cfg
}

// perpendicular returns the unit normal of the line a→b, or the vertical
// unit vector when a and b coincide
func perpendicular(a, b models.Point) models.Point {
	d := b.Sub(a)
	length := d.Len()
	if length == 0 {
		return models.Point{X: 0, Y: 1}
	}
	return models.Point{X: -d.Y / length, Y: d.X / length}
}
