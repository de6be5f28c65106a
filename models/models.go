// Package models provides data structures for the techgraph engine.
// It defines the tech-tree node table, derived edges and the views handed
// to the presentation layer.
package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrEmptyID is returned when a node without identifier is added
	ErrEmptyID = errors.New("node identifier is empty")
	// ErrDuplicateNode is returned when two nodes share an identifier
	ErrDuplicateNode = errors.New("duplicate node identifier")
	// ErrNegativeCost is returned for nodes with a negative or NaN cost
	ErrNegativeCost = errors.New("node cost must be a non-negative number")
)

// UnlockState is the per-node unlock state
type UnlockState int

const (
	Locked UnlockState = iota
	Available
	Unlocked
)

// String returns the lower-case name of the state
func (s UnlockState) String() string {
	switch s {
	case Locked:
		return "locked"
	case Available:
		return "available"
	case Unlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("UnlockState(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler
func (s UnlockState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *UnlockState) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "locked":
		*s = Locked
	case "available":
		*s = Available
	case "unlocked":
		*s = Unlocked
	default:
		return fmt.Errorf("unknown unlock state %q", string(text))
	}
	return nil
}

// EffectKind selects how an unlocked node changes game state
type EffectKind int

const (
	None          EffectKind = iota
	FlatCPC                  // flat bonus added to every click
	CPCMultiplier            // multiplier applied to click value
	FlatCPS                  // flat passive income per second
)

var effectNames = map[EffectKind]string{
	None:          "none",
	FlatCPC:       "flat_cpc",
	CPCMultiplier: "cpc_multiplier",
	FlatCPS:       "flat_cps",
}

// String returns the configuration name of the effect kind
func (k EffectKind) String() string {
	if name, ok := effectNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EffectKind(%d)", int(k))
}

// ParseEffectKind resolves a configuration name to an EffectKind
func ParseEffectKind(name string) (EffectKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return None, nil
	}
	for kind, n := range effectNames {
		if n == name {
			return kind, nil
		}
	}
	return None, fmt.Errorf("unknown effect kind %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (k EffectKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *EffectKind) UnmarshalText(text []byte) error {
	kind, err := ParseEffectKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Effect is the payload applied once when a node unlocks
type Effect struct {
	Kind   EffectKind `json:"kind" toml:"kind"`
	Amount float64    `json:"amount" toml:"amount"`
}

// Point is a 2D position or vector
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p-q
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Scale returns p multiplied by f
func (p Point) Scale(f float64) Point {
	return Point{p.X * f, p.Y * f}
}

// Len returns the euclidean length of p
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Dist returns the distance between p and q
func (p Point) Dist(q Point) float64 {
	return p.Sub(q).Len()
}

// Lerp interpolates linearly from p (t=0) to q (t=1)
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Node represents one entry of the tech tree
type Node struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Cost          float64     `json:"cost"`
	Effect        Effect      `json:"effect"`
	Prerequisites []string    `json:"prerequisites"`
	State         UnlockState `json:"state"`
	X             float64     `json:"x"`
	Y             float64     `json:"y"`
}

// Edge points from a prerequisite to its dependent. Edges are derived from
// prerequisite declarations and never stored.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// TechTree is the node table in load order
type TechTree struct {
	Name  string  `json:"name"`
	Nodes []*Node `json:"nodes"`
	byID  map[string]*Node
}
