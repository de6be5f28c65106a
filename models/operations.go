package models

import (
	"fmt"
	"math"
)

// NewNode creates a node with the given cost, effect and prerequisites
func NewNode(id string, cost float64, effect Effect, prerequisites ...string) *Node {
	prereqs := make([]string, len(prerequisites))
	copy(prereqs, prerequisites)
	return &Node{
		ID:            id,
		Name:          id,
		Cost:          cost,
		Effect:        effect,
		Prerequisites: prereqs,
		State:         Locked,
	}
}

// Position returns the current position of the node
func (n *Node) Position() Point {
	return Point{X: n.X, Y: n.Y}
}

// SetPosition sets the position of the node
func (n *Node) SetPosition(p Point) {
	n.X = p.X
	n.Y = p.Y
}

// IsRoot reports whether the node declares no prerequisites
func (n *Node) IsRoot() bool {
	return len(n.Prerequisites) == 0
}

// NewTechTree creates an empty tech tree
func NewTechTree(name string) *TechTree {
	return &TechTree{
		Name:  name,
		Nodes: []*Node{},
		byID:  make(map[string]*Node),
	}
}

// AddNode appends a node to the tree. Empty or duplicate identifiers and
// negative costs are configuration errors.
func (t *TechTree) AddNode(node *Node) error {
	if node == nil || node.ID == "" {
		return ErrEmptyID
	}
	if t.byID == nil {
		t.reindex()
	}
	if _, exists := t.byID[node.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
	}
	if node.Cost < 0 || math.IsNaN(node.Cost) || math.IsInf(node.Cost, 0) {
		return fmt.Errorf("%w: %s has cost %v", ErrNegativeCost, node.ID, node.Cost)
	}

	t.Nodes = append(t.Nodes, node)
	t.byID[node.ID] = node
	return nil
}

// MustAddNodes adds all nodes and panics on the first configuration error.
// It is meant for built-in trees and tests.
func (t *TechTree) MustAddNodes(nodes ...*Node) *TechTree {
	for _, n := range nodes {
		if err := t.AddNode(n); err != nil {
			panic(err)
		}
	}
	return t
}

// Len returns the number of nodes
func (t *TechTree) Len() int {
	return len(t.Nodes)
}

// reindex rebuilds the ID index, used when the tree was decoded directly
func (t *TechTree) reindex() {
	t.byID = make(map[string]*Node, len(t.Nodes))
	for _, n := range t.Nodes {
		if _, exists := t.byID[n.ID]; !exists {
			t.byID[n.ID] = n
		}
	}
}
