package physics

import (
	"fmt"
	"math"
	"testing"

	"github.com/TFMV/techgraph/models"
)

func chainTree(n int) *models.TechTree {
	tree := models.NewTechTree("chain")
	for i := 0; i < n; i++ {
		var prereqs []string
		if i > 0 {
			prereqs = []string{fmt.Sprintf("n%d", i-1)}
		}
		tree.MustAddNodes(models.NewNode(fmt.Sprintf("n%d", i), 1, models.Effect{}, prereqs...))
	}
	return tree
}

func testLayoutConfig() LayoutConfig {
	cfg := DefaultLayoutConfig()
	cfg.Width = 800
	cfg.Height = 600
	return cfg
}

func TestLayoutEmptyTree(t *testing.T) {
	layout := NewForceDirectedLayout(testLayoutConfig(), NewRand(1))
	layout.Initialize(models.NewTechTree("empty"))

	if !layout.Step() {
		t.Error("Step on an empty tree should report done")
	}
	if got := layout.Iterations(); got != 0 {
		t.Errorf("expected no iterations, got %d", got)
	}
	if got := len(layout.Positions()); got != 0 {
		t.Errorf("expected empty mapping, got %d entries", got)
	}
}

func TestLayoutRunsFixedIterations(t *testing.T) {
	cfg := testLayoutConfig()
	cfg.Iterations = 37
	layout := NewForceDirectedLayout(cfg, NewRand(7))

	Run(layout, chainTree(5))

	if got := layout.Iterations(); got != 37 {
		t.Errorf("expected 37 iterations, got %d", got)
	}
}

func edgelessTree(n int) *models.TechTree {
	tree := models.NewTechTree("edgeless")
	for i := 0; i < n; i++ {
		tree.MustAddNodes(models.NewNode(fmt.Sprintf("n%d", i), 1, models.Effect{}))
	}
	return tree
}

func binaryTree(n int) *models.TechTree {
	tree := models.NewTechTree("binary")
	for i := 0; i < n; i++ {
		var prereqs []string
		if i > 0 {
			prereqs = []string{fmt.Sprintf("n%d", (i-1)/2)}
		}
		tree.MustAddNodes(models.NewNode(fmt.Sprintf("n%d", i), 1, models.Effect{}, prereqs...))
	}
	return tree
}

func TestLayoutBoundedAndSeparated(t *testing.T) {
	tests := []struct {
		name  string
		build func() *models.TechTree
		cfg   LayoutConfig
	}{
		{"chain of 8", func() *models.TechTree { return chainTree(8) }, testLayoutConfig()},
		{"edgeless 20", func() *models.TechTree { return edgelessTree(20) }, DefaultLayoutConfig()},
		{"edgeless 40", func() *models.TechTree { return edgelessTree(40) }, DefaultLayoutConfig()},
		{"edgeless 80", func() *models.TechTree { return edgelessTree(80) }, DefaultLayoutConfig()},
		{"binary 30", func() *models.TechTree { return binaryTree(30) }, DefaultLayoutConfig()},
		{"binary 40", func() *models.TechTree { return binaryTree(40) }, DefaultLayoutConfig()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := uint64(1); seed <= 20; seed++ {
				tree := tt.build()
				Run(NewForceDirectedLayout(tt.cfg, NewRand(seed)), tree)

				seen := make(map[models.Point]string, tree.Len())
				for _, node := range tree.Nodes {
					if node.X < 0 || node.X > tt.cfg.Width || node.Y < 0 || node.Y > tt.cfg.Height {
						t.Fatalf("seed %d: %s at (%v,%v) outside %vx%v", seed, node.ID, node.X, node.Y, tt.cfg.Width, tt.cfg.Height)
					}
					if other, ok := seen[node.Position()]; ok {
						t.Fatalf("seed %d: %s and %s coincide at %v", seed, other, node.ID, node.Position())
					}
					seen[node.Position()] = node.ID
				}
			}
		})
	}
}

func TestLayoutSeparatesCoincidentPair(t *testing.T) {
	cfg := testLayoutConfig()
	cfg.Iterations = 1
	layout := NewForceDirectedLayout(cfg, NewRand(4))
	tree := edgelessTree(2)
	layout.Initialize(tree)

	// both pinned into the same corner
	for i := range layout.positions {
		layout.positions[i] = models.Point{X: 0, Y: cfg.Height}
	}
	layout.Step()
	layout.Apply(tree)

	a, b := tree.Nodes[0].Position(), tree.Nodes[1].Position()
	if a == b {
		t.Fatalf("nodes still coincide at %v", a)
	}
	for _, p := range []models.Point{a, b} {
		if p.X < 0 || p.X > cfg.Width || p.Y < 0 || p.Y > cfg.Height {
			t.Errorf("%v outside bounds", p)
		}
	}
}

func TestLayoutPullsConnectedNodesTogether(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		tree := chainTree(8)
		Run(NewForceDirectedLayout(testLayoutConfig(), NewRand(seed)), tree)

		edges := tree.Edges()
		edgeSum := 0.0
		for _, e := range edges {
			a, _ := tree.FindNode(e.Source)
			b, _ := tree.FindNode(e.Target)
			edgeSum += a.Position().Dist(b.Position())
		}

		pairSum, pairs := 0.0, 0
		for i := 0; i < len(tree.Nodes); i++ {
			for j := i + 1; j < len(tree.Nodes); j++ {
				pairSum += tree.Nodes[i].Position().Dist(tree.Nodes[j].Position())
				pairs++
			}
		}

		meanEdge := edgeSum / float64(len(edges))
		meanPair := pairSum / float64(pairs)
		if meanEdge >= meanPair {
			t.Errorf("seed %d: mean edge length %.1f not below mean pairwise distance %.1f", seed, meanEdge, meanPair)
		}
	}
}

func TestLayoutReproducibleForSeed(t *testing.T) {
	first := NewForceDirectedLayout(testLayoutConfig(), NewRand(99))
	first.Initialize(chainTree(6))
	for !first.Step() {
	}

	second := NewForceDirectedLayout(testLayoutConfig(), NewRand(99))
	second.Initialize(chainTree(6))
	for !second.Step() {
	}

	a, b := first.Positions(), second.Positions()
	for id, p := range a {
		if b[id] != p {
			t.Errorf("%s: %v != %v", id, p, b[id])
		}
	}
}

func TestLayoutToleratesSelfAndDuplicateEdges(t *testing.T) {
	tree := models.NewTechTree("loops").MustAddNodes(
		models.NewNode("A", 1, models.Effect{}, "A"),
		models.NewNode("B", 1, models.Effect{}, "A", "A"),
		models.NewNode("C", 1, models.Effect{}, "B"),
	)
	cfg := testLayoutConfig()
	Run(NewForceDirectedLayout(cfg, NewRand(3)), tree)

	for _, n := range tree.Nodes {
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			t.Fatalf("%s has NaN position", n.ID)
		}
	}
}

func TestLayoutSingleNodeStaysInside(t *testing.T) {
	cfg := testLayoutConfig()
	tree := models.NewTechTree("one").MustAddNodes(models.NewNode("solo", 1, models.Effect{}))
	Run(NewForceDirectedLayout(cfg, NewRand(5)), tree)

	n := tree.Nodes[0]
	if n.X < cfg.Width*0.1 || n.X > cfg.Width*0.9 || n.Y < cfg.Height*0.1 || n.Y > cfg.Height*0.9 {
		t.Errorf("a lone node feels no force and should stay at its initial spot, got (%v,%v)", n.X, n.Y)
	}
}
