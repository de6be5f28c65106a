package graph

import (
	"reflect"
	"testing"
	"time"

	"github.com/TFMV/techgraph/economy"
	"github.com/TFMV/techgraph/models"
	"github.com/TFMV/techgraph/physics"
)

// recordingEffects counts effect applications
type recordingEffects struct {
	flat, mult, rate []float64
}

func (r *recordingEffects) ApplyFlatCpcBonus(v float64)  { r.flat = append(r.flat, v) }
func (r *recordingEffects) ApplyCpcMultiplier(v float64) { r.mult = append(r.mult, v) }
func (r *recordingEffects) ApplyFlatCpsBonus(v float64)  { r.rate = append(r.rate, v) }

func (r *recordingEffects) total() int { return len(r.flat) + len(r.mult) + len(r.rate) }

type fixture struct {
	ctrl    *Controller
	wallet  *economy.Wallet
	effects *recordingEffects
	changes int
}

func newFixture(t *testing.T, balance float64, nodes ...*models.Node) *fixture {
	t.Helper()
	tree := models.NewTechTree("test")
	for _, n := range nodes {
		if err := tree.AddNode(n); err != nil {
			t.Fatalf("AddNode failed: %v", err)
		}
	}

	f := &fixture{wallet: economy.NewWallet(balance), effects: &recordingEffects{}}
	cfg := physics.DefaultLayoutConfig()
	cfg.Width, cfg.Height = 800, 600

	ctrl, err := NewController(tree, f.wallet, f.effects, NotifierFunc(func() { f.changes++ }),
		WithLayoutConfig(cfg),
		WithRand(physics.NewRand(42)),
	)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	f.ctrl = ctrl
	return f
}

func abTree() []*models.Node {
	return []*models.Node{
		models.NewNode("A", 10, models.Effect{Kind: models.FlatCPC, Amount: 1}),
		models.NewNode("B", 50, models.Effect{Kind: models.CPCMultiplier, Amount: 2}, "A"),
	}
}

func diamondTree() []*models.Node {
	return []*models.Node{
		models.NewNode("root", 1, models.Effect{Kind: models.FlatCPC, Amount: 1}),
		models.NewNode("left", 2, models.Effect{Kind: models.FlatCPS, Amount: 1}, "root"),
		models.NewNode("right", 3, models.Effect{Kind: models.CPCMultiplier, Amount: 2}, "root"),
		models.NewNode("top", 4, models.Effect{Kind: models.FlatCPC, Amount: 5}, "left", "right"),
		models.NewNode("orphan", 1, models.Effect{}, "root", "missing"),
	}
}

func assertState(t *testing.T, c *Controller, id string, want models.UnlockState) {
	t.Helper()
	got, ok := c.State(id)
	if !ok {
		t.Fatalf("node %s not found", id)
	}
	if got != want {
		t.Errorf("node %s: expected %v, got %v", id, want, got)
	}
}

func TestUnlockScenario(t *testing.T) {
	f := newFixture(t, 10, abTree()...)

	assertState(t, f.ctrl, "A", models.Available)
	assertState(t, f.ctrl, "B", models.Locked)

	if !f.ctrl.AttemptUnlock("A") {
		t.Fatal("expected unlock of A to succeed")
	}
	if b := f.wallet.Balance(); b != 0 {
		t.Errorf("expected balance 0, got %v", b)
	}
	assertState(t, f.ctrl, "A", models.Unlocked)
	assertState(t, f.ctrl, "B", models.Available)

	if f.ctrl.AttemptUnlock("B") {
		t.Fatal("expected unlock of B to fail with balance 0")
	}
	assertState(t, f.ctrl, "B", models.Available)
	if b := f.wallet.Balance(); b != 0 {
		t.Errorf("failed unlock changed balance to %v", b)
	}

	if !reflect.DeepEqual(f.effects.flat, []float64{1}) || len(f.effects.mult) != 0 {
		t.Errorf("unexpected effects: %+v", f.effects)
	}
	if f.changes != 1 {
		t.Errorf("expected 1 notification, got %d", f.changes)
	}
}

func TestAttemptUnlockAtomicSpend(t *testing.T) {
	f := newFixture(t, 9, abTree()...)

	if f.ctrl.AttemptUnlock("A") {
		t.Fatal("unlock should fail when cost exceeds balance")
	}
	if b := f.wallet.Balance(); b != 9 {
		t.Errorf("balance changed to %v", b)
	}
	assertState(t, f.ctrl, "A", models.Available)
	if f.effects.total() != 0 || f.changes != 0 {
		t.Errorf("failed unlock had side effects: effects=%d changes=%d", f.effects.total(), f.changes)
	}
}

func TestAttemptUnlockRejectsWrongState(t *testing.T) {
	f := newFixture(t, 1000, abTree()...)

	if f.ctrl.AttemptUnlock("B") {
		t.Error("locked node must not unlock")
	}
	if f.ctrl.AttemptUnlock("nope") {
		t.Error("unknown node must not unlock")
	}
	if !f.ctrl.AttemptUnlock("A") {
		t.Fatal("A should unlock")
	}
	if f.ctrl.AttemptUnlock("A") {
		t.Error("unlocked node must not unlock twice")
	}
	if b := f.wallet.Balance(); b != 990 {
		t.Errorf("expected balance 990, got %v", b)
	}
	if len(f.effects.flat) != 1 {
		t.Errorf("effect applied %d times", len(f.effects.flat))
	}
}

func TestUnlockedIsMonotonic(t *testing.T) {
	f := newFixture(t, 1000, diamondTree()...)

	f.ctrl.AttemptUnlock("root")
	f.ctrl.AttemptUnlock("left")

	f.ctrl.Reevaluate()
	f.ctrl.RestoreUnlocked([]string{"right"})
	f.ctrl.AttemptUnlock("root")
	f.ctrl.Tick(0.5)

	for _, id := range []string{"root", "left", "right"} {
		if !f.ctrl.IsUnlocked(id) {
			t.Errorf("%s reverted from Unlocked", id)
		}
	}
}

func TestCanUnlockMatchesPrerequisites(t *testing.T) {
	f := newFixture(t, 1000, diamondTree()...)
	tree := f.ctrl.Tree()

	check := func() {
		t.Helper()
		for _, node := range tree.Nodes {
			all := true
			for _, p := range node.Prerequisites {
				if !f.ctrl.IsUnlocked(p) {
					all = false
				}
			}
			want := all && !f.ctrl.IsUnlocked(node.ID)
			if got := f.ctrl.CanUnlock(node.ID); got != want {
				t.Errorf("CanUnlock(%s) = %v, expected %v", node.ID, got, want)
			}
		}
	}

	check()
	for _, id := range []string{"root", "right", "left", "top", "orphan"} {
		f.ctrl.AttemptUnlock(id)
		check()
	}
}

func TestDanglingPrerequisiteLocksForever(t *testing.T) {
	f := newFixture(t, 1000, diamondTree()...)

	f.ctrl.RestoreUnlocked([]string{"root", "left", "right", "top"})
	assertState(t, f.ctrl, "orphan", models.Locked)
	if f.ctrl.AttemptUnlock("orphan") {
		t.Error("node with a dangling prerequisite must stay locked")
	}
}

func TestReevaluateIsIdempotent(t *testing.T) {
	f := newFixture(t, 1000, diamondTree()...)
	f.ctrl.AttemptUnlock("root")

	states := func() map[string]models.UnlockState {
		out := map[string]models.UnlockState{}
		for _, n := range f.ctrl.Tree().Nodes {
			out[n.ID] = n.State
		}
		return out
	}

	first := f.ctrl.Reevaluate()
	s1 := states()
	second := f.ctrl.Reevaluate()
	s2 := states()

	if first != 0 || second != 0 {
		t.Errorf("expected no changes, got %d then %d", first, second)
	}
	if !reflect.DeepEqual(s1, s2) {
		t.Errorf("states differ: %v vs %v", s1, s2)
	}
}

func TestRestoreUnlocked(t *testing.T) {
	f := newFixture(t, 0, diamondTree()...)

	n := f.ctrl.RestoreUnlocked([]string{"left", "ghost", "root", "left"})
	if n != 2 {
		t.Errorf("expected 2 restored, got %d", n)
	}
	if b := f.wallet.Balance(); b != 0 {
		t.Errorf("restore must not touch the ledger, balance %v", b)
	}
	if len(f.effects.flat) != 1 || len(f.effects.rate) != 1 {
		t.Errorf("expected one flat and one rate effect, got %+v", f.effects)
	}
	if f.changes != 1 {
		t.Errorf("expected a single notification, got %d", f.changes)
	}

	// top still waits on right
	assertState(t, f.ctrl, "right", models.Available)
	assertState(t, f.ctrl, "top", models.Locked)

	if want := []string{"left", "root"}; !reflect.DeepEqual(f.ctrl.AllUnlockedIDs(), want) {
		t.Errorf("expected %v, got %v", want, f.ctrl.AllUnlockedIDs())
	}
}

func TestUnlockExcitesIncidentRopes(t *testing.T) {
	f := newFixture(t, 1000, diamondTree()...)

	if got := len(f.ctrl.RopesFor("root")); got != 3 {
		t.Fatalf("expected 3 ropes at root, got %d", got)
	}
	if got := len(f.ctrl.Ropes()); got != 5 {
		t.Fatalf("expected 5 ropes, got %d", got)
	}

	f.ctrl.AttemptUnlock("root")
	f.ctrl.Tick(1.0 / 60)

	for _, rope := range f.ctrl.RopesFor("root") {
		if rope.MaxDisplacement() == 0 {
			t.Errorf("rope %s at root was not excited", rope.ID)
		}
	}
	for _, rope := range f.ctrl.RopesFor("top") {
		if rope.MaxDisplacement() != 0 {
			t.Errorf("rope %s at top should be at rest", rope.ID)
		}
	}
}

func TestRopeStateMirrorsTarget(t *testing.T) {
	f := newFixture(t, 1000, diamondTree()...)
	f.ctrl.AttemptUnlock("root")
	f.ctrl.AttemptUnlock("left")

	snap := f.ctrl.Snapshot()
	for _, rope := range snap.Ropes {
		target, _ := snap.FindNode(rope.Target)
		if rope.State != target.State {
			t.Errorf("rope %s->%s state %v, target %v", rope.Source, rope.Target, rope.State, target.State)
		}
	}
}

func TestRopesFollowLayoutAndAnchors(t *testing.T) {
	f := newFixture(t, 0, diamondTree()...)
	tree := f.ctrl.Tree()

	for _, node := range tree.Nodes {
		if node.X < 0 || node.X > 800 || node.Y < 0 || node.Y > 600 {
			t.Errorf("%s outside bounds at (%v,%v)", node.ID, node.X, node.Y)
		}
	}

	root, _ := tree.FindNode("root")
	root.SetPosition(root.Position().Add(models.Point{X: 15, Y: -20}))
	f.ctrl.Tick(1.0 / 60)

	for _, rope := range f.ctrl.RopesFor("root") {
		points := rope.Points()
		if points[0] != root.Position() {
			t.Errorf("rope %s first point %v, expected %v", rope.ID, points[0], root.Position())
		}
	}
}

func TestFrameUsesWallClockDelta(t *testing.T) {
	f := newFixture(t, 0, abTree()...)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if dt := f.ctrl.Frame(start); dt != 0 {
		t.Errorf("first frame dt = %v, expected 0", dt)
	}
	if dt := f.ctrl.Frame(start.Add(20 * time.Millisecond)); dt != 0.02 {
		t.Errorf("expected dt 0.02, got %v", dt)
	}
	if dt := f.ctrl.Frame(start.Add(5 * time.Second)); dt != DefaultMaxFrameDelta.Seconds() {
		t.Errorf("expected clamped dt %v, got %v", DefaultMaxFrameDelta.Seconds(), dt)
	}
	if dt := f.ctrl.Frame(start); dt != 0 {
		t.Errorf("backwards clock should give dt 0, got %v", dt)
	}
}

func TestAffordable(t *testing.T) {
	f := newFixture(t, 5, abTree()...)

	if f.ctrl.Affordable("A") {
		t.Error("A costs 10 with balance 5")
	}
	f.wallet.Earn(5)
	if !f.ctrl.Affordable("A") {
		t.Error("A should be affordable at balance 10")
	}
	if f.ctrl.Affordable("B") {
		t.Error("B is locked")
	}
}

func TestNewControllerErrors(t *testing.T) {
	tree := models.NewTechTree("t").MustAddNodes(abTree()...)

	if _, err := NewController(nil, economy.NewWallet(0), nil, nil); err == nil {
		t.Error("expected error for nil tree")
	}
	if _, err := NewController(tree, nil, nil, nil); err == nil {
		t.Error("expected error for nil ledger")
	}

	bad := physics.DefaultRopeConfig()
	bad.Mass = 0
	if _, err := NewController(tree, economy.NewWallet(0), nil, nil, WithRopeConfig(bad)); err == nil {
		t.Error("expected error for zero rope mass")
	}
}

func TestEmptyTree(t *testing.T) {
	f := newFixture(t, 0)

	if len(f.ctrl.Ropes()) != 0 || len(f.ctrl.AllUnlockedIDs()) != 0 {
		t.Error("empty tree should have no ropes and no unlocked nodes")
	}
	f.ctrl.Tick(1.0 / 60)
	if snap := f.ctrl.Snapshot(); len(snap.Nodes) != 0 {
		t.Errorf("expected empty snapshot, got %d nodes", len(snap.Nodes))
	}
}

func TestBusFansOut(t *testing.T) {
	bus := NewBus()
	var calls []string
	bus.Subscribe(func() { calls = append(calls, "audio") })
	bus.Subscribe(func() { calls = append(calls, "ui") })

	bus.GraphChanged()

	if !reflect.DeepEqual(calls, []string{"audio", "ui"}) {
		t.Errorf("unexpected calls %v", calls)
	}
}
