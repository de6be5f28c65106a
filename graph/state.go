package graph

import (
	"github.com/TFMV/techgraph/models"
)

// derive computes the Available/Locked status of a node that is not yet
// unlocked. A prerequisite that names no known node never becomes Unlocked,
// so it keeps its dependent Locked for good.
func (c *Controller) derive(node *models.Node) models.UnlockState {
	for _, id := range node.Prerequisites {
		prereq, ok := c.tree.FindNode(id)
		if !ok || prereq.State != models.Unlocked {
			return models.Locked
		}
	}
	return models.Available
}

// reevaluate re-derives every node that is not Unlocked and refreshes the
// visual state of the ropes. It returns the number of nodes that changed.
func (c *Controller) reevaluate() int {
	changed := 0
	for _, node := range c.tree.Nodes {
		if node.State == models.Unlocked {
			continue
		}
		if next := c.derive(node); next != node.State {
			node.State = next
			changed++
		}
	}
	for i, rope := range c.ropes {
		if target, ok := c.tree.FindNode(c.edges[i].Target); ok {
			rope.SetState(target.State)
		}
	}
	return changed
}

// Reevaluate runs the re-evaluation pass over all nodes. Hosts call it after
// anything outside the controller may have changed, such as the ledger.
// Running it twice in a row gives the same states.
func (c *Controller) Reevaluate() int {
	return c.reevaluate()
}

// State returns the unlock state of a node
func (c *Controller) State(id string) (models.UnlockState, bool) {
	node, ok := c.tree.FindNode(id)
	if !ok {
		return models.Locked, false
	}
	return node.State, true
}

// IsUnlocked reports whether a node is unlocked. Unlocked never reverts.
func (c *Controller) IsUnlocked(id string) bool {
	node, ok := c.tree.FindNode(id)
	return ok && node.State == models.Unlocked
}

// CanUnlock reports whether every prerequisite of the node is unlocked and
// the node itself is not
func (c *Controller) CanUnlock(id string) bool {
	node, ok := c.tree.FindNode(id)
	if !ok || node.State == models.Unlocked {
		return false
	}
	return c.derive(node) == models.Available
}

// Affordable reports whether the node can be unlocked and the ledger holds
// enough to pay for it right now
func (c *Controller) Affordable(id string) bool {
	if !c.CanUnlock(id) {
		return false
	}
	node, _ := c.tree.FindNode(id)
	return c.ledger.Balance() >= node.Cost
}

// AttemptUnlock spends the node's cost and unlocks it. It returns false and
// changes nothing when the node is unknown, not Available, or the ledger
// refuses the spend. On success the effect is applied once, the graph is
// re-evaluated, the node's ropes are excited and listeners are notified.
func (c *Controller) AttemptUnlock(id string) bool {
	node, ok := c.tree.FindNode(id)
	if !ok || !c.CanUnlock(id) {
		return false
	}
	if !c.ledger.TrySpend(node.Cost) {
		return false
	}

	node.State = models.Unlocked
	c.applyEffect(node)
	c.reevaluate()

	for _, rope := range c.incident[id] {
		rope.Excite(0)
	}

	c.logger.Printf("unlocked %s for %.2f (balance %.2f)", id, node.Cost, c.ledger.Balance())
	c.notifier.GraphChanged()
	return true
}

// RestoreUnlocked replays a persisted unlock set. Each known node that is
// not yet unlocked gets its effect applied and is set Unlocked without any
// prerequisite or currency check. Unknown identifiers are skipped. It
// returns the number of nodes restored.
func (c *Controller) RestoreUnlocked(ids []string) int {
	restored := 0
	for _, id := range ids {
		node, ok := c.tree.FindNode(id)
		if !ok {
			c.logger.Printf("restore: skipping unknown node %q", id)
			continue
		}
		if node.State == models.Unlocked {
			continue
		}
		c.applyEffect(node)
		node.State = models.Unlocked
		restored++
	}

	c.reevaluate()
	c.logger.Printf("restored %d of %d unlocked nodes", restored, len(ids))
	c.notifier.GraphChanged()
	return restored
}

func (c *Controller) applyEffect(node *models.Node) {
	switch node.Effect.Kind {
	case models.FlatCPC:
		c.effects.ApplyFlatCpcBonus(node.Effect.Amount)
	case models.CPCMultiplier:
		c.effects.ApplyCpcMultiplier(node.Effect.Amount)
	case models.FlatCPS:
		c.effects.ApplyFlatCpsBonus(node.Effect.Amount)
	}
}
