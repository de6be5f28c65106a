package ingest

import (
	"github.com/TFMV/techgraph/models"
)

// SampleTree returns the built-in tech tree used when no file is given
func SampleTree() *models.TechTree {
	node := func(id, name string, cost float64, kind models.EffectKind, amount float64, prereqs ...string) *models.Node {
		n := models.NewNode(id, cost, models.Effect{Kind: kind, Amount: amount}, prereqs...)
		n.Name = name
		return n
	}

	return models.NewTechTree("Sample Tree").MustAddNodes(
		node("sharp_finger", "Sharp Finger", 10, models.FlatCPC, 1),
		node("steady_hand", "Steady Hand", 50, models.FlatCPC, 2, "sharp_finger"),
		node("auto_tapper", "Auto Tapper", 75, models.FlatCPS, 1, "sharp_finger"),
		node("double_tap", "Double Tap", 250, models.CPCMultiplier, 2, "steady_hand"),
		node("tap_farm", "Tap Farm", 400, models.FlatCPS, 5, "auto_tapper"),
		node("rhythm", "Rhythm", 900, models.FlatCPC, 10, "steady_hand", "auto_tapper"),
		node("overclock", "Overclock", 2500, models.CPCMultiplier, 3, "double_tap", "rhythm"),
		node("factory", "Factory", 4000, models.FlatCPS, 40, "tap_farm", "rhythm"),
		node("singularity", "Singularity", 50000, models.CPCMultiplier, 10, "overclock", "factory"),
	)
}
