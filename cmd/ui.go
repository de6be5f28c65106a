package cmd

import (
	"fmt"

	"github.com/TFMV/techgraph/models"
	"github.com/fatih/color"
)

// Terminal colors
var (
	Brand  = color.New(color.FgHiGreen, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// stateColor returns the color used to print an unlock state
func stateColor(s models.UnlockState) *color.Color {
	switch s {
	case models.Unlocked:
		return Good
	case models.Available:
		return Warn
	default:
		return Subtle
	}
}

// banner prints the techgraph banner
func banner(subtitle string) {
	fmt.Printf("%s — %s\n\n", Brand.Sprint("techgraph"), subtitle)
}

// printNodes prints one line per node with its state, cost and position
func printNodes(snap *models.Snapshot) {
	for _, n := range snap.Nodes {
		state := stateColor(n.State).Sprintf("%-9s", n.State)
		fmt.Printf("  %-16s %s %10.0f  (%7.1f, %7.1f)\n", n.ID, state, n.Cost, n.X, n.Y)
	}
}
