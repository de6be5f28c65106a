package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/TFMV/techgraph/economy"
	"github.com/TFMV/techgraph/models"
	"github.com/spf13/cobra"
)

// simOptions controls a headless session
type simOptions struct {
	Seconds         float64
	ClicksPerSecond float64
	FramesPerSecond int
}

// simResult summarizes a headless session
type simResult struct {
	Frames    int
	Clicks    int
	Purchases []string
	Balance   float64
	Earned    float64
	Spent     float64
}

// runSimulation plays the session with an auto-clicker that buys the
// cheapest affordable node whenever it can. Frames use a fixed dt.
func runSimulation(s *session, opts simOptions) simResult {
	var res simResult
	if opts.FramesPerSecond <= 0 {
		opts.FramesPerSecond = 60
	}
	dt := 1 / float64(opts.FramesPerSecond)
	frames := int(opts.Seconds * float64(opts.FramesPerSecond))

	clickBudget := 0.0
	for f := 0; f < frames; f++ {
		s.ctrl.Tick(dt)

		clickBudget += opts.ClicksPerSecond * dt
		for clickBudget >= 1 {
			economy.Click(s.wallet, s.stats)
			clickBudget--
			res.Clicks++
		}
		economy.Accrue(s.wallet, s.stats, dt)
		s.ctrl.Reevaluate()

		for {
			id, ok := cheapestAffordable(s)
			if !ok || !s.ctrl.AttemptUnlock(id) {
				break
			}
			res.Purchases = append(res.Purchases, id)
		}
		res.Frames++
	}

	res.Balance = s.wallet.Balance()
	res.Earned, res.Spent = s.wallet.Totals()
	return res
}

// cheapestAffordable returns the affordable node with the lowest cost,
// ties broken by load order
func cheapestAffordable(s *session) (string, bool) {
	var best *models.Node
	for _, n := range s.tree.Nodes {
		if !s.ctrl.Affordable(n.ID) {
			continue
		}
		if best == nil || n.Cost < best.Cost {
			best = n
		}
	}
	if best == nil {
		return "", false
	}
	return best.ID, true
}

func simulateCmd() *cobra.Command {
	var (
		flags  sessionFlags
		opts   simOptions
		output string
		format string
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a headless session with an auto-clicker",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			flags.apply(cfg)
			if opts.FramesPerSecond <= 0 {
				opts.FramesPerSecond = cfg.Session.FramesPerSecond
			}

			s, err := newSession(cfg)
			if err != nil {
				Bad.Printf("  %v\n", err)
				os.Exit(1)
			}

			banner(fmt.Sprintf("simulating %.0fs of %s", opts.Seconds, s.tree.Name))
			res := runSimulation(s, opts)

			fmt.Printf("  %s  %d\n", Brand.Sprintf("%-12s", "Frames"), res.Frames)
			fmt.Printf("  %s  %d\n", Brand.Sprintf("%-12s", "Clicks"), res.Clicks)
			fmt.Printf("  %s  %.0f\n", Brand.Sprintf("%-12s", "Earned"), res.Earned)
			fmt.Printf("  %s  %.0f\n", Brand.Sprintf("%-12s", "Spent"), res.Spent)
			fmt.Printf("  %s  %.0f\n", Brand.Sprintf("%-12s", "Balance"), res.Balance)
			fmt.Printf("  %s  %d\n", Brand.Sprintf("%-12s", "Changes"), s.changes)
			fmt.Println()
			if len(res.Purchases) > 0 {
				fmt.Printf("  Bought: %s\n\n", strings.Join(res.Purchases, " → "))
			}
			printNodes(s.ctrl.Snapshot())
			fmt.Printf("\n  %s %s\n", Subtle.Sprint("Unlocked:"), strings.Join(s.ctrl.AllUnlockedIDs(), ","))

			if output != "" {
				if err := writeSnapshot(s.ctrl.Snapshot(), format, output); err != nil {
					Bad.Printf("  %v\n", err)
					os.Exit(1)
				}
				Subtle.Printf("  Written to %s\n", output)
			}

			if save {
				if err := s.persist(cfg, configPath); err != nil {
					Bad.Printf("  %v\n", err)
					os.Exit(1)
				}
				Subtle.Printf("  Session saved to %s\n", configPath)
			}
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&opts.Seconds, "seconds", 120, "Simulated session length in seconds")
	cmd.Flags().Float64Var(&opts.ClicksPerSecond, "cps", 5, "Auto-clicker clicks per second")
	cmd.Flags().IntVar(&opts.FramesPerSecond, "fps", 0, "Simulation frames per second (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write a rendering of the final frame to this file")
	cmd.Flags().StringVar(&format, "format", "svg", "Rendering format: svg, ascii, json")
	cmd.Flags().BoolVar(&save, "save", false, "Write the unlocked set and balance back to the config file")
	return cmd
}
