package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/TFMV/techgraph/config"
	"github.com/TFMV/techgraph/economy"
	"github.com/TFMV/techgraph/graph"
	"github.com/TFMV/techgraph/ingest"
	"github.com/TFMV/techgraph/models"
	"github.com/spf13/cobra"
)

// sessionFlags are shared by every command that builds a session
type sessionFlags struct {
	tree     string
	unlocked []string
	seed     uint64
	balance  float64
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tree, "tree", "", "Path to a .json or .toml node table (default: built-in sample)")
	cmd.Flags().StringSliceVar(&f.unlocked, "unlocked", nil, "Comma-separated node IDs to restore as unlocked")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Layout seed (0 uses the config seed or the clock)")
	cmd.Flags().Float64Var(&f.balance, "balance", -1, "Starting balance (default from config)")
}

// apply overrides config values with the flags that were set
func (f *sessionFlags) apply(cfg *config.Config) {
	if f.tree != "" {
		cfg.Session.Tree = f.tree
	}
	if len(f.unlocked) > 0 {
		cfg.Session.Unlocked = f.unlocked
	}
	if f.seed != 0 {
		cfg.Layout.Seed = f.seed
	}
	if f.balance >= 0 {
		cfg.Session.StartBalance = f.balance
	}
}

// session bundles the controller with its collaborators
type session struct {
	tree    *models.TechTree
	wallet  *economy.Wallet
	stats   *economy.Stats
	bus     *graph.Bus
	ctrl    *graph.Controller
	changes int
}

// newSession loads the tree, builds the controller and replays the
// persisted unlock set
func newSession(cfg *config.Config) (*session, error) {
	tree := ingest.SampleTree()
	if cfg.Session.Tree != "" {
		loaded, err := ingest.LoadFile(cfg.Session.Tree)
		if err != nil {
			return nil, err
		}
		tree = loaded
	}

	s := &session{
		tree:   tree,
		wallet: economy.NewWallet(cfg.Session.StartBalance),
		stats:  economy.NewStats(cfg.Session.BaseClick),
		bus:    graph.NewBus(),
	}
	s.bus.Subscribe(func() { s.changes++ })

	logger := log.New(io.Discard, "", 0)
	if cfg.Debug {
		logger = log.Default()
	}

	ctrl, err := graph.NewController(tree, s.wallet, s.stats, s.bus,
		graph.WithLayoutConfig(cfg.Layout),
		graph.WithRopeConfig(cfg.Rope),
		graph.WithMaxFrameDelta(cfg.Session.MaxFrameDelta.Duration),
		graph.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build session: %w", err)
	}
	s.ctrl = ctrl

	if len(cfg.Session.Unlocked) > 0 {
		n := ctrl.RestoreUnlocked(cfg.Session.Unlocked)
		log.Printf("Restored %d unlocked nodes", n)
	}
	return s, nil
}

// persist stores the unlocked set and the balance in cfg and writes it to
// path, so the next session restores where this one stopped
func (s *session) persist(cfg *config.Config, path string) error {
	cfg.Session.Unlocked = s.ctrl.AllUnlockedIDs()
	cfg.Session.StartBalance = s.wallet.Balance()
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
