package cmd

import (
	"log"
	"os"

	"github.com/TFMV/techgraph/config"
	"github.com/spf13/cobra"
)

var version = "0.3.0"

var (
	configPath string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:     "techgraph",
	Short:   "Tech-tree layout, rope physics and unlock engine",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugMode {
			log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds)
			log.Println("Debug mode enabled")
		} else {
			log.SetFlags(log.LstdFlags)
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "techgraph.toml", "Path to the TOML config file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		layoutCmd(),
		simulateCmd(),
		serveCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file and applies the persistent flags
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		Bad.Printf("techgraph: %v\n", err)
		os.Exit(1)
	}
	if debugMode {
		cfg.Debug = true
	}
	return cfg
}
