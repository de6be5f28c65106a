package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/TFMV/techgraph/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		flags sessionFlags
		port  int
		save  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live session over HTTP",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg := loadConfig()
			flags.apply(cfg)
			if port > 0 {
				cfg.Server.Port = port
			}

			s, err := newSession(cfg)
			if err != nil {
				Bad.Printf("  %v\n", err)
				os.Exit(1)
			}

			srv := server.New(&server.Config{
				Port:            cfg.Server.Port,
				FramesPerSecond: cfg.Session.FramesPerSecond,
			}, s.ctrl, s.wallet, s.stats)

			if err := srv.Run(ctx); err != nil {
				log.Fatalf("Server failed: %v", err)
			}
			log.Println("Server stopped")

			if save {
				if err := s.persist(cfg, configPath); err != nil {
					log.Fatalf("Save failed: %v", err)
				}
				log.Printf("Session saved to %s", configPath)
			}
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from config)")
	cmd.Flags().BoolVar(&save, "save", false, "Write the unlocked set and balance back to the config file on shutdown")
	return cmd
}
