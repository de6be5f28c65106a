package cmd

import (
	"fmt"
	"os"

	"github.com/TFMV/techgraph/models"
	"github.com/TFMV/techgraph/render"
	"github.com/spf13/cobra"
)

func layoutCmd() *cobra.Command {
	var (
		flags  sessionFlags
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Lay out the tech tree and print node positions",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			flags.apply(cfg)

			s, err := newSession(cfg)
			if err != nil {
				Bad.Printf("  %v\n", err)
				os.Exit(1)
			}

			snap := s.ctrl.Snapshot()
			banner(s.tree.Name)
			printNodes(snap)

			if output == "" {
				return
			}
			if err := writeSnapshot(snap, format, output); err != nil {
				Bad.Printf("  %v\n", err)
				os.Exit(1)
			}
			Subtle.Printf("\n  Written to %s\n", output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write a rendering to this file")
	cmd.Flags().StringVar(&format, "format", "svg", "Rendering format: svg, ascii, json")
	return cmd
}

// writeSnapshot renders a snapshot in the given format to path
func writeSnapshot(snap *models.Snapshot, format, path string) error {
	renderer, err := render.GetRenderer(format)
	if err != nil {
		return err
	}
	output, err := renderer.Render(snap, render.NewDefaultOptions(format))
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}
	if err := os.WriteFile(path, output, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
