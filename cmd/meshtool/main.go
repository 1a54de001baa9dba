// meshtool is a CLI utility for inspecting mesh folders without opening a window.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshview/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:   "meshtool",
		Short: "Inspect mesh folders the way meshview sees them",
		Long: `meshtool lists the meshes meshview would preview for a folder and
reports what loading a single mesh produces.

Examples:
  meshtool list ./models
  meshtool list ./models --pattern "*.OBJ"
  meshtool info ./models cars/truck.obj`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if debug {
				level = "debug"
			}
			if err := logger.Init(level, ""); err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(newListCmd())
	root.AddCommand(newInfoCmd())
	return root
}
