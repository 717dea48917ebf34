// Command voxelstreamd runs the streaming core headless, stepping a
// Scheduler through a scripted camera path with null render/physics
// handles, and logging periodic Stats snapshots. It exists to exercise
// and demonstrate the core without a real engine attached, the same role
// the teacher's cmd/mini-mc plays for the renderer-bound game loop.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"voxelstream/internal/telemetry"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		logLevel  string
		logPretty bool
	)

	cmd := &cobra.Command{
		Use:           "voxelstreamd",
		Short:         "Headless driver for the voxel streaming core",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			telemetry.Init(telemetry.Config{Level: logLevel, Pretty: logPretty})
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", true, "human-readable console logging instead of JSON")

	cmd.AddCommand(newRunCmd())
	return cmd
}
