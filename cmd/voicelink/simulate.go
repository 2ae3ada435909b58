package main

import (
	"os"
	"time"

	"github.com/aretw0/voicelink/internal/cli"
	"github.com/aretw0/voicelink/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted session on in-memory transports",
	Long: `Brings a device up against a simulated server: the network attaches,
protocols are negotiated, audio capture starts, a clip is played, the
microphone is muted and unmuted, and the control connection drops and
recovers. No network access is needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		tick, _ := cmd.Flags().GetDuration("tick")
		pretty, _ := cmd.Flags().GetBool("pretty")

		opts := cli.SimulateOptions{
			Config: cfg,
			Output: os.Stdout,
			Tick:   tick,
		}
		if pretty && tui.IsTerminal(os.Stdout) {
			opts.Renderer = tui.TreeRenderer()
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Simulate(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Duration("tick", 200*time.Millisecond, "Pause between steps")
	simulateCmd.Flags().Bool("pretty", false, "Render trees with glamour when attached to a terminal")
}
