package main

import (
	"os"

	"github.com/aretw0/voicelink"
	"github.com/aretw0/voicelink/internal/cli"
	"github.com/aretw0/voicelink/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the device",
	Long: `Runs the device against the configured server until interrupted. The
behavior tree is printed every time it changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		if addr, _ := cmd.Flags().GetString("diagnostics"); addr != "" {
			cfg.Diagnostics.Addr = addr
		}

		opts := cli.RunOptions{
			Config:  cfg,
			Output:  os.Stdout,
			Quiet:   quiet,
			Version: voicelink.Version,
		}
		if !quiet && tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Run(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the behavior tree")
	runCmd.Flags().String("diagnostics", "", "Serve /healthz, /state and /metrics on this address")

	// Running the device is the default action.
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
