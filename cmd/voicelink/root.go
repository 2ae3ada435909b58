package main

import (
	"fmt"
	"os"

	"github.com/aretw0/voicelink/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "voicelink",
	Short: "voicelink runs the network and audio behaviors of a voice device",
	Long: `voicelink attaches a voice device to the network, keeps its control
connection to the assistant server alive, and streams microphone audio and
playback once protocols are negotiated.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (.yaml, .toml, .json or .jsonc)")
	rootCmd.PersistentFlags().String("env", ".env", "Dotenv file loaded before VOICELINK_* overrides")
}

// loadConfig reads the files named by the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env")
	return config.Load(path, envFile)
}
