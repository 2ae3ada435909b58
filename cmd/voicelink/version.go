package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/voicelink"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of voicelink",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "voicelink version %s\n", strings.TrimSpace(voicelink.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
