package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/voicelink/internal/config"
	"github.com/aretw0/voicelink/internal/presentation/tui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Prints the configuration after defaults, the configuration file, the
dotenv file and VOICELINK_* overrides are applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		text, err := encodeConfig(cfg, format)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if f, ok := out.(*os.File); ok && tui.IsTerminal(f) {
			if rendered, err := tui.NewRenderer()(tui.CodeBlock(format, text)); err == nil {
				text = rendered
			}
		}
		fmt.Fprint(out, text)
		return nil
	},
}

func encodeConfig(cfg config.Config, format string) (string, error) {
	var buf bytes.Buffer
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return "", err
		}
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return "", err
		}
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: %q", config.ErrUnsupportedFormat, format)
	}
	return buf.String(), nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringP("format", "f", "yaml", "Output format: yaml, toml or json")
}
