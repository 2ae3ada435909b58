package main

import (
	"context"
	"fmt"
	"time"

	redisAdapter "github.com/aretw0/voicelink/internal/adapters/redis"
	"github.com/aretw0/voicelink/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [device-id]",
	Short: "Show device status published to Redis",
	Long: `Lists the devices whose heartbeat is current, or prints the behavior tree
of one device. Requires redis.addr to be configured.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is not configured")
		}
		mermaid, _ := cmd.Flags().GetBool("mermaid")

		store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithPrefix(cfg.Redis.Prefix))
		defer store.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			ids, err := store.List(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		}

		status, err := store.Load(ctx, args[0])
		if err != nil {
			return err
		}
		if mermaid {
			fmt.Fprint(out, graph.GenerateMermaid(status.Tree, &graph.Overlay{Leaves: true}))
			return nil
		}
		fmt.Fprintf(out, "%s (updated %s, %d steps)\n", status.DeviceID, status.UpdatedAt.Format(time.RFC3339), status.Steps)
		fmt.Fprint(out, status.Tree.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("mermaid", false, "Print the tree as a Mermaid flowchart")
}
