package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medifleet/dispatch/app"
	"github.com/medifleet/dispatch/config"
	"github.com/medifleet/dispatch/infra/logger"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the pending queue snapshot",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := context.Background()
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("status-command").Errorf("service close: %v", err)
		}
	}()

	st, err := svc.QueueStatus(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}
