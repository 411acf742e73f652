package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medifleet/dispatch/app"
	"github.com/medifleet/dispatch/config"
	"github.com/medifleet/dispatch/core/sla"
	"github.com/medifleet/dispatch/infra/logger"
	"github.com/medifleet/dispatch/pkg/export"
)

var alertsFormat string

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Queue related commands",
}

var queueAlertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Scan for SLA breaches and print them",
	RunE:  runQueueAlerts,
}

func init() {
	queueAlertsCmd.Flags().StringVarP(&alertsFormat, "format", "f", "json", "output format: json or csv")
	queueCmd.AddCommand(queueAlertsCmd)
	rootCmd.AddCommand(queueCmd)
}

func runQueueAlerts(cmd *cobra.Command, args []string) error {
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
			logger.New("queue-command").Errorf("service close: %v", err)
		}
	}()

	alerts := svc.Monitor.Check(ctx)
	if alerts == nil {
		alerts = []sla.Alert{}
	}
	switch alertsFormat {
	case "csv":
		return export.WriteAlertsCSV(cmd.OutOrStdout(), alerts)
	case "json":
		return export.WriteAlertsJSON(cmd.OutOrStdout(), alerts)
	default:
		return fmt.Errorf("unknown format %s", alertsFormat)
	}
}
