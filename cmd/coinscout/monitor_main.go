package main

import (
	"github.com/spf13/cobra"

	"github.com/coinscout/coinscout/internal/config"
	"github.com/coinscout/coinscout/internal/telemetry"
)

func monitorCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Serve health and Prometheus metrics endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Monitor.Addr = addr
			}
			return telemetry.Serve(cfg.Monitor.Addr, nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
