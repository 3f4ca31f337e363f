package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:           "coinscout",
		Short:         "Market-opportunity scanner for exchange-listed assets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Accept underscore spellings for every flag.
	root.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	root.PersistentFlags().String("config", "", "path to YAML config file")
	root.AddCommand(scanCmd())
	root.AddCommand(monitorCmd())
	return root.ExecuteContext(ctx)
}
