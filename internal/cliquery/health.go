package cliquery

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kraklabs/codeintel/internal/api"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check store reachability and the configured embedding model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFacade(func(ctx context.Context, f *api.Facade) error {
			return printJSON(f.Health(ctx))
		})
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
