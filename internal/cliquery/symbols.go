package cliquery

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kraklabs/codeintel/internal/api"
)

var (
	symbolRepoURL        string
	symbolBranch         string
	symbolName           string
	symbolLimit          int
	definitionsReexports bool
)

var definitionsCmd = &cobra.Command{
	Use:   "definitions",
	Short: "Find where a symbol is defined",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFacade(func(ctx context.Context, f *api.Facade) error {
			resp, err := f.Definitions(symbolName, argsMap(
				"repo_url", symbolRepoURL,
				"branch", symbolBranch,
				"limit", symbolLimit,
				"include_reexports", definitionsReexports,
			))
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

var usagesCmd = &cobra.Command{
	Use:   "usages",
	Short: "Find where a symbol is used",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFacade(func(ctx context.Context, f *api.Facade) error {
			resp, err := f.Usages(symbolName, argsMap(
				"repo_url", symbolRepoURL,
				"branch", symbolBranch,
				"limit", symbolLimit,
			))
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{definitionsCmd, usagesCmd} {
		cmd.Flags().StringVar(&symbolRepoURL, "repo-url", "", "repository URL (required)")
		cmd.Flags().StringVar(&symbolBranch, "branch", "main", "branch name")
		cmd.Flags().StringVar(&symbolName, "symbol", "", "symbol name (required)")
		cmd.Flags().IntVar(&symbolLimit, "limit", api.DefaultDefinitionsLimit, "maximum results")
		rootCmd.AddCommand(cmd)
	}
	definitionsCmd.Flags().BoolVar(&definitionsReexports, "include-reexports", true, "include re-exported definitions")
}
