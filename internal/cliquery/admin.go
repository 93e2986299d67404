package cliquery

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kraklabs/codeintel/internal/api"
)

var (
	adminRepoURL string
	adminBranch  string
	deleteForce  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show file/chunk/embedding/relationship counts for a repo",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFacade(func(ctx context.Context, f *api.Facade) error {
			resp, err := f.Stats(argsMap(
				"repo_url", adminRepoURL,
				"branch", adminBranch,
			))
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List every indexed repository/branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFacade(func(ctx context.Context, f *api.Facade) error {
			resp, err := f.Repos()
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

var deleteIndexCmd = &cobra.Command{
	Use:   "delete-index",
	Short: "Delete all indexed data for a repository",
	Long: `delete-index removes files, chunks, relationships, import edges,
and vectors for --repo-url, scoped to --branch if given or across every
branch otherwise. This is destructive and not reversible; without
--force the command only prints what it would delete and exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !deleteForce {
			fmt.Printf("This deletes all indexed data for %q", adminRepoURL)
			if adminBranch != "" {
				fmt.Printf(" (branch %q)", adminBranch)
			}
			fmt.Print(". Re-run with --force to proceed.\n")
			return nil
		}
		return withFacade(func(ctx context.Context, f *api.Facade) error {
			resp, err := f.DeleteIndex(adminRepoURL, argsMap("branch", adminBranch))
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{statsCmd, reposCmd, deleteIndexCmd} {
		rootCmd.AddCommand(cmd)
	}
	statsCmd.Flags().StringVar(&adminRepoURL, "repo-url", "", "repository URL (required)")
	statsCmd.Flags().StringVar(&adminBranch, "branch", "", "branch name (empty means \"main\")")

	deleteIndexCmd.Flags().StringVar(&adminRepoURL, "repo-url", "", "repository URL (required)")
	deleteIndexCmd.Flags().StringVar(&adminBranch, "branch", "", "branch name (omit to delete every branch)")
	deleteIndexCmd.Flags().BoolVar(&deleteForce, "force", false, "perform the deletion (without it only a notice is printed)")
}
