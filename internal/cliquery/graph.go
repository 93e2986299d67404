package cliquery

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kraklabs/codeintel/internal/api"
)

var (
	graphRepoURL  string
	graphBranch   string
	filePath      string
	maxCycleLen   int
	hubThreshold  int
	hubLimit      int
	functionName  string
	callDirection string
	callDepth     int
	callLimit     int
)

var importTreeCmd = &cobra.Command{
	Use:   "import-tree",
	Short: "Show direct and indirect importers/imports of a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFacade(func(ctx context.Context, f *api.Facade) error {
			resp, err := f.ImportTree(filePath, argsMap(
				"repo_url", graphRepoURL,
				"branch", graphBranch,
			))
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

var circularDepsCmd = &cobra.Command{
	Use:   "circular-dependencies",
	Short: "Find import cycles in the repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFacade(func(ctx context.Context, f *api.Facade) error {
			resp, err := f.CircularDependencies(argsMap(
				"repo_url", graphRepoURL,
				"branch", graphBranch,
				"max_cycle_length", maxCycleLen,
			))
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

var hubFilesCmd = &cobra.Command{
	Use:   "hub-files",
	Short: "Find files imported by many other files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFacade(func(ctx context.Context, f *api.Facade) error {
			resp, err := f.HubFiles(argsMap(
				"repo_url", graphRepoURL,
				"branch", graphBranch,
				"threshold", hubThreshold,
				"limit", hubLimit,
			))
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

var callGraphCmd = &cobra.Command{
	Use:   "call-graph",
	Short: "Walk callers or callees of a function",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFacade(func(ctx context.Context, f *api.Facade) error {
			resp, err := f.CallGraph(functionName, argsMap(
				"repo_url", graphRepoURL,
				"branch", graphBranch,
				"direction", callDirection,
				"depth", callDepth,
				"limit", callLimit,
			))
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{importTreeCmd, circularDepsCmd, hubFilesCmd, callGraphCmd} {
		cmd.Flags().StringVar(&graphRepoURL, "repo-url", "", "repository URL (required)")
		cmd.Flags().StringVar(&graphBranch, "branch", "main", "branch name")
		rootCmd.AddCommand(cmd)
	}

	importTreeCmd.Flags().StringVar(&filePath, "file-path", "", "repo-relative file path (required)")

	circularDepsCmd.Flags().IntVar(&maxCycleLen, "max-cycle-length", api.DefaultMaxCycleLength, "maximum cycle length to report")

	hubFilesCmd.Flags().IntVar(&hubThreshold, "threshold", api.DefaultHubThreshold, "minimum importer count to qualify as a hub")
	hubFilesCmd.Flags().IntVar(&hubLimit, "limit", api.DefaultHubLimit, "maximum results")

	callGraphCmd.Flags().StringVar(&functionName, "function", "", "function name (required)")
	callGraphCmd.Flags().StringVar(&callDirection, "direction", "callees", "callers, callees, or both")
	callGraphCmd.Flags().IntVar(&callDepth, "depth", api.DefaultCallGraphDepth, "traversal depth")
	callGraphCmd.Flags().IntVar(&callLimit, "limit", api.DefaultCallGraphLimit, "maximum nodes")
}
