package cliquery

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kraklabs/codeintel/internal/api"
)

var (
	searchRepoURL string
	searchBranch  string
	searchQuery   string
	searchLimit   int

	hybridVectorWeight  float64
	hybridKeywordWeight float64
	keywordExactBoost   bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Semantic (vector) search over indexed chunks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFacade(func(ctx context.Context, f *api.Facade) error {
			resp, err := f.Search(ctx, argsMap(
				"repo_url", searchRepoURL,
				"branch", searchBranch,
				"query", searchQuery,
				"limit", searchLimit,
			))
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

var keywordSearchCmd = &cobra.Command{
	Use:   "keyword-search",
	Short: "FTS5/BM25 keyword search over indexed chunks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFacade(func(ctx context.Context, f *api.Facade) error {
			resp, err := f.KeywordSearch(argsMap(
				"repo_url", searchRepoURL,
				"branch", searchBranch,
				"query", searchQuery,
				"limit", searchLimit,
				"exact_match_boost", keywordExactBoost,
			))
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

var hybridSearchCmd = &cobra.Command{
	Use:   "hybrid-search",
	Short: "Reciprocal-rank-fusion of vector and keyword search",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFacade(func(ctx context.Context, f *api.Facade) error {
			req := argsMap(
				"repo_url", searchRepoURL,
				"branch", searchBranch,
				"query", searchQuery,
				"limit", searchLimit,
			)
			if hybridVectorWeight > 0 || hybridKeywordWeight > 0 {
				req["weights"] = map[string]interface{}{
					"vector":  hybridVectorWeight,
					"keyword": hybridKeywordWeight,
				}
			}
			resp, err := f.HybridSearch(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, keywordSearchCmd, hybridSearchCmd} {
		cmd.Flags().StringVar(&searchRepoURL, "repo-url", "", "repository URL to search (required)")
		cmd.Flags().StringVar(&searchBranch, "branch", "main", "branch name")
		cmd.Flags().StringVar(&searchQuery, "query", "", "search text (required)")
		cmd.Flags().IntVar(&searchLimit, "limit", api.DefaultSearchLimit, "maximum results")
		rootCmd.AddCommand(cmd)
	}

	keywordSearchCmd.Flags().BoolVar(&keywordExactBoost, "exact-match-boost", true, "boost chunks whose symbol name equals the query (case-insensitive) or shares an identifier variant with it")
	hybridSearchCmd.Flags().Float64Var(&hybridVectorWeight, "vector-weight", 0, "vector score weight (engine defaults apply when both weights are 0)")
	hybridSearchCmd.Flags().Float64Var(&hybridKeywordWeight, "keyword-weight", 0, "keyword score weight (engine defaults apply when both weights are 0)")
}
