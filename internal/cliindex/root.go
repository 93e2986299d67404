// Package cliindex implements the cortex-index command tree: full,
// incremental, and watch modes over the indexing orchestrator (C10).
// Structured after teacher's internal/cli root.go/global_loader.go:
// a cobra root command, an optional YAML config file, and
// viper.AutomaticEnv() so every setting can also be supplied as an
// environment variable, the contract orchestrator.LoadOptions reads.
package cliindex

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool

	flagDatabaseURL    string
	flagRepoPath       string
	flagRepoURL        string
	flagRepoBranch     string
	flagEmbeddingModel string
)

// configEnvKeys are the environment variables orchestrator.LoadOptions
// binds, in the order a config file's top-level keys (lowercased) are
// checked against them.
var configEnvKeys = []string{
	"DATABASE_URL", "REPO_PATH", "REPO_URL", "REPO_BRANCH",
	"EMBEDDING_MODEL", "BASE_REF", "CHANGED_FILES",
	"NESTED_FUNCTION_THRESHOLD", "FALLBACK_MAX_LINES",
	"FALLBACK_OVERLAP_LINES", "EMBED_BATCH",
}

var rootCmd = &cobra.Command{
	Use:   "cortex-index",
	Short: "Index a repository into the code intelligence store",
	Long: `cortex-index drives the indexing orchestrator: parsing source
files, extracting chunks and relationships, embedding them, and
writing the result to the shared SQLite store.

Settings can be supplied as flags, as environment variables
(DATABASE_URL, REPO_PATH, REPO_URL, REPO_BRANCH, EMBEDDING_MODEL, ...),
or via a YAML config file passed with --config.`,
}

// Execute runs the cortex-index command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.PersistentFlags().StringVar(&flagDatabaseURL, "database-url", "", "SQLite database path or sqlite:// URL")
	rootCmd.PersistentFlags().StringVar(&flagRepoPath, "repo-path", "", "path to the working copy to index")
	rootCmd.PersistentFlags().StringVar(&flagRepoURL, "repo-url", "", "canonical repository URL (identifies the repo in the store)")
	rootCmd.PersistentFlags().StringVar(&flagRepoBranch, "repo-branch", "", "branch name (default \"main\")")
	rootCmd.PersistentFlags().StringVar(&flagEmbeddingModel, "embedding-model", "", "embedding model name")
}

// initConfig reads an optional YAML config file and exports its
// values as environment variables, then applies any flags on top
// (flags take precedence). orchestrator.LoadOptions always reads from
// the environment, so this is the only place config-file and flag
// values are bridged into it.
func initConfig() {
	v := viper.New()
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "cortex-index: failed to read config file: %v\n", err)
			os.Exit(1)
		}
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
		}
	}

	for _, key := range configEnvKeys {
		if os.Getenv(key) != "" {
			continue
		}
		lower := strings.ToLower(key)
		if v.IsSet(lower) {
			os.Setenv(key, v.GetString(lower))
		}
	}

	applyFlagOverrides()
}

// applyFlagOverrides exports any explicitly-set flag as the
// corresponding environment variable, overriding both the config file
// and any inherited environment value.
func applyFlagOverrides() {
	overrides := map[string]string{
		"database-url":    flagDatabaseURL,
		"repo-path":       flagRepoPath,
		"repo-url":        flagRepoURL,
		"repo-branch":     flagRepoBranch,
		"embedding-model": flagEmbeddingModel,
	}
	flagToEnv := map[string]string{
		"database-url":    "DATABASE_URL",
		"repo-path":       "REPO_PATH",
		"repo-url":        "REPO_URL",
		"repo-branch":     "REPO_BRANCH",
		"embedding-model": "EMBEDDING_MODEL",
	}
	for flag, value := range overrides {
		if value != "" {
			os.Setenv(flagToEnv[flag], value)
		}
	}
}
