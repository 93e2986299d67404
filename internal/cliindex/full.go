package cliindex

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kraklabs/codeintel/internal/orchestrator"
)

var fullCmd = &cobra.Command{
	Use:   "full",
	Short: "Run a full reindex of the repository",
	Long: `full discovers every indexable file under --repo-path, chunks and
embeds all of them, and rebuilds the import/call graphs from scratch.
Use this for the first index of a repository, or to recover from a
corrupted incremental state.`,
	RunE: runFull,
}

func init() {
	rootCmd.AddCommand(fullCmd)
}

func runFull(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts, err := orchestrator.LoadOptions()
	if err != nil {
		return fmt.Errorf("load options: %w", err)
	}

	var result *orchestrator.Result
	err = withSpinner("Indexing files", func() error {
		var runErr error
		result, runErr = orchestrator.RunFull(ctx, opts)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("full index run failed: %w", err)
	}

	result.Print()
	return nil
}
