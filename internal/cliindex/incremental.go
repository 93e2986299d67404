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

var (
	flagBaseRef      string
	flagChangedFiles string
)

var incrementalCmd = &cobra.Command{
	Use:   "incremental",
	Short: "Reindex only the files that changed",
	Long: `incremental resolves a change list, either from --changed-files
(an explicit "A:path,M:path,D:path,R:old->new" list) or by diffing the
working copy against --base-ref, and reindexes only the affected files,
then rebuilds the graphs over the repo/branch's full chunk set.`,
	RunE: runIncremental,
}

func init() {
	rootCmd.AddCommand(incrementalCmd)
	incrementalCmd.Flags().StringVar(&flagBaseRef, "base-ref", "", "git ref to diff the working copy against")
	incrementalCmd.Flags().StringVar(&flagChangedFiles, "changed-files", "", `explicit change list, e.g. "M:a.go,D:b.go"`)
}

func runIncremental(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if flagBaseRef != "" {
		os.Setenv("BASE_REF", flagBaseRef)
	}
	if flagChangedFiles != "" {
		os.Setenv("CHANGED_FILES", flagChangedFiles)
	}

	opts, err := orchestrator.LoadOptions()
	if err != nil {
		return fmt.Errorf("load options: %w", err)
	}
	if !opts.Incremental() {
		return fmt.Errorf("incremental requires --base-ref or --changed-files (BASE_REF or CHANGED_FILES)")
	}

	var result *orchestrator.Result
	err = withSpinner("Reindexing changed files", func() error {
		var runErr error
		result, runErr = orchestrator.RunIncremental(ctx, opts)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("incremental index run failed: %w", err)
	}

	result.Print()
	return nil
}
