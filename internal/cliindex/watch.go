package cliindex

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kraklabs/codeintel/internal/orchestrator"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the repository and reindex incrementally on change",
	Long: `watch monitors --repo-path for filesystem changes (via fsnotify)
and runs an incremental index each time a batch of changes settles.
Runs until interrupted. Supplemental to the documented full/incremental
contract: it layers on the same CHANGED_FILES-driven incremental path,
it just derives the change list from the filesystem instead of git or
an explicit flag.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts, err := orchestrator.LoadOptions()
	if err != nil {
		return fmt.Errorf("load options: %w", err)
	}

	log.Printf("watching %s for changes...", opts.RepoPath)
	err = orchestrator.RunWatch(ctx, opts, func(result *orchestrator.Result) {
		result.Print()
	})
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
