// Package cliquery implements the cortex-query command tree: one
// subcommand per api.Facade (C15) method, mirroring the §6 HTTP API
// surface table for operators who want it from a terminal instead of
// a bound HTTP transport. Structured after teacher's internal/cli
// root.go (cobra root + viper.AutomaticEnv()), adapted to the query
// side of the store instead of the indexing side cliindex covers.
package cliquery

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kraklabs/codeintel/internal/api"
	"github.com/kraklabs/codeintel/internal/embed"
	"github.com/kraklabs/codeintel/internal/orchestrator"
	"github.com/kraklabs/codeintel/internal/queryengine"
)

var (
	flagDatabaseURL    string
	flagEmbeddingModel string
)

var rootCmd = &cobra.Command{
	Use:   "cortex-query",
	Short: "Query an already-indexed code intelligence store",
	Long: `cortex-query answers search and graph questions over a store
already populated by cortex-index, one subcommand per api.Facade
operation. Every subcommand prints its result as indented JSON.`,
}

// Execute runs the cortex-query command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	v := viper.New()
	v.AutomaticEnv()

	rootCmd.PersistentFlags().StringVar(&flagDatabaseURL, "database-url", v.GetString("database_url"), "SQLite database path or sqlite:// URL")
	rootCmd.PersistentFlags().StringVar(&flagEmbeddingModel, "embedding-model", v.GetString("embedding_model"), "embedding model name (must match the model used to index)")
}

// openFacade opens the database and constructs the query engine and
// facade a subcommand needs, per the same openDatabase/embed.NewProvider
// sequence orchestrator.RunFull/RunIncremental use.
func openFacade() (*api.Facade, *sql.DB, error) {
	if flagDatabaseURL == "" {
		return nil, nil, fmt.Errorf("--database-url (or DATABASE_URL) is required")
	}

	db, err := orchestrator.OpenDatabase(flagDatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	provider, err := embed.NewProvider(embed.Config{Model: flagEmbeddingModel})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create embedding provider: %w", err)
	}
	if err := provider.Initialize(context.Background()); err != nil {
		provider.Close()
		db.Close()
		return nil, nil, fmt.Errorf("initialize embedding provider: %w", err)
	}

	engine, err := queryengine.New(db, provider, flagEmbeddingModel)
	if err != nil {
		provider.Close()
		db.Close()
		return nil, nil, fmt.Errorf("create query engine: %w", err)
	}

	return api.NewFacade(db, engine, flagEmbeddingModel), db, nil
}

// printJSON renders v as indented JSON to stdout, the output
// convention every cortex-query subcommand shares.
func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	fmt.Println(string(b))
	return nil
}

// withFacade opens a Facade, runs fn, and closes the database
// regardless of fn's outcome.
func withFacade(fn func(ctx context.Context, f *api.Facade) error) error {
	f, db, err := openFacade()
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(context.Background(), f)
}

// argsMap builds the map[string]interface{} request shape api.Facade
// methods expect, from alternating key/value pairs of cobra flag values.
func argsMap(pairs ...any) map[string]interface{} {
	m := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		m[key] = pairs[i+1]
	}
	return m
}
