// Package orchestrator implements the indexing orchestrator (C10): the
// full and incremental pipelines that turn a working copy into stored
// chunks, relationships, and graphs, driven entirely by the process
// environment per the CLI surface.
package orchestrator

import (
	"fmt"

	"github.com/spf13/viper"
)

// Options configures one orchestrator run, loaded from the process
// environment.
type Options struct {
	DatabaseURL      string
	RepoPath         string
	RepoURL          string
	RepoBranch       string
	EmbeddingModel   string
	BaseRef          string
	ChangedFiles     string
	NestedThreshold  int
	FallbackMaxLines int
	FallbackOverlap  int
	EmbedBatch       int
}

// LoadOptions reads an Options from the environment, applying the
// documented defaults for anything left unset.
func LoadOptions() (*Options, error) {
	v := viper.New()
	v.AutomaticEnv()

	for _, key := range []string{
		"DATABASE_URL", "REPO_PATH", "REPO_URL", "REPO_BRANCH",
		"EMBEDDING_MODEL", "BASE_REF", "CHANGED_FILES",
		"NESTED_FUNCTION_THRESHOLD", "FALLBACK_MAX_LINES",
		"FALLBACK_OVERLAP_LINES", "EMBED_BATCH",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetDefault("REPO_BRANCH", "main")
	v.SetDefault("NESTED_FUNCTION_THRESHOLD", 50)
	v.SetDefault("FALLBACK_MAX_LINES", 500)
	v.SetDefault("FALLBACK_OVERLAP_LINES", 50)
	v.SetDefault("EMBED_BATCH", 64)

	opts := &Options{
		DatabaseURL:      v.GetString("DATABASE_URL"),
		RepoPath:         v.GetString("REPO_PATH"),
		RepoURL:          v.GetString("REPO_URL"),
		RepoBranch:       v.GetString("REPO_BRANCH"),
		EmbeddingModel:   v.GetString("EMBEDDING_MODEL"),
		BaseRef:          v.GetString("BASE_REF"),
		ChangedFiles:     v.GetString("CHANGED_FILES"),
		NestedThreshold:  v.GetInt("NESTED_FUNCTION_THRESHOLD"),
		FallbackMaxLines: v.GetInt("FALLBACK_MAX_LINES"),
		FallbackOverlap:  v.GetInt("FALLBACK_OVERLAP_LINES"),
		EmbedBatch:       v.GetInt("EMBED_BATCH"),
	}

	if opts.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if opts.RepoPath == "" {
		return nil, fmt.Errorf("REPO_PATH is required")
	}
	if opts.RepoURL == "" {
		return nil, fmt.Errorf("REPO_URL is required")
	}

	return opts, nil
}

// Incremental reports whether enough information was supplied to run
// incremental mode instead of a full reindex.
func (o *Options) Incremental() bool {
	return o.BaseRef != "" || o.ChangedFiles != ""
}
