// Package api implements the Query Facade (C15): a thin Go interface
// over the query engine and admin storage queries whose methods mirror
// the HTTP API surface table one-to-one, without binding any
// net/http router. Request parameters arrive as a loosely-typed
// map[string]interface{} (the same shape a JSON request body or MCP
// tool call decodes into) and are parsed with the coercion helpers in
// args.go, grounded in internal/mcp/args.go's argument-parsing idiom.
package api

import (
	"context"
	"database/sql"

	"github.com/kraklabs/codeintel/internal/cxerr"
	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/queryengine"
)

// Default and clamped limits for request parameters, mirroring the
// min/max annotations on internal/mcp's mcp.WithNumber tool params.
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 200

	DefaultDefinitionsLimit = 20
	MaxDefinitionsLimit     = 200

	DefaultUsagesLimit = 20
	MaxUsagesLimit     = 200

	DefaultHubLimit = 20
	MaxHubLimit     = 200

	DefaultCallGraphLimit = queryengine.DefaultCallGraphNodeLimit
	MaxCallGraphLimit     = 1000

	DefaultMaxCycleLength = queryengine.DefaultMaxCycleLength
	MaxMaxCycleLength     = 50

	DefaultHubThreshold   = queryengine.DefaultHubThreshold
	DefaultCallGraphDepth = 1
	MaxCallGraphDepth     = 5
)

// Facade answers every operation in the HTTP API surface table over
// an already-indexed database, resolving repo_url to repo_id the same
// way the CLI resolves it from REPO_URL.
type Facade struct {
	db        *sql.DB
	engine    *queryengine.Engine
	modelName string
}

// NewFacade builds a Facade over an already-open database connection
// and query engine. The caller retains ownership of both.
func NewFacade(db *sql.DB, engine *queryengine.Engine, modelName string) *Facade {
	return &Facade{db: db, engine: engine, modelName: modelName}
}

// HealthResponse answers GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	StoreReachable bool   `json:"store_reachable"`
	Model          string `json:"model"`
}

// Health reports process liveness, backing-store reachability, and
// the configured embedding model name.
func (f *Facade) Health(ctx context.Context) *HealthResponse {
	reachable := f.db.PingContext(ctx) == nil
	status := "ok"
	if !reachable {
		status = "degraded"
	}
	return &HealthResponse{Status: status, StoreReachable: reachable, Model: f.modelName}
}

// resolveRepo pulls repo_url (required) and branch (default "main")
// out of a request arguments map and derives the repo_id join key.
func resolveRepo(args map[string]interface{}) (repoID, branch string, err error) {
	repoURL, err := parseStringArg(args, "repo_url", true)
	if err != nil {
		return "", "", cxerr.Wrap(cxerr.InputInvalid, err)
	}
	branch, _ = parseStringArg(args, "branch", false)
	if branch == "" {
		branch = "main"
	}
	return model.ComputeRepoID(repoURL), branch, nil
}

func clampLimit(args map[string]interface{}, defaultVal, maxVal int) int {
	return parseClampedInt(args, "limit", defaultVal, 1, maxVal)
}

func errInvalid(format string, a ...any) error {
	return cxerr.New(cxerr.InputInvalid, format, a...)
}
