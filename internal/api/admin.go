package api

import (
	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/storage"
)

// StatsResponse answers GET /stats.
type StatsResponse struct {
	Stats *model.IndexStats `json:"stats"`
}

// Stats reports file/chunk/relationship counts. args: repo_url
// (required), branch (default "main").
func (f *Facade) Stats(args map[string]interface{}) (*StatsResponse, error) {
	repoID, branch, err := resolveRepo(args)
	if err != nil {
		return nil, err
	}

	stats, err := storage.GetIndexStats(f.db, repoID, branch)
	if err != nil {
		return nil, err
	}
	return &StatsResponse{Stats: stats}, nil
}

// ReposResponse answers GET /repos.
type ReposResponse struct {
	Repos []*model.RepoSummary `json:"repos"`
}

// Repos lists every indexed repo, denormalized repo_url, and branch.
func (f *Facade) Repos() (*ReposResponse, error) {
	repos, err := storage.ListRepos(f.db)
	if err != nil {
		return nil, err
	}
	return &ReposResponse{Repos: repos}, nil
}

// DeleteIndexResponse answers DELETE /index/{repo_url}.
type DeleteIndexResponse struct {
	Deleted bool `json:"deleted"`
}

// DeleteIndex removes every indexed record for a repo, optionally
// scoped to a single branch. args: repo_url (required, passed as the
// path parameter by the caller), branch (optional; empty deletes
// every branch).
func (f *Facade) DeleteIndex(repoURL string, args map[string]interface{}) (*DeleteIndexResponse, error) {
	if repoURL == "" {
		return nil, errInvalid("repo_url parameter is required")
	}
	branch, _ := parseStringArg(args, "branch", false)
	repoID := model.ComputeRepoID(repoURL)

	if err := storage.DeleteRepo(f.db, repoID, branch); err != nil {
		return nil, err
	}
	return &DeleteIndexResponse{Deleted: true}, nil
}
