package api

import (
	"github.com/kraklabs/codeintel/internal/importgraph"
	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/queryengine"
)

// ImportTreeResponse answers GET /import-tree/{file_path}: direct
// (level 1) and indirect (level 2) neighbors in both directions.
type ImportTreeResponse struct {
	Tree *importgraph.Tree `json:"tree"`
}

// ImportTree reports a file's direct and indirect imports/importers.
// args: file_path (required, passed as the path parameter by the
// caller), repo_url (required), branch (default "main").
func (f *Facade) ImportTree(filePath string, args map[string]interface{}) (*ImportTreeResponse, error) {
	if filePath == "" {
		return nil, errInvalid("file_path parameter is required")
	}
	repoID, branch, err := resolveRepo(args)
	if err != nil {
		return nil, err
	}

	tree, err := f.engine.ImportTree(repoID, branch, filePath)
	if err != nil {
		return nil, err
	}
	return &ImportTreeResponse{Tree: tree}, nil
}

// CircularDependenciesResponse answers GET /circular-dependencies.
type CircularDependenciesResponse struct {
	Cycles []queryengine.Cycle `json:"cycles"`
}

// CircularDependencies reports import cycles. args: repo_url
// (required), branch (default "main"), max_cycle_length (default 10,
// max 50).
func (f *Facade) CircularDependencies(args map[string]interface{}) (*CircularDependenciesResponse, error) {
	repoID, branch, err := resolveRepo(args)
	if err != nil {
		return nil, err
	}
	maxCycleLength := parseClampedInt(args, "max_cycle_length", DefaultMaxCycleLength, 1, MaxMaxCycleLength)

	cycles, err := f.engine.CircularDependencies(repoID, branch, maxCycleLength)
	if err != nil {
		return nil, err
	}
	return &CircularDependenciesResponse{Cycles: cycles}, nil
}

// HubFilesResponse answers GET /hub-files.
type HubFilesResponse struct {
	Hubs []queryengine.Hub `json:"hubs"`
}

// HubFiles reports files imported by at least threshold others. args:
// repo_url (required), branch (default "main"), threshold (default
// 10), limit (default 20, max 200).
func (f *Facade) HubFiles(args map[string]interface{}) (*HubFilesResponse, error) {
	repoID, branch, err := resolveRepo(args)
	if err != nil {
		return nil, err
	}
	threshold := parseIntArg(args, "threshold", DefaultHubThreshold)
	limit := clampLimit(args, DefaultHubLimit, MaxHubLimit)

	hubs, err := f.engine.HubFiles(repoID, branch, threshold, limit)
	if err != nil {
		return nil, err
	}
	return &HubFilesResponse{Hubs: hubs}, nil
}

// CallGraphResponse answers GET /callgraph/{function}.
type CallGraphResponse struct {
	Nodes []CallGraphNode `json:"nodes"`
	Edges []queryengine.CallGraphEdge `json:"edges"`
}

// CallGraphNode is one chunk reached by the traversal, flattened for
// JSON rendering (queryengine.CallGraphNode embeds *model.Chunk).
type CallGraphNode struct {
	Chunk *model.Chunk `json:"chunk"`
	Depth int          `json:"depth"`
}

// validCallGraphDirections enumerates the accepted direction values,
// the same enum-validation-map idiom internal/mcp's graph tool uses
// for its operation parameter.
var validCallGraphDirections = map[string]queryengine.Direction{
	"callers": queryengine.DirectionCallers,
	"callees": queryengine.DirectionCallees,
	"both":    queryengine.DirectionBoth,
}

// CallGraph traverses the calls graph outward from a function. args:
// direction (one of "callers", "callees", "both"; default "callees"),
// depth (default 1, clamped to [1,5]), repo_url (required), branch
// (default "main"), limit (default 100, max 1000).
func (f *Facade) CallGraph(function string, args map[string]interface{}) (*CallGraphResponse, error) {
	if function == "" {
		return nil, errInvalid("function parameter is required")
	}
	repoID, branch, err := resolveRepo(args)
	if err != nil {
		return nil, err
	}

	directionStr, _ := parseStringArg(args, "direction", false)
	if directionStr == "" {
		directionStr = "callees"
	}
	direction, ok := validCallGraphDirections[directionStr]
	if !ok {
		return nil, errInvalid("invalid direction: %s (must be one of: callers, callees, both)", directionStr)
	}

	depth := parseClampedInt(args, "depth", DefaultCallGraphDepth, 1, MaxCallGraphDepth)
	limit := clampLimit(args, DefaultCallGraphLimit, MaxCallGraphLimit)

	result, err := f.engine.CallGraph(repoID, branch, function, direction, depth, limit)
	if err != nil {
		return nil, err
	}

	nodes := make([]CallGraphNode, len(result.Nodes))
	for i, n := range result.Nodes {
		nodes[i] = CallGraphNode{Chunk: n.Chunk, Depth: n.Depth}
	}
	return &CallGraphResponse{Nodes: nodes, Edges: result.Edges}, nil
}
