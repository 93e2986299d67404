package queryengine

import (
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/dominikbraun/graph"

	"github.com/kraklabs/codeintel/internal/cxerr"
	"github.com/kraklabs/codeintel/internal/importgraph"
)

// DefaultMaxCycleLength, DefaultHubThreshold and DefaultHubSampleSize
// are the query engine's default thresholds and limits.
const (
	DefaultMaxCycleLength = 10
	DefaultHubThreshold   = 10
	DefaultHubSampleSize  = 10
)

// Cycle is one detected import cycle, canonicalized by node set.
type Cycle struct {
	Nodes []string
	Type  string // "direct" (a self-import or a 2-file cycle) or "indirect"
}

// Hub is a file imported by at least a threshold number of others.
type Hub struct {
	FilePath    string
	ImportCount int
	Importers   []string
}

// ImportTree thin-wraps importgraph.Builder, which already implements
// the 2-level import neighborhood query against the stored
// file_imports edges.
func (e *Engine) ImportTree(repoID, branch, filePath string) (*importgraph.Tree, error) {
	key := graphCacheKey(repoID, branch, filePath)
	if cached, ok := e.treeCache.Get(key); ok {
		return cached, nil
	}

	builder := importgraph.NewBuilder(e.db, repoID, branch)
	tree, err := builder.GetImportTree(filePath)
	if err != nil {
		return nil, err
	}

	e.treeCache.Set(key, tree)
	return tree, nil
}

// buildGraph loads the stored file_imports edges for (repoID, branch)
// into an in-memory directed graph, grounded on the
// dominikbraun/graph usage in internal/graph/searcher.go.
func (e *Engine) buildGraph(repoID, branch string) (graph.Graph[string, string], error) {
	rows, err := sq.Select("source_file", "target_file").
		From("file_imports").
		Where(sq.Eq{"repo_id": repoID, "branch": branch}).
		RunWith(e.db).
		Query()
	if err != nil {
		return nil, cxerr.Wrap(cxerr.StoreConflict, fmt.Errorf("query file_imports: %w", err))
	}
	defer rows.Close()

	type edge struct{ source, target string }
	var edges []edge
	vertices := map[string]bool{}
	for rows.Next() {
		var src, dst string
		if err := rows.Scan(&src, &dst); err != nil {
			return nil, cxerr.Wrap(cxerr.StoreConflict, err)
		}
		edges = append(edges, edge{src, dst})
		vertices[src] = true
		vertices[dst] = true
	}
	if err := rows.Err(); err != nil {
		return nil, cxerr.Wrap(cxerr.StoreConflict, err)
	}

	g := graph.New(graph.StringHash, graph.Directed())
	for v := range vertices {
		_ = g.AddVertex(v)
	}
	for _, e := range edges {
		_ = g.AddEdge(e.source, e.target)
	}
	return g, nil
}

// CircularDependencies finds directed cycles in the import graph.
// Strongly connected components narrow the search to the only nodes
// that can possibly sit on a cycle; within each SCC a bounded
// recursion-stack DFS enumerates the actual cycles (reusing the
// iterative-DFS idiom also used for C6's indexing-time cycle
// detection in internal/importgraph), tagging direct (a single-file
// self-import, or length 2) vs indirect cycles.
func (e *Engine) CircularDependencies(repoID, branch string, maxCycleLength int) ([]Cycle, error) {
	if maxCycleLength <= 0 {
		maxCycleLength = DefaultMaxCycleLength
	}
	key := graphCacheKey(repoID, branch, fmt.Sprintf("cycles:%d", maxCycleLength))
	if cached, ok := e.cycleCache.Get(key); ok {
		return cached, nil
	}

	g, err := e.buildGraph(repoID, branch)
	if err != nil {
		return nil, err
	}

	sccs, err := graph.StronglyConnectedComponents(g)
	if err != nil {
		return nil, cxerr.Wrap(cxerr.StoreConflict, fmt.Errorf("strongly connected components: %w", err))
	}
	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, cxerr.Wrap(cxerr.StoreConflict, fmt.Errorf("adjacency map: %w", err))
	}

	var cycles []Cycle
	seen := map[string]bool{}
	for _, scc := range sccs {
		if len(scc) == 1 {
			node := scc[0]
			if _, selfLoop := adjacency[node][node]; selfLoop {
				cycles = append(cycles, Cycle{Nodes: []string{node}, Type: "direct"})
			}
			continue
		}

		member := make(map[string]bool, len(scc))
		for _, n := range scc {
			member[n] = true
		}
		sub := subAdjacency(adjacency, member)

		for _, start := range scc {
			for _, nodes := range findCycles(sub, start, maxCycleLength) {
				k := cycleSetKey(nodes)
				if seen[k] {
					continue
				}
				seen[k] = true
				cycleType := "indirect"
				if len(nodes) == 2 {
					cycleType = "direct"
				}
				cycles = append(cycles, Cycle{Nodes: nodes, Type: cycleType})
			}
		}
	}

	e.cycleCache.Set(key, cycles)
	return cycles, nil
}

func subAdjacency[E any](adjacency map[string]map[string]E, member map[string]bool) map[string][]string {
	out := make(map[string][]string, len(member))
	for src, edges := range adjacency {
		if !member[src] {
			continue
		}
		for dst := range edges {
			if !member[dst] {
				continue
			}
			out[src] = append(out[src], dst)
		}
	}
	return out
}

type dfsFrame struct {
	node     string
	childIdx int
}

// findCycles runs an iterative, recursion-stack DFS from start over
// adj (already restricted to one SCC) and returns every simple cycle
// through start up to maxLen nodes long.
func findCycles(adj map[string][]string, start string, maxLen int) [][]string {
	var cycles [][]string
	onStack := map[string]bool{}
	var path []string
	var stack []dfsFrame

	push := func(node string) {
		onStack[node] = true
		path = append(path, node)
		stack = append(stack, dfsFrame{node: node})
	}
	push(start)

	for len(stack) > 0 {
		if len(path) > maxLen {
			top := stack[len(stack)-1]
			delete(onStack, top.node)
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
			continue
		}

		top := &stack[len(stack)-1]
		children := adj[top.node]
		if top.childIdx >= len(children) {
			delete(onStack, top.node)
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
			continue
		}

		next := children[top.childIdx]
		top.childIdx++

		if next == start {
			if len(path) >= 2 {
				cycles = append(cycles, append([]string{}, path...))
			}
			continue
		}
		if onStack[next] {
			continue // back-edge into the middle of the path, not through start
		}
		push(next)
	}
	return cycles
}

func cycleSetKey(nodes []string) string {
	sorted := append([]string{}, nodes...)
	sort.Strings(sorted)
	key := ""
	for _, n := range sorted {
		key += n + "\x00"
	}
	return key
}

// HubFiles finds targets with in-degree at or above threshold, using
// the graph's predecessor map (the set of nodes U with an edge U->V is
// exactly "files importing V").
func (e *Engine) HubFiles(repoID, branch string, threshold, limit int) ([]Hub, error) {
	if threshold <= 0 {
		threshold = DefaultHubThreshold
	}
	if limit <= 0 {
		limit = 100
	}
	key := graphCacheKey(repoID, branch, fmt.Sprintf("hubs:%d:%d", threshold, limit))
	if cached, ok := e.hubCache.Get(key); ok {
		return cached, nil
	}

	g, err := e.buildGraph(repoID, branch)
	if err != nil {
		return nil, err
	}
	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, cxerr.Wrap(cxerr.StoreConflict, fmt.Errorf("predecessor map: %w", err))
	}

	var hubs []Hub
	for target, preds := range predecessors {
		if len(preds) < threshold {
			continue
		}
		importers := make([]string, 0, len(preds))
		for p := range preds {
			importers = append(importers, p)
		}
		sort.Strings(importers)
		if len(importers) > DefaultHubSampleSize {
			importers = importers[:DefaultHubSampleSize]
		}
		hubs = append(hubs, Hub{FilePath: target, ImportCount: len(preds), Importers: importers})
	}

	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].ImportCount != hubs[j].ImportCount {
			return hubs[i].ImportCount > hubs[j].ImportCount
		}
		return hubs[i].FilePath < hubs[j].FilePath
	})
	if len(hubs) > limit {
		hubs = hubs[:limit]
	}

	e.hubCache.Set(key, hubs)
	return hubs, nil
}

func graphCacheKey(repoID, branch, rest string) string {
	return repoID + "\x00" + branch + "\x00" + rest
}
