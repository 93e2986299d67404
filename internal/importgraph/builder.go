package importgraph

import (
	"database/sql"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"github.com/kraklabs/codeintel/internal/cxerr"
	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/storage"
)

// Edge is a resolved, file-level import relationship, ready to be
// upserted into file_imports.
type Edge struct {
	SourceFile      string
	TargetFile      string
	ImportType      model.ImportType
	ImportedSymbols []string
}

// Tree is the 2-level import neighborhood of one file.
type Tree struct {
	TargetFile         string
	DirectImports      []string
	DirectImporters    []string
	IndirectImports    []string
	IndirectImporters  []string
}

// Cycle is one detected import cycle.
type Cycle struct {
	Files []string
	Type  string // "direct" (len==2) or "indirect"
}

// Hub is a file imported by at least a threshold number of others.
type Hub struct {
	FilePath    string
	ImportCount int
	Importers   []string
}

// Builder builds and queries the file-level import graph for one
// repo/branch, grounded on import_graph.py's ImportGraphBuilder.
type Builder struct {
	db       *sql.DB
	repoID   string
	branch   string
	fileSet  map[string]bool
}

// NewBuilder constructs a Builder sharing an existing database
// connection (mirrors the teacher's storage.NewGraphWriterWithDB
// connection-sharing convention).
func NewBuilder(db *sql.DB, repoID, branch string) *Builder {
	return &Builder{db: db, repoID: repoID, branch: branch}
}

func (b *Builder) allFiles() (map[string]bool, error) {
	if b.fileSet != nil {
		return b.fileSet, nil
	}

	rows, err := sq.Select("path").
		From("files").
		Where(sq.Eq{"repo_id": b.repoID, "branch": b.branch}).
		RunWith(b.db).
		Query()
	if err != nil {
		return nil, cxerr.Wrap(cxerr.StoreConflict, fmt.Errorf("query files: %w", err))
	}
	defer rows.Close()

	set := map[string]bool{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, cxerr.Wrap(cxerr.StoreConflict, err)
		}
		set[p] = true
	}
	b.fileSet = set
	return set, rows.Err()
}

// BuildEdges reads every chunk-level import for the repo/branch,
// resolves each one to an indexed file, and returns the deduplicated
// file-level edge set (import_graph.py's build_import_graph).
func (b *Builder) BuildEdges() ([]Edge, error) {
	files, err := b.allFiles()
	if err != nil {
		return nil, err
	}
	resolver := NewResolver(keys(files))

	rows, err := sq.Select("file_path", "imports").
		From("chunks").
		Where(sq.Eq{"repo_id": b.repoID, "branch": b.branch}).
		RunWith(b.db).
		Query()
	if err != nil {
		return nil, cxerr.Wrap(cxerr.StoreConflict, fmt.Errorf("query chunk imports: %w", err))
	}
	defer rows.Close()

	seen := map[[2]string]bool{}
	var edges []Edge
	for rows.Next() {
		var filePath, importsJSON string
		if err := rows.Scan(&filePath, &importsJSON); err != nil {
			return nil, cxerr.Wrap(cxerr.StoreConflict, err)
		}
		imports, err := storage.DecodeStringArray(importsJSON)
		if err != nil {
			return nil, cxerr.Wrap(cxerr.StoreConflict, fmt.Errorf("decode imports for %s: %w", filePath, err))
		}
		for _, imp := range imports {
			if imp == "" {
				continue
			}
			target := resolver.Resolve(imp, filePath)
			if target == "" || target == filePath {
				continue
			}
			key := [2]string{filePath, target}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, Edge{
				SourceFile: filePath,
				TargetFile: target,
				ImportType: model.ImportType(ClassifyImportType(imp)),
			})
		}
	}
	return edges, rows.Err()
}

// StoreEdges replaces the repo/branch's file_imports rows with edges.
func (b *Builder) StoreEdges(edges []Edge) (int, error) {
	tx, err := b.db.Begin()
	if err != nil {
		return 0, cxerr.Wrap(cxerr.StoreConflict, err)
	}
	defer tx.Rollback()

	if _, err := sq.Delete("file_imports").
		Where(sq.Eq{"repo_id": b.repoID, "branch": b.branch}).
		RunWith(tx).
		Exec(); err != nil {
		return 0, cxerr.Wrap(cxerr.StoreConflict, err)
	}

	stored := 0
	for _, e := range edges {
		_, err := sq.Insert("file_imports").
			Columns("source_file", "target_file", "import_type", "imported_symbols", "repo_id", "branch").
			Values(e.SourceFile, e.TargetFile, string(e.ImportType), storage.EncodeStringArray(e.ImportedSymbols), b.repoID, b.branch).
			RunWith(tx).
			Exec()
		if err != nil {
			// A late race against concurrent deletion can leave an
			// endpoint missing; skip rather than fail the whole batch.
			continue
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return 0, cxerr.Wrap(cxerr.StoreConflict, err)
	}
	return stored, nil
}

// GetImportTree answers the 2-level import-tree query, grounded on
// ImportGraphBuilder.get_import_tree.
func (b *Builder) GetImportTree(filePath string) (*Tree, error) {
	tree := &Tree{TargetFile: filePath}

	var err error
	tree.DirectImports, err = b.column("target_file", sq.Eq{"source_file": filePath, "repo_id": b.repoID, "branch": b.branch})
	if err != nil {
		return nil, err
	}
	tree.DirectImporters, err = b.column("source_file", sq.Eq{"target_file": filePath, "repo_id": b.repoID, "branch": b.branch})
	if err != nil {
		return nil, err
	}

	if len(tree.DirectImports) > 0 {
		tree.IndirectImports, err = b.secondHop("target_file", "source_file", tree.DirectImports, filePath)
		if err != nil {
			return nil, err
		}
	}
	if len(tree.DirectImporters) > 0 {
		tree.IndirectImporters, err = b.secondHop("source_file", "target_file", tree.DirectImporters, filePath)
		if err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func (b *Builder) column(selectCol string, where sq.Eq) ([]string, error) {
	rows, err := sq.Select(selectCol).From("file_imports").Where(where).RunWith(b.db).Query()
	if err != nil {
		return nil, cxerr.Wrap(cxerr.StoreConflict, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, cxerr.Wrap(cxerr.StoreConflict, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// secondHop fetches the distinct set of column `want` where `pivot`
// is in neighbors, excluding filePath and the neighbors themselves.
func (b *Builder) secondHop(pivotCol, wantCol string, neighbors []string, filePath string) ([]string, error) {
	exclude := map[string]bool{filePath: true}
	for _, n := range neighbors {
		exclude[n] = true
	}

	rows, err := sq.Select(wantCol).
		From("file_imports").
		Where(sq.Eq{pivotCol: neighbors, "repo_id": b.repoID, "branch": b.branch}).
		RunWith(b.db).
		Query()
	if err != nil {
		return nil, cxerr.Wrap(cxerr.StoreConflict, err)
	}
	defer rows.Close()

	seen := map[string]bool{}
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, cxerr.Wrap(cxerr.StoreConflict, err)
		}
		if exclude[v] || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, rows.Err()
}

// DetectCycles finds import cycles via iterative DFS with a
// recursion-stack, deduping by frozen node-set (import_graph.py's
// detect_circular_dependencies, made iterative to avoid Go's lack of
// tail-call elimination on deep dependency chains).
func (b *Builder) DetectCycles(maxCycleLength int) ([]Cycle, error) {
	rows, err := sq.Select("source_file", "target_file").
		From("file_imports").
		Where(sq.Eq{"repo_id": b.repoID, "branch": b.branch}).
		RunWith(b.db).
		Query()
	if err != nil {
		return nil, cxerr.Wrap(cxerr.StoreConflict, err)
	}
	defer rows.Close()

	graph := map[string][]string{}
	var nodes []string
	nodeSeen := map[string]bool{}
	for rows.Next() {
		var src, dst string
		if err := rows.Scan(&src, &dst); err != nil {
			return nil, cxerr.Wrap(cxerr.StoreConflict, err)
		}
		graph[src] = append(graph[src], dst)
		if !nodeSeen[src] {
			nodeSeen[src] = true
			nodes = append(nodes, src)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, cxerr.Wrap(cxerr.StoreConflict, err)
	}

	visited := map[string]bool{}
	var cycles []Cycle
	seenCycles := map[string]bool{}

	for _, start := range nodes {
		if visited[start] {
			continue
		}
		cycles = append(cycles, dfsCycles(graph, start, visited, maxCycleLength, seenCycles)...)
	}
	return cycles, nil
}

type frame struct {
	node     string
	childIdx int
}

func dfsCycles(graph map[string][]string, start string, visited map[string]bool, maxLen int, seenCycles map[string]bool) []Cycle {
	var cycles []Cycle
	recStack := map[string]bool{}
	var path []string
	var stack []frame

	push := func(node string) {
		visited[node] = true
		recStack[node] = true
		path = append(path, node)
		stack = append(stack, frame{node: node, childIdx: 0})
	}
	push(start)

	for len(stack) > 0 {
		if len(path) > maxLen {
			top := stack[len(stack)-1]
			delete(recStack, top.node)
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
			continue
		}

		top := &stack[len(stack)-1]
		children := graph[top.node]
		if top.childIdx >= len(children) {
			delete(recStack, top.node)
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
			continue
		}

		neighbor := children[top.childIdx]
		top.childIdx++

		if !visited[neighbor] {
			push(neighbor)
			continue
		}
		if recStack[neighbor] {
			idx := indexOf(path, neighbor)
			cycle := append(append([]string{}, path[idx:]...), neighbor)
			key := cycleKey(cycle[:len(cycle)-1])
			if !seenCycles[key] {
				seenCycles[key] = true
				cycleType := "indirect"
				if len(cycle) == 3 {
					cycleType = "direct"
				}
				cycles = append(cycles, Cycle{Files: cycle, Type: cycleType})
			}
		}
	}
	return cycles
}

func cycleKey(nodes []string) string {
	sorted := append([]string{}, nodes...)
	sort.Strings(sorted)
	key := ""
	for _, n := range sorted {
		key += n + "\x00"
	}
	return key
}

func indexOf(path []string, node string) int {
	for i, p := range path {
		if p == node {
			return i
		}
	}
	return -1
}

// FindHubFiles returns files imported by at least threshold other
// files, most-imported first (import_graph.py's find_hub_files).
func (b *Builder) FindHubFiles(threshold, limit int) ([]Hub, error) {
	rows, err := sq.Select("target_file", "source_file").
		From("file_imports").
		Where(sq.Eq{"repo_id": b.repoID, "branch": b.branch}).
		RunWith(b.db).
		Query()
	if err != nil {
		return nil, cxerr.Wrap(cxerr.StoreConflict, err)
	}
	defer rows.Close()

	importers := map[string][]string{}
	var order []string
	for rows.Next() {
		var target, source string
		if err := rows.Scan(&target, &source); err != nil {
			return nil, cxerr.Wrap(cxerr.StoreConflict, err)
		}
		if _, ok := importers[target]; !ok {
			order = append(order, target)
		}
		importers[target] = append(importers[target], source)
	}
	if err := rows.Err(); err != nil {
		return nil, cxerr.Wrap(cxerr.StoreConflict, err)
	}

	var hubs []Hub
	for _, target := range order {
		srcs := importers[target]
		if len(srcs) < threshold {
			continue
		}
		sort.Strings(srcs)
		sample := srcs
		if len(sample) > 10 {
			sample = sample[:10]
		}
		hubs = append(hubs, Hub{FilePath: target, ImportCount: len(srcs), Importers: sample})
	}

	sort.Slice(hubs, func(i, j int) bool { return hubs[i].ImportCount > hubs[j].ImportCount })
	if len(hubs) > limit {
		hubs = hubs[:limit]
	}
	return hubs, nil
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
