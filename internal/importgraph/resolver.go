// Package importgraph resolves raw import strings extracted from
// chunks into file-level edges, and answers structural questions over
// the resulting graph: import trees, circular dependencies, and hub
// files.
package importgraph

import (
	"path"
	"strings"
)

// jsTSExtensions and pythonExtensions mirror ImportGraphBuilder's
// JS_TS_EXTENSIONS / PYTHON_EXTENSIONS candidate lists.
var (
	jsTSExtensions   = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".mts"}
	pythonExtensions = []string{".py", ".pyi"}
)

// Resolver turns a raw import specifier into a concrete file path
// already present in the indexed file set.
type Resolver struct {
	files map[string]bool
}

// NewResolver builds a resolver over the given repo/branch's indexed
// file paths.
func NewResolver(files []string) *Resolver {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[f] = true
	}
	return &Resolver{files: set}
}

// Resolve maps importPath, written inside sourceFile, to an indexed
// file path, or "" if none of the candidate paths are indexed.
// Grounded on ImportGraphBuilder._resolve_import_path.
func (r *Resolver) Resolve(importPath, sourceFile string) string {
	sourceDir := path.Dir(sourceFile)

	if strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../") {
		resolved := normalizeJoin(sourceDir, importPath)
		if target := r.firstCandidate(resolved); target != "" {
			return target
		}
	}

	if strings.HasPrefix(importPath, ".") {
		dots := 0
		for _, c := range importPath {
			if c != '.' {
				break
			}
			dots++
		}
		modulePath := strings.ReplaceAll(importPath[dots:], ".", "/")
		base := sourceDir
		for i := 0; i < dots-1; i++ {
			base = path.Dir(base)
		}
		resolved := base
		if modulePath != "" {
			resolved = path.Join(base, modulePath)
		}
		if target := r.firstCandidate(resolved); target != "" {
			return target
		}
	}

	clean := strings.ReplaceAll(importPath, ".", "/")
	if target := r.firstCandidate(clean); target != "" {
		return target
	}

	for _, prefix := range []string{"src/", "lib/", "app/", ""} {
		if target := r.firstCandidate(prefix + clean); target != "" {
			return target
		}
	}

	return ""
}

// normalizeJoin joins dir and rel with path.Join, which collapses
// ".."/"." segments, and trims a leading "/" so the result stays
// relative. A "../" that climbs above the repository root is kept as a
// leading ".." segment rather than reported as an error.
func normalizeJoin(dir, rel string) string {
	combined := path.Join(dir, rel)
	return strings.TrimPrefix(combined, "/")
}

func (r *Resolver) firstCandidate(base string) string {
	for _, candidate := range pathCandidates(base) {
		if r.files[candidate] {
			return candidate
		}
	}
	return ""
}

// pathCandidates expands a resolved base path into the extension and
// index-file variants worth checking, grounded on
// ImportGraphBuilder._get_path_candidates.
func pathCandidates(base string) []string {
	ext := strings.ToLower(path.Ext(base))

	if ext != "" {
		candidates := []string{base}
		stem := strings.TrimSuffix(base, path.Ext(base))
		switch ext {
		case ".js":
			candidates = append(candidates, stem+".ts", stem+".tsx")
		case ".jsx":
			candidates = append(candidates, stem+".tsx", stem+".ts")
		case ".mjs":
			candidates = append(candidates, stem+".mts", stem+".ts")
		}
		return candidates
	}

	var candidates []string
	for _, e := range append(append([]string{}, jsTSExtensions...), pythonExtensions...) {
		candidates = append(candidates, base+e)
	}
	for _, e := range jsTSExtensions {
		candidates = append(candidates, base+"/index"+e)
	}
	candidates = append(candidates, base+"/__init__.py")
	return candidates
}

// ClassifyImportType reports whether an import specifier looks
// dynamic, matching the original's substring heuristic
// ("dynamic" in import_path.lower() or "import(" in import_path).
func ClassifyImportType(importPath string) string {
	lower := strings.ToLower(importPath)
	if strings.Contains(lower, "dynamic") || strings.Contains(importPath, "import(") {
		return "dynamic"
	}
	return "static"
}
