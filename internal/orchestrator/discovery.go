package orchestrator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/kraklabs/codeintel/internal/configchunker"
)

// MaxFileSize is the size cap on any file considered for indexing.
const MaxFileSize = 10_000_000

var includeExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".py": true, ".pyi": true, ".rs": true, ".go": true,
	".c": true, ".cpp": true, ".h": true, ".hpp": true,
	".java": true, ".kt": true, ".scala": true, ".cs": true, ".fs": true,
	".rb": true, ".php": true, ".swift": true,
	".md": true,
	".json": true, ".yaml": true, ".yml": true, ".toml": true,
	".sh": true, ".bash": true,
}

var excludeDirs = map[string]bool{
	"node_modules": true, "vendor": true, "venv": true, ".venv": true,
	"dist": true, "build": true, "out": true, "target": true,
	".next": true, ".nuxt": true, "coverage": true, ".nyc_output": true,
	".git": true, ".svn": true, ".hg": true, ".idea": true, ".vscode": true,
	"__pycache__": true,
}

var excludeFilePatterns = compileGlobs([]string{
	"*.min.js", "*.min.css", "*.map", "*.lock", "package-lock.json",
	"yarn.lock", "pnpm-lock.yaml", "Gemfile.lock", "Cargo.lock",
	"*.snap",
})

func compileGlobs(patterns []string) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			continue
		}
		globs = append(globs, g)
	}
	return globs
}

// IsIndexable reports whether a path (relative or absolute, forward or
// native separators) should be walked into the pipeline: it isn't under
// an excluded directory, its name isn't an excluded pattern, and either
// its extension is recognized or it's a recognized config filename.
func IsIndexable(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, part := range strings.Split(relPath, "/") {
		if excludeDirs[part] {
			return false
		}
	}

	base := filepath.Base(relPath)
	for _, g := range excludeFilePatterns {
		if g.Match(base) {
			return false
		}
	}

	if configchunker.IsConfigFile(base) {
		return true
	}
	return includeExtensions[strings.ToLower(filepath.Ext(base))]
}

// DiscoverFiles walks rootDir and returns the relative paths of every
// indexable file under MaxFileSize.
func DiscoverFiles(rootDir string) ([]string, error) {
	var files []string

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if !IsIndexable(relPath) {
			return nil
		}
		if info.Size() > MaxFileSize {
			return nil
		}

		files = append(files, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
