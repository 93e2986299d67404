// Package configchunker recognizes project configuration files by
// filename pattern and turns each into a single config-typed chunk
// with typed metadata extracted from its contents.
package configchunker

import (
	"path/filepath"
	"strings"

	"github.com/kraklabs/codeintel/internal/model"
)

// Metadata is the typed information pulled out of a recognized config
// file, independent of its raw text.
type Metadata struct {
	ConfigType      string
	StrictMode      *bool
	LintRules       []string
	Dependencies    []string
	DevDependencies []string
	TargetVersion   string
	ModuleType      string
	CompilerOptions map[string]any
}

// configFilePatterns maps an exact basename to its config type,
// ported from original_source/src/indexer/docker/config_parser.py's
// CONFIG_FILE_PATTERNS table.
var configFilePatterns = map[string]string{
	"tsconfig.json": "typescript",
	"jsconfig.json": "typescript",

	"eslint.config.js":  "eslint",
	"eslint.config.mjs": "eslint",
	"eslint.config.cjs": "eslint",
	"eslint.config.ts":  "eslint",
	".eslintrc":         "eslint",
	".eslintrc.js":      "eslint",
	".eslintrc.cjs":     "eslint",
	".eslintrc.json":    "eslint",
	".eslintrc.yml":     "eslint",
	".eslintrc.yaml":    "eslint",

	".prettierrc":       "prettier",
	".prettierrc.json":  "prettier",
	".prettierrc.yml":   "prettier",
	".prettierrc.yaml":  "prettier",
	".prettierrc.js":    "prettier",
	".prettierrc.cjs":   "prettier",
	".prettierrc.mjs":   "prettier",
	"prettier.config.js":  "prettier",
	"prettier.config.cjs": "prettier",
	"prettier.config.mjs": "prettier",

	"package.json":  "package",
	"composer.json": "package",

	"pyproject.toml":   "python",
	"setup.py":         "python",
	"setup.cfg":        "python",
	"requirements.txt": "python",
	"Pipfile":          "python",
	"tox.ini":          "python",
	".python-version":  "python",

	"go.mod": "go",

	"Cargo.toml": "rust",

	".editorconfig": "editor",

	"Dockerfile":          "docker",
	"dockerfile":          "docker",
	"docker-compose.yml":  "docker",
	"docker-compose.yaml": "docker",
	"compose.yml":         "docker",
	"compose.yaml":        "docker",

	".gitlab-ci.yml":      "ci",
	".travis.yml":         "ci",
	"Jenkinsfile":         "ci",
	"azure-pipelines.yml": "ci",

	".gitignore":     "generic",
	".gitattributes": "generic",
	".npmrc":         "generic",
	".yarnrc":        "generic",
	".nvmrc":         "generic",
	"babel.config.js":   "generic",
	"babel.config.json": "generic",
	".babelrc":          "generic",
	"webpack.config.js": "generic",
	"vite.config.js":    "generic",
	"vite.config.ts":    "generic",
	"rollup.config.js":  "generic",
	"jest.config.js":    "generic",
	"jest.config.ts":    "generic",
	"vitest.config.ts":  "generic",
	"vitest.config.js":  "generic",
	".env.example":      "generic",
	".env.template":     "generic",
}

// IsConfigFile reports whether path names a recognized configuration
// file, by exact basename match, the tsconfig.*.json wildcard, CI
// workflow directories, or the generic *rc / *.config.{js,ts,mjs,cjs}
// suffix conventions.
func IsConfigFile(path string) bool {
	name := filepath.Base(path)

	if _, ok := configFilePatterns[name]; ok {
		return true
	}
	if strings.HasPrefix(name, "tsconfig.") && strings.HasSuffix(name, ".json") {
		return true
	}
	if strings.Contains(path, ".github/workflows") && (strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml")) {
		return true
	}
	if strings.HasPrefix(name, ".") && strings.HasSuffix(name, "rc") {
		return true
	}
	if strings.HasSuffix(name, ".config.js") || strings.HasSuffix(name, ".config.ts") {
		return true
	}
	if strings.HasSuffix(name, ".config.mjs") || strings.HasSuffix(name, ".config.cjs") {
		return true
	}
	return false
}

// ConfigType resolves which extractor applies to path.
func ConfigType(path string) string {
	name := filepath.Base(path)

	if t, ok := configFilePatterns[name]; ok {
		return t
	}
	if strings.HasPrefix(name, "tsconfig.") && strings.HasSuffix(name, ".json") {
		return "typescript"
	}
	if strings.Contains(path, ".github/workflows") {
		return "ci"
	}
	if strings.HasPrefix(name, ".") && strings.HasSuffix(name, "rc") {
		return "generic"
	}
	if strings.HasSuffix(name, ".config.js") || strings.HasSuffix(name, ".config.ts") {
		return "generic"
	}
	return "generic"
}

// ExtractMetadata dispatches to the per-type extractor. Unrecognized
// or parse-failing content still yields a Metadata with just the
// config type set, matching the tolerant original.
func ExtractMetadata(content, path string) Metadata {
	switch ConfigType(path) {
	case "typescript":
		return extractTSConfig(content)
	case "eslint":
		return extractESLint(content, filepath.Base(path))
	case "package":
		return extractPackageJSON(content)
	case "python":
		return extractPyproject(content)
	case "go":
		return extractGoMod(content)
	case "rust":
		return extractCargo(content)
	default:
		return Metadata{ConfigType: ConfigType(path)}
	}
}

// Chunk produces the single config chunk for a recognized config
// file, with typed metadata folded into SymbolNames for retrieval
// surfacing, mirroring chunk_config_file's symbol-name conventions.
func Chunk(content, path string) []ChunkWithMetadata {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	lines := strings.Split(content, "\n")
	meta := ExtractMetadata(content, path)
	name := filepath.Base(path)

	var symbolNames []string
	switch {
	case strings.HasPrefix(name, "tsconfig"):
		symbolNames = append(symbolNames, "tsconfig")
		if meta.StrictMode != nil && *meta.StrictMode {
			symbolNames = append(symbolNames, "strict")
		}
		if meta.TargetVersion != "" {
			symbolNames = append(symbolNames, "target:"+meta.TargetVersion)
		}
	case strings.Contains(strings.ToLower(name), "eslint"):
		symbolNames = append(symbolNames, "eslint")
		topRules := firstN(meta.LintRules, 5)
		symbolNames = append(symbolNames, topRules...)
		symbolNames = append(symbolNames, canonicalRuleNames(topRules)...)
	case name == "package.json":
		symbolNames = append(symbolNames, "package.json")
		symbolNames = append(symbolNames, firstN(meta.Dependencies, 5)...)
	case name == "pyproject.toml":
		symbolNames = append(symbolNames, "pyproject")
		if meta.TargetVersion != "" {
			symbolNames = append(symbolNames, "python:"+meta.TargetVersion)
		}
	case name == "go.mod":
		symbolNames = append(symbolNames, "go.mod")
		if meta.TargetVersion != "" {
			symbolNames = append(symbolNames, "go:"+meta.TargetVersion)
		}
	case name == "Cargo.toml":
		symbolNames = append(symbolNames, "Cargo.toml")
		if meta.TargetVersion != "" {
			symbolNames = append(symbolNames, meta.TargetVersion)
		}
	}

	return []ChunkWithMetadata{{
		RawChunk: rawChunk(content, lines, name, symbolNames),
		Metadata: meta,
	}}
}

// ChunkWithMetadata carries the config-typed metadata alongside the
// generic chunk shape the orchestrator persists.
type ChunkWithMetadata struct {
	RawChunk RawChunk
	Metadata Metadata
}

// RawChunk mirrors chunker.RawChunk's shape without importing the
// chunker package, avoiding an import cycle between the two sibling
// file-to-chunk strategies.
type RawChunk struct {
	ChunkType   model.ChunkType
	SymbolName  string
	SymbolNames []string
	LineStart   int
	LineEnd     int
	Content     string
}

func rawChunk(content string, lines []string, name string, symbolNames []string) RawChunk {
	return RawChunk{
		ChunkType:   model.ChunkConfig,
		SymbolName:  name,
		SymbolNames: symbolNames,
		LineStart:   1,
		LineEnd:     len(lines),
		Content:     content,
	}
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func boolPtr(b bool) *bool { return &b }
