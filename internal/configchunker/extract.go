package configchunker

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	jsonLineComment  = regexp.MustCompile(`(?m)//.*$`)
	jsonBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	jsonTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// parseJSONSafe tolerates the comments and trailing commas commonly
// found in hand-edited JS/TS config files before delegating to
// encoding/json, matching parse_json_safe's preprocessing.
func parseJSONSafe(content string) (map[string]any, bool) {
	cleaned := jsonLineComment.ReplaceAllString(content, "")
	cleaned = jsonBlockComment.ReplaceAllString(cleaned, "")
	cleaned = jsonTrailingComma.ReplaceAllString(cleaned, "$1")

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, false
	}
	return data, true
}

func extractTSConfig(content string) Metadata {
	meta := Metadata{ConfigType: "typescript"}

	data, ok := parseJSONSafe(content)
	if !ok {
		return meta
	}
	compilerOpts, _ := data["compilerOptions"].(map[string]any)
	if compilerOpts == nil {
		return meta
	}
	meta.CompilerOptions = compilerOpts

	strict, _ := compilerOpts["strict"].(bool)
	meta.StrictMode = boolPtr(strict)

	if target, ok := compilerOpts["target"].(string); ok {
		meta.TargetVersion = target
	}
	if module, ok := compilerOpts["module"].(string); ok {
		meta.ModuleType = module
	}
	return meta
}

func extractESLint(content, filename string) Metadata {
	meta := Metadata{ConfigType: "eslint"}

	if !strings.HasSuffix(filename, ".json") && filename != ".eslintrc" {
		return meta
	}
	data, ok := parseJSONSafe(content)
	if !ok {
		return meta
	}

	if rules, ok := data["rules"].(map[string]any); ok {
		for rule, cfg := range rules {
			switch v := cfg.(type) {
			case string:
				if v != "off" {
					meta.LintRules = append(meta.LintRules, rule)
				}
			case []any:
				if len(v) == 0 {
					continue
				}
				switch first := v[0].(type) {
				case string:
					if first != "off" {
						meta.LintRules = append(meta.LintRules, rule)
					}
				case float64:
					if first != 0 {
						meta.LintRules = append(meta.LintRules, rule)
					}
				}
			}
		}
	}

	var extends []string
	switch v := data["extends"].(type) {
	case string:
		extends = []string{v}
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok {
				extends = append(extends, s)
			}
		}
	}
	for _, e := range extends {
		if strings.Contains(e, "strict") {
			meta.StrictMode = boolPtr(true)
			break
		}
	}
	return meta
}

var keyDeps = []string{
	"react", "vue", "angular", "svelte", "next", "nuxt", "express",
	"fastify", "koa", "nest", "typescript", "webpack", "vite", "rollup", "esbuild",
}

var keyDevDeps = []string{
	"typescript", "eslint", "prettier", "jest", "vitest", "mocha", "chai",
	"@types/node", "ts-node", "tsx",
}

func extractPackageJSON(content string) Metadata {
	meta := Metadata{ConfigType: "package"}

	data, ok := parseJSONSafe(content)
	if !ok {
		return meta
	}

	if deps, ok := data["dependencies"].(map[string]any); ok && len(deps) > 0 {
		seen := map[string]bool{}
		for _, k := range keyDeps {
			if _, present := deps[k]; present {
				meta.Dependencies = append(meta.Dependencies, k)
				seen[k] = true
			}
		}
		var other []string
		for k := range deps {
			if !seen[k] {
				other = append(other, k)
			}
		}
		meta.Dependencies = append(meta.Dependencies, firstN(other, 10)...)
	}

	if devDeps, ok := data["devDependencies"].(map[string]any); ok && len(devDeps) > 0 {
		for _, k := range keyDevDeps {
			if _, present := devDeps[k]; present {
				meta.DevDependencies = append(meta.DevDependencies, k)
			}
		}
	}

	if t, _ := data["type"].(string); t == "module" {
		meta.ModuleType = "esm"
	} else if _, hasMain := data["main"]; hasMain && data["type"] == nil {
		meta.ModuleType = "commonjs"
	}
	return meta
}

var (
	pyVersionRe  = regexp.MustCompile(`(?i)(?:requires-python|python)\s*=\s*["']?[>=<]*(\d+\.\d+)`)
	pyDepsRe     = regexp.MustCompile(`(?s)\[(?:project\.)?dependencies\](.*?)(?:\[|$)`)
	pyDepNameRe  = regexp.MustCompile(`(?m)^([a-zA-Z0-9_-]+)`)
	ruffSelectRe = regexp.MustCompile(`(?s)select\s*=\s*\[(.*?)\]`)
	ruffRuleRe   = regexp.MustCompile(`"([A-Z]+)"`)
)

// extractPyproject reads version/dependency/lint settings out of
// pyproject.toml with a real TOML parser where the document parses
// cleanly, falling back to the original's targeted regex extraction
// for the handful of fields it cares about when it doesn't (hand
// edited pyproject.toml files routinely carry PEP 621 dynamic syntax
// a strict parser rejects).
func extractPyproject(content string) Metadata {
	meta := Metadata{ConfigType: "python"}

	var doc map[string]any
	if err := toml.Unmarshal([]byte(content), &doc); err == nil {
		if project, ok := doc["project"].(map[string]any); ok {
			if rp, ok := project["requires-python"].(string); ok {
				if m := pyVersionRe.FindStringSubmatch("requires-python = \"" + rp + "\""); m != nil {
					meta.TargetVersion = m[1]
				}
			}
			if deps, ok := project["dependencies"].([]any); ok {
				for _, d := range firstN(toStrings(deps), 15) {
					meta.Dependencies = append(meta.Dependencies, firstIdent(d))
				}
			}
		}
		if tool, ok := doc["tool"].(map[string]any); ok {
			if mypy, ok := tool["mypy"].(map[string]any); ok {
				if strict, _ := mypy["strict"].(bool); strict {
					meta.StrictMode = boolPtr(true)
				}
			}
			if ruff, ok := tool["ruff"].(map[string]any); ok {
				if sel, ok := ruff["select"].([]any); ok {
					meta.LintRules = toStrings(sel)
				}
			}
		}
		if meta.TargetVersion != "" || len(meta.Dependencies) > 0 || meta.StrictMode != nil || len(meta.LintRules) > 0 {
			return meta
		}
	}

	if m := pyVersionRe.FindStringSubmatch(content); m != nil {
		meta.TargetVersion = m[1]
	}
	if m := pyDepsRe.FindStringSubmatch(content); m != nil {
		deps := pyDepNameRe.FindAllStringSubmatch(m[1], -1)
		for _, d := range firstNMatches(deps, 15) {
			meta.Dependencies = append(meta.Dependencies, d[1])
		}
	}
	if strings.Contains(content, "[tool.mypy]") && strings.Contains(content, "strict = true") {
		meta.StrictMode = boolPtr(true)
	}
	if strings.Contains(content, "[tool.ruff]") {
		if m := ruffSelectRe.FindStringSubmatch(content); m != nil {
			for _, r := range ruffRuleRe.FindAllStringSubmatch(m[1], -1) {
				meta.LintRules = append(meta.LintRules, r[1])
			}
		}
	}
	return meta
}

var (
	goVersionRe    = regexp.MustCompile(`(?m)^go\s+(\d+\.\d+)`)
	goRequireBlock = regexp.MustCompile(`(?s)require\s*\((.*?)\)`)
	goRequireLine  = regexp.MustCompile(`(?m)^require\s+(\S+)`)
	goModDepName   = regexp.MustCompile(`(?m)^\s*(\S+)`)
)

// extractGoMod pulls the Go version and require-block module paths.
// go.mod is deliberately NOT parsed with a module-aware parser here:
// the original only ever needs the version line and the require
// list's module paths, a narrower read than a full modfile parse
// would buy, and no pack example wires a modfile library for this.
func extractGoMod(content string) Metadata {
	meta := Metadata{ConfigType: "go"}

	if m := goVersionRe.FindStringSubmatch(content); m != nil {
		meta.TargetVersion = m[1]
	}

	if m := goRequireBlock.FindStringSubmatch(content); m != nil {
		for _, line := range goModDepName.FindAllStringSubmatch(m[1], -1) {
			dep := line[1]
			if dep != "" && !strings.HasPrefix(dep, "//") {
				meta.Dependencies = append(meta.Dependencies, dep)
			}
			if len(meta.Dependencies) >= 15 {
				break
			}
		}
	} else {
		for _, m := range goRequireLine.FindAllStringSubmatch(content, 15) {
			meta.Dependencies = append(meta.Dependencies, m[1])
		}
	}
	return meta
}

var (
	cargoEditionRe = regexp.MustCompile(`(?m)^edition\s*=\s*"(\d+)"`)
	cargoDepsRe    = regexp.MustCompile(`(?s)\[dependencies\](.*?)(?:\[|$)`)
	cargoDepNameRe = regexp.MustCompile(`(?m)^([a-zA-Z0-9_-]+)\s*=`)
)

func extractCargo(content string) Metadata {
	meta := Metadata{ConfigType: "rust"}

	var doc map[string]any
	if err := toml.Unmarshal([]byte(content), &doc); err == nil {
		if pkg, ok := doc["package"].(map[string]any); ok {
			if ed, ok := pkg["edition"].(string); ok {
				meta.TargetVersion = "edition " + ed
			}
		}
		if deps, ok := doc["dependencies"].(map[string]any); ok {
			var names []string
			for k := range deps {
				names = append(names, k)
			}
			meta.Dependencies = firstN(names, 15)
		}
		if meta.TargetVersion != "" || len(meta.Dependencies) > 0 {
			return meta
		}
	}

	if m := cargoEditionRe.FindStringSubmatch(content); m != nil {
		meta.TargetVersion = "edition " + m[1]
	}
	if m := cargoDepsRe.FindStringSubmatch(content); m != nil {
		for _, d := range firstNMatches(cargoDepNameRe.FindAllStringSubmatch(m[1], -1), 15) {
			meta.Dependencies = append(meta.Dependencies, d[1])
		}
	}
	return meta
}

// parseYAML decodes content as a YAML mapping, reporting false when it
// does not parse. No extractor in this package calls it.
func parseYAML(content string) (map[string]any, bool) {
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, false
	}
	return doc, true
}

func toStrings(vals []any) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func firstIdent(spec string) string {
	for i, r := range spec {
		if !(r == '_' || r == '-' || r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return spec[:i]
		}
	}
	return spec
}

func firstNMatches(m [][]string, n int) [][]string {
	if len(m) <= n {
		return m
	}
	return m[:n]
}
