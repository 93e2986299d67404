// Package langregistry holds the table-driven, per-language grammar and
// node-kind configuration every other component reads instead of
// hardcoding tree-sitter node kinds. New languages register here and
// nowhere else — tree-sitter node kinds vary per grammar.
package langregistry

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language describes everything the chunker, extractor, and call
// graph builder need to know about one grammar.
type Language struct {
	Name string
	Ext  []string

	// Grammar is nil for languages the pack does not vendor a
	// tree-sitter binding for; files in those languages fall back to
	// line-based chunking rather than being dropped from the indexable
	// set.
	Grammar *sitter.Language

	FunctionKinds  map[string]bool
	ClassKinds     map[string]bool
	MethodKinds    map[string]bool
	InterfaceKinds map[string]bool
	ImportKinds    map[string]bool
	ExportKinds    map[string]bool
	CommentKinds   map[string]bool
	DocstringKinds map[string]bool

	// NameField is the field carrying the declared identifier on a
	// semantic-unit node. "declarator" triggers the C/C++-style
	// declarator unwrapping quirk instead of a direct field lookup.
	NameField string
}

func set(vals ...string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// Registry maps a file extension to its Language entry.
type Registry struct {
	byExt map[string]*Language
}

// Default builds the registry used throughout the indexer, grounded on
// original_source/ast_chunker.py's LANGUAGE_CONFIG table.
func Default() *Registry {
	r := &Registry{byExt: map[string]*Language{}}

	pyLang := sitter.NewLanguage(python.Language())
	python := &Language{
		Name:           "python",
		Ext:            []string{".py", ".pyi"},
		Grammar:        pyLang,
		FunctionKinds:  set("function_definition"),
		ClassKinds:     set("class_definition"),
		MethodKinds:    set("function_definition"),
		ImportKinds:    set("import_statement", "import_from_statement"),
		CommentKinds:   set("comment"),
		DocstringKinds: set("expression_statement"),
		NameField:      "name",
	}
	r.register(python)

	jsLang := sitter.NewLanguage(javascript.Language())
	jsFuncs := set("function_declaration", "arrow_function", "function_expression", "generator_function_declaration")
	jsClasses := set("class_declaration", "class")
	jsMethods := set("method_definition")
	jsImports := set("import_statement", "import_clause", "call_expression")
	jsExports := set("export_statement")
	js := &Language{
		Name:          "javascript",
		Ext:           []string{".js", ".jsx", ".mjs", ".cjs"},
		Grammar:       jsLang,
		FunctionKinds: jsFuncs,
		ClassKinds:    jsClasses,
		MethodKinds:   jsMethods,
		ImportKinds:   jsImports,
		ExportKinds:   jsExports,
		CommentKinds:  set("comment"),
		NameField:     "name",
	}
	r.register(js)

	tsLang := sitter.NewLanguage(typescript.LanguageTypescript())
	ts := &Language{
		Name:           "typescript",
		Ext:            []string{".ts", ".mts"},
		Grammar:        tsLang,
		FunctionKinds:  jsFuncs,
		ClassKinds:     set("class_declaration"),
		MethodKinds:    set("method_definition", "public_field_definition"),
		InterfaceKinds: set("interface_declaration", "type_alias_declaration"),
		ImportKinds:    jsImports,
		ExportKinds:    jsExports,
		CommentKinds:   set("comment"),
		NameField:      "name",
	}
	r.register(ts)

	tsxLang := sitter.NewLanguage(typescript.LanguageTSX())
	tsx := &Language{
		Name:           "tsx",
		Ext:            []string{".tsx"},
		Grammar:        tsxLang,
		FunctionKinds:  jsFuncs,
		ClassKinds:     set("class_declaration"),
		MethodKinds:    set("method_definition", "public_field_definition"),
		InterfaceKinds: set("interface_declaration", "type_alias_declaration"),
		ImportKinds:    jsImports,
		ExportKinds:    jsExports,
		CommentKinds:   set("comment"),
		NameField:      "name",
	}
	r.register(tsx)

	goLang := sitter.NewLanguage(golang.Language())
	goL := &Language{
		Name:          "go",
		Ext:           []string{".go"},
		Grammar:       goLang,
		FunctionKinds: set("function_declaration"),
		ClassKinds:    set("type_declaration"),
		MethodKinds:   set("method_declaration"),
		ImportKinds:   set("import_spec"),
		CommentKinds:  set("comment"),
		NameField:     "name",
	}
	r.register(goL)

	rustLang := sitter.NewLanguage(rust.Language())
	rustL := &Language{
		Name:           "rust",
		Ext:            []string{".rs"},
		Grammar:        rustLang,
		FunctionKinds:  set("function_item"),
		ClassKinds:     set("struct_item", "enum_item", "impl_item", "trait_item"),
		MethodKinds:    set("function_item"),
		ImportKinds:    set("use_declaration"),
		CommentKinds:   set("line_comment", "block_comment"),
		DocstringKinds: set("line_comment"),
		NameField:      "name",
	}
	r.register(rustL)

	javaLang := sitter.NewLanguage(java.Language())
	javaL := &Language{
		Name:           "java",
		Ext:            []string{".java"},
		Grammar:        javaLang,
		ClassKinds:     set("class_declaration", "interface_declaration", "enum_declaration"),
		MethodKinds:    set("method_declaration", "constructor_declaration"),
		ImportKinds:    set("import_declaration"),
		CommentKinds:   set("line_comment", "block_comment"),
		DocstringKinds: set("block_comment"),
		NameField:      "name",
	}
	r.register(javaL)

	cLang := sitter.NewLanguage(c.Language())
	cL := &Language{
		Name:           "c",
		Ext:            []string{".c", ".h"},
		Grammar:        cLang,
		FunctionKinds:  set("function_definition"),
		ClassKinds:     set("struct_specifier", "union_specifier", "enum_specifier"),
		ImportKinds:    set("preproc_include"),
		CommentKinds:   set("comment"),
		DocstringKinds: set("comment"),
		NameField:      "declarator",
	}
	r.register(cL)

	cppLang := sitter.NewLanguage(cpp.Language())
	cppL := &Language{
		Name:           "cpp",
		Ext:            []string{".cpp", ".cc", ".hpp"},
		Grammar:        cppLang,
		FunctionKinds:  set("function_definition"),
		ClassKinds:     set("class_specifier", "struct_specifier", "enum_specifier"),
		MethodKinds:    set("function_definition"),
		ImportKinds:    set("preproc_include"),
		CommentKinds:   set("comment"),
		DocstringKinds: set("comment"),
		NameField:      "declarator",
	}
	r.register(cppL)

	rubyLang := sitter.NewLanguage(ruby.Language())
	rubyL := &Language{
		Name:          "ruby",
		Ext:           []string{".rb"},
		Grammar:       rubyLang,
		FunctionKinds: set("method", "singleton_method"),
		ClassKinds:    set("class", "module"),
		MethodKinds:   set("method", "singleton_method"),
		ImportKinds:   set("call"), // require/require_relative are `call` nodes; filtered by extractor
		CommentKinds:  set("comment"),
		NameField:     "name",
	}
	r.register(rubyL)

	phpLang := sitter.NewLanguage(php.LanguagePHP())
	phpL := &Language{
		Name:           "php",
		Ext:            []string{".php"},
		Grammar:        phpLang,
		FunctionKinds:  set("function_definition"),
		ClassKinds:     set("class_declaration", "interface_declaration", "trait_declaration"),
		MethodKinds:    set("method_declaration"),
		ImportKinds:    set("namespace_use_declaration"),
		CommentKinds:   set("comment"),
		DocstringKinds: set("comment"),
		NameField:      "name",
	}
	r.register(phpL)

	// Registered without a vendored grammar: the pack carries no Go
	// binding for these, so files route through the fallback
	// line-chunker instead of being excluded.
	for _, noGrammar := range []Language{
		{Name: "csharp", Ext: []string{".cs"}},
		{Name: "kotlin", Ext: []string{".kt"}},
		{Name: "scala", Ext: []string{".scala"}},
		{Name: "fsharp", Ext: []string{".fs"}},
		{Name: "swift", Ext: []string{".swift"}},
	} {
		l := noGrammar
		r.register(&l)
	}

	return r
}

func (r *Registry) register(l *Language) {
	for _, ext := range l.Ext {
		r.byExt[ext] = l
	}
}

// Lookup returns the Language registered for a file extension (as
// returned by filepath.Ext, including the leading dot), and whether
// one was found.
func (r *Registry) Lookup(ext string) (*Language, bool) {
	l, ok := r.byExt[ext]
	return l, ok
}

// LookupByName returns the Language with the given Name, for callers
// that only have a chunk's recorded language string (e.g. C8 resolving
// which grammar to re-parse a chunk's content with).
func (r *Registry) LookupByName(name string) (*Language, bool) {
	for _, l := range r.byExt {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// IsMethod reports whether a node kind qualifies as a method given its
// parent's classification: a method kind only qualifies under a
// class-like parent, otherwise it is a function.
func (l *Language) IsMethod(kind string, parentIsClass bool) bool {
	return l.MethodKinds[kind] && parentIsClass
}
