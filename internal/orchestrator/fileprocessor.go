package orchestrator

import (
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kraklabs/codeintel/internal/chunker"
	"github.com/kraklabs/codeintel/internal/configchunker"
	"github.com/kraklabs/codeintel/internal/extract"
	"github.com/kraklabs/codeintel/internal/langregistry"
	"github.com/kraklabs/codeintel/internal/model"
)

// processFile runs C2/C3 then the C4/C5 augmentation pass over one
// file's content, returning its File record and fully populated
// Chunks (ids, imports, exports, content hash — embedding still
// unset, filled in by the embed stage).
func processFile(c *chunker.Chunker, registry *langregistry.Registry, repoID, repoURL, branch, relPath string, content []byte, modTime time.Time) (*model.File, []*model.Chunk) {
	ext := strings.ToLower(filepath.Ext(relPath))
	text := string(content)

	var raw []chunker.RawChunk
	var language string

	if configchunker.IsConfigFile(relPath) {
		for _, cwm := range configchunker.Chunk(text, relPath) {
			raw = append(raw, chunker.RawChunk{
				ChunkType:   cwm.RawChunk.ChunkType,
				SymbolName:  cwm.RawChunk.SymbolName,
				SymbolNames: cwm.RawChunk.SymbolNames,
				LineStart:   cwm.RawChunk.LineStart,
				LineEnd:     cwm.RawChunk.LineEnd,
				Content:     cwm.RawChunk.Content,
			})
		}
	} else {
		raw = c.Chunk(ext, text)
		if lang, ok := registry.Lookup(ext); ok {
			language = lang.Name
		}
	}

	file := &model.File{
		Path:         relPath,
		RepoID:       repoID,
		RepoURL:      repoURL,
		Branch:       branch,
		Language:     language,
		Size:         int64(len(content)),
		LastModified: modTime.UTC().Format(time.RFC3339),
	}

	if len(raw) == 0 {
		return file, nil
	}

	fileImports, fileExports := extractFileSymbols(registry, ext, content)

	chunks := make([]*model.Chunk, 0, len(raw))
	for _, rc := range raw {
		id := chunker.ChunkID(repoID, branch, relPath, rc.LineStart, rc.LineEnd)
		chunk := &model.Chunk{
			ID:            id,
			FilePath:      relPath,
			RepoID:        repoID,
			Branch:        branch,
			Language:      language,
			ChunkType:     rc.ChunkType,
			SymbolName:    rc.SymbolName,
			SymbolNames:   rc.SymbolNames,
			LineStart:     rc.LineStart,
			LineEnd:       rc.LineEnd,
			Content:       rc.Content,
			ContentHash:   model.ComputeContentHash(rc.Content),
			FullTextIndex: rc.Content,
			Imports:       fileImports,
			Exports:       chunkExports(rc.SymbolNames, fileExports),
		}
		chunks = append(chunks, chunk)
	}

	return file, chunks
}

// chunkExports attributes file-level exports to the chunk that
// declares them; module/config/other chunks (no symbol names of their
// own) inherit the file's full export list, since a re-export
// statement or top-level constant has no single owning semantic unit.
func chunkExports(symbolNames, fileExports []string) []string {
	if len(symbolNames) == 0 {
		return fileExports
	}

	owned := make(map[string]bool, len(symbolNames))
	for _, s := range symbolNames {
		owned[s] = true
	}

	var out []string
	for _, e := range fileExports {
		if owned[e] {
			out = append(out, e)
		}
	}
	return out
}

// extractFileSymbols runs the symbol extractor once over the whole
// file, independent of chunk boundaries, for languages with a registered
// grammar. Unsupported extensions return nil/nil rather than erroring,
// since C2 already fell back to line-based chunking for them.
func extractFileSymbols(registry *langregistry.Registry, ext string, content []byte) (imports, exports []string) {
	lang, ok := registry.Lookup(ext)
	if !ok || lang.Grammar == nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang.Grammar)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	return extract.Imports(root, lang, content), extract.Exports(root, lang, content)
}
