package chunker

import (
	"strings"

	"github.com/kraklabs/codeintel/internal/model"
)

// fallback produces fixed-size, overlapping line-window chunks for
// content that has no grammar or whose grammar failed to parse,
// grounded on original_source/ast_chunker.py's
// chunk_with_fallback.
func (c *Chunker) fallback(content string) []RawChunk {
	lines := strings.Split(content, "\n")
	total := len(lines)

	if total <= c.opts.FallbackMaxLines {
		return []RawChunk{{
			ChunkType: model.ChunkOther,
			LineStart: 1,
			LineEnd:   total,
			Content:   content,
		}}
	}

	var chunks []RawChunk
	start := 0
	for start < total {
		end := start + c.opts.FallbackMaxLines
		if end > total {
			end = total
		}

		chunks = append(chunks, RawChunk{
			ChunkType: model.ChunkOther,
			LineStart: start + 1,
			LineEnd:   end,
			Content:   strings.Join(lines[start:end], "\n"),
		})

		if end < total {
			start = end - c.opts.FallbackOverlap
		} else {
			start = total
		}
	}
	return chunks
}
