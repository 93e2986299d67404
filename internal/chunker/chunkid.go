package chunker

import (
	"fmt"

	"github.com/google/uuid"
)

// idNamespace is a fixed namespace UUID so chunk ids are stable across
// process restarts, not just within one run.
var idNamespace = uuid.MustParse("6ba7b815-9dad-11d1-80b4-00c04fd430c8")

// ChunkID computes the deterministic id required by the chunk model:
// a UUID of (repoID, branch, filePath, location), so re-chunking an
// unchanged region during an incremental run produces the same id
// instead of a fresh row.
func ChunkID(repoID, branch, filePath string, lineStart, lineEnd int) string {
	key := fmt.Sprintf("%s\x00%s\x00%s\x00%d\x00%d", repoID, branch, filePath, lineStart, lineEnd)
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}
