package orchestrator

import (
	"encoding/json"
	"fmt"
)

// Result is the run summary printed as the final __RESULT__ line,
// consumed by whatever invoked the indexer as a subprocess.
type Result struct {
	Mode             string  `json:"mode"`
	FilesProcessed   int     `json:"files_processed"`
	FilesSkipped     int     `json:"files_skipped"`
	ChunksInserted   int     `json:"chunks_inserted"`
	ChunksDeleted    int     `json:"chunks_deleted"`
	CacheHits        int     `json:"cache_hits"`
	CacheMisses      int     `json:"cache_misses"`
	EmbeddingsFailed int     `json:"embeddings_failed"`
	ImportEdges      int     `json:"import_edges"`
	Relationships    int     `json:"relationships"`
	ElapsedSeconds   float64 `json:"elapsed_seconds"`
}

// Print writes the result as a single __RESULT__:<json> line to
// stdout, the contract external callers parse to read run statistics.
func (r *Result) Print() {
	b, err := json.Marshal(r)
	if err != nil {
		fmt.Printf("__RESULT__:{\"error\":%q}\n", err.Error())
		return
	}
	fmt.Printf("__RESULT__:%s\n", b)
}
