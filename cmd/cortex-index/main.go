// Command cortex-index runs the indexing CLI (full, incremental, and
// watch subcommands) against the code intelligence store.
package main

import "github.com/kraklabs/codeintel/internal/cliindex"

func main() {
	cliindex.Execute()
}
