// Command cortex-query answers search and graph questions over an
// already-indexed code intelligence store, one subcommand per
// api.Facade operation.
package main

import "github.com/kraklabs/codeintel/internal/cliquery"

func main() {
	cliquery.Execute()
}
