// Command reshelve copies a directory tree into a new layout described by a
// path schema.
package main

import (
	"os"

	"github.com/custodia-labs/reshelve/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
