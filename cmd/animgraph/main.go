// Command animgraph validates, simulates, serves and inspects animation
// node graphs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/animgraph/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
