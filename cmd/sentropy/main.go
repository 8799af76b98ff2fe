// Command sentropy measures S-entropy coordinates and tracks convergence.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/sentropy/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
