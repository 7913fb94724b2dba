// Command episteme is the CLI entry point of §6, delegating argument
// parsing and the run to internal/cli's cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/epistemicgo/episteme/internal/cli"
	"github.com/epistemicgo/episteme/internal/domain"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if ce, ok := err.(*domain.CoreError); ok {
			os.Exit(ce.ExitCode())
		}
		os.Exit(1)
	}
}
