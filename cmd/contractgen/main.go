// Command contractgen generates contract forwarders and runs contract
// scenarios. See internal/cli for the subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/dbc/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "contractgen: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
