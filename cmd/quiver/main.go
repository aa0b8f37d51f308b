// Command quiver compiles query plans to parameterized Cypher.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/quiver/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands report their own output; only surface errors that
		// cobra raised before a command ran (unknown flags, bad args).
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
