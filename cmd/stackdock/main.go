// Command stackdock manages stacks of cards with optimistic sync.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/stackdock/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "stackdock: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
