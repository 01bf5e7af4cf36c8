// Command divelog browses a local dive logbook from the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkordes/dive-logbook/internal/cli"
)

func main() {
	if err := cli.New().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "divelog:", err)
		os.Exit(1)
	}
}
