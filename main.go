// Command weight calculates the total size of files matching glob patterns.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/idelchi/weight/internal/cli"
	"github.com/idelchi/weight/internal/weight"
)

// Will be set by the build system.
var version = "unknown - unofficial build"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		if errors.Is(err, weight.ErrAllPatternsInvalid) || errors.Is(err, weight.ErrNoRoots) || errors.Is(err, cli.ErrUsage) {
			os.Exit(2) //nolint:mnd // Distinct status for unusable input
		}

		os.Exit(1)
	}
}
