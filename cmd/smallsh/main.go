package main

import (
	"errors"
	"fmt"
	"os"

	"smallsh/internal/shell"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		// The shell already reported a spawn failure before giving up.
		if !errors.Is(err, shell.ErrSpawn) {
			fmt.Fprintf(os.Stderr, "smallsh: %v\n", err)
		}
		os.Exit(1)
	}
}
