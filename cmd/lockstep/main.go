// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"os"
)

func main() {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	err := cmd.Execute()
	if opts.Logger != nil {
		_ = opts.Logger.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", cmd.Name(), err)
		os.Exit(1)
	}
}
