package main

import (
	"os"

	"github.com/idilsaglam/habits/internal/cli"
)

func main() {
	// Flags, config and subcommands are all handled by the CLI runner.
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
