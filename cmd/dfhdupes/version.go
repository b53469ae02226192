package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

var (
	// Set at build time with -ldflags "-X main.Version=..."
	Version = "dev"
	Commit  = "none"
)

type versionCommand struct{}

func (*versionCommand) Name() string     { return "version" }
func (*versionCommand) Synopsis() string { return "Print version information" }
func (*versionCommand) Usage() string {
	return `version:
  Print version and build commit.
`
}

func (c *versionCommand) SetFlags(f *flag.FlagSet) {}

func (c *versionCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Printf("dfhdupes version %s\n", Version)
	fmt.Printf("commit: %s\n", Commit)
	return subcommands.ExitSuccess
}
