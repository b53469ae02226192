package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	dupfilehash "github.com/mattkeenan/dupfilehash/pkg"
	"gopkg.in/yaml.v2"
)

type configCommand struct {
	settings
	save bool
}

func (*configCommand) Name() string     { return "config" }
func (*configCommand) Synopsis() string { return "Show or update the configuration" }
func (*configCommand) Usage() string {
	return `config [-config <dir>] [-set key:value]... [-save]:
  Print the effective configuration. With -save, write it (including any -set
  overrides) to the config file.
`
}

func (c *configCommand) SetFlags(f *flag.FlagSet) {
	c.settings.register(f)
	f.BoolVar(&c.save, "save", false, "write the effective configuration to the config file")
}

func (c *configCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.settings.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.save {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to save config: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Saved %s\n", cfg.Path())
	}

	out, err := yaml.Marshal(cfg.GetAllConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("# %s\n%s", cfg.Path(), out)

	im := dupfilehash.NewIgnoreManager(c.configDir)
	if err := im.LoadIgnorePatterns(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, pattern := range im.GetPatterns() {
		fmt.Printf("ignore: %s\n", pattern)
	}
	return subcommands.ExitSuccess
}
