package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/google/subcommands"
	dupfilehash "github.com/mattkeenan/dupfilehash/pkg"
)

type deleteCommand struct {
	settings
	ignore stringList
	dryRun bool
}

func (*deleteCommand) Name() string     { return "delete" }
func (*deleteCommand) Synopsis() string { return "Delete all but the first file of each duplicate group" }
func (*deleteCommand) Usage() string {
	return `delete [-dry-run] [-config <dir>] [-set key:value]... <directory>:
  Scan a directory tree and remove every duplicate except the first file found
  in each group. Files above the large-file threshold are matched on sampled
  content; raise large_threshold to hash them in full before deleting.
`
}

func (c *deleteCommand) SetFlags(f *flag.FlagSet) {
	c.settings.register(f)
	f.Var(&c.ignore, "ignore", "regex of relative paths to skip (repeatable)")
	f.BoolVar(&c.dryRun, "dry-run", false, "list what would be deleted without deleting")
}

func (c *deleteCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	cfg, err := c.settings.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	result, err := runScan(ctx, &c.settings, cfg, f.Arg(0), c.ignore, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	summary, err := deleteDuplicates(ctx, result.Groups, c.dryRun, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	verb := "Deleted"
	if c.dryRun {
		verb = "Would delete"
	}
	fmt.Printf("%s %d files, %s freed\n", verb, summary.removed, humanize.IBytes(uint64(summary.freed)))
	if summary.failed > 0 {
		fmt.Fprintf(os.Stderr, "%d files could not be deleted\n", summary.failed)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// deleteSummary counts what one delete pass did
type deleteSummary struct {
	removed int
	skipped int
	failed  int
	freed   int64
}

// deleteDuplicates removes every member but the first of each group. Members
// sharing the kept file's inode are left alone.
func deleteDuplicates(ctx context.Context, groups []dupfilehash.DuplicateGroup, dryRun bool, out io.Writer) (deleteSummary, error) {
	keep := color.New(color.FgGreen)
	remove := color.New(color.FgRed)
	var summary deleteSummary

	for _, group := range groups {
		kept := group.Members[0]
		keep.Fprintf(out, "keep    %s\n", kept.Path)

		for _, member := range group.Members[1:] {
			if err := ctx.Err(); err != nil {
				return summary, fmt.Errorf("interrupted: %w", err)
			}
			if member.SameInode(kept) {
				fmt.Fprintf(out, "same file, skipping %s\n", member.Path)
				summary.skipped++
				continue
			}
			if dryRun {
				remove.Fprintf(out, "would delete %s\n", member.Path)
				summary.removed++
				summary.freed += group.Size
				continue
			}
			if err := dupfilehash.Delete(member.Path); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				summary.failed++
				continue
			}
			remove.Fprintf(out, "deleted %s\n", member.Path)
			summary.removed++
			summary.freed += group.Size
		}
	}
	return summary, nil
}
