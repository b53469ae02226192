package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"
	dupfilehash "github.com/mattkeenan/dupfilehash/pkg"
)

type scanCommand struct {
	settings
	format   string
	ignore   stringList
	progress bool
}

func (*scanCommand) Name() string     { return "scan" }
func (*scanCommand) Synopsis() string { return "Report duplicate files under a directory" }
func (*scanCommand) Usage() string {
	return `scan [-config <dir>] [-format human|json|yaml|fdupes] [-set key:value]... <directory>:
  Scan a directory tree and print groups of files with identical content.
`
}

func (c *scanCommand) SetFlags(f *flag.FlagSet) {
	c.settings.register(f)
	f.StringVar(&c.format, "format", "", "output format: human, json, yaml, fdupes (default from config)")
	f.Var(&c.ignore, "ignore", "regex of relative paths to skip (repeatable)")
	f.BoolVar(&c.progress, "progress", true, "show hashing progress on stderr")
}

func (c *scanCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	if c.format != "" {
		c.overrides = append(c.overrides, "format:"+c.format)
	}
	cfg, err := c.settings.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	result, err := runScan(ctx, &c.settings, cfg, f.Arg(0), c.ignore, c.progress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	format := strings.ToLower(cfg.GetOutputConfig().Format)
	if err := dupfilehash.WriteReport(os.Stdout, format, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runScan builds options from the config and runs the engine
func runScan(ctx context.Context, s *settings, cfg *dupfilehash.Config, root string, ignore []string, progress bool) (*dupfilehash.Result, error) {
	opts, err := cfg.ScanOptions()
	if err != nil {
		return nil, err
	}
	if opts.Ignore, err = s.ignoreManager(ignore); err != nil {
		return nil, err
	}

	// log lines would tear the progress line
	if progress && dupfilehash.GetVerbose() == 0 {
		opts.Progress = newProgressLine()
	} else {
		progress = false
	}
	if dupfilehash.GetDebugEnabled(dupfilehash.DebugScan) {
		dupfilehash.Logger().WithField("config", cfg.Path()).Debugf(
			"scan options: min=%d large=%d sample=%d workers=%d buffer=%d bucket=%s follow=%t skip-hardlinks=%t",
			opts.MinSize, opts.LargeThreshold, opts.SampleSize, opts.Workers, opts.BufferSize,
			opts.MtimeBucket, opts.FollowFileLinks, opts.SkipHardlinks)
	}

	result, err := dupfilehash.Scan(ctx, root, opts)
	if progress {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
	if errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("scan cancelled")
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

// newProgressLine redraws a single status line on stderr
func newProgressLine() dupfilehash.ProgressObserver {
	return dupfilehash.ProgressFunc(func(completed, total int) {
		if completed != total && completed%32 != 0 {
			return
		}
		fmt.Fprintf(os.Stderr, "\rHashing %s/%s files", humanize.Comma(int64(completed)), humanize.Comma(int64(total)))
	})
}
