package dupfilehash

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/mattkeenan/dupfilehash/pkg")

// ScanStats summarises one scan. FilesSeen counts regular files and
// followed links; Candidates those at or above the minimum size; UniqueSize
// the candidates exempted from hashing; LinkAliases the followed symlinks
// folded into their target; WastedBytes the space held by
// redundant copies.
type ScanStats struct {
	FilesSeen   int           `json:"files_seen" yaml:"files_seen"`
	Candidates  int           `json:"candidates" yaml:"candidates"`
	UniqueSize  int           `json:"unique_size" yaml:"unique_size"`
	Hardlinks   int           `json:"hardlinks" yaml:"hardlinks"`
	LinkAliases int           `json:"link_aliases" yaml:"link_aliases"`
	Hashed      int           `json:"hashed" yaml:"hashed"`
	BytesHashed int64         `json:"bytes_hashed" yaml:"bytes_hashed"`
	Duplicates  int           `json:"duplicates" yaml:"duplicates"`
	WastedBytes int64         `json:"wasted_bytes" yaml:"wasted_bytes"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

// Result is everything one scan produces
type Result struct {
	ScanID   string
	Root     string
	Groups   []DuplicateGroup
	Warnings []Warning
	Stats    ScanStats
}

// Scan finds duplicate files under root.
//
// The pipeline runs strictly forward: the collector walks the tree, the
// filter drops files whose size is unique, the executor hashes the rest on
// opts.Workers goroutines, and the grouper reports fingerprints shared by two
// or more files. Per-file failures become warnings; only an invalid root or
// invalid options stop the scan, and they do so before any file is read.
func Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	defer VerboseEnter()()

	opts, err := opts.normalise()
	if err != nil {
		return nil, err
	}

	absRoot, err := checkRoot(opts.Fs, root)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ScanID: uuid.NewString(),
		Root:   absRoot,
	}
	start := time.Now()

	ctx, span := tracer.Start(ctx, "Scan", trace.WithAttributes(
		attribute.String("dfh.scan_id", result.ScanID),
		attribute.String("dfh.root", absRoot),
		attribute.Int("dfh.workers", opts.Workers),
	))
	defer span.End()

	warn := func(w Warning) {
		result.Warnings = append(result.Warnings, w)
		logWarning(w)
		if opts.OnWarning != nil {
			opts.OnWarning(w)
		}
	}

	VerboseLog(1, "Scanning %s (min size %d, large threshold %d, %d workers)",
		absRoot, opts.MinSize, opts.LargeThreshold, opts.Workers)

	// Traversal is lazy: the filter pulls records out of the walk
	_, filterSpan := tracer.Start(ctx, "collect+filter")
	col := newCollector(absRoot, &opts, warn)
	filtered := filterCandidates(col.records(ctx), opts.MtimeBucket, opts.SkipHardlinks)
	filterSpan.SetAttributes(
		attribute.Int("dfh.candidates", len(filtered.candidates)),
		attribute.Int("dfh.unique_size", filtered.uniqueSize),
	)
	filterSpan.End()
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "interrupted")
		return nil, fmt.Errorf("scan of %s interrupted: %w", absRoot, err)
	}

	result.Stats.FilesSeen = col.seen
	result.Stats.Candidates = filtered.seen
	result.Stats.UniqueSize = filtered.uniqueSize
	result.Stats.Hardlinks = filtered.hardlinks
	result.Stats.LinkAliases = filtered.linkAliases
	VerboseLog(1, "Hashing %d of %d candidates (%d unique sizes skipped)",
		len(filtered.candidates), filtered.seen, filtered.uniqueSize)

	hashCtx, hashSpan := tracer.Start(ctx, "hash")
	executor := NewExecutor(NewHasher(opts), opts.Workers, opts.Progress)
	hashed, err := executor.Run(hashCtx, filtered.candidates, warn)
	hashSpan.SetAttributes(attribute.Int64("dfh.bytes_hashed", executor.BytesRead()))
	hashSpan.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "interrupted")
		return nil, fmt.Errorf("scan of %s: %w", absRoot, err)
	}
	result.Stats.Hashed = len(hashed)
	result.Stats.BytesHashed = executor.BytesRead()

	_, groupSpan := tracer.Start(ctx, "group")
	groups, err := GroupDuplicates(hashed)
	groupSpan.End()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to group duplicates: %w", err)
	}
	result.Groups = groups

	for _, group := range groups {
		result.Stats.Duplicates += group.Count
		result.Stats.WastedBytes += group.Wasted()
	}
	result.Stats.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("dfh.groups", len(groups)),
		attribute.Int("dfh.warnings", len(result.Warnings)),
	)
	VerboseLog(1, "Found %d duplicate groups, %d warnings in %s",
		len(groups), len(result.Warnings), result.Stats.Duration)

	return result, nil
}

// checkRoot resolves root and confirms it is a directory
func checkRoot(fs afero.Fs, root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRootNotFound, root, err)
	}

	info, err := fs.Stat(absRoot)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrRootNotFound, absRoot)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRootNotFound, absRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootNotDirectory, absRoot)
	}
	return absRoot, nil
}
