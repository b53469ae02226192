package dupfilehash

import (
	"context"
	"iter"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// collector walks a directory tree and yields candidate FileRecords.
// It runs on the calling goroutine and only reads the filesystem.
type collector struct {
	fs   afero.Fs
	root string
	opts *Options
	seq  uint64
	seen int
	warn func(Warning)
}

func newCollector(root string, opts *Options, warn func(Warning)) *collector {
	return &collector{
		fs:   opts.Fs,
		root: root,
		opts: opts,
		warn: warn,
	}
}

// records returns the lazy sequence of candidate files under the root.
// Entries are visited in name order, so a fixed tree always produces the
// same sequence. Iteration stops early when ctx is cancelled.
func (c *collector) records(ctx context.Context) iter.Seq[FileRecord] {
	return func(yield func(FileRecord) bool) {
		defer VerboseEnter()()
		c.walkDir(ctx, c.root, yield)
	}
}

// walkDir returns false once the consumer or ctx asks to stop
func (c *collector) walkDir(ctx context.Context, dir string, yield func(FileRecord) bool) bool {
	if ctx.Err() != nil {
		return false
	}

	entries, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		c.warn(Warning{Path: dir, Stage: StageTraverse, Err: err})
		return true
	}
	if IsDebugEnabled(DebugScan) {
		VerboseLog(3, "walkDir: %s has %d entries", dir, len(entries))
	}

	for _, info := range entries {
		path := filepath.Join(dir, info.Name())
		if c.ignored(path) {
			if IsDebugEnabled(DebugScan) {
				VerboseLog(3, "walkDir: ignoring %s", path)
			}
			continue
		}

		mode := info.Mode()
		switch {
		case mode.IsDir():
			if !c.walkDir(ctx, path, yield) {
				return false
			}
		case mode&os.ModeSymlink != 0:
			target, ok := c.resolveLink(path)
			if ok && !c.emit(path, target, true, yield) {
				return false
			}
		case mode.IsRegular():
			if !c.emit(path, info, false, yield) {
				return false
			}
		default:
			// sockets, devices, FIFOs
		}
	}
	return true
}

// resolveLink decides whether a symlink yields a file. Directory links are
// never followed; broken links become warnings.
func (c *collector) resolveLink(path string) (os.FileInfo, bool) {
	target, err := c.fs.Stat(path)
	if err != nil {
		c.warn(Warning{Path: path, Stage: StageTraverse, Err: err})
		return nil, false
	}
	if target.IsDir() {
		if IsDebugEnabled(DebugScan) {
			VerboseLog(3, "resolveLink: not following directory link %s", path)
		}
		return nil, false
	}
	if !target.Mode().IsRegular() || !c.opts.FollowFileLinks {
		return nil, false
	}
	return target, true
}

// emit applies the size exclusions and hands a record to the consumer
func (c *collector) emit(path string, info os.FileInfo, link bool, yield func(FileRecord) bool) bool {
	c.seen++
	size := info.Size()
	if size == 0 || size < c.opts.MinSize {
		return true
	}
	c.seq++
	rec := newFileRecord(path, info, c.seq)
	rec.Link = link
	return yield(rec)
}

func (c *collector) ignored(path string) bool {
	if c.opts.Ignore == nil || !c.opts.Ignore.HasPatterns() {
		return false
	}
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return false
	}
	return c.opts.Ignore.ShouldIgnore(rel)
}
