package dupfilehash

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/afero"
)

// Fatal configuration errors. Scan returns these before any work starts.
var (
	ErrRootNotFound     = errors.New("root path does not exist")
	ErrRootNotDirectory = errors.New("root path is not a directory")
	ErrInvalidOptions   = errors.New("invalid scan options")
)

// ErrFileChanged marks a file whose size changed between traversal and hashing
var ErrFileChanged = errors.New("file changed during scan")

// Options configures a scan. Start from DefaultOptions; zero values for
// LargeThreshold, SampleSize, Workers and BufferSize select the defaults.
type Options struct {
	MinSize         int64         // smallest size considered, inclusive
	LargeThreshold  int64         // files at or above this size are sample-hashed
	SampleSize      int64         // bytes hashed from each end of a large file
	Workers         int           // hash workers; lower on spinning disks, raise on SSDs
	BufferSize      int           // read size for full-content hashing
	MtimeBucket     time.Duration // mtime bucket width for pre-grouping, 0 disables
	FollowFileLinks bool          // hash the target of symlinks to regular files
	SkipHardlinks   bool          // collapse paths sharing a device and inode

	Ignore *IgnoreManager // optional path filter

	// Fs is the filesystem scanned; nil means the OS filesystem
	Fs afero.Fs

	// Progress is told about every completed hash, from a single goroutine
	Progress ProgressObserver

	// OnWarning receives each warning as it is recorded
	OnWarning func(Warning)
}

// DefaultOptions returns the standard engine settings
func DefaultOptions() Options {
	return Options{
		MinSize:        DefaultMinSize,
		LargeThreshold: DefaultLargeThreshold,
		SampleSize:     DefaultSampleSize,
		Workers:        min(runtime.NumCPU(), MaxHashWorkers),
		BufferSize:     DefaultHashBuffer,
	}
}

// normalise fills defaults and validates the result
func (o Options) normalise() (Options, error) {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.LargeThreshold == 0 {
		o.LargeThreshold = DefaultLargeThreshold
	}
	if o.SampleSize == 0 {
		o.SampleSize = DefaultSampleSize
	}
	if o.Workers == 0 {
		o.Workers = min(runtime.NumCPU(), MaxHashWorkers)
	}
	if o.BufferSize == 0 {
		o.BufferSize = DefaultHashBuffer
	}

	switch {
	case o.MinSize < 0:
		return o, fmt.Errorf("%w: negative minimum size %d", ErrInvalidOptions, o.MinSize)
	case o.LargeThreshold < 0:
		return o, fmt.Errorf("%w: negative large-file threshold %d", ErrInvalidOptions, o.LargeThreshold)
	case o.SampleSize < 0:
		return o, fmt.Errorf("%w: negative sample size %d", ErrInvalidOptions, o.SampleSize)
	case o.BufferSize < 0:
		return o, fmt.Errorf("%w: negative hash buffer %d", ErrInvalidOptions, o.BufferSize)
	case o.SampleSize > MaxSampleSize:
		return o, fmt.Errorf("%w: sample size %d exceeds %d", ErrInvalidOptions, o.SampleSize, int64(MaxSampleSize))
	case o.BufferSize > MaxHashBuffer:
		return o, fmt.Errorf("%w: hash buffer %d exceeds %d", ErrInvalidOptions, o.BufferSize, MaxHashBuffer)
	case o.MtimeBucket < 0:
		return o, fmt.Errorf("%w: negative mtime bucket %s", ErrInvalidOptions, o.MtimeBucket)
	}
	if err := ValidateHashWorkers(o.Workers); err != nil {
		return o, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return o, nil
}
