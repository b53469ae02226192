package dupfilehash

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// FileRecord is a regular file found by the collector. Size and ModTime are
// captured once during traversal; Fingerprint is set once by the hasher.
type FileRecord struct {
	Path        string      `json:"path" yaml:"path"`
	Size        int64       `json:"size" yaml:"size"`
	ModTime     time.Time   `json:"mtime" yaml:"mtime"`
	Seq         uint64      `json:"-" yaml:"-"` // discovery order within one scan
	Dev         uint64      `json:"-" yaml:"-"`
	Ino         uint64      `json:"-" yaml:"-"`
	Link        bool        `json:"-" yaml:"-"` // path is a followed symlink
	Fingerprint Fingerprint `json:"-" yaml:"-"`
	hashed      bool
}

// Fingerprint identifies file content. Size takes part in equality so that a
// sampled hash can never match a file of a different length.
type Fingerprint struct {
	Sum  uint64
	Size int64
}

// String returns the hash as 16 hex digits
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", f.Sum)
}

// PreGroupKey is the cheap bucketing key used before any content is read
type PreGroupKey struct {
	Size   int64
	Bucket int64 // mtime / bucket width, 0 when bucketing is off
}

// Warning is a non-fatal per-path failure
type Warning struct {
	Path  string
	Stage string
	Err   error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s %s: %v", w.Stage, w.Path, w.Err)
}

func (w Warning) Unwrap() error {
	return w.Err
}

// HasFingerprint reports whether the hasher has filled in the fingerprint
func (r FileRecord) HasFingerprint() bool {
	return r.hashed
}

// SameInode reports whether r and other are the same file on disk, through
// a hard link or a followed symlink. Records without inode data never match.
func (r FileRecord) SameInode(other FileRecord) bool {
	return r.Ino != 0 && r.Ino == other.Ino && r.Dev == other.Dev
}

// withFingerprint returns a copy of r carrying fp
func (r FileRecord) withFingerprint(fp Fingerprint) FileRecord {
	r.Fingerprint = fp
	r.hashed = true
	return r
}

// orderKey sorts records by discovery sequence, then by path. The sequence is
// zero padded so that string order matches numeric order.
func (r *FileRecord) orderKey() string {
	return fmt.Sprintf("%020d\x00%s", r.Seq, r.Path)
}

// preGroupKey buckets r by size and, when width > 0, by mtime
func (r *FileRecord) preGroupKey(width time.Duration) PreGroupKey {
	key := PreGroupKey{Size: r.Size}
	if width > 0 {
		key.Bucket = r.ModTime.UnixNano() / int64(width)
	}
	return key
}

// newFileRecord builds a record from the lstat/stat result of path
func newFileRecord(path string, info os.FileInfo, seq uint64) FileRecord {
	rec := FileRecord{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Seq:     seq,
	}
	if stat, ok := info.Sys().(*syscall.Stat_t); ok && stat != nil {
		rec.Dev = uint64(stat.Dev)
		rec.Ino = uint64(stat.Ino)
	}
	return rec
}
