package dupfilehash

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash"
	"io"

	"github.com/cespare/xxhash"
	"github.com/spf13/afero"
)

// Hasher computes content fingerprints with 64-bit xxHash.
//
// Files below the large-file threshold are hashed in full. Larger files are
// sampled: the first and last SampleSize bytes plus the size. Sampling is a
// speed/accuracy trade-off, not a proof of equality: two different large
// files that agree on size, head and tail get the same fingerprint and are
// reported as duplicates. xxHash is not collision resistant against an
// adversary either; this is a housekeeping tool, not a security control.
type Hasher struct {
	fs             afero.Fs
	largeThreshold int64
	sampleSize     int64
	bufferSize     int
}

// NewHasher creates a hasher from normalised options
func NewHasher(opts Options) *Hasher {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Hasher{
		fs:             fs,
		largeThreshold: opts.LargeThreshold,
		sampleSize:     opts.SampleSize,
		bufferSize:     opts.BufferSize,
	}
}

// Sampled reports whether a file of this size is hashed by sampling
func (h *Hasher) Sampled(size int64) bool {
	return size >= h.largeThreshold
}

// BytesRead returns how many content bytes hashing a file of this size reads
func (h *Hasher) BytesRead(size int64) int64 {
	if !h.Sampled(size) {
		return size
	}
	return min(size, 2*h.sampleSize)
}

// scratchSize is the buffer a worker needs for any file
func (h *Hasher) scratchSize() int {
	return int(max(int64(h.bufferSize), h.sampleSize))
}

// Fingerprint hashes the file behind rec
func (h *Hasher) Fingerprint(ctx context.Context, rec FileRecord) (Fingerprint, error) {
	return h.fingerprint(ctx, rec, make([]byte, h.scratchSize()))
}

// fingerprint hashes rec using buf as scratch space. The file must still
// have the size recorded during traversal.
func (h *Hasher) fingerprint(ctx context.Context, rec FileRecord, buf []byte) (Fingerprint, error) {
	file, err := h.fs.Open(rec.Path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to open file %s: %w", rec.Path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to stat file %s: %w", rec.Path, err)
	}
	if info.Size() != rec.Size {
		return Fingerprint{}, fmt.Errorf("%w: %s size %d, expected %d", ErrFileChanged, rec.Path, info.Size(), rec.Size)
	}

	hasher := xxhash.New()
	if h.Sampled(rec.Size) {
		adviseAccess(file, false)
		err = h.hashSampled(file, hasher, rec.Size, buf)
	} else {
		adviseAccess(file, true)
		err = h.hashFull(ctx, file, hasher, rec.Size, buf)
	}
	if err != nil {
		return Fingerprint{}, err
	}

	return Fingerprint{Sum: hasher.Sum64(), Size: rec.Size}, nil
}

// hashFull streams the file in bufferSize reads, checking for cancellation
// between reads
func (h *Hasher) hashFull(ctx context.Context, file afero.File, hasher hash.Hash64, size int64, buf []byte) error {
	buffer := buf[:min(len(buf), h.bufferSize)]
	var total int64

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("hash of %s interrupted: %w", file.Name(), ctx.Err())
		default:
		}

		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
			total += int64(n)
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read from file %s: %w", file.Name(), err)
		}
	}

	if total != size {
		return fmt.Errorf("%w: read %d bytes from %s, expected %d", ErrFileChanged, total, file.Name(), size)
	}
	return nil
}

// hashSampled hashes head, tail and size
func (h *Hasher) hashSampled(file afero.File, hasher hash.Hash64, size int64, buf []byte) error {
	n := min(size, h.sampleSize)
	sample := buf[:n]

	if _, err := io.ReadFull(file, sample); err != nil {
		return fmt.Errorf("failed to read head of %s: %w", file.Name(), err)
	}
	hasher.Write(sample)

	if _, err := file.Seek(size-n, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to tail of %s: %w", file.Name(), err)
	}
	if _, err := io.ReadFull(file, sample); err != nil {
		return fmt.Errorf("failed to read tail of %s: %w", file.Name(), err)
	}
	hasher.Write(sample)

	var sizeBytes [8]byte
	binary.LittleEndian.PutUint64(sizeBytes[:], uint64(size))
	hasher.Write(sizeBytes[:])
	return nil
}
