package dupfilehash

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashFile(t *testing.T, h *Hasher, fs afero.Fs, path string) (Fingerprint, error) {
	t.Helper()
	info, err := fs.Stat(path)
	require.NoError(t, err)
	return h.Fingerprint(context.Background(), FileRecord{Path: path, Size: info.Size()})
}

func TestHasherSampledFalsePositive(t *testing.T) {
	const size = 2 << 20
	a := patterned(size, 1)
	b := append([]byte(nil), a...)
	b[size/2] ^= 0xff

	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/d", map[string][]byte{"a": a, "b": b})

	opts, err := memOptions(fs).normalise()
	require.NoError(t, err)
	h := NewHasher(opts)
	require.True(t, h.Sampled(size))

	fpA, err := hashFile(t, h, fs, "/d/a")
	require.NoError(t, err)
	fpB, err := hashFile(t, h, fs, "/d/b")
	require.NoError(t, err)

	// the difference lies outside both samples
	assert.Equal(t, fpA, fpB)
	assert.Equal(t, int64(2*DefaultSampleSize), h.BytesRead(size))
}

func TestHasherFullBelowThreshold(t *testing.T) {
	const size = DefaultLargeThreshold - 1
	a := patterned(size, 2)
	b := append([]byte(nil), a...)
	b[size/2] ^= 0xff

	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/d", map[string][]byte{"a": a, "b": b, "c": a})

	opts, err := memOptions(fs).normalise()
	require.NoError(t, err)
	h := NewHasher(opts)
	require.False(t, h.Sampled(size))

	fpA, err := hashFile(t, h, fs, "/d/a")
	require.NoError(t, err)
	fpB, err := hashFile(t, h, fs, "/d/b")
	require.NoError(t, err)
	fpC, err := hashFile(t, h, fs, "/d/c")
	require.NoError(t, err)

	assert.NotEqual(t, fpA, fpB)
	assert.Equal(t, fpA, fpC)
	assert.Equal(t, int64(size), fpA.Size)
}

func TestHasherThresholdIsInclusive(t *testing.T) {
	opts := DefaultOptions()
	opts.Fs = afero.NewMemMapFs()
	h := NewHasher(opts)

	assert.False(t, h.Sampled(DefaultLargeThreshold-1))
	assert.True(t, h.Sampled(DefaultLargeThreshold))
}

func TestHasherOverlappingSamples(t *testing.T) {
	a := patterned(150, 4)
	b := append([]byte(nil), a...)
	b[10] ^= 0xff

	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/d", map[string][]byte{"a": a, "b": b, "c": a})

	opts := memOptions(fs)
	opts.LargeThreshold = 64
	opts.SampleSize = 100
	opts, err := opts.normalise()
	require.NoError(t, err)
	h := NewHasher(opts)
	require.True(t, h.Sampled(150))
	assert.Equal(t, int64(150), h.BytesRead(150))

	fpA, err := hashFile(t, h, fs, "/d/a")
	require.NoError(t, err)
	fpB, err := hashFile(t, h, fs, "/d/b")
	require.NoError(t, err)
	fpC, err := hashFile(t, h, fs, "/d/c")
	require.NoError(t, err)

	assert.NotEqual(t, fpA, fpB)
	assert.Equal(t, fpA, fpC)
}

func TestHasherSizeChanged(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/d", map[string][]byte{"grew": []byte("hello world")})

	opts, err := memOptions(fs).normalise()
	require.NoError(t, err)
	h := NewHasher(opts)

	_, err = h.Fingerprint(context.Background(), FileRecord{Path: "/d/grew", Size: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileChanged))
}

func TestHasherMissingFile(t *testing.T) {
	opts, err := memOptions(afero.NewMemMapFs()).normalise()
	require.NoError(t, err)
	h := NewHasher(opts)

	_, err = h.Fingerprint(context.Background(), FileRecord{Path: "/nope", Size: 10})
	require.Error(t, err)
}

func TestHasherCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/d", map[string][]byte{"f": patterned(4096, 3)})

	opts, err := memOptions(fs).normalise()
	require.NoError(t, err)
	h := NewHasher(opts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Fingerprint(ctx, FileRecord{Path: "/d/f", Size: 4096})
	assert.ErrorIs(t, err, context.Canceled)
}
