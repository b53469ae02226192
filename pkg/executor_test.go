package dupfilehash

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executorFixture(t *testing.T, n int) (*Hasher, []FileRecord, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	var records []FileRecord
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("/d/f%03d", i)
		content := patterned(2048+i%3, byte(i%5))
		writeFiles(t, fs, "/", map[string][]byte{path: content})
		records = append(records, FileRecord{Path: path, Size: int64(len(content)), Seq: uint64(i + 1)})
	}

	opts, err := memOptions(fs).normalise()
	require.NoError(t, err)
	return NewHasher(opts), records, fs
}

func TestExecutorProgressIsMonotonic(t *testing.T) {
	hasher, records, _ := executorFixture(t, 50)

	var seen []int
	observer := ProgressFunc(func(completed, total int) {
		assert.Equal(t, 50, total)
		seen = append(seen, completed)
	})

	exec := NewExecutor(hasher, 8, observer)
	hashed, err := exec.Run(context.Background(), records, func(w Warning) {
		t.Errorf("unexpected warning: %v", w)
	})
	require.NoError(t, err)
	require.Len(t, hashed, 50)

	require.Len(t, seen, 50)
	for i, c := range seen {
		assert.Equal(t, i+1, c)
	}

	completed, total := exec.Progress()
	assert.Equal(t, 50, completed)
	assert.Equal(t, 50, total)
}

func TestExecutorResultsMatchRecords(t *testing.T) {
	hasher, records, _ := executorFixture(t, 30)

	exec := NewExecutor(hasher, 4, nil)
	hashed, err := exec.Run(context.Background(), records, func(Warning) {})
	require.NoError(t, err)

	sort.Slice(hashed, func(i, j int) bool { return hashed[i].Seq < hashed[j].Seq })
	for i, rec := range hashed {
		require.True(t, rec.HasFingerprint())
		assert.Equal(t, records[i].Path, rec.Path)

		// the fingerprint belongs to this record, whatever order workers finished in
		expected, err := hasher.Fingerprint(context.Background(), records[i])
		require.NoError(t, err)
		assert.Equal(t, expected, rec.Fingerprint)
	}
	assert.False(t, records[0].HasFingerprint(), "input records are not mutated")
}

func TestExecutorWarnsAndContinues(t *testing.T) {
	hasher, records, fs := executorFixture(t, 10)
	require.NoError(t, fs.Remove(records[3].Path))

	var warnings []Warning
	exec := NewExecutor(hasher, 3, nil)
	hashed, err := exec.Run(context.Background(), records, func(w Warning) {
		warnings = append(warnings, w)
	})
	require.NoError(t, err)

	assert.Len(t, hashed, 9)
	require.Len(t, warnings, 1)
	assert.Equal(t, records[3].Path, warnings[0].Path)
	assert.Equal(t, StageHash, warnings[0].Stage)
}

func TestExecutorCancelled(t *testing.T) {
	hasher, records, _ := executorFixture(t, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := NewExecutor(hasher, 2, nil)
	_, err := exec.Run(ctx, records, func(w Warning) {
		t.Errorf("cancellation should not warn: %v", w)
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutorEmpty(t *testing.T) {
	hasher, _, _ := executorFixture(t, 0)
	exec := NewExecutor(hasher, 4, nil)

	hashed, err := exec.Run(context.Background(), nil, func(Warning) {})
	require.NoError(t, err)
	assert.Empty(t, hashed)

	completed, total := exec.Progress()
	assert.Zero(t, completed)
	assert.Zero(t, total)
}
