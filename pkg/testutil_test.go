package dupfilehash

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// writeFiles creates each path (relative to root) with the given content
func writeFiles(t *testing.T, fs afero.Fs, root string, files map[string][]byte) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, content, 0644))
	}
}

// patterned returns size bytes of a repeating, position-dependent pattern
func patterned(size int, seed byte) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(i*7) ^ seed
	}
	return buf
}

// memOptions returns options for a scan of an in-memory filesystem
func memOptions(fs afero.Fs) Options {
	opts := DefaultOptions()
	opts.Fs = fs
	opts.Workers = 4
	return opts
}

// collectAll runs the collector to completion
func collectAll(t *testing.T, root string, opts Options) ([]FileRecord, []Warning) {
	t.Helper()
	opts, err := opts.normalise()
	require.NoError(t, err)

	var warnings []Warning
	col := newCollector(root, &opts, func(w Warning) { warnings = append(warnings, w) })

	var records []FileRecord
	for rec := range col.records(context.Background()) {
		records = append(records, rec)
	}
	return records, warnings
}

func recordPaths(records []FileRecord) []string {
	paths := make([]string, len(records))
	for i, rec := range records {
		paths[i] = rec.Path
	}
	return paths
}

// captureLog redirects package log output for the duration of a test
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() { SetLogOutput(os.Stderr) })
	return &buf
}
