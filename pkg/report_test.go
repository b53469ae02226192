package dupfilehash

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func sampleResult() *Result {
	return &Result{
		ScanID: "3f1c9a52-7c1e-4c4e-9a53-0d7b9b1c2e11",
		Root:   "/data",
		Groups: []DuplicateGroup{
			{Hash: "00000000000000aa", Size: 2048, Count: 2, Files: []string{"/data/a", "/data/b"}},
			{Hash: "00000000000000bb", Size: 10, Count: 3, Files: []string{"/data/c", "/data/d", "/data/e"}},
		},
		Warnings: []Warning{
			{Path: "/data/gone", Stage: StageHash, Err: errors.New("file does not exist")},
		},
		Stats: ScanStats{FilesSeen: 6, Candidates: 6, Hashed: 5, Duplicates: 5, WastedBytes: 2068},
	}
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, "JSON", sampleResult()))

	var doc struct {
		ScanID string `json:"scan_id"`
		Groups []struct {
			Hash  string   `json:"hash"`
			Files []string `json:"files"`
		} `json:"groups"`
		Warnings []map[string]string `json:"warnings"`
		Stats    map[string]any      `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "3f1c9a52-7c1e-4c4e-9a53-0d7b9b1c2e11", doc.ScanID)
	require.Len(t, doc.Groups, 2)
	assert.Equal(t, []string{"/data/c", "/data/d", "/data/e"}, doc.Groups[1].Files)
	require.Len(t, doc.Warnings, 1)
	assert.Equal(t, "hash", doc.Warnings[0]["stage"])
	assert.Equal(t, "file does not exist", doc.Warnings[0]["error"])
	assert.EqualValues(t, 2068, doc.Stats["wasted_bytes"])
}

func TestWriteReportJSONNoGroups(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, FormatJSON, &Result{ScanID: "x", Root: "/data"}))
	assert.Contains(t, buf.String(), `"groups": []`)
}

func TestWriteReportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, FormatYAML, sampleResult()))

	var doc struct {
		Root   string `yaml:"root"`
		Groups []struct {
			Count int      `yaml:"count"`
			Files []string `yaml:"files"`
		} `yaml:"groups"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "/data", doc.Root)
	require.Len(t, doc.Groups, 2)
	assert.Equal(t, 3, doc.Groups[1].Count)
}

func TestWriteReportHuman(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, FormatHuman, sampleResult()))
	out := buf.String()

	assert.Contains(t, out, "Duplicates (hash: 00000000000000aa, 2.0 KiB each, 2 files):")
	assert.Contains(t, out, "  - /data/e\n")
	assert.Contains(t, out, "warning: hash /data/gone: file does not exist")
	assert.Contains(t, out, "2 groups, 5 duplicate files, 2.0 KiB reclaimable")

	buf.Reset()
	require.NoError(t, WriteReport(&buf, FormatHuman, &Result{}))
	assert.True(t, strings.HasPrefix(buf.String(), "No duplicates found.\n"))
}

func TestWriteReportFdupes(t *testing.T) {
	expected := "/data/a\n/data/b\n\n/data/c\n/data/d\n/data/e\n\n"

	t.Run("buffer", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteReport(&buf, FormatFdupes, sampleResult()))
		assert.Equal(t, expected, buf.String())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.txt")
		file, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, WriteReport(file, FormatFdupes, sampleResult()))
		require.NoError(t, file.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, expected, string(data))
	})
}

func TestWritevFileManyChunks(t *testing.T) {
	var bufs [][]byte
	var expected strings.Builder
	for i := 0; i < iovMax*2+7; i++ {
		line := []byte(strings.Repeat("x", i%13) + "\n")
		bufs = append(bufs, line, nil)
		expected.Write(line)
	}

	path := filepath.Join(t.TempDir(), "out")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, writevFile(file, bufs))
	require.NoError(t, file.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expected.String(), string(data))
}

func TestWriteReportUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteReport(&buf, "xml", sampleResult()))
}
