package dupfilehash

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/google/vectorio"
	"gopkg.in/yaml.v2"
)

// reportDoc is the serialised form of a Result
type reportDoc struct {
	ScanID   string           `json:"scan_id" yaml:"scan_id"`
	Root     string           `json:"root" yaml:"root"`
	Groups   []DuplicateGroup `json:"groups" yaml:"groups"`
	Warnings []warningDoc     `json:"warnings" yaml:"warnings"`
	Stats    ScanStats        `json:"stats" yaml:"stats"`
}

type warningDoc struct {
	Path  string `json:"path" yaml:"path"`
	Stage string `json:"stage" yaml:"stage"`
	Error string `json:"error" yaml:"error"`
}

func newReportDoc(result *Result) reportDoc {
	doc := reportDoc{
		ScanID:   result.ScanID,
		Root:     result.Root,
		Groups:   result.Groups,
		Warnings: make([]warningDoc, 0, len(result.Warnings)),
		Stats:    result.Stats,
	}
	if doc.Groups == nil {
		doc.Groups = []DuplicateGroup{}
	}
	for _, w := range result.Warnings {
		doc.Warnings = append(doc.Warnings, warningDoc{Path: w.Path, Stage: w.Stage, Error: w.Err.Error()})
	}
	return doc
}

// WriteReport writes result to w in the named format
func WriteReport(w io.Writer, format string, result *Result) error {
	switch strings.ToLower(format) {
	case FormatHuman:
		return writeHuman(w, result)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(newReportDoc(result)); err != nil {
			return fmt.Errorf("failed to encode json report: %w", err)
		}
		return nil
	case FormatYAML:
		data, err := yaml.Marshal(newReportDoc(result))
		if err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatFdupes:
		return writeFdupes(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

var (
	headerColor  = color.New(color.Bold)
	warningColor = color.New(color.FgYellow)
	summaryColor = color.New(color.FgGreen)
)

func writeHuman(w io.Writer, result *Result) error {
	if len(result.Groups) == 0 {
		if _, err := fmt.Fprintln(w, "No duplicates found."); err != nil {
			return err
		}
	}

	for _, group := range result.Groups {
		if _, err := headerColor.Fprintf(w, "Duplicates (hash: %s, %s each, %d files):\n",
			group.Hash, humanize.IBytes(uint64(group.Size)), group.Count); err != nil {
			return err
		}
		for _, path := range group.Files {
			if _, err := fmt.Fprintf(w, "  - %s\n", path); err != nil {
				return err
			}
		}
	}

	for _, warning := range result.Warnings {
		if _, err := warningColor.Fprintf(w, "warning: %v\n", warning); err != nil {
			return err
		}
	}

	stats := result.Stats
	_, err := summaryColor.Fprintf(w, "%d groups, %d duplicate files, %s reclaimable (%d files seen, %d hashed, %s read)\n",
		len(result.Groups), stats.Duplicates, humanize.IBytes(uint64(stats.WastedBytes)),
		stats.FilesSeen, stats.Hashed, humanize.IBytes(uint64(stats.BytesHashed)))
	return err
}

// writeFdupes writes one path per line with a blank line after each group.
// Files get the whole report in a few writev calls.
func writeFdupes(w io.Writer, result *Result) error {
	var lines [][]byte
	newline := []byte("\n")
	for _, group := range result.Groups {
		for _, path := range group.Files {
			lines = append(lines, []byte(path), newline)
		}
		lines = append(lines, newline)
	}

	if file, ok := w.(*os.File); ok {
		return writevFile(file, lines)
	}
	for _, line := range lines {
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// writevFile writes bufs to file in chunks of at most iovMax iovecs
func writevFile(file *os.File, bufs [][]byte) error {
	for start := 0; start < len(bufs); start += iovMax {
		end := min(start+iovMax, len(bufs))

		var iovecs []syscall.Iovec
		expected := 0
		for _, buf := range bufs[start:end] {
			if len(buf) == 0 {
				continue
			}
			iov := syscall.Iovec{Base: &buf[0]}
			iov.SetLen(len(buf))
			iovecs = append(iovecs, iov)
			expected += len(buf)
		}
		if len(iovecs) == 0 {
			continue
		}

		nw, err := vectorio.WritevRaw(uintptr(file.Fd()), iovecs)
		if err != nil {
			return fmt.Errorf("failed to write report with vectorio: %w", err)
		}
		if nw != expected {
			return fmt.Errorf("short report write: wrote %d of %d bytes", nw, expected)
		}
	}
	return nil
}
