// Package dupfilehash finds files with identical content under a directory
// tree, reading as little of each file as it can.
//
// # Core API
//
// Scan walks a root and returns the duplicate groups it found:
//
//	result, err := dupfilehash.Scan(ctx, "/path/to/dir", dupfilehash.DefaultOptions())
//	for _, group := range result.Groups {
//		fmt.Printf("%s (%d bytes): %v\n", group.Hash, group.Size, group.Files)
//	}
//
// Files whose size is unique are never opened. Files below the large-file
// threshold are hashed in full; larger ones are hashed from their first and
// last SampleSize bytes plus their size, so two large files that differ only
// in the middle are reported as duplicates. Delete checks nothing of the kind:
// callers that remove files on the strength of a sampled match should compare
// content first.
//
// # Configuration
//
// Options can be built directly or loaded from an ini file:
//
//	cfg, err := dupfilehash.LoadConfig(configDir)
//	opts, err := cfg.ScanOptions()
//
// Enable debug output:
//
//	dupfilehash.SetDebugFlags("scan,hash")
//	dupfilehash.SetVerboseLevel(2)
//
// # Reports
//
// WriteReport renders a Result as human-readable text, JSON, YAML or the
// fdupes layout (one path per line, groups separated by a blank line).
package dupfilehash
