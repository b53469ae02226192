package dupfilehash

import (
	"iter"
	"slices"
	"time"
)

// filterResult is the output of the fingerprint filter
type filterResult struct {
	candidates  []FileRecord // records worth hashing, grouped by size
	seen        int          // records consumed
	uniqueSize  int          // records dropped because no other file has their size
	hardlinks   int          // records collapsed onto an earlier path to the same inode
	linkAliases int          // followed symlinks collapsed with their target
	buckets     int          // pre-groups among the candidates
}

type devIno struct {
	dev, ino uint64
}

// filterCandidates consumes every record and keeps those whose size is shared
// with at least one other record. Records are bucketed by PreGroupKey, but the
// survival decision looks at size alone: mtime never suppresses hashing.
//
// A followed symlink and its target are one file and always collapse to one
// record, the real path winning. Hard links collapse only with skipHardlinks.
func filterCandidates(records iter.Seq[FileRecord], bucketWidth time.Duration, skipHardlinks bool) filterResult {
	defer VerboseEnter()()

	var res filterResult
	var kept []FileRecord
	inodes := make(map[devIno]int) // index into kept

	for rec := range records {
		res.seen++
		if rec.Ino == 0 {
			kept = append(kept, rec)
			continue
		}

		key := devIno{rec.Dev, rec.Ino}
		idx, dup := inodes[key]
		switch {
		case !dup:
			inodes[key] = len(kept)
			kept = append(kept, rec)
		case rec.Link || kept[idx].Link:
			res.linkAliases++
			if kept[idx].Link && !rec.Link {
				// keep the discovery slot, take the real path
				rec.Seq = kept[idx].Seq
				kept[idx] = rec
			}
		case skipHardlinks:
			res.hardlinks++
		default:
			kept = append(kept, rec)
		}
	}

	buckets := make(map[PreGroupKey][]FileRecord)
	sizeCount := make(map[int64]int)
	for _, rec := range kept {
		key := rec.preGroupKey(bucketWidth)
		buckets[key] = append(buckets[key], rec)
		sizeCount[rec.Size]++
	}

	keys := make([]PreGroupKey, 0, len(buckets))
	for key := range buckets {
		if sizeCount[key.Size] < 2 {
			res.uniqueSize += len(buckets[key])
			continue
		}
		keys = append(keys, key)
	}

	// Largest sizes first so the most expensive hashes start early
	slices.SortFunc(keys, func(a, b PreGroupKey) int {
		if a.Size != b.Size {
			if a.Size > b.Size {
				return -1
			}
			return 1
		}
		if a.Bucket < b.Bucket {
			return -1
		}
		if a.Bucket > b.Bucket {
			return 1
		}
		return 0
	})

	res.buckets = len(keys)
	for _, key := range keys {
		res.candidates = append(res.candidates, buckets[key]...)
	}

	if IsDebugEnabled(DebugFilter) {
		VerboseLog(2, "filter: %d records, %d candidates in %d buckets, %d unique sizes, %d hard links, %d link aliases",
			res.seen, len(res.candidates), res.buckets, res.uniqueSize, res.hardlinks, res.linkAliases)
	}
	return res
}
