package dupfilehash

import (
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// recordSkiplist keeps hashed records in discovery order regardless of the
// order workers finish in
type recordSkiplist struct {
	skiplist *zcsl.ZeroCopySkiplist[FileRecord, string, string]
}

// newRecordSkiplist creates an empty skiplist keyed by FileRecord.orderKey
func newRecordSkiplist(maxLevels int) *recordSkiplist {
	if maxLevels < 8 {
		maxLevels = 16
	}

	getKeyFromItem := func(rec *FileRecord) string {
		return rec.orderKey()
	}

	// Approximate footprint of a record, used by the skiplist's size accounting
	getItemSize := func(rec *FileRecord) int {
		return len(rec.Path) + 64
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	return &recordSkiplist{
		skiplist: zcsl.MakeZeroCopySkiplist[FileRecord, string, string](
			maxLevels,
			getKeyFromItem,
			getItemSize,
			cmpKey,
		),
	}
}

// Insert adds a record under the given context; false if its key is present
func (sl *recordSkiplist) Insert(rec FileRecord, context string) bool {
	return sl.skiplist.Insert(&rec, context)
}

// ForEach walks records in key order until callback returns false
func (sl *recordSkiplist) ForEach(callback func(*FileRecord, string) bool) {
	for current := sl.skiplist.First(); current != nil; current = current.Next() {
		if !callback(current.Item(), current.Context()) {
			break
		}
	}
}

// Length returns the number of records
func (sl *recordSkiplist) Length() int {
	return sl.skiplist.Length()
}
