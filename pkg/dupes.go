package dupfilehash

import "fmt"

// DuplicateGroup is a set of at least two files with the same fingerprint.
// Members are in discovery order.
type DuplicateGroup struct {
	Fingerprint Fingerprint  `json:"-" yaml:"-"`
	Hash        string       `json:"hash" yaml:"hash"`
	Size        int64        `json:"size" yaml:"size"`
	Files       []string     `json:"files" yaml:"files"`
	Count       int          `json:"count" yaml:"count"`
	Members     []FileRecord `json:"-" yaml:"-"`
}

// Wasted returns the bytes that removing all but one member would free.
// Hard links to an already counted member free nothing.
func (g DuplicateGroup) Wasted() int64 {
	files := g.Count
	if len(g.Members) > 0 {
		files = distinctFiles(g.Members)
	}
	if files < 2 {
		return 0
	}
	return g.Size * int64(files-1)
}

// distinctFiles counts members that are not hard links of an earlier member
func distinctFiles(members []FileRecord) int {
	n := 0
	for i, rec := range members {
		alias := false
		for _, earlier := range members[:i] {
			if rec.SameInode(earlier) {
				alias = true
				break
			}
		}
		if !alias {
			n++
		}
	}
	return n
}

// Grouper collects hashed records and turns them into duplicate groups
type Grouper struct {
	ordered *recordSkiplist
}

// NewGrouper creates an empty grouper
func NewGrouper() *Grouper {
	return &Grouper{ordered: newRecordSkiplist(16)}
}

// Add accepts a hashed record. Records may arrive in any order.
func (g *Grouper) Add(rec FileRecord) error {
	if !rec.HasFingerprint() {
		return fmt.Errorf("record %s has no fingerprint", rec.Path)
	}
	if !g.ordered.Insert(rec, HashedContext) {
		return fmt.Errorf("record %s added twice", rec.Path)
	}
	return nil
}

// Len returns the number of records added
func (g *Grouper) Len() int {
	return g.ordered.Length()
}

// Groups returns every fingerprint shared by two or more records. Members
// are ordered by discovery sequence with a path tie-break, and groups by
// their first member, so an unchanged tree always reports the same way.
func (g *Grouper) Groups() []DuplicateGroup {
	defer VerboseEnter()()

	index := make(map[Fingerprint]int)
	var all []DuplicateGroup

	g.ordered.ForEach(func(rec *FileRecord, context string) bool {
		idx, ok := index[rec.Fingerprint]
		if !ok {
			idx = len(all)
			index[rec.Fingerprint] = idx
			all = append(all, DuplicateGroup{
				Fingerprint: rec.Fingerprint,
				Hash:        rec.Fingerprint.String(),
				Size:        rec.Fingerprint.Size,
			})
		}
		all[idx].Members = append(all[idx].Members, *rec)
		all[idx].Files = append(all[idx].Files, rec.Path)
		return true
	})

	var result []DuplicateGroup
	for _, group := range all {
		if len(group.Members) < 2 {
			continue
		}
		group.Count = len(group.Members)
		result = append(result, group)
	}

	if IsDebugEnabled(DebugGroup) {
		VerboseLog(2, "group: %d records, %d fingerprints, %d duplicate groups", g.Len(), len(all), len(result))
	}
	return result
}

// GroupDuplicates groups already hashed records in one call
func GroupDuplicates(records []FileRecord) ([]DuplicateGroup, error) {
	grouper := NewGrouper()
	for _, rec := range records {
		if err := grouper.Add(rec); err != nil {
			return nil, err
		}
	}
	return grouper.Groups(), nil
}
