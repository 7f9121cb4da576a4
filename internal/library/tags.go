package library

import (
	"sort"

	"github.com/pveldt/roster/internal/entity"
)

// TagIndex is the set of distinct tags across the collection, rebuilt
// eagerly after any mutation that can add or remove a tag.
//
// It feeds autocomplete suggestions only. Filtering always re-scans the
// characters directly, so a stale index can never change what is shown.
type TagIndex struct {
	tags []string
	seen map[string]struct{}
}

// NewTagIndex creates an empty index.
func NewTagIndex() *TagIndex {
	return &TagIndex{seen: make(map[string]struct{})}
}

// Rebuild recomputes the index from the full collection.
func (ti *TagIndex) Rebuild(characters []*entity.Character) {
	ti.seen = make(map[string]struct{})
	ti.tags = ti.tags[:0]
	for _, c := range characters {
		for _, tag := range c.Tags {
			if _, ok := ti.seen[tag]; ok {
				continue
			}
			ti.seen[tag] = struct{}{}
			ti.tags = append(ti.tags, tag)
		}
	}
	sort.Strings(ti.tags)
}

// Tags returns the distinct tags in sorted order.
// The returned slice is shared; callers must not mutate it.
func (ti *TagIndex) Tags() []string {
	return ti.tags
}

// Has reports whether tag is present exactly (case-sensitive).
func (ti *TagIndex) Has(tag string) bool {
	_, ok := ti.seen[tag]
	return ok
}
