package library

// Selection tracks which character IDs are selected, plus the last-touched
// ID used as the anchor for range selection.
//
// Range selection is view-relative on purpose: it walks the currently
// rendered order, matching what the user sees, not storage order.
type Selection struct {
	ids    map[string]struct{}
	anchor string
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Len returns the number of selected IDs.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Anchor returns the range anchor, or "" when the selection is empty.
func (s *Selection) Anchor() string {
	return s.anchor
}

// IDs returns the selected IDs as a set. The map is shared; callers must
// not mutate it.
func (s *Selection) IDs() map[string]struct{} {
	return s.ids
}

// Select replaces the whole selection with the single item.
func (s *Selection) Select(id string) {
	s.ids = map[string]struct{}{id: {}}
	s.anchor = id
}

// Toggle adds or removes one item. Removing the anchor promotes an
// arbitrary remaining member to anchor, or empties it when none remain.
func (s *Selection) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		if s.anchor == id {
			s.anchor = ""
			for remaining := range s.ids {
				s.anchor = remaining
				break
			}
		}
		return
	}
	s.ids[id] = struct{}{}
	s.anchor = id
}

// SelectRange replaces the selection with the slice of rendered between the
// anchor and target inclusive, in either direction. The target becomes the
// new anchor. Without an anchor (or with an anchor not currently rendered)
// it degrades to a plain select.
func (s *Selection) SelectRange(rendered []string, target string) {
	anchorAt, targetAt := -1, -1
	for i, id := range rendered {
		if id == s.anchor {
			anchorAt = i
		}
		if id == target {
			targetAt = i
		}
	}
	if targetAt == -1 {
		return
	}
	if anchorAt == -1 {
		s.Select(target)
		return
	}

	lo, hi := anchorAt, targetAt
	if lo > hi {
		lo, hi = hi, lo
	}

	s.ids = make(map[string]struct{}, hi-lo+1)
	for _, id := range rendered[lo : hi+1] {
		s.ids[id] = struct{}{}
	}
	s.anchor = target
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
	s.anchor = ""
}

// Prune drops every selected ID not accepted by live, in the same step as
// the deletion that invalidated it. The selection must never reference an
// ID absent from the live collection.
func (s *Selection) Prune(live func(id string) bool) {
	for id := range s.ids {
		if !live(id) {
			delete(s.ids, id)
		}
	}
	if s.anchor != "" && !live(s.anchor) {
		s.anchor = ""
		for remaining := range s.ids {
			s.anchor = remaining
			break
		}
	}
}
