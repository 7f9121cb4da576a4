package library

import (
	"sort"
	"strings"

	"github.com/pveldt/roster/internal/entity"
)

// FolderScopeUnfoldered is the sentinel folder scope matching characters
// with no folder. An empty scope matches everything.
const FolderScopeUnfoldered = "unfoldered"

// Criteria are the pure inputs to the view pipeline. Nothing mutates a
// Criteria value except the intent handlers that build a new one.
type Criteria struct {
	// Term is a free-text search term, matched case-insensitively as a
	// substring of name, card name, description, and joined tags (OR).
	Term string

	// FolderScope is "" for all, FolderScopeUnfoldered for characters
	// without a folder, or a folder ID for exact scoping.
	FolderScope string

	// Tag is a substring match against the joined tags.
	Tag string
}

// Equal reports whether two criteria are identical. The window resets only
// when criteria actually change, never on collection mutation.
func (c Criteria) Equal(other Criteria) bool {
	return c == other
}

// Apply runs the filter and sort stages: characters matching criteria, in a
// single deterministic total order. The sort is stable so characters with
// identical display names keep their insertion order across recomputes.
func Apply(characters []*entity.Character, criteria Criteria) []*entity.Character {
	matched := make([]*entity.Character, 0, len(characters))
	for _, c := range characters {
		if matches(c, criteria) {
			matched = append(matched, c)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a := strings.ToLower(matched[i].DisplayName())
		b := strings.ToLower(matched[j].DisplayName())
		return a < b
	})

	return matched
}

// matches applies all criteria stages to one character.
func matches(c *entity.Character, criteria Criteria) bool {
	switch criteria.FolderScope {
	case "":
	case FolderScopeUnfoldered:
		if c.FolderID != "" {
			return false
		}
	default:
		if c.FolderID != criteria.FolderScope {
			return false
		}
	}

	joinedTags := strings.ToLower(strings.Join(c.Tags, " "))

	if criteria.Tag != "" {
		if !strings.Contains(joinedTags, strings.ToLower(criteria.Tag)) {
			return false
		}
	}

	if term := strings.ToLower(strings.TrimSpace(criteria.Term)); term != "" {
		if !strings.Contains(strings.ToLower(c.Name), term) &&
			!strings.Contains(strings.ToLower(c.CardName), term) &&
			!strings.Contains(strings.ToLower(c.Description), term) &&
			!strings.Contains(joinedTags, term) {
			return false
		}
	}

	return true
}

// Window is the incremental-disclosure state of the rendered view.
type Window struct {
	// Step is the initial size and the growth increment
	Step int

	// Limit is the current number of items revealed
	Limit int
}

// NewWindow creates a window showing the first step items.
func NewWindow(step int) Window {
	return Window{Step: step, Limit: step}
}

// Reset collapses the window back to the initial size.
// Called when criteria change; never when the collection mutates.
func (w *Window) Reset() {
	w.Limit = w.Step
}

// Grow reveals one more increment.
func (w *Window) Grow() {
	w.Limit += w.Step
}

// Slice returns the visible prefix of the ordered list.
func (w Window) Slice(ordered []*entity.Character) []*entity.Character {
	if len(ordered) <= w.Limit {
		return ordered
	}
	return ordered[:w.Limit]
}

// View is the derived rendered state handed to the consumer.
type View struct {
	// Visible is the windowed, ordered slice actually rendered
	Visible []*entity.Character

	// Total is the number of matches before windowing
	Total int

	// HasMore reports whether another disclosure step would reveal items
	HasMore bool
}
