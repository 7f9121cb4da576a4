package library

import (
	"strings"

	"github.com/pveldt/roster/internal/entity"
	"github.com/pveldt/roster/internal/errors"
)

// Bulk mutation service: each operation applies identically to every member
// of the current selection. Confirmation is the caller's job; these execute
// unconditionally.

// MoveSelected sets FolderID on every selected character. An empty target
// unfolders them. Characters already in the target still count toward the
// returned total (the count is user feedback, not a change count) and never
// error.
func (s *Session) MoveSelected(targetFolderID string) (int, error) {
	if s.selection.Len() == 0 {
		return 0, errors.NewValidation("selection", "no characters selected")
	}
	if targetFolderID != "" && s.model.Folder(targetFolderID) == nil {
		return 0, errors.NewIntegrity("move references nonexistent folder: " + targetFolderID)
	}

	affected := 0
	for id := range s.selection.IDs() {
		c := s.model.Character(id)
		if c == nil {
			return affected, errors.NewIntegrity("selection references nonexistent character: " + id)
		}
		c.FolderID = targetFolderID
		affected++
	}

	s.notifier.Mark()
	return affected, nil
}

// TagSelected adds each tag to every selected character unless an existing
// tag matches case-insensitively. Returns the number of characters actually
// modified; characters that already carried every tag are excluded from the
// count but stay selected.
func (s *Session) TagSelected(tags []string) (int, error) {
	if s.selection.Len() == 0 {
		return 0, errors.NewValidation("selection", "no characters selected")
	}

	cleaned := dedupTagsFold(tags)
	if len(cleaned) == 0 {
		return 0, errors.NewValidation("tags", "at least one tag is required")
	}

	modified := 0
	for id := range s.selection.IDs() {
		c := s.model.Character(id)
		if c == nil {
			return modified, errors.NewIntegrity("selection references nonexistent character: " + id)
		}
		changed := false
		for _, tag := range cleaned {
			if !c.HasTagFold(tag) {
				c.Tags = append(c.Tags, tag)
				changed = true
			}
		}
		if changed {
			modified++
		}
	}

	s.tags.Rebuild(s.model.Characters())
	s.notifier.Mark()
	return modified, nil
}

// DeleteSelected removes every selected character in one step, clears the
// selection, and rebuilds the tag index.
func (s *Session) DeleteSelected() (int, error) {
	if s.selection.Len() == 0 {
		return 0, errors.NewValidation("selection", "no characters selected")
	}

	removed := s.model.RemoveCharacters(s.selection.IDs())
	s.selection.Clear()
	s.tags.Rebuild(s.model.Characters())
	s.notifier.Mark()
	return removed, nil
}

// dedupTagsFold trims tags and drops case-insensitive duplicates within the
// input, preserving the first spelling seen.
func dedupTagsFold(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		folded := entity.NormalizeName(tag)
		if folded == "" {
			continue
		}
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		out = append(out, strings.TrimSpace(tag))
	}
	return out
}
