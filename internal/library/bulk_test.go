package library

import (
	"testing"

	"github.com/pveldt/roster/internal/entity"
	"github.com/pveldt/roster/internal/errors"
)

func selectAll(t *testing.T, s *Session, ids []string) {
	t.Helper()
	for _, id := range ids {
		if err := s.SelectToggle(id); err != nil {
			t.Fatalf("SelectToggle(%s): %v", id, err)
		}
	}
}

func TestMoveSelected(t *testing.T) {
	s := newTestSession(t)
	ids := addCharacters(t, s, "a", "b", "c")
	f, err := s.CreateFolder("Heroes")
	if err != nil {
		t.Fatal(err)
	}
	selectAll(t, s, ids[:2])

	affected, err := s.MoveSelected(f.ID)
	if err != nil {
		t.Fatalf("MoveSelected: %v", err)
	}
	if affected != 2 {
		t.Errorf("affected = %d, want 2", affected)
	}
	for _, id := range ids[:2] {
		if s.Model().Character(id).FolderID != f.ID {
			t.Errorf("%s not moved", id)
		}
	}
	if s.Model().Character(ids[2]).FolderID != "" {
		t.Error("unselected character was moved")
	}

	// Selection survives the move
	if s.Selection().Len() != 2 {
		t.Errorf("selection = %d, want 2 after move", s.Selection().Len())
	}
}

func TestMoveSelectedUnfolders(t *testing.T) {
	s := newTestSession(t)
	f, err := s.CreateFolder("Heroes")
	if err != nil {
		t.Fatal(err)
	}
	c := &entity.Character{Name: "Aria", FolderID: f.ID}
	if err := s.AddCharacter(c); err != nil {
		t.Fatal(err)
	}
	selectAll(t, s, []string{c.ID})

	if _, err := s.MoveSelected(""); err != nil {
		t.Fatalf("MoveSelected: %v", err)
	}
	if c.FolderID != "" {
		t.Error("empty target should unfolder")
	}
}

func TestMoveSelectedErrors(t *testing.T) {
	s := newTestSession(t)
	ids := addCharacters(t, s, "a")

	if _, err := s.MoveSelected("any"); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("empty selection: err = %v, want VALIDATION", err)
	}

	selectAll(t, s, ids)
	if _, err := s.MoveSelected("ghost-folder"); !errors.Is(err, errors.ErrIntegrity) {
		t.Errorf("unknown folder: err = %v, want INTEGRITY", err)
	}
}

func TestTagSelected(t *testing.T) {
	s := newTestSession(t)
	a := &entity.Character{Name: "a", Tags: []string{"Hero"}}
	b := &entity.Character{Name: "b"}
	for _, c := range []*entity.Character{a, b} {
		if err := s.AddCharacter(c); err != nil {
			t.Fatal(err)
		}
	}
	selectAll(t, s, []string{a.ID, b.ID})

	// "hero" collides case-insensitively with a's existing "Hero"
	modified, err := s.TagSelected([]string{"hero", "mage"})
	if err != nil {
		t.Fatalf("TagSelected: %v", err)
	}
	if modified != 2 {
		t.Errorf("modified = %d, want 2", modified)
	}
	if len(a.Tags) != 2 {
		t.Errorf("a.Tags = %v, want existing Hero plus mage", a.Tags)
	}
	if len(b.Tags) != 2 {
		t.Errorf("b.Tags = %v, want hero and mage", b.Tags)
	}

	// Second application is a no-op
	modified, err = s.TagSelected([]string{"HERO", "Mage"})
	if err != nil {
		t.Fatal(err)
	}
	if modified != 0 {
		t.Errorf("modified = %d, want 0 on repeat", modified)
	}

	// Tag index picked up the new tags
	if !s.Model().Character(a.ID).HasTagFold("mage") {
		t.Error("mage missing from a")
	}
}

func TestTagSelectedDedupsInput(t *testing.T) {
	s := newTestSession(t)
	c := &entity.Character{Name: "a"}
	if err := s.AddCharacter(c); err != nil {
		t.Fatal(err)
	}
	selectAll(t, s, []string{c.ID})

	if _, err := s.TagSelected([]string{" alpha ", "Alpha", "beta", ""}); err != nil {
		t.Fatal(err)
	}
	if len(c.Tags) != 2 {
		t.Errorf("Tags = %v, want [alpha beta]", c.Tags)
	}
	if c.Tags[0] != "alpha" {
		t.Errorf("first spelling should be kept trimmed, got %q", c.Tags[0])
	}
}

func TestTagSelectedValidation(t *testing.T) {
	s := newTestSession(t)
	ids := addCharacters(t, s, "a")

	if _, err := s.TagSelected([]string{"x"}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("empty selection: err = %v, want VALIDATION", err)
	}

	selectAll(t, s, ids)
	if _, err := s.TagSelected([]string{"  ", ""}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("blank tags: err = %v, want VALIDATION", err)
	}
}

func TestDeleteSelected(t *testing.T) {
	s := newTestSession(t)
	a := &entity.Character{Name: "a", Tags: []string{"doomed"}}
	if err := s.AddCharacter(a); err != nil {
		t.Fatal(err)
	}
	ids := addCharacters(t, s, "b", "c")
	selectAll(t, s, []string{a.ID, ids[0]})

	removed, err := s.DeleteSelected()
	if err != nil {
		t.Fatalf("DeleteSelected: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if s.Model().Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Model().Len())
	}
	if s.Selection().Len() != 0 {
		t.Error("selection must be empty after bulk delete")
	}
	// The deleted character's unique tag is gone from the index
	for _, tag := range s.Tags() {
		if tag == "doomed" {
			t.Error("tag index still lists a tag only the deleted character had")
		}
	}
}
