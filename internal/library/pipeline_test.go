package library

import (
	"testing"

	"github.com/pveldt/roster/internal/entity"
)

func namesOf(characters []*entity.Character) []string {
	names := make([]string, len(characters))
	for i, c := range characters {
		names[i] = c.DisplayName()
	}
	return names
}

func TestApplySortsByDisplayName(t *testing.T) {
	characters := []*entity.Character{
		{ID: "1", Name: "zara"},
		{ID: "2", Name: "Aria"},
		{ID: "3", Name: "mira", CardName: "Bix"},
	}

	ordered := Apply(characters, Criteria{})
	got := namesOf(ordered)
	want := []string{"Aria", "Bix", "zara"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestApplyStableOnEqualNames(t *testing.T) {
	characters := []*entity.Character{
		{ID: "first", Name: "Same"},
		{ID: "second", Name: "same"},
		{ID: "third", Name: "SAME"},
	}

	ordered := Apply(characters, Criteria{})
	if ordered[0].ID != "first" || ordered[1].ID != "second" || ordered[2].ID != "third" {
		t.Errorf("equal names should keep insertion order, got %s %s %s",
			ordered[0].ID, ordered[1].ID, ordered[2].ID)
	}
}

func TestApplyIdempotent(t *testing.T) {
	characters := []*entity.Character{
		{ID: "1", Name: "zara", Tags: []string{"hero"}},
		{ID: "2", Name: "Aria"},
		{ID: "3", Name: "Mira", FolderID: "f1"},
	}
	criteria := Criteria{Term: "a"}

	once := Apply(characters, criteria)
	twice := Apply(characters, criteria)
	if len(once) != len(twice) {
		t.Fatalf("lengths differ: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Errorf("position %d differs: %s vs %s", i, once[i].ID, twice[i].ID)
		}
	}
}

func TestApplyTermMatching(t *testing.T) {
	characters := []*entity.Character{
		{ID: "byname", Name: "Moonlight"},
		{ID: "bycard", Name: "plain", CardName: "Moon Princess"},
		{ID: "bydesc", Name: "other", Description: "walks under the moon"},
		{ID: "bytag", Name: "another", Tags: []string{"moonfolk"}},
		{ID: "nomatch", Name: "Sunrise"},
	}

	ordered := Apply(characters, Criteria{Term: "MOON"})
	if len(ordered) != 4 {
		t.Fatalf("matched %d, want 4: %v", len(ordered), namesOf(ordered))
	}
	for _, c := range ordered {
		if c.ID == "nomatch" {
			t.Error("term matched a character it should not")
		}
	}
}

func TestApplyFolderScope(t *testing.T) {
	characters := []*entity.Character{
		{ID: "in", Name: "a", FolderID: "f1"},
		{ID: "other", Name: "b", FolderID: "f2"},
		{ID: "loose", Name: "c"},
	}

	t.Run("all", func(t *testing.T) {
		if got := Apply(characters, Criteria{}); len(got) != 3 {
			t.Errorf("matched %d, want 3", len(got))
		}
	})

	t.Run("specific folder", func(t *testing.T) {
		got := Apply(characters, Criteria{FolderScope: "f1"})
		if len(got) != 1 || got[0].ID != "in" {
			t.Errorf("matched %v, want [in]", namesOf(got))
		}
	})

	t.Run("unfoldered sentinel", func(t *testing.T) {
		got := Apply(characters, Criteria{FolderScope: FolderScopeUnfoldered})
		if len(got) != 1 || got[0].ID != "loose" {
			t.Errorf("matched %v, want [c]", namesOf(got))
		}
	})
}

func TestApplyTagFilter(t *testing.T) {
	characters := []*entity.Character{
		{ID: "1", Name: "a", Tags: []string{"Hero", "mage"}},
		{ID: "2", Name: "b", Tags: []string{"villain"}},
	}

	got := Apply(characters, Criteria{Tag: "her"})
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("tag filter matched %d, want the tagged character", len(got))
	}
}

func TestApplyCombinedCriteria(t *testing.T) {
	characters := []*entity.Character{
		{ID: "1", Name: "Aria", FolderID: "f1", Tags: []string{"hero"}},
		{ID: "2", Name: "Aria Twin", FolderID: "f1", Tags: []string{"villain"}},
		{ID: "3", Name: "Aria Third", Tags: []string{"hero"}},
	}

	got := Apply(characters, Criteria{Term: "aria", FolderScope: "f1", Tag: "hero"})
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("combined criteria matched %d, want only the character passing all stages", len(got))
	}
}

func TestWindow(t *testing.T) {
	characters := make([]*entity.Character, 0, 30)
	for i := 0; i < 30; i++ {
		characters = append(characters, &entity.Character{ID: string(rune('a' + i))})
	}

	w := NewWindow(24)
	if got := w.Slice(characters); len(got) != 24 {
		t.Errorf("initial slice = %d, want 24", len(got))
	}

	w.Grow()
	if got := w.Slice(characters); len(got) != 30 {
		t.Errorf("grown slice = %d, want 30 (clamped)", len(got))
	}

	w.Reset()
	if got := w.Slice(characters); len(got) != 24 {
		t.Errorf("reset slice = %d, want 24", len(got))
	}
}

func TestCriteriaEqual(t *testing.T) {
	a := Criteria{Term: "x", FolderScope: "f1", Tag: "t"}
	b := Criteria{Term: "x", FolderScope: "f1", Tag: "t"}
	if !a.Equal(b) {
		t.Error("identical criteria should be equal")
	}
	b.Term = "y"
	if a.Equal(b) {
		t.Error("different criteria should not be equal")
	}
}
