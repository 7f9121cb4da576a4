package library

import (
	"testing"
)

func selectedSet(s *Selection) map[string]bool {
	out := make(map[string]bool, s.Len())
	for id := range s.IDs() {
		out[id] = true
	}
	return out
}

func TestSelectReplaces(t *testing.T) {
	s := NewSelection()
	s.Select("a")
	s.Select("b")

	if s.Len() != 1 || !s.Has("b") {
		t.Errorf("selection = %v, want only b", selectedSet(s))
	}
	if s.Anchor() != "b" {
		t.Errorf("anchor = %q, want b", s.Anchor())
	}
}

func TestToggle(t *testing.T) {
	s := NewSelection()
	s.Toggle("a")
	s.Toggle("b")

	if s.Len() != 2 || !s.Has("a") || !s.Has("b") {
		t.Fatalf("selection = %v, want {a b}", selectedSet(s))
	}
	if s.Anchor() != "b" {
		t.Errorf("anchor = %q, want b", s.Anchor())
	}

	s.Toggle("b")
	if s.Has("b") {
		t.Error("toggle should remove b")
	}
	// Anchor was removed; a remaining member is promoted
	if s.Anchor() != "a" {
		t.Errorf("anchor = %q, want a after anchor removal", s.Anchor())
	}

	s.Toggle("a")
	if s.Len() != 0 || s.Anchor() != "" {
		t.Errorf("selection should be empty with no anchor, got %v anchor=%q", selectedSet(s), s.Anchor())
	}
}

func TestSelectRangeForward(t *testing.T) {
	rendered := []string{"a", "b", "c", "d", "e"}
	s := NewSelection()
	s.Select("b")
	s.SelectRange(rendered, "d")

	want := map[string]bool{"b": true, "c": true, "d": true}
	got := selectedSet(s)
	if len(got) != len(want) {
		t.Fatalf("selection = %v, want %v", got, want)
	}
	for id := range want {
		if !got[id] {
			t.Errorf("missing %s in %v", id, got)
		}
	}
	if s.Anchor() != "d" {
		t.Errorf("anchor = %q, want d", s.Anchor())
	}
}

func TestSelectRangeBackward(t *testing.T) {
	// A selection of {b,c,d} with anchor d, range-selecting a, must produce
	// exactly {a,b,c,d} with anchor a.
	rendered := []string{"a", "b", "c", "d", "e"}
	s := NewSelection()
	s.Toggle("b")
	s.Toggle("c")
	s.Toggle("d")
	s.SelectRange(rendered, "a")

	want := []string{"a", "b", "c", "d"}
	if s.Len() != len(want) {
		t.Fatalf("selection = %v, want %v", selectedSet(s), want)
	}
	for _, id := range want {
		if !s.Has(id) {
			t.Errorf("missing %s", id)
		}
	}
	if s.Has("e") {
		t.Error("e should not be selected")
	}
	if s.Anchor() != "a" {
		t.Errorf("anchor = %q, want a", s.Anchor())
	}
}

func TestSelectRangeReplacesDisjoint(t *testing.T) {
	rendered := []string{"a", "b", "c", "d", "e"}
	s := NewSelection()
	s.Toggle("e")
	s.Select("a")
	s.SelectRange(rendered, "c")

	if s.Has("e") {
		t.Error("range select must replace, not extend, the selection")
	}
	if s.Len() != 3 {
		t.Errorf("selection = %v, want {a b c}", selectedSet(s))
	}
}

func TestSelectRangeWithoutAnchor(t *testing.T) {
	rendered := []string{"a", "b", "c"}
	s := NewSelection()
	s.SelectRange(rendered, "b")

	if s.Len() != 1 || !s.Has("b") || s.Anchor() != "b" {
		t.Errorf("range without anchor should degrade to plain select, got %v", selectedSet(s))
	}
}

func TestSelectRangeAnchorNotRendered(t *testing.T) {
	s := NewSelection()
	s.Select("hidden")

	// The anchor exists but is filtered out of the rendered order
	s.SelectRange([]string{"a", "b", "c"}, "b")
	if s.Len() != 1 || !s.Has("b") {
		t.Errorf("unrendered anchor should degrade to plain select, got %v", selectedSet(s))
	}
}

func TestSelectRangeTargetNotRendered(t *testing.T) {
	s := NewSelection()
	s.Select("a")
	s.SelectRange([]string{"a", "b"}, "z")

	if s.Len() != 1 || !s.Has("a") || s.Anchor() != "a" {
		t.Errorf("unrendered target should be a no-op, got %v anchor=%q", selectedSet(s), s.Anchor())
	}
}

func TestPrune(t *testing.T) {
	s := NewSelection()
	s.Toggle("a")
	s.Toggle("b")
	s.Toggle("c") // anchor

	live := func(id string) bool { return id == "b" }
	s.Prune(live)

	if s.Len() != 1 || !s.Has("b") {
		t.Errorf("selection = %v, want only b", selectedSet(s))
	}
	if s.Anchor() != "b" {
		t.Errorf("anchor = %q, want promoted survivor b", s.Anchor())
	}
}

func TestClear(t *testing.T) {
	s := NewSelection()
	s.Toggle("a")
	s.Clear()
	if s.Len() != 0 || s.Anchor() != "" {
		t.Errorf("clear left selection %v anchor=%q", selectedSet(s), s.Anchor())
	}
}
