package card

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pveldt/roster/internal/entity"
)

func sampleCharacter() *entity.Character {
	return &entity.Character{
		ID:                      "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Name:                    "Aria",
		CardName:                "Aria the Bold",
		Description:             "A wandering knight.",
		Personality:             "Stubborn, loyal.",
		Scenario:                "The road north.",
		FirstMessage:            "Well met, traveler.",
		ExampleMessages:         "<START>\nAria: Hold fast.",
		CreatorNotes:            "Keep her terse.",
		PostHistoryInstructions: "Stay in character.",
		DepthPrompt:             entity.DepthPrompt{Text: "Speak in short sentences.", Depth: 4, Role: "system"},
		Tags:                    []string{"knight", "wanderer"},
		CharacterBook:           json.RawMessage(`{"entries":[{"keys":["north"],"content":"cold"}]}`),
	}
}

func TestJSONCardRoundTrip(t *testing.T) {
	orig := sampleCharacter()

	data, err := MarshalJSONCard(orig)
	if err != nil {
		t.Fatalf("MarshalJSONCard: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("card JSON invalid: %v", err)
	}
	if raw["spec"] != SchemaName || raw["spec_version"] != SchemaVersion {
		t.Errorf("spec = %v/%v, want %s/%s", raw["spec"], raw["spec_version"], SchemaName, SchemaVersion)
	}

	got, err := ParseJSONCard(data)
	if err != nil {
		t.Fatalf("ParseJSONCard: %v", err)
	}

	if got.ID == orig.ID {
		t.Error("imported character must get a fresh ID")
	}
	if got.Name != orig.Name || got.CardName != orig.CardName {
		t.Errorf("names = %q/%q, want %q/%q", got.Name, got.CardName, orig.Name, orig.CardName)
	}
	if got.Description != orig.Description || got.FirstMessage != orig.FirstMessage {
		t.Error("narrative fields lost in round trip")
	}
	if got.DepthPrompt != orig.DepthPrompt {
		t.Errorf("DepthPrompt = %+v, want %+v", got.DepthPrompt, orig.DepthPrompt)
	}
	if len(got.Tags) != 2 {
		t.Errorf("Tags = %v, want 2 entries", got.Tags)
	}
	if string(got.CharacterBook) != string(orig.CharacterBook) {
		t.Error("CharacterBook lost in round trip")
	}
	if got.TokensEstimate == 0 {
		t.Error("imported character should have a recomputed token estimate")
	}
}

func TestCardOmitsEmptyDepthPrompt(t *testing.T) {
	c := &entity.Character{Name: "Plain"}
	card := FromCharacter(c)
	if card.Data.Extensions != nil {
		t.Errorf("Extensions = %v, want nil without a depth prompt", card.Data.Extensions)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		character *entity.Character
		ext       string
		want      string
	}{
		{&entity.Character{Name: "Aria"}, "json", "Aria.json"},
		{&entity.Character{Name: "Aria", CardName: "Aria the Bold"}, "png", "Aria the Bold.png"},
		{&entity.Character{Name: `sl/ash\and:colons?`}, "txt", "slashandcolons.txt"},
		{&entity.Character{Name: "日本語のみ"}, "json", "character.json"},
	}
	for _, tt := range tests {
		if got := Filename(tt.character, tt.ext); got != tt.want {
			t.Errorf("Filename(%q, %s) = %q, want %q", tt.character.DisplayName(), tt.ext, got, tt.want)
		}
	}
}

func TestMarshalTXT(t *testing.T) {
	c := sampleCharacter()
	text := string(MarshalTXT(c))

	for _, want := range []string{
		"Name: Aria",
		"Card Name: Aria the Bold",
		"Tags: knight, wanderer",
		"Description:\nA wandering knight.",
		"Depth Prompt (depth 4, system):",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("txt output missing %q:\n%s", want, text)
		}
	}
}

func TestMarshalTXTOmitsEmptySections(t *testing.T) {
	c := &entity.Character{Name: "Minimal"}
	text := string(MarshalTXT(c))

	if strings.Contains(text, "Personality") || strings.Contains(text, "Depth Prompt") {
		t.Errorf("empty sections should be omitted:\n%s", text)
	}
}
