// Package card renders character records into interchange formats: the
// narrative-card JSON schema, PNG files with the record embedded in image
// metadata, and a flattened plain-text summary.
package card

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pveldt/roster/internal/entity"
)

// SchemaName identifies the card JSON schema.
const SchemaName = "chara_card_v2"

// SchemaVersion is the card schema version.
const SchemaVersion = "2.0"

// Card is the narrative-card JSON schema wrapper.
type Card struct {
	Spec        string `json:"spec"`
	SpecVersion string `json:"spec_version"`
	Data        Data   `json:"data"`
}

// Data is the card payload.
type Data struct {
	Name                    string          `json:"name"`
	Nickname                string          `json:"nickname,omitempty"`
	Description             string          `json:"description"`
	Personality             string          `json:"personality"`
	Scenario                string          `json:"scenario"`
	FirstMes                string          `json:"first_mes"`
	MesExample              string          `json:"mes_example"`
	CreatorNotes            string          `json:"creator_notes"`
	PostHistoryInstructions string          `json:"post_history_instructions"`
	Tags                    []string        `json:"tags,omitempty"`
	CharacterBook           json.RawMessage `json:"character_book,omitempty"`
	Extensions              map[string]any  `json:"extensions,omitempty"`
}

// FromCharacter builds a card from a character record.
func FromCharacter(c *entity.Character) *Card {
	data := Data{
		Name:                    c.Name,
		Nickname:                c.CardName,
		Description:             c.Description,
		Personality:             c.Personality,
		Scenario:                c.Scenario,
		FirstMes:                c.FirstMessage,
		MesExample:              c.ExampleMessages,
		CreatorNotes:            c.CreatorNotes,
		PostHistoryInstructions: c.PostHistoryInstructions,
		Tags:                    c.Tags,
		CharacterBook:           c.CharacterBook,
	}
	if c.DepthPrompt.Text != "" {
		data.Extensions = map[string]any{
			"depth_prompt": map[string]any{
				"prompt": c.DepthPrompt.Text,
				"depth":  c.DepthPrompt.Depth,
				"role":   c.DepthPrompt.Role,
			},
		}
	}
	return &Card{
		Spec:        SchemaName,
		SpecVersion: SchemaVersion,
		Data:        data,
	}
}

// ToCharacter converts a card back into a character record, recomputing
// derived fields. The ID is freshly generated; imports never collide with
// existing entities.
func (card *Card) ToCharacter() *entity.Character {
	c := &entity.Character{
		ID:                      entity.MustID(),
		Name:                    card.Data.Name,
		CardName:                card.Data.Nickname,
		Description:             card.Data.Description,
		Personality:             card.Data.Personality,
		Scenario:                card.Data.Scenario,
		FirstMessage:            card.Data.FirstMes,
		ExampleMessages:         card.Data.MesExample,
		CreatorNotes:            card.Data.CreatorNotes,
		PostHistoryInstructions: card.Data.PostHistoryInstructions,
		Tags:                    card.Data.Tags,
		CharacterBook:           card.Data.CharacterBook,
	}
	if ext, ok := card.Data.Extensions["depth_prompt"].(map[string]any); ok {
		if text, ok := ext["prompt"].(string); ok {
			c.DepthPrompt.Text = text
		}
		if depth, ok := ext["depth"].(float64); ok {
			c.DepthPrompt.Depth = int(depth)
		}
		if role, ok := ext["role"].(string); ok {
			c.DepthPrompt.Role = role
		}
	}
	c.RecomputeTokens()
	return c
}

// MarshalJSONCard renders the character as indented card JSON.
func MarshalJSONCard(c *entity.Character) ([]byte, error) {
	return json.MarshalIndent(FromCharacter(c), "", "  ")
}

// ParseJSONCard decodes card JSON into a character record.
func ParseJSONCard(data []byte) (*entity.Character, error) {
	var card Card
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, err
	}
	return card.ToCharacter(), nil
}

// unsafeFilenameChars matches characters stripped from export filenames.
var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._ -]+`)

// Filename builds a safe export filename for the character and extension.
func Filename(c *entity.Character, ext string) string {
	base := unsafeFilenameChars.ReplaceAllString(c.DisplayName(), "")
	base = strings.TrimSpace(base)
	if base == "" {
		base = "character"
	}
	return base + "." + ext
}
