package entity

import "encoding/json"

// DepthPrompt is an instruction injected into the prompt at a given depth.
type DepthPrompt struct {
	// Text is the prompt body (empty means no depth prompt)
	Text string `json:"text"`

	// Depth is the insertion depth in messages from the end
	Depth int `json:"depth"`

	// Role is the speaker role the prompt is attributed to
	Role string `json:"role"`
}

// Character is a creative-writing character record.
// It is the unit held by the library session and serialized into project
// snapshots. Mutation goes through the session or an explicit edit commit.
type Character struct {
	// ID is a ULID that uniquely identifies this character.
	// Client-generated and stable across saves.
	ID string `json:"id"`

	// Name is the display name (required)
	Name string `json:"name"`

	// CardName is an optional alias shown on cards instead of Name
	CardName string `json:"cardName,omitempty"`

	// Narrative fields
	Description             string `json:"description"`
	Personality             string `json:"personality"`
	Scenario                string `json:"scenario"`
	FirstMessage            string `json:"firstMessage"`
	ExampleMessages         string `json:"exampleMessages"`
	CreatorNotes            string `json:"creatorNotes"`
	PostHistoryInstructions string `json:"postHistoryInstructions"`

	// DepthPrompt is the depth-injected instruction block
	DepthPrompt DepthPrompt `json:"depthPrompt"`

	// Avatars is the ordered avatar list; at most one has IsActive set
	Avatars []Avatar `json:"avatars,omitempty"`

	// FolderID references a folder by ID; empty means unfoldered
	FolderID string `json:"folderId,omitempty"`

	// Tags are free-text labels. Storage is case-sensitive; bulk adds
	// dedup case-insensitively.
	Tags []string `json:"tags,omitempty"`

	// CharacterBook holds structured lore entries, opaque to the engine
	CharacterBook json.RawMessage `json:"characterBook,omitempty"`

	// TokensEstimate is derived from the narrative fields, recomputed on save
	TokensEstimate int `json:"tokensEstimate"`

	// Thumbnail mirrors the active avatar's preview for fast rendering
	Thumbnail string `json:"thumbnail,omitempty"`
}

// narrativeFields returns the fields that count toward the token estimate.
func (c *Character) narrativeFields() []string {
	return []string{
		c.Description,
		c.Personality,
		c.Scenario,
		c.FirstMessage,
		c.ExampleMessages,
		c.CreatorNotes,
		c.PostHistoryInstructions,
	}
}

// RecomputeTokens refreshes TokensEstimate from the narrative fields.
// Called on every save.
func (c *Character) RecomputeTokens() {
	total := 0
	for _, f := range c.narrativeFields() {
		total += EstimateTokens(f)
	}
	c.TokensEstimate = total
}

// DisplayName returns CardName when set, otherwise Name.
// This is also the primary sort key of the rendered view.
func (c *Character) DisplayName() string {
	if c.CardName != "" {
		return c.CardName
	}
	return c.Name
}

// ActiveAvatar returns the avatar with IsActive set, or nil.
func (c *Character) ActiveAvatar() *Avatar {
	for i := range c.Avatars {
		if c.Avatars[i].IsActive {
			return &c.Avatars[i]
		}
	}
	return nil
}

// SetActiveAvatar activates the avatar with the given ID and deactivates all
// siblings in the same step, then mirrors its preview onto Thumbnail.
// Returns false if no avatar matches.
func (c *Character) SetActiveAvatar(avatarID string) bool {
	found := false
	for i := range c.Avatars {
		active := c.Avatars[i].ID == avatarID
		c.Avatars[i].IsActive = active
		if active {
			c.Thumbnail = c.Avatars[i].Preview
			found = true
		}
	}
	if !found {
		c.Thumbnail = ""
	}
	return found
}

// HasTagFold reports whether the character carries tag, compared
// case-insensitively.
func (c *Character) HasTagFold(tag string) bool {
	folded := NormalizeName(tag)
	for _, t := range c.Tags {
		if NormalizeName(t) == folded {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the character.
func (c *Character) Clone() *Character {
	out := *c
	if c.Avatars != nil {
		out.Avatars = make([]Avatar, len(c.Avatars))
		copy(out.Avatars, c.Avatars)
	}
	if c.Tags != nil {
		out.Tags = make([]string, len(c.Tags))
		copy(out.Tags, c.Tags)
	}
	if c.CharacterBook != nil {
		out.CharacterBook = make(json.RawMessage, len(c.CharacterBook))
		copy(out.CharacterBook, c.CharacterBook)
	}
	return &out
}
