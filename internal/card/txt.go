package card

import (
	"fmt"
	"strings"

	"github.com/pveldt/roster/internal/entity"
)

// MarshalTXT flattens a character record into a plain-text summary.
// Empty fields are omitted.
func MarshalTXT(c *entity.Character) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "Name: %s\n", c.Name)
	if c.CardName != "" {
		fmt.Fprintf(&b, "Card Name: %s\n", c.CardName)
	}
	if len(c.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(c.Tags, ", "))
	}

	writeSection(&b, "Description", c.Description)
	writeSection(&b, "Personality", c.Personality)
	writeSection(&b, "Scenario", c.Scenario)
	writeSection(&b, "First Message", c.FirstMessage)
	writeSection(&b, "Example Messages", c.ExampleMessages)
	writeSection(&b, "Creator Notes", c.CreatorNotes)
	writeSection(&b, "Post-History Instructions", c.PostHistoryInstructions)

	if c.DepthPrompt.Text != "" {
		writeSection(&b, fmt.Sprintf("Depth Prompt (depth %d, %s)", c.DepthPrompt.Depth, c.DepthPrompt.Role), c.DepthPrompt.Text)
	}

	return []byte(b.String())
}

// writeSection appends a titled section when body is non-empty.
func writeSection(b *strings.Builder, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	fmt.Fprintf(b, "\n%s:\n%s\n", title, body)
}
