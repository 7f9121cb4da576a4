package library

import "github.com/pveldt/roster/internal/errors"

// Typed command dispatch: the UI layer emits commands, the session consumes
// them. The engine never sees events or a rendering technology, only these
// intents.

// SelectModifier distinguishes the three selection gestures.
type SelectModifier int

const (
	// ModifierNone replaces the selection with the clicked item
	ModifierNone SelectModifier = iota

	// ModifierToggle adds/removes the clicked item
	ModifierToggle

	// ModifierRange spans from the anchor to the clicked item across the
	// rendered order
	ModifierRange
)

// Command is a user intent applied to the session.
type Command interface {
	apply(s *Session) error
}

// SelectCharacter selects a character with the given modifier.
type SelectCharacter struct {
	ID       string
	Modifier SelectModifier
}

func (c SelectCharacter) apply(s *Session) error {
	switch c.Modifier {
	case ModifierToggle:
		return s.SelectToggle(c.ID)
	case ModifierRange:
		return s.SelectRangeTo(c.ID)
	default:
		return s.SelectPlain(c.ID)
	}
}

// ClearSelection empties the selection.
type ClearSelection struct{}

func (ClearSelection) apply(s *Session) error {
	s.ClearSelection()
	return nil
}

// SetFilter installs new filter criteria.
type SetFilter struct {
	Criteria Criteria
}

func (c SetFilter) apply(s *Session) error {
	s.SetCriteria(c.Criteria)
	return nil
}

// RevealMore grows the rendered window by one increment. Emitted explicitly
// or by the consumer's proximity-based lazy loading.
type RevealMore struct{}

func (RevealMore) apply(s *Session) error {
	s.RevealMore()
	return nil
}

// MoveSelected moves every selected character to the folder ("" unfolders).
type MoveSelected struct {
	FolderID string
}

func (c MoveSelected) apply(s *Session) error {
	_, err := s.MoveSelected(c.FolderID)
	return err
}

// TagSelected adds tags to every selected character.
type TagSelected struct {
	Tags []string
}

func (c TagSelected) apply(s *Session) error {
	_, err := s.TagSelected(c.Tags)
	return err
}

// DeleteSelected removes every selected character. The confirm step, if
// any, happens before this command is emitted.
type DeleteSelected struct{}

func (DeleteSelected) apply(s *Session) error {
	_, err := s.DeleteSelected()
	return err
}

// Dispatch applies a command to the session.
func (s *Session) Dispatch(cmd Command) error {
	if cmd == nil {
		return errors.NewValidation("command", "command is required")
	}
	return cmd.apply(s)
}
