package library

import (
	"strings"
	"time"

	"github.com/pveldt/roster/internal/entity"
	"github.com/pveldt/roster/internal/errors"
)

// Model is the authoritative in-memory store of characters and folders for
// the active project. Insertion order of characters is preserved; the view
// pipeline relies on it to break sort-key ties.
//
// Model methods enforce referential integrity but know nothing about
// selection or pagination; Session composes those on top.
type Model struct {
	characters []*entity.Character
	byID       map[string]*entity.Character

	folders    []*entity.Folder
	folderByID map[string]*entity.Folder
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{
		byID:       make(map[string]*entity.Character),
		folderByID: make(map[string]*entity.Folder),
	}
}

// Characters returns the characters in insertion order.
// The returned slice is shared; callers must not mutate it.
func (m *Model) Characters() []*entity.Character {
	return m.characters
}

// Character returns the character with the given ID, or nil.
func (m *Model) Character(id string) *entity.Character {
	return m.byID[id]
}

// Len returns the number of characters.
func (m *Model) Len() int {
	return len(m.characters)
}

// AddCharacter appends a character to the collection.
// A missing ID is generated; a missing name or a dangling folder reference
// aborts the add.
func (m *Model) AddCharacter(c *entity.Character) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.NewValidation("name", "character name is required")
	}
	if c.ID == "" {
		c.ID = entity.MustID()
	}
	if _, exists := m.byID[c.ID]; exists {
		return errors.NewIntegrity("character ID already present: " + c.ID)
	}
	if c.FolderID != "" && m.folderByID[c.FolderID] == nil {
		return errors.NewIntegrity("character references nonexistent folder: " + c.FolderID)
	}
	c.RecomputeTokens()
	m.characters = append(m.characters, c)
	m.byID[c.ID] = c
	return nil
}

// UpdateCharacter commits an edited character over the stored one, keeping
// its position in insertion order. Derived fields are recomputed.
func (m *Model) UpdateCharacter(c *entity.Character) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.NewValidation("name", "character name is required")
	}
	stored := m.byID[c.ID]
	if stored == nil {
		return errors.NewNotFound("character", c.ID)
	}
	if c.FolderID != "" && m.folderByID[c.FolderID] == nil {
		return errors.NewIntegrity("character references nonexistent folder: " + c.FolderID)
	}
	c.RecomputeTokens()
	if active := c.ActiveAvatar(); active != nil {
		c.Thumbnail = active.Preview
	}
	*stored = *c
	return nil
}

// RemoveCharacters deletes all characters in ids from the collection in one
// step. Unknown IDs are ignored. Returns the number removed.
func (m *Model) RemoveCharacters(ids map[string]struct{}) int {
	if len(ids) == 0 {
		return 0
	}
	kept := m.characters[:0]
	removed := 0
	for _, c := range m.characters {
		if _, hit := ids[c.ID]; hit {
			delete(m.byID, c.ID)
			removed++
			continue
		}
		kept = append(kept, c)
	}
	// Zero the tail so removed entries don't linger in the backing array
	for i := len(kept); i < len(m.characters); i++ {
		m.characters[i] = nil
	}
	m.characters = kept
	return removed
}

// Folders returns the folders in creation order.
// The returned slice is shared; callers must not mutate it.
func (m *Model) Folders() []*entity.Folder {
	return m.folders
}

// Folder returns the folder with the given ID, or nil.
func (m *Model) Folder(id string) *entity.Folder {
	return m.folderByID[id]
}

// CreateFolder adds a folder with the given name.
// Names are unique case-insensitively within the project.
func (m *Model) CreateFolder(name string) (*entity.Folder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidation("name", "folder name is required")
	}
	if m.folderNameTaken(name, "") {
		return nil, errors.NewDuplicateName("folder", name)
	}
	f := &entity.Folder{
		ID:        entity.MustID(),
		Name:      name,
		CreatedAt: time.Now().Unix(),
	}
	m.folders = append(m.folders, f)
	m.folderByID[f.ID] = f
	return f, nil
}

// RenameFolder changes a folder's name, enforcing uniqueness.
func (m *Model) RenameFolder(id, name string) error {
	f := m.folderByID[id]
	if f == nil {
		return errors.NewNotFound("folder", id)
	}
	if strings.TrimSpace(name) == "" {
		return errors.NewValidation("name", "folder name is required")
	}
	if m.folderNameTaken(name, id) {
		return errors.NewDuplicateName("folder", name)
	}
	f.Name = name
	return nil
}

// DeleteFolder removes a folder and clears FolderID on every member in the
// same step. Characters are never deleted by a folder delete. Returns the
// number of characters unfoldered.
func (m *Model) DeleteFolder(id string) (int, error) {
	f := m.folderByID[id]
	if f == nil {
		return 0, errors.NewNotFound("folder", id)
	}

	cleared := 0
	for _, c := range m.characters {
		if c.FolderID == id {
			c.FolderID = ""
			cleared++
		}
	}

	delete(m.folderByID, id)
	for i, other := range m.folders {
		if other.ID == id {
			m.folders = append(m.folders[:i], m.folders[i+1:]...)
			break
		}
	}
	return cleared, nil
}

// FolderMembers returns the characters referencing the folder, derived by
// scan in insertion order.
func (m *Model) FolderMembers(id string) []*entity.Character {
	var members []*entity.Character
	for _, c := range m.characters {
		if c.FolderID == id {
			members = append(members, c)
		}
	}
	return members
}

// folderNameTaken reports whether name collides case-insensitively with a
// folder other than exceptID.
func (m *Model) folderNameTaken(name, exceptID string) bool {
	folded := entity.NormalizeName(name)
	for _, f := range m.folders {
		if f.ID != exceptID && entity.NormalizeName(f.Name) == folded {
			return true
		}
	}
	return false
}

// Replace swaps in a full character and folder collection, e.g. after a
// project load. The caller must have validated the snapshot first; dangling
// folder references abort the swap with the model untouched.
func (m *Model) Replace(characters []*entity.Character, folders []*entity.Folder) error {
	folderByID := make(map[string]*entity.Folder, len(folders))
	for _, f := range folders {
		folderByID[f.ID] = f
	}
	byID := make(map[string]*entity.Character, len(characters))
	for _, c := range characters {
		if c.FolderID != "" && folderByID[c.FolderID] == nil {
			return errors.NewIntegrity("snapshot character " + c.ID + " references nonexistent folder " + c.FolderID)
		}
		byID[c.ID] = c
	}

	m.characters = characters
	m.byID = byID
	m.folders = folders
	m.folderByID = folderByID
	return nil
}
