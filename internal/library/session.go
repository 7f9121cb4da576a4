package library

import (
	"context"
	"log/slog"
	"time"

	"github.com/pveldt/roster/internal/entity"
	"github.com/pveldt/roster/internal/errors"
)

// Persistence is the remote service contract the session saves to and loads
// from. remote.Client implements it; tests substitute fakes.
type Persistence interface {
	ListProjects(ctx context.Context) ([]string, error)

	// SaveProject stores a whole snapshot and returns the promotion map
	// from temp asset refs to committed, project-scoped asset IDs.
	SaveProject(ctx context.Context, p *entity.Project) (map[string]string, error)

	LoadProject(ctx context.Context, name string) (*entity.Project, error)
	RenameProject(ctx context.Context, oldName, newName string) (string, error)
	DeleteProject(ctx context.Context, name string) error

	// CleanupTemp releases staged assets that were never committed.
	CleanupTemp(ctx context.Context) error
}

// Session owns one project's working set: the entity model plus the
// selection, filter criteria, and pagination window derived from it.
//
// Session methods are not safe for concurrent use. There is exactly one
// logical writer; concurrency only enters through network calls completing
// out of order, which the generation counter fences off.
type Session struct {
	model     *Model
	tags      *TagIndex
	selection *Selection
	criteria  Criteria
	window    Window

	projectName string
	viewMode    string

	// generation fences in-flight network calls: bumped on every project
	// switch, responses carrying an older value are discarded.
	generation uint64

	notifier *Notifier
	logger   *slog.Logger

	// cleanupPending is set when a temp-asset cleanup failed and should be
	// retried on the next project switch.
	cleanupPending bool
}

// Options configures a new session.
type Options struct {
	// PageWindow is the initial and incremental rendered window size
	PageWindow int

	// NotifyDelay coalesces change notifications; zero disables the timer
	NotifyDelay time.Duration

	// OnChange is invoked (coalesced) after mutations settle
	OnChange func()

	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// DefaultPageWindow is the rendered window size when none is configured.
const DefaultPageWindow = 24

// NewSession creates an empty session.
func NewSession(opts Options) *Session {
	step := opts.PageWindow
	if step <= 0 {
		step = DefaultPageWindow
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		model:     NewModel(),
		tags:      NewTagIndex(),
		selection: NewSelection(),
		window:    NewWindow(step),
		notifier:  NewNotifier(opts.NotifyDelay, opts.OnChange),
		logger:    logger,
	}
}

// Model exposes the entity model for read access.
func (s *Session) Model() *Model { return s.model }

// Tags returns the distinct-tag index for autocomplete.
func (s *Session) Tags() []string { return s.tags.Tags() }

// Selection exposes the selection subsystem for read access.
func (s *Session) Selection() *Selection { return s.selection }

// ProjectName returns the active project name ("" before the first save/load).
func (s *Session) ProjectName() string { return s.projectName }

// Generation returns the current project generation.
func (s *Session) Generation() uint64 { return s.generation }

// Notifier exposes the coalescing notifier, mainly so tests and the
// consumer can Flush deterministically.
func (s *Session) Notifier() *Notifier { return s.notifier }

// Criteria returns the active filter criteria.
func (s *Session) Criteria() Criteria { return s.criteria }

// SetCriteria installs new filter criteria. The pagination window resets
// only on an actual change, so bulk edits never collapse the view.
func (s *Session) SetCriteria(c Criteria) {
	if s.criteria.Equal(c) {
		return
	}
	s.criteria = c
	s.window.Reset()
	s.notifier.Mark()
}

// RevealMore grows the rendered window by one increment.
func (s *Session) RevealMore() {
	s.window.Grow()
	s.notifier.Mark()
}

// View computes the rendered view: filtered, ordered, windowed.
func (s *Session) View() View {
	ordered := Apply(s.model.Characters(), s.criteria)
	visible := s.window.Slice(ordered)
	return View{
		Visible: visible,
		Total:   len(ordered),
		HasMore: len(visible) < len(ordered),
	}
}

// renderedIDs returns the IDs of the currently rendered (windowed) order.
// Range selection walks this sequence.
func (s *Session) renderedIDs() []string {
	visible := s.View().Visible
	ids := make([]string, len(visible))
	for i, c := range visible {
		ids[i] = c.ID
	}
	return ids
}

// SelectPlain replaces the selection with the single character.
func (s *Session) SelectPlain(id string) error {
	if s.model.Character(id) == nil {
		return errors.NewIntegrity("select references nonexistent character: " + id)
	}
	s.selection.Select(id)
	s.notifier.Mark()
	return nil
}

// SelectToggle adds or removes the character from the selection.
func (s *Session) SelectToggle(id string) error {
	if s.model.Character(id) == nil {
		return errors.NewIntegrity("toggle references nonexistent character: " + id)
	}
	s.selection.Toggle(id)
	s.notifier.Mark()
	return nil
}

// SelectRangeTo range-selects from the anchor to the target across the
// currently rendered order.
func (s *Session) SelectRangeTo(id string) error {
	if s.model.Character(id) == nil {
		return errors.NewIntegrity("range select references nonexistent character: " + id)
	}
	s.selection.SelectRange(s.renderedIDs(), id)
	s.notifier.Mark()
	return nil
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	s.selection.Clear()
	s.notifier.Mark()
}

// AddCharacter adds a character and rebuilds the tag index.
func (s *Session) AddCharacter(c *entity.Character) error {
	if err := s.model.AddCharacter(c); err != nil {
		return err
	}
	s.tags.Rebuild(s.model.Characters())
	s.notifier.Mark()
	return nil
}

// UpdateCharacter commits an edit and rebuilds the tag index.
func (s *Session) UpdateCharacter(c *entity.Character) error {
	if err := s.model.UpdateCharacter(c); err != nil {
		return err
	}
	s.tags.Rebuild(s.model.Characters())
	s.notifier.Mark()
	return nil
}

// AddAvatar attaches a freshly staged avatar to a character and makes it
// the active one.
func (s *Session) AddAvatar(characterID, tempOriginalRef, tempThumbnailRef, preview string) (*entity.Avatar, error) {
	c := s.model.Character(characterID)
	if c == nil {
		return nil, errors.NewNotFound("character", characterID)
	}
	avatar := entity.Avatar{
		ID:               entity.MustID(),
		TempOriginalRef:  tempOriginalRef,
		TempThumbnailRef: tempThumbnailRef,
		Preview:          preview,
	}
	c.Avatars = append(c.Avatars, avatar)
	c.SetActiveAvatar(avatar.ID)
	s.notifier.Mark()
	return c.ActiveAvatar(), nil
}

// SetActiveAvatar flips the active flag to the given avatar, deactivating
// all siblings in the same step.
func (s *Session) SetActiveAvatar(characterID, avatarID string) error {
	c := s.model.Character(characterID)
	if c == nil {
		return errors.NewNotFound("character", characterID)
	}
	if !c.SetActiveAvatar(avatarID) {
		return errors.NewNotFound("avatar", avatarID)
	}
	s.notifier.Mark()
	return nil
}

// CreateFolder adds a folder through the registry.
func (s *Session) CreateFolder(name string) (*entity.Folder, error) {
	f, err := s.model.CreateFolder(name)
	if err != nil {
		return nil, err
	}
	s.notifier.Mark()
	return f, nil
}

// RenameFolder renames a folder through the registry.
func (s *Session) RenameFolder(id, name string) error {
	if err := s.model.RenameFolder(id, name); err != nil {
		return err
	}
	s.notifier.Mark()
	return nil
}

// DeleteFolder removes a folder, unfoldering its members atomically. The
// folder scope falls back to all when it pointed at the deleted folder.
func (s *Session) DeleteFolder(id string) (int, error) {
	cleared, err := s.model.DeleteFolder(id)
	if err != nil {
		return 0, err
	}
	if s.criteria.FolderScope == id {
		c := s.criteria
		c.FolderScope = ""
		s.SetCriteria(c)
	}
	s.notifier.Mark()
	return cleared, nil
}

// SetFolderCover attaches a staged cover upload to a folder.
func (s *Session) SetFolderCover(folderID, tempCoverRef, preview string) error {
	f := s.model.Folder(folderID)
	if f == nil {
		return errors.NewNotFound("folder", folderID)
	}
	f.TempCoverRef = tempCoverRef
	f.CommittedCoverID = ""
	f.Preview = preview
	s.notifier.Mark()
	return nil
}

// snapshot assembles a deep-copied project snapshot of the current state.
// Cloning means a save in flight never observes later mutations.
func (s *Session) snapshot(name string) *entity.Project {
	characters := make([]*entity.Character, 0, s.model.Len())
	for _, c := range s.model.Characters() {
		clone := c.Clone()
		clone.RecomputeTokens()
		characters = append(characters, clone)
	}
	folders := make([]*entity.Folder, 0, len(s.model.Folders()))
	for _, f := range s.model.Folders() {
		folders = append(folders, f.Clone())
	}
	selected := make([]string, 0, s.selection.Len())
	for id := range s.selection.IDs() {
		selected = append(selected, id)
	}
	return &entity.Project{
		Name:       name,
		Characters: characters,
		Folders:    folders,
		ViewState: entity.ViewState{
			ViewMode:       s.viewMode,
			SelectedFolder: s.criteria.FolderScope,
			SelectedIDs:    selected,
		},
	}
}

// Save persists the whole working set under name (last writer wins) and
// resolves staged temp refs into committed asset IDs on success.
func (s *Session) Save(ctx context.Context, p Persistence, name string) error {
	if name == "" {
		return errors.NewValidation("name", "project name is required")
	}
	gen := s.generation
	promoted, err := p.SaveProject(ctx, s.snapshot(name))
	if err != nil {
		return err
	}
	if gen != s.generation {
		stale := errors.NewStaleResponse("projects.save", gen, s.generation)
		s.logger.Warn("discarding stale save response", "error", stale)
		return stale
	}

	s.projectName = name
	s.commitPromotions(promoted)
	s.notifier.Mark()
	return nil
}

// commitPromotions clears temp refs whose assets the service promoted,
// recording the committed IDs in their place.
func (s *Session) commitPromotions(promoted map[string]string) {
	for _, c := range s.model.Characters() {
		for i := range c.Avatars {
			a := &c.Avatars[i]
			if id, ok := promoted[a.TempOriginalRef]; ok {
				a.CommittedOriginalID = id
				a.TempOriginalRef = ""
			}
			if id, ok := promoted[a.TempThumbnailRef]; ok {
				a.CommittedThumbnailID = id
				a.TempThumbnailRef = ""
			}
		}
	}
	for _, f := range s.model.Folders() {
		if id, ok := promoted[f.TempCoverRef]; ok {
			f.CommittedCoverID = id
			f.TempCoverRef = ""
		}
	}
}

// Load replaces the working set with the named project snapshot.
//
// The load bumps the generation first, so any response still in flight from
// the previous project is discarded on arrival. The decoded snapshot is
// validated in full before any live state is touched: a failed or stale
// load leaves the prior project fully intact.
func (s *Session) Load(ctx context.Context, p Persistence, name string) error {
	gen := s.beginSwitch(ctx, p)

	project, err := p.LoadProject(ctx, name)
	if err != nil {
		return err
	}
	if gen != s.generation {
		stale := errors.NewStaleResponse("projects.load", gen, s.generation)
		s.logger.Warn("discarding stale load response", "error", stale)
		return stale
	}

	if err := s.model.Replace(project.Characters, project.Folders); err != nil {
		return err
	}
	s.tags.Rebuild(s.model.Characters())

	s.projectName = project.Name
	s.viewMode = project.ViewState.ViewMode
	s.criteria = Criteria{FolderScope: project.ViewState.SelectedFolder}
	if s.criteria.FolderScope != "" && s.criteria.FolderScope != FolderScopeUnfoldered &&
		s.model.Folder(s.criteria.FolderScope) == nil {
		s.criteria.FolderScope = ""
	}
	s.window.Reset()

	s.selection.Clear()
	for _, id := range project.ViewState.SelectedIDs {
		if s.model.Character(id) != nil {
			s.selection.Toggle(id)
		}
	}

	s.notifier.Mark()
	return nil
}

// NewProject abandons the working set for a fresh, unnamed one.
func (s *Session) NewProject(ctx context.Context, p Persistence) {
	s.beginSwitch(ctx, p)
	s.model = NewModel()
	s.tags = NewTagIndex()
	s.selection.Clear()
	s.criteria = Criteria{}
	s.window.Reset()
	s.projectName = ""
	s.notifier.Mark()
}

// beginSwitch bumps the generation (fencing in-flight calls), releases
// staged uploads best-effort, and returns the new generation.
func (s *Session) beginSwitch(ctx context.Context, p Persistence) uint64 {
	s.generation++
	if p != nil {
		if err := p.CleanupTemp(ctx); err != nil {
			s.cleanupPending = true
			s.logger.Warn("staged asset cleanup failed, will retry on next switch",
				"error", errors.NewLeakWarning(err))
		} else {
			s.cleanupPending = false
		}
	}
	return s.generation
}

// CleanupPending reports whether a failed temp cleanup awaits retry.
func (s *Session) CleanupPending() bool { return s.cleanupPending }
