package library

import (
	"context"
	"fmt"
	"testing"

	"github.com/pveldt/roster/internal/entity"
	"github.com/pveldt/roster/internal/errors"
)

// fakePersistence is an in-memory Persistence with hooks for simulating
// out-of-order completion and cleanup failures.
type fakePersistence struct {
	projects map[string]*entity.Project
	promote  map[string]string

	// onSave/onLoad run while the call is "in flight", before it returns
	onSave func()
	onLoad func()

	cleanupErr   error
	cleanupCalls int
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{projects: make(map[string]*entity.Project)}
}

func (f *fakePersistence) ListProjects(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(f.projects))
	for name := range f.projects {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakePersistence) SaveProject(ctx context.Context, p *entity.Project) (map[string]string, error) {
	if f.onSave != nil {
		f.onSave()
	}
	f.projects[p.Name] = p
	return f.promote, nil
}

func (f *fakePersistence) LoadProject(ctx context.Context, name string) (*entity.Project, error) {
	if f.onLoad != nil {
		f.onLoad()
	}
	p, ok := f.projects[name]
	if !ok {
		return nil, errors.NewNotFound("project", name)
	}
	return p, nil
}

func (f *fakePersistence) RenameProject(ctx context.Context, oldName, newName string) (string, error) {
	p, ok := f.projects[oldName]
	if !ok {
		return "", errors.NewNotFound("project", oldName)
	}
	delete(f.projects, oldName)
	p.Name = newName
	f.projects[newName] = p
	return newName, nil
}

func (f *fakePersistence) DeleteProject(ctx context.Context, name string) error {
	delete(f.projects, name)
	return nil
}

func (f *fakePersistence) CleanupTemp(ctx context.Context) error {
	f.cleanupCalls++
	return f.cleanupErr
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return NewSession(Options{PageWindow: 4})
}

func addCharacters(t *testing.T, s *Session, names ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(names))
	for _, name := range names {
		c := &entity.Character{Name: name}
		if err := s.AddCharacter(c); err != nil {
			t.Fatalf("AddCharacter(%s): %v", name, err)
		}
		ids = append(ids, c.ID)
	}
	return ids
}

func TestSetCriteriaResetsWindowOnlyOnChange(t *testing.T) {
	s := newTestSession(t)
	for i := 0; i < 10; i++ {
		addCharacters(t, s, fmt.Sprintf("char %02d", i))
	}

	s.RevealMore()
	if got := len(s.View().Visible); got != 8 {
		t.Fatalf("visible = %d, want 8 after one disclosure", got)
	}

	// Same criteria: window must survive
	s.SetCriteria(Criteria{})
	if got := len(s.View().Visible); got != 8 {
		t.Errorf("visible = %d, want 8 (unchanged criteria must not reset)", got)
	}

	// Changed criteria: window collapses back
	s.SetCriteria(Criteria{Term: "char"})
	if got := len(s.View().Visible); got != 4 {
		t.Errorf("visible = %d, want 4 after criteria change", got)
	}
}

func TestViewTotalsAndHasMore(t *testing.T) {
	s := newTestSession(t)
	addCharacters(t, s, "a", "b", "c", "d", "e", "f")

	v := s.View()
	if v.Total != 6 {
		t.Errorf("Total = %d, want 6", v.Total)
	}
	if len(v.Visible) != 4 || !v.HasMore {
		t.Errorf("Visible = %d HasMore = %v, want 4/true", len(v.Visible), v.HasMore)
	}

	s.RevealMore()
	v = s.View()
	if len(v.Visible) != 6 || v.HasMore {
		t.Errorf("Visible = %d HasMore = %v, want 6/false", len(v.Visible), v.HasMore)
	}
}

func TestCollectionMutationPreservesWindow(t *testing.T) {
	s := newTestSession(t)
	ids := addCharacters(t, s, "a", "b", "c", "d", "e", "f")
	s.RevealMore()

	if err := s.SelectPlain(ids[0]); err != nil {
		t.Fatal(err)
	}
	if _, err := s.TagSelected([]string{"hero"}); err != nil {
		t.Fatal(err)
	}

	if got := len(s.View().Visible); got != 6 {
		t.Errorf("visible = %d, want 6 (mutation must not reset the window)", got)
	}
}

func TestSelectionCommands(t *testing.T) {
	s := newTestSession(t)
	ids := addCharacters(t, s, "a", "b", "c", "d")

	if err := s.Dispatch(SelectCharacter{ID: ids[1]}); err != nil {
		t.Fatal(err)
	}
	if err := s.Dispatch(SelectCharacter{ID: ids[3], Modifier: ModifierRange}); err != nil {
		t.Fatal(err)
	}
	if s.Selection().Len() != 3 {
		t.Errorf("selection = %d, want 3 (b..d)", s.Selection().Len())
	}

	if err := s.Dispatch(SelectCharacter{ID: ids[2], Modifier: ModifierToggle}); err != nil {
		t.Fatal(err)
	}
	if s.Selection().Has(ids[2]) {
		t.Error("toggle should have removed c")
	}

	if err := s.Dispatch(ClearSelection{}); err != nil {
		t.Fatal(err)
	}
	if s.Selection().Len() != 0 {
		t.Error("clear left a selection")
	}
}

func TestSelectUnknownIDIsIntegrityError(t *testing.T) {
	s := newTestSession(t)
	addCharacters(t, s, "a")

	if err := s.SelectPlain("ghost"); !errors.Is(err, errors.ErrIntegrity) {
		t.Errorf("err = %v, want INTEGRITY", err)
	}
	if err := s.SelectToggle("ghost"); !errors.Is(err, errors.ErrIntegrity) {
		t.Errorf("err = %v, want INTEGRITY", err)
	}
}

func TestRangeSelectionIsWindowRelative(t *testing.T) {
	s := newTestSession(t)
	ids := addCharacters(t, s, "a", "b", "c", "d", "e", "f")

	// e and f are outside the 4-item window; ranging to them cannot work
	// through the rendered order, but the anchor inside the window can span
	// to any other rendered item.
	if err := s.SelectPlain(ids[0]); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectRangeTo(ids[3]); err != nil {
		t.Fatal(err)
	}
	if s.Selection().Len() != 4 {
		t.Errorf("selection = %d, want 4", s.Selection().Len())
	}

	// Target beyond the window is not rendered: selection unchanged
	if err := s.SelectRangeTo(ids[5]); err != nil {
		t.Fatal(err)
	}
	if s.Selection().Len() != 4 {
		t.Errorf("selection = %d, want 4 (unrendered target is a no-op)", s.Selection().Len())
	}
}

func TestSaveCommitsPromotions(t *testing.T) {
	s := newTestSession(t)
	c := &entity.Character{Name: "Aria"}
	if err := s.AddCharacter(c); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddAvatar(c.ID, "tmp_orig", "tmp_thumb", "data:preview"); err != nil {
		t.Fatal(err)
	}
	f, err := s.CreateFolder("Heroes")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetFolderCover(f.ID, "tmp_cover", "data:cover"); err != nil {
		t.Fatal(err)
	}

	p := newFakePersistence()
	p.promote = map[string]string{
		"tmp_orig":  "ast_1",
		"tmp_thumb": "ast_2",
		"tmp_cover": "ast_3",
	}

	if err := s.Save(context.Background(), p, "campaign"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.ProjectName() != "campaign" {
		t.Errorf("ProjectName = %q, want campaign", s.ProjectName())
	}

	a := s.Model().Character(c.ID).ActiveAvatar()
	if a.TempOriginalRef != "" || a.TempThumbnailRef != "" {
		t.Error("temp refs should be cleared after promotion")
	}
	if a.CommittedOriginalID != "ast_1" || a.CommittedThumbnailID != "ast_2" {
		t.Errorf("committed IDs = %q/%q, want ast_1/ast_2", a.CommittedOriginalID, a.CommittedThumbnailID)
	}
	got := s.Model().Folder(f.ID)
	if got.TempCoverRef != "" || got.CommittedCoverID != "ast_3" {
		t.Errorf("folder cover = temp %q committed %q, want promoted", got.TempCoverRef, got.CommittedCoverID)
	}
}

func TestSaveSnapshotIsolatedFromLaterMutations(t *testing.T) {
	s := newTestSession(t)
	c := &entity.Character{Name: "Original"}
	if err := s.AddCharacter(c); err != nil {
		t.Fatal(err)
	}

	p := newFakePersistence()
	p.onSave = func() {
		// Mutation while the save is in flight must not leak into the
		// snapshot being persisted.
		c.Name = "Mutated"
	}

	if err := s.Save(context.Background(), p, "campaign"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved := p.projects["campaign"]
	if saved.Characters[0].Name != "Original" {
		t.Errorf("snapshot name = %q, want Original", saved.Characters[0].Name)
	}
}

func TestStaleSaveResponseDiscarded(t *testing.T) {
	s := newTestSession(t)
	addCharacters(t, s, "a")

	p := newFakePersistence()
	p.onSave = func() {
		// A project switch completes while the save is in flight
		s.NewProject(context.Background(), nil)
	}

	err := s.Save(context.Background(), p, "old-project")
	if !errors.Is(err, errors.ErrStaleResponse) {
		t.Fatalf("err = %v, want STALE_RESPONSE", err)
	}
	if s.ProjectName() != "" {
		t.Errorf("ProjectName = %q, want empty (stale save must not apply)", s.ProjectName())
	}
}

func TestLoadRestoresViewState(t *testing.T) {
	folder := &entity.Folder{ID: "f1", Name: "Heroes"}
	p := newFakePersistence()
	p.projects["campaign"] = &entity.Project{
		Name: "campaign",
		Characters: []*entity.Character{
			{ID: "c1", Name: "Aria", FolderID: "f1"},
			{ID: "c2", Name: "Brook"},
		},
		Folders: []*entity.Folder{folder},
		ViewState: entity.ViewState{
			ViewMode:       "grid",
			SelectedFolder: "f1",
			SelectedIDs:    []string{"c1", "deleted-long-ago"},
		},
	}

	s := newTestSession(t)
	if err := s.Load(context.Background(), p, "campaign"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.ProjectName() != "campaign" {
		t.Errorf("ProjectName = %q, want campaign", s.ProjectName())
	}
	if s.Criteria().FolderScope != "f1" {
		t.Errorf("FolderScope = %q, want f1", s.Criteria().FolderScope)
	}
	// Persisted selection is filtered to live characters
	if !s.Selection().Has("c1") || s.Selection().Len() != 1 {
		t.Errorf("selection should contain only c1, got %d members", s.Selection().Len())
	}
}

func TestLoadDropsDanglingFolderScope(t *testing.T) {
	p := newFakePersistence()
	p.projects["campaign"] = &entity.Project{
		Name:       "campaign",
		Characters: []*entity.Character{{ID: "c1", Name: "Aria"}},
		ViewState:  entity.ViewState{SelectedFolder: "ghost-folder"},
	}

	s := newTestSession(t)
	if err := s.Load(context.Background(), p, "campaign"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Criteria().FolderScope != "" {
		t.Errorf("FolderScope = %q, want cleared", s.Criteria().FolderScope)
	}
}

func TestStaleLoadLeavesSessionIntact(t *testing.T) {
	p := newFakePersistence()
	p.projects["next"] = &entity.Project{
		Name:       "next",
		Characters: []*entity.Character{{ID: "n1", Name: "Newcomer"}},
	}

	s := newTestSession(t)
	addCharacters(t, s, "existing")

	p.onLoad = func() {
		// Another switch wins the race while this load is in flight
		s.NewProject(context.Background(), nil)
		addCharacters(t, s, "winner")
	}

	err := s.Load(context.Background(), p, "next")
	if !errors.Is(err, errors.ErrStaleResponse) {
		t.Fatalf("err = %v, want STALE_RESPONSE", err)
	}
	if s.Model().Character("n1") != nil {
		t.Error("stale load must not install its snapshot")
	}
	if s.Model().Len() != 1 || s.Model().Characters()[0].Name != "winner" {
		t.Error("the winning switch's state should be untouched")
	}
}

func TestLoadFailureLeavesSessionIntact(t *testing.T) {
	s := newTestSession(t)
	addCharacters(t, s, "existing")

	p := newFakePersistence()
	err := s.Load(context.Background(), p, "does-not-exist")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
	if s.Model().Len() != 1 {
		t.Error("failed load must leave the working set intact")
	}
}

func TestProjectSwitchRunsCleanup(t *testing.T) {
	s := newTestSession(t)
	p := newFakePersistence()

	s.NewProject(context.Background(), p)
	if p.cleanupCalls != 1 {
		t.Errorf("cleanup calls = %d, want 1", p.cleanupCalls)
	}
	if s.CleanupPending() {
		t.Error("successful cleanup should not leave a pending flag")
	}

	p.cleanupErr = fmt.Errorf("service unavailable")
	s.NewProject(context.Background(), p)
	if !s.CleanupPending() {
		t.Error("failed cleanup should set the pending flag")
	}

	// Next switch retries and succeeds
	p.cleanupErr = nil
	s.NewProject(context.Background(), p)
	if s.CleanupPending() {
		t.Error("pending flag should clear after a successful retry")
	}
	if p.cleanupCalls != 3 {
		t.Errorf("cleanup calls = %d, want 3", p.cleanupCalls)
	}
}

func TestDeleteFolderFallsBackScope(t *testing.T) {
	s := newTestSession(t)
	f, err := s.CreateFolder("Heroes")
	if err != nil {
		t.Fatal(err)
	}
	s.SetCriteria(Criteria{FolderScope: f.ID})

	if _, err := s.DeleteFolder(f.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if s.Criteria().FolderScope != "" {
		t.Errorf("FolderScope = %q, want cleared after folder delete", s.Criteria().FolderScope)
	}
}

func TestSaveRequiresName(t *testing.T) {
	s := newTestSession(t)
	err := s.Save(context.Background(), newFakePersistence(), "")
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("err = %v, want VALIDATION", err)
	}
}
