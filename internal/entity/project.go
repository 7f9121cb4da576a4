package entity

// ViewState captures the UI position at save time. It is restored on load
// purely for continuity; nothing correctness-bearing depends on it.
type ViewState struct {
	// ViewMode is the active view mode (e.g. "grid", "list")
	ViewMode string `json:"viewMode,omitempty"`

	// SelectedFolder is the folder scope that was active
	SelectedFolder string `json:"selectedFolder,omitempty"`

	// SelectedIDs are the character IDs that were selected
	SelectedIDs []string `json:"selectedIds,omitempty"`
}

// Project is a named whole-library snapshot: every character, every folder,
// and the view state, saved and loaded as one unit.
type Project struct {
	Name       string       `json:"name"`
	Characters []*Character `json:"characters"`
	Folders    []*Folder    `json:"folders"`
	ViewState  ViewState    `json:"viewState"`
}
