package entity

// Folder groups characters inside a project.
//
// Characters reference folders by ID; a folder never stores its member list
// (derived by scanning, so there is no second source of truth to drift).
type Folder struct {
	// ID is a ULID unique within the project
	ID string `json:"id"`

	// Name is unique case-insensitively within the project
	Name string `json:"name"`

	// TempCoverRef points at a staged cover upload (empty once committed)
	TempCoverRef string `json:"tempCoverRef,omitempty"`

	// CommittedCoverID is the project-scoped cover asset ID after save
	CommittedCoverID string `json:"committedCoverId,omitempty"`

	// Preview is an inline low-resolution cover thumbnail (data URI)
	Preview string `json:"preview,omitempty"`

	// CreatedAt is the Unix timestamp when the folder was created
	CreatedAt int64 `json:"createdAt"`
}

// Staged reports whether the folder cover is still an uncommitted temp ref.
func (f *Folder) Staged() bool {
	return f.TempCoverRef != ""
}

// Clone returns a copy of the folder.
func (f *Folder) Clone() *Folder {
	out := *f
	return &out
}
