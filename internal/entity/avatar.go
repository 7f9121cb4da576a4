package entity

// Avatar is an image asset attached to a character.
//
// Freshly staged avatars carry temp references into the server-side holding
// area; saving a project promotes them to committed asset IDs and clears the
// temp fields. Preview is a small inline rendition kept for immediate display
// without a round trip.
type Avatar struct {
	// ID is a ULID unique within the owning character
	ID string `json:"id"`

	// TempOriginalRef points at the staged full-resolution upload
	// (empty once committed)
	TempOriginalRef string `json:"tempOriginalRef,omitempty"`

	// TempThumbnailRef points at the staged server-side thumbnail
	// (empty once committed)
	TempThumbnailRef string `json:"tempThumbnailRef,omitempty"`

	// CommittedOriginalID is the project-scoped asset ID after save
	CommittedOriginalID string `json:"committedOriginalId,omitempty"`

	// CommittedThumbnailID is the project-scoped thumbnail asset ID after save
	CommittedThumbnailID string `json:"committedThumbnailId,omitempty"`

	// Preview is an inline low-resolution thumbnail (data URI)
	Preview string `json:"preview,omitempty"`

	// IsActive marks the avatar mirrored onto the character thumbnail.
	// At most one avatar per character has this set.
	IsActive bool `json:"isActive"`
}

// Staged reports whether the avatar still carries uncommitted temp references.
func (a *Avatar) Staged() bool {
	return a.TempOriginalRef != "" || a.TempThumbnailRef != ""
}
