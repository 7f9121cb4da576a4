package remote

import "github.com/pveldt/roster/internal/entity"

// Wire bodies for the persistence service contract. Every call is a JSON
// POST; the server responds with a success payload or an errorEnvelope.
// internal/server implements the other side of these types.

// UserScoped is embedded in every request body.
type UserScoped struct {
	UserContext string `json:"userContext"`
}

// ListProjectsRequest is the body of POST /projects.list.
type ListProjectsRequest struct {
	UserScoped
}

// ListProjectsResponse carries the saved project names.
type ListProjectsResponse struct {
	Projects []string `json:"projects"`
}

// SaveProjectRequest is the body of POST /projects.save.
type SaveProjectRequest struct {
	UserScoped
	ProjectName string              `json:"projectName"`
	Characters  []*entity.Character `json:"characters"`
	Folders     []*entity.Folder    `json:"folders"`
	ViewState   entity.ViewState    `json:"viewState"`
}

// SaveProjectResponse maps every promoted temp asset ref to its committed,
// project-scoped asset ID.
type SaveProjectResponse struct {
	Promoted map[string]string `json:"promoted,omitempty"`
}

// LoadProjectRequest is the body of POST /projects.load.
type LoadProjectRequest struct {
	UserScoped
	ProjectName string `json:"projectName"`
}

// LoadProjectResponse carries a full project snapshot.
type LoadProjectResponse struct {
	Characters []*entity.Character `json:"characters"`
	Folders    []*entity.Folder    `json:"folders"`
	ViewState  entity.ViewState    `json:"viewState"`
}

// RenameProjectRequest is the body of POST /projects.rename.
type RenameProjectRequest struct {
	UserScoped
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

// RenameProjectResponse confirms the new name.
type RenameProjectResponse struct {
	NewProjectName string `json:"newProjectName"`
}

// DeleteProjectRequest is the body of POST /projects.delete.
type DeleteProjectRequest struct {
	UserScoped
	ProjectName string `json:"projectName"`
}

// StageAvatarRequest is the body of POST /assets.stageAvatar.
// File carries the image bytes base64-encoded.
type StageAvatarRequest struct {
	UserScoped
	CharacterID string `json:"characterId"`
	FileName    string `json:"fileName"`
	File        []byte `json:"file"`
}

// StageAvatarResponse carries the staged references and an inline preview
// for immediate display.
type StageAvatarResponse struct {
	AvatarID         string `json:"avatarId"`
	TempOriginalRef  string `json:"tempOriginalRef"`
	TempThumbnailRef string `json:"tempThumbnailRef"`
	ThumbnailPreview string `json:"thumbnailPreview"`
}

// StageFolderCoverRequest is the body of POST /assets.stageFolderCover.
type StageFolderCoverRequest struct {
	UserScoped
	FolderID string `json:"folderId"`
	FileName string `json:"fileName"`
	File     []byte `json:"file"`
}

// StageFolderCoverResponse carries the staged cover ref and preview.
type StageFolderCoverResponse struct {
	TempCoverRef     string `json:"tempCoverRef"`
	ThumbnailPreview string `json:"thumbnailPreview"`
}

// CleanupTempRequest is the body of POST /assets.cleanupTemp. It releases
// every staged asset of the user context that was never committed.
type CleanupTempRequest struct {
	UserScoped
}

// ExportFormat selects the characters.export output format.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportPNG  ExportFormat = "png"
	ExportTXT  ExportFormat = "txt"
)

// ExportCharacterRequest is the body of POST /characters.export. The
// response is a binary stream with the filename in Content-Disposition.
type ExportCharacterRequest struct {
	UserScoped
	Character   *entity.Character `json:"character"`
	Format      ExportFormat      `json:"format"`
	ProjectName string            `json:"projectName,omitempty"`
}

// errorEnvelope is the error body every endpoint returns on failure.
type errorEnvelope struct {
	Error wireError `json:"error"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
