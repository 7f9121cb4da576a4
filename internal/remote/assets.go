package remote

import (
	"context"

	"github.com/pveldt/roster/internal/entity"
	"github.com/pveldt/roster/internal/errors"
)

// Staged upload gateway: binary assets go to a server-side holding area
// first and only become project-scoped on the next save. Full-resolution
// data never lives inline in the working collection.

// StageAvatar uploads avatar image bytes to the temp holding area.
func (c *Client) StageAvatar(ctx context.Context, characterID, fileName string, file []byte) (*StageAvatarResponse, error) {
	if len(file) == 0 {
		return nil, errors.NewValidation("file", "image data is required")
	}
	req := StageAvatarRequest{
		UserScoped:  c.scope(),
		CharacterID: characterID,
		FileName:    fileName,
		File:        file,
	}
	var resp StageAvatarResponse
	if err := c.post(ctx, "/assets.stageAvatar", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StageFolderCover uploads folder cover image bytes to the temp holding area.
func (c *Client) StageFolderCover(ctx context.Context, folderID, fileName string, file []byte) (*StageFolderCoverResponse, error) {
	if len(file) == 0 {
		return nil, errors.NewValidation("file", "image data is required")
	}
	req := StageFolderCoverRequest{
		UserScoped: c.scope(),
		FolderID:   folderID,
		FileName:   fileName,
		File:       file,
	}
	var resp StageFolderCoverResponse
	if err := c.post(ctx, "/assets.stageFolderCover", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CleanupTemp releases every staged asset of the user context that was
// never committed into a project. A failure here is a resource leak, not a
// correctness problem; callers retry on the next project switch.
func (c *Client) CleanupTemp(ctx context.Context) error {
	return c.post(ctx, "/assets.cleanupTemp", CleanupTempRequest{UserScoped: c.scope()}, nil)
}

// ExportCharacter renders a character in the given format and returns the
// bytes plus the suggested filename. PNG export requires a committed
// original avatar asset in the named project.
func (c *Client) ExportCharacter(ctx context.Context, character *entity.Character, format ExportFormat, projectName string) ([]byte, string, error) {
	if character == nil {
		return nil, "", errors.NewValidation("character", "character is required")
	}
	req := ExportCharacterRequest{
		UserScoped:  c.scope(),
		Character:   character,
		Format:      format,
		ProjectName: projectName,
	}
	return c.postRaw(ctx, "/characters.export", req)
}
