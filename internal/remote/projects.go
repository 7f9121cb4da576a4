package remote

import (
	"context"

	"github.com/pveldt/roster/internal/entity"
	"github.com/pveldt/roster/internal/errors"
)

// Persistence gateway: whole-snapshot save/load plus project bookkeeping.
// Save is last-writer-wins by design; there is exactly one active session.

// ListProjects returns the saved project names for the user context.
func (c *Client) ListProjects(ctx context.Context) ([]string, error) {
	var resp ListProjectsResponse
	if err := c.post(ctx, "/projects.list", ListProjectsRequest{UserScoped: c.scope()}, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// SaveProject stores a whole snapshot under p.Name, overwriting any prior
// snapshot of that name. The returned map resolves staged temp refs into
// committed asset IDs.
func (c *Client) SaveProject(ctx context.Context, p *entity.Project) (map[string]string, error) {
	if p == nil || p.Name == "" {
		return nil, errors.NewValidation("projectName", "project name is required")
	}
	req := SaveProjectRequest{
		UserScoped:  c.scope(),
		ProjectName: p.Name,
		Characters:  p.Characters,
		Folders:     p.Folders,
		ViewState:   p.ViewState,
	}
	var resp SaveProjectResponse
	if err := c.post(ctx, "/projects.save", req, &resp); err != nil {
		return nil, err
	}
	return resp.Promoted, nil
}

// LoadProject fetches the named snapshot. The full body is decoded before
// returning, so a mid-transfer failure yields an error and no partial data.
func (c *Client) LoadProject(ctx context.Context, name string) (*entity.Project, error) {
	if name == "" {
		return nil, errors.NewValidation("projectName", "project name is required")
	}
	var resp LoadProjectResponse
	req := LoadProjectRequest{UserScoped: c.scope(), ProjectName: name}
	if err := c.post(ctx, "/projects.load", req, &resp); err != nil {
		return nil, err
	}
	return &entity.Project{
		Name:       name,
		Characters: resp.Characters,
		Folders:    resp.Folders,
		ViewState:  resp.ViewState,
	}, nil
}

// RenameProject renames a saved snapshot and returns the confirmed name.
func (c *Client) RenameProject(ctx context.Context, oldName, newName string) (string, error) {
	if oldName == "" || newName == "" {
		return "", errors.NewValidation("projectName", "both old and new names are required")
	}
	var resp RenameProjectResponse
	req := RenameProjectRequest{UserScoped: c.scope(), OldName: oldName, NewName: newName}
	if err := c.post(ctx, "/projects.rename", req, &resp); err != nil {
		return "", err
	}
	return resp.NewProjectName, nil
}

// DeleteProject removes a saved snapshot and its committed assets.
func (c *Client) DeleteProject(ctx context.Context, name string) error {
	if name == "" {
		return errors.NewValidation("projectName", "project name is required")
	}
	return c.post(ctx, "/projects.delete", DeleteProjectRequest{UserScoped: c.scope(), ProjectName: name}, nil)
}
