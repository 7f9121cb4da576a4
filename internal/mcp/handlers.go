package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pveldt/roster/internal/card"
	"github.com/pveldt/roster/internal/config"
	"github.com/pveldt/roster/internal/entity"
	"github.com/pveldt/roster/internal/errors"
	"github.com/pveldt/roster/internal/library"
	"github.com/pveldt/roster/internal/server"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store *server.Store
	cfg   *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *server.Store, cfg *config.Config) *Handlers {
	return &Handlers{store: store, cfg: cfg}
}

// Request types for each tool

// ProjectsRequest represents the arguments for roster_projects.
type ProjectsRequest struct {
	UserContext string `json:"user_context,omitempty"`
}

// CharactersRequest represents the arguments for roster_characters.
type CharactersRequest struct {
	Project     string `json:"project"`
	UserContext string `json:"user_context,omitempty"`
	Term        string `json:"term,omitempty"`
	Folder      string `json:"folder,omitempty"`
	Tag         string `json:"tag,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// ExportRequest represents the arguments for roster_export.
type ExportRequest struct {
	Project     string `json:"project"`
	CharacterID string `json:"character_id"`
	Format      string `json:"format,omitempty"`
	UserContext string `json:"user_context,omitempty"`
}

// characterSummary is the listing shape returned by roster_characters.
type characterSummary struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	CardName       string   `json:"card_name,omitempty"`
	FolderID       string   `json:"folder_id,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	TokensEstimate int      `json:"tokens_estimate"`
}

// userOf resolves the effective user context for a request.
func (h *Handlers) userOf(requested string) string {
	if requested != "" {
		return requested
	}
	return h.cfg.UserContext
}

// Handler implementations

// HandleProjects handles the roster_projects tool call.
func (h *Handlers) HandleProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectsRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation("arguments", err.Error())), nil
	}

	projects, err := h.store.ListProjects(h.userOf(input.UserContext))
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"projects": projects,
		"count":    len(projects),
	})
}

// HandleCharacters handles the roster_characters tool call.
func (h *Handlers) HandleCharacters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CharactersRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation("arguments", err.Error())), nil
	}
	if input.Project == "" {
		return errorResult(errors.NewValidation("project", "project is required")), nil
	}

	characters, _, _, err := h.store.LoadProject(h.userOf(input.UserContext), input.Project)
	if err != nil {
		return errorResult(err), nil
	}

	visible := library.Apply(characters, library.Criteria{
		Term:        input.Term,
		FolderScope: input.Folder,
		Tag:         input.Tag,
	})

	total := len(visible)
	if input.Limit > 0 && input.Limit < len(visible) {
		visible = visible[:input.Limit]
	}

	summaries := make([]characterSummary, 0, len(visible))
	for _, c := range visible {
		summaries = append(summaries, characterSummary{
			ID:             c.ID,
			Name:           c.Name,
			CardName:       c.CardName,
			FolderID:       c.FolderID,
			Tags:           c.Tags,
			TokensEstimate: c.TokensEstimate,
		})
	}

	return successResult(map[string]any{
		"characters": summaries,
		"total":      total,
	})
}

// HandleExport handles the roster_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation("arguments", err.Error())), nil
	}
	if input.Project == "" {
		return errorResult(errors.NewValidation("project", "project is required")), nil
	}
	if input.CharacterID == "" {
		return errorResult(errors.NewValidation("character_id", "character_id is required")), nil
	}

	format := input.Format
	if format == "" {
		format = "json"
	}

	characters, _, _, err := h.store.LoadProject(h.userOf(input.UserContext), input.Project)
	if err != nil {
		return errorResult(err), nil
	}

	var target *entity.Character
	for _, c := range characters {
		if c.ID == input.CharacterID {
			target = c
			break
		}
	}
	if target == nil {
		return errorResult(errors.NewNotFound("character", input.CharacterID)), nil
	}

	switch format {
	case "json":
		data, err := card.MarshalJSONCard(target)
		if err != nil {
			return errorResult(errors.NewInternal(err)), nil
		}
		return successResult(map[string]any{
			"filename": card.Filename(target, "json"),
			"content":  json.RawMessage(data),
		})
	case "txt":
		return successResult(map[string]any{
			"filename": card.Filename(target, "txt"),
			"content":  string(card.MarshalTXT(target)),
		})
	default:
		return errorResult(errors.NewValidation("format", "format must be json or txt")), nil
	}
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if rosterErr, ok := err.(*errors.RosterError); ok {
		errorObj := map[string]any{
			"code":    rosterErr.Code,
			"message": rosterErr.Message,
			"status":  rosterErr.Status,
		}
		if rosterErr.Code != errors.ErrInternal && rosterErr.Details != nil {
			errorObj["details"] = rosterErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
