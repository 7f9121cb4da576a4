package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions for the read-only roster tools.

var projectsToolDef = mcp.NewTool("roster_projects",
	mcp.WithDescription("List saved character library projects for a user context."),
	mcp.WithString("user_context",
		mcp.Description("User context to list projects for. Defaults to the configured context."),
	),
)

var charactersToolDef = mcp.NewTool("roster_characters",
	mcp.WithDescription("List characters in a saved project, optionally filtered by search term, folder, or tag. Results are sorted by display name."),
	mcp.WithString("project",
		mcp.Required(),
		mcp.Description("Name of the saved project to read."),
	),
	mcp.WithString("user_context",
		mcp.Description("User context the project belongs to. Defaults to the configured context."),
	),
	mcp.WithString("term",
		mcp.Description("Case-insensitive search term matched against name, card name, description, and tags."),
	),
	mcp.WithString("folder",
		mcp.Description("Folder ID to scope results to, or \"unfoldered\" for characters without a folder."),
	),
	mcp.WithString("tag",
		mcp.Description("Tag filter, matched as a case-insensitive substring."),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of characters to return. 0 means no limit."),
	),
)

var exportToolDef = mcp.NewTool("roster_export",
	mcp.WithDescription("Export one character from a saved project as a character card (json) or plain text (txt)."),
	mcp.WithString("project",
		mcp.Required(),
		mcp.Description("Name of the saved project containing the character."),
	),
	mcp.WithString("character_id",
		mcp.Required(),
		mcp.Description("ID of the character to export."),
	),
	mcp.WithString("format",
		mcp.Description("Export format: json (default) or txt."),
		mcp.Enum("json", "txt"),
	),
	mcp.WithString("user_context",
		mcp.Description("User context the project belongs to. Defaults to the configured context."),
	),
)
