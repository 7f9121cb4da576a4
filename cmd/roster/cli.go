package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pveldt/roster/internal/card"
	"github.com/pveldt/roster/internal/config"
	"github.com/pveldt/roster/internal/entity"
	"github.com/pveldt/roster/internal/errors"
	"github.com/pveldt/roster/internal/server"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(store *server.Store, cfg *config.Config, logger *slog.Logger) *cli.App {
	app := &cli.App{
		Name:    "roster",
		Usage:   "Character library service",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(store, cfg, logger),
			projectsCmd(store, cfg),
			renameCmd(store, cfg),
			deleteCmd(store, cfg),
			exportCmd(store, cfg),
			importCmd(store, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(store *server.Store, cfg *config.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the persistence service over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8490, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := server.NewServer(store, cfg, logger, c.String("bind"), c.Int("port"))
			return server.Run(srv, logger)
		},
	}
}

// projectsCmd creates the projects command.
func projectsCmd(store *server.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "projects",
		Usage: "List saved projects",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "User context (defaults to configured context)"},
		},
		Action: func(c *cli.Context) error {
			projects, err := store.ListProjects(userFlag(c, cfg))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"projects": projects, "count": len(projects)})
		},
	}
}

// renameCmd creates the rename command.
func renameCmd(store *server.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "Rename a saved project",
		ArgsUsage: "<old> <new>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "User context (defaults to configured context)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return outputError(errors.NewValidation("args", "rename requires <old> and <new> project names"))
			}
			oldName, newName := c.Args().Get(0), c.Args().Get(1)
			if err := store.RenameProject(userFlag(c, cfg), oldName, newName); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"renamed": oldName, "to": newName})
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(store *server.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a saved project and its committed assets",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "User context (defaults to configured context)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewValidation("args", "delete requires a project name"))
			}
			name := c.Args().First()
			if err := store.DeleteProject(userFlag(c, cfg), name); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"deleted": name})
		},
	}
}

// exportCmd creates the export command.
func exportCmd(store *server.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a character as a card file (json, png, or txt)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"P"}, Required: true, Usage: "Project containing the character"},
			&cli.StringFlag{Name: "id", Required: true, Usage: "Character ID"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Export format: json|png|txt"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output path (default: suggested filename in the current directory)"},
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "User context (defaults to configured context)"},
		},
		Action: func(c *cli.Context) error {
			user := userFlag(c, cfg)
			characters, _, _, err := store.LoadProject(user, c.String("project"))
			if err != nil {
				return outputError(err)
			}

			var target *entity.Character
			for _, ch := range characters {
				if ch.ID == c.String("id") {
					target = ch
					break
				}
			}
			if target == nil {
				return outputError(errors.NewNotFound("character", c.String("id")))
			}

			format := c.String("format")
			data, filename, err := renderExport(store, user, target, format)
			if err != nil {
				return outputError(err)
			}

			outPath := c.String("out")
			if outPath == "" {
				outPath = filename
			}
			if err := checkExportPath(cfg, outPath); err != nil {
				return outputError(err)
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return outputJSON(map[string]any{"exported": target.DisplayName(), "path": outPath, "format": format})
		},
	}
}

// importCmd creates the import command.
func importCmd(store *server.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a character card file (json or png) into a project",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Aliases: []string{"P"}, Required: true, Usage: "Target project (created if missing)"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Card file to import"},
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "User context (defaults to configured context)"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("path")
			if err := checkExportPath(cfg, path); err != nil {
				return outputError(err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			cardJSON := data
			if strings.EqualFold(filepath.Ext(path), ".png") {
				cardJSON, err = card.ExtractChara(data)
				if err != nil {
					return outputError(err)
				}
			}
			character, err := card.ParseJSONCard(cardJSON)
			if err != nil {
				return outputError(err)
			}

			user := userFlag(c, cfg)
			project := c.String("project")
			characters, folders, viewState, err := store.LoadProject(user, project)
			if err != nil {
				if !errors.Is(err, errors.ErrNotFound) {
					return outputError(err)
				}
				characters, folders = nil, nil
				viewState = entity.ViewState{}
			}
			characters = append(characters, character)

			if _, err := store.SaveProject(user, project, characters, folders, viewState); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"imported": character.DisplayName(),
				"id":       character.ID,
				"project":  project,
			})
		},
	}
}

// Helper functions

// userFlag resolves the effective user context for a command.
func userFlag(c *cli.Context, cfg *config.Config) string {
	if u := c.String("user"); u != "" {
		return u
	}
	return cfg.UserContext
}

// renderExport produces card bytes in the requested format. PNG export
// embeds the card into the character's original avatar image.
func renderExport(store *server.Store, user string, character *entity.Character, format string) ([]byte, string, error) {
	switch format {
	case "json":
		data, err := card.MarshalJSONCard(character)
		if err != nil {
			return nil, "", errors.NewInternal(err)
		}
		return data, card.Filename(character, "json"), nil
	case "txt":
		return card.MarshalTXT(character), card.Filename(character, "txt"), nil
	case "png":
		img, err := originalAvatar(store, user, character)
		if err != nil {
			return nil, "", err
		}
		cardJSON, err := card.MarshalJSONCard(character)
		if err != nil {
			return nil, "", errors.NewInternal(err)
		}
		embedded, err := card.EmbedChara(img, cardJSON)
		if err != nil {
			return nil, "", err
		}
		return embedded, card.Filename(character, "png"), nil
	default:
		return nil, "", errors.NewValidation("format", "format must be json, png, or txt")
	}
}

// originalAvatar loads the full-resolution image behind the character's
// active avatar, trying committed assets first and staged temps second.
func originalAvatar(store *server.Store, user string, character *entity.Character) ([]byte, error) {
	avatar := character.ActiveAvatar()
	if avatar == nil {
		return nil, errors.NewValidation("character", "character has no avatar to embed")
	}
	if avatar.CommittedOriginalID != "" {
		return store.Asset(user, avatar.CommittedOriginalID)
	}
	if avatar.TempOriginalRef != "" {
		return store.TempAsset(user, avatar.TempOriginalRef)
	}
	return nil, errors.NewValidation("character", "avatar has no original image data")
}

// checkExportPath enforces the configured export/import path allowlist.
// An empty allowlist permits any path.
func checkExportPath(cfg *config.Config, path string) error {
	if len(cfg.AllowedExportPaths) == 0 {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.NewValidation("path", "invalid path")
	}
	for _, allowed := range cfg.AllowedExportPaths {
		if !filepath.IsAbs(allowed) {
			continue
		}
		rel, err := filepath.Rel(allowed, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return errors.NewValidation("path", fmt.Sprintf("path %q is outside the allowed export directories", path))
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if rosterErr, ok := err.(*errors.RosterError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", rosterErr.Code, rosterErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
