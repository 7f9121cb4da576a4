package server

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/pveldt/roster/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

// browse serves the read-only project browser.
type browse struct {
	store     *Store
	logger    *slog.Logger
	templates *template.Template
	markdown  goldmark.Markdown
}

func newBrowse(store *Store, logger *slog.Logger) *browse {
	return &browse{
		store:     store,
		logger:    logger,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
		markdown:  goldmark.New(),
	}
}

// projectsPageData is the template data for the project list page.
type projectsPageData struct {
	User     string
	Projects []string
}

// projectPageData is the template data for one project's character list.
type projectPageData struct {
	User       string
	Project    string
	Characters []*entity.Character
	Folders    []*entity.Folder
}

// characterPageData is the template data for the character detail page.
type characterPageData struct {
	User        string
	Project     string
	Character   *entity.Character
	Description template.HTML
}

// userOf returns the browsed user context (?user=, default "default").
func userOf(r *http.Request) string {
	if u := r.URL.Query().Get("user"); u != "" {
		return u
	}
	return "default"
}

// HandleProjects handles GET /browse.
func (b *browse) HandleProjects(w http.ResponseWriter, r *http.Request) {
	user := userOf(r)
	projects, err := b.store.ListProjects(user)
	if err != nil {
		b.renderError(w, err)
		return
	}
	b.render(w, "projects.html", projectsPageData{User: user, Projects: projects})
}

// HandleProject handles GET /browse/{project}.
func (b *browse) HandleProject(w http.ResponseWriter, r *http.Request) {
	user := userOf(r)
	project := r.PathValue("project")
	characters, folders, _, err := b.store.LoadProject(user, project)
	if err != nil {
		b.renderError(w, err)
		return
	}
	b.render(w, "project.html", projectPageData{
		User:       user,
		Project:    project,
		Characters: characters,
		Folders:    folders,
	})
}

// HandleCharacter handles GET /browse/{project}/{character}.
func (b *browse) HandleCharacter(w http.ResponseWriter, r *http.Request) {
	user := userOf(r)
	project := r.PathValue("project")
	id := r.PathValue("character")

	characters, _, _, err := b.store.LoadProject(user, project)
	if err != nil {
		b.renderError(w, err)
		return
	}

	for _, c := range characters {
		if c.ID != id {
			continue
		}
		var rendered bytes.Buffer
		if err := b.markdown.Convert([]byte(c.Description), &rendered); err != nil {
			b.renderError(w, err)
			return
		}
		b.render(w, "character.html", characterPageData{
			User:        user,
			Project:     project,
			Character:   c,
			Description: template.HTML(rendered.String()),
		})
		return
	}
	http.NotFound(w, r)
}

// render executes one template, logging failures.
func (b *browse) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := b.templates.ExecuteTemplate(w, name, data); err != nil {
		b.logger.Error("template render failed", "template", name, "error", err)
	}
}

// renderError writes a plain error page.
func (b *browse) renderError(w http.ResponseWriter, err error) {
	b.logger.Warn("browse request failed", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
