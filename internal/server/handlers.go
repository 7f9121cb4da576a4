package server

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"

	"github.com/pveldt/roster/internal/card"
	"github.com/pveldt/roster/internal/config"
	"github.com/pveldt/roster/internal/entity"
	"github.com/pveldt/roster/internal/errors"
	"github.com/pveldt/roster/internal/remote"
)

// Handlers contains the HTTP handlers implementing the wire contract.
type Handlers struct {
	store  *Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *Store, cfg *config.Config, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{store: store, cfg: cfg, logger: logger}
}

// HandleListProjects handles POST /projects.list.
func (h *Handlers) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	var req remote.ListProjectsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	names, err := h.store.ListProjects(req.UserContext)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, remote.ListProjectsResponse{Projects: names})
}

// HandleSaveProject handles POST /projects.save.
func (h *Handlers) HandleSaveProject(w http.ResponseWriter, r *http.Request) {
	var req remote.SaveProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	promoted, err := h.store.SaveProject(req.UserContext, req.ProjectName, req.Characters, req.Folders, req.ViewState)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("project saved",
		"project", req.ProjectName,
		"characters", len(req.Characters),
		"promoted", len(promoted))
	writeJSON(w, remote.SaveProjectResponse{Promoted: promoted})
}

// HandleLoadProject handles POST /projects.load.
func (h *Handlers) HandleLoadProject(w http.ResponseWriter, r *http.Request) {
	var req remote.LoadProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	characters, folders, viewState, err := h.store.LoadProject(req.UserContext, req.ProjectName)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, remote.LoadProjectResponse{
		Characters: characters,
		Folders:    folders,
		ViewState:  viewState,
	})
}

// HandleRenameProject handles POST /projects.rename.
func (h *Handlers) HandleRenameProject(w http.ResponseWriter, r *http.Request) {
	var req remote.RenameProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.store.RenameProject(req.UserContext, req.OldName, req.NewName); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, remote.RenameProjectResponse{NewProjectName: req.NewName})
}

// HandleDeleteProject handles POST /projects.delete.
func (h *Handlers) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	var req remote.DeleteProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.store.DeleteProject(req.UserContext, req.ProjectName); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleStageAvatar handles POST /assets.stageAvatar.
func (h *Handlers) HandleStageAvatar(w http.ResponseWriter, r *http.Request) {
	var req remote.StageAvatarRequest
	if !decodeBody(w, r, &req) {
		return
	}
	staged, err := h.store.stageImage(req.UserContext, "avatar", req.File, h.cfg.ThumbnailSize)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, remote.StageAvatarResponse{
		AvatarID:         entity.MustID(),
		TempOriginalRef:  staged.originalRef,
		TempThumbnailRef: staged.thumbnailRef,
		ThumbnailPreview: staged.preview,
	})
}

// HandleStageFolderCover handles POST /assets.stageFolderCover.
func (h *Handlers) HandleStageFolderCover(w http.ResponseWriter, r *http.Request) {
	var req remote.StageFolderCoverRequest
	if !decodeBody(w, r, &req) {
		return
	}
	staged, err := h.store.stageImage(req.UserContext, "cover", req.File, h.cfg.ThumbnailSize)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, remote.StageFolderCoverResponse{
		TempCoverRef:     staged.originalRef,
		ThumbnailPreview: staged.preview,
	})
}

// HandleCleanupTemp handles POST /assets.cleanupTemp.
func (h *Handlers) HandleCleanupTemp(w http.ResponseWriter, r *http.Request) {
	var req remote.CleanupTempRequest
	if !decodeBody(w, r, &req) {
		return
	}
	released, err := h.store.CleanupTemp(req.UserContext)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if released > 0 {
		h.logger.Info("released staged assets", "count", released)
	}
	w.WriteHeader(http.StatusOK)
}

// HandleExportCharacter handles POST /characters.export.
func (h *Handlers) HandleExportCharacter(w http.ResponseWriter, r *http.Request) {
	var req remote.ExportCharacterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Character == nil {
		h.writeError(w, errors.NewValidation("character", "character is required"))
		return
	}

	var data []byte
	var filename, contentType string
	var err error

	switch req.Format {
	case remote.ExportJSON:
		data, err = card.MarshalJSONCard(req.Character)
		filename = card.Filename(req.Character, "json")
		contentType = "application/json"
	case remote.ExportTXT:
		data = card.MarshalTXT(req.Character)
		filename = card.Filename(req.Character, "txt")
		contentType = "text/plain; charset=utf-8"
	case remote.ExportPNG:
		data, err = h.exportPNG(req)
		filename = card.Filename(req.Character, "png")
		contentType = "image/png"
	default:
		h.writeError(w, errors.NewValidation("format", "format must be one of: json, png, txt"))
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Write(data)
}

// exportPNG embeds the card JSON into the character's original avatar image.
// Unavailable when the character has no original image asset.
func (h *Handlers) exportPNG(req remote.ExportCharacterRequest) ([]byte, error) {
	img, err := h.originalImage(req)
	if err != nil {
		return nil, err
	}
	cardJSON, err := json.Marshal(card.FromCharacter(req.Character))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	out, err := card.EmbedChara(img, cardJSON)
	if err != nil {
		return nil, errors.NewValidation("file", err.Error())
	}
	return out, nil
}

// originalImage resolves the active avatar's full-resolution bytes, trying
// the committed asset first, then the staged temp ref.
func (h *Handlers) originalImage(req remote.ExportCharacterRequest) ([]byte, error) {
	avatar := req.Character.ActiveAvatar()
	if avatar == nil && len(req.Character.Avatars) > 0 {
		avatar = &req.Character.Avatars[0]
	}
	if avatar == nil {
		return nil, errors.NewValidation("format", "png export requires an original image asset")
	}
	if avatar.CommittedOriginalID != "" {
		return h.store.Asset(req.UserContext, avatar.CommittedOriginalID)
	}
	if avatar.TempOriginalRef != "" {
		return h.store.TempAsset(req.UserContext, avatar.TempOriginalRef)
	}
	return nil, errors.NewValidation("format", "png export requires an original image asset")
}

// decodeBody decodes a JSON request body, writing a validation error on
// failure. Returns false when the handler should stop.
func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeErrorEnvelope(w, errors.NewValidation("body", "invalid JSON body"))
		return false
	}
	return true
}

// writeError logs and writes a structured error response.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	h.logger.Warn("request failed", "error", err)
	writeErrorEnvelope(w, err)
}

// writeErrorEnvelope writes the error envelope every endpoint shares.
func writeErrorEnvelope(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := string(errors.ErrInternal)
	message := err.Error()
	if rErr, ok := err.(*errors.RosterError); ok {
		code = string(rErr.Code)
		message = rErr.Message
		if rErr.Status >= 400 {
			status = rErr.Status
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// writeJSON writes a success payload.
func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}
