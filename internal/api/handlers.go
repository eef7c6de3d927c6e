package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/sitewright/internal/apperr"
	"github.com/starford/sitewright/internal/command"
	"github.com/starford/sitewright/internal/history"
	"github.com/starford/sitewright/internal/models"
	"github.com/starford/sitewright/internal/rebuild"
	"github.com/starford/sitewright/internal/siteservice"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *siteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *siteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrBusy), errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, rebuild.ErrGeneration):
		return http.StatusBadGateway
	case errors.Is(err, command.ErrNoValidCommands):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrNothingToUndo), errors.Is(err, apperr.ErrNothingToRedo):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("error", err.Error()))
		msg = "internal error"
	}
	writeJSON(w, status, errorBody(msg))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// GetSite handles GET /api/site.
//
//	@Summary		Get the live site configuration
//	@Tags			site
//	@Produce		json
//	@Success		200	{object}	SiteResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/site [get]
func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request) {
	cfg, sum, err := h.svc.Site(r.Context())
	if err != nil {
		writeError(w, "get site", err)
		return
	}
	w.Header().Set("ETag", `"`+sum+`"`)
	writeJSON(w, http.StatusOK, SiteResponse{Config: cfg, Checksum: sum})
}

// Rebuild handles POST /api/rebuild.
//
//	@Summary		Rebuild the site from a prompt
//	@Tags			site
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RebuildRequest	true	"Rebuild prompt"
//	@Success		200		{object}	RebuildResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rebuild [post]
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	var req RebuildRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	res, err := h.svc.Rebuild(r.Context(), req.Prompt, nil)
	if err != nil {
		writeError(w, "rebuild", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Undo handles POST /api/history/undo.
//
//	@Summary		Restore the previous configuration
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	SiteResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/history/undo [post]
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Undo(r.Context())
	if err != nil {
		writeError(w, "undo", err)
		return
	}
	writeJSON(w, http.StatusOK, SiteResponse{Config: cfg})
}

// Redo handles POST /api/history/redo.
//
//	@Summary		Re-apply an undone configuration
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	SiteResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/history/redo [post]
func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Redo(r.Context())
	if err != nil {
		writeError(w, "redo", err)
		return
	}
	writeJSON(w, http.StatusOK, SiteResponse{Config: cfg})
}

// History handles GET /api/history.
//
//	@Summary		List history entries
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum entries"
//	@Success		200		{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.svc.History(r.Context(), limit)
	if err != nil {
		writeError(w, "history", err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries})
}

// UpdateArticle handles PATCH /api/articles/{id}.
//
//	@Summary		Edit an article
//	@Tags			articles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Article ID"
//	@Param			body	body		models.ArticlePatch	true	"Fields to replace"
//	@Success		200		{object}	ArticleResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/articles/{id} [patch]
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var patch models.ArticlePatch
	if !decodeBody(w, r, &patch) {
		return
	}
	article, change, err := h.svc.UpdateArticle(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, "update article", err)
		return
	}
	writeJSON(w, http.StatusOK, ArticleResponse{Article: article, SlugChange: change})
}
