package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/postcraft/internal/draftservice"
	"github.com/starford/postcraft/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *draftservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *draftservice.Service) *Handler {
	return &Handler{svc: svc}
}

func validRequest(w http.ResponseWriter, v validation.Validatable) bool {
	if err := v.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}

// ListDrafts handles GET /api/drafts.
//
//	@Summary		List drafts with optional pagination and status filter
//	@Tags			drafts
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			status	query		string	false	"Filter by status"	Enums(draft, scheduled, published)
//	@Success		200		{object}	DraftListResponse
//	@Security		BearerAuth
//	@Router			/drafts [get]
func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	status := q.Get("status")
	if err := validation.Validate(status,
		validation.In(models.StatusDraft, models.StatusScheduled, models.StatusPublishing, models.StatusPublished),
	); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("status: "+err.Error()))
		return
	}

	items, total, err := h.svc.List(r.Context(), limit, offset, status)
	if err != nil {
		writeServiceError(w, "list drafts", "", err)
		return
	}
	if items == nil {
		items = []DraftListItem{}
	}
	writeJSON(w, http.StatusOK, DraftListResponse{Drafts: items, Total: total})
}

// GetDraft handles GET /api/drafts/{id}.
//
//	@Summary		Get a single draft
//	@Tags			drafts
//	@Produce		json
//	@Param			id	path		string	true	"Draft ID"
//	@Success		200	{object}	DraftDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id} [get]
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get draft", id, err)
		return
	}
	w.Header().Set("ETag", `"`+d.Checksum+`"`)
	writeJSON(w, http.StatusOK, d)
}

// CreateDraft handles POST /api/drafts.
//
//	@Summary		Create a new draft
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDraftRequest	true	"Draft to create"
//	@Success		201		{object}	DraftDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts [post]
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if !decodeJSON(w, r, &req) || !validRequest(w, req) {
		return
	}
	d, err := h.svc.Create(r.Context(), req.Title, req.Content)
	if err != nil {
		writeServiceError(w, "create draft", "", err)
		return
	}
	slog.Info("draft created", slog.String("id", d.ID))
	w.Header().Set("ETag", `"`+d.Checksum+`"`)
	writeJSON(w, http.StatusCreated, d)
}

// UpdateDraft handles PUT /api/drafts/{id}.
//
//	@Summary		Update a draft with optimistic concurrency
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Draft ID"
//	@Param			If-Match	header		string				false	"Checksum of the content being replaced"
//	@Param			body		body		UpdateDraftRequest	true	"Updated draft"
//	@Success		200			{object}	DraftDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id} [put]
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateDraftRequest
	if !decodeJSON(w, r, &req) || !validRequest(w, req) {
		return
	}
	// ETags arrive quoted.
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	d, err := h.svc.Update(r.Context(), id, req.Title, req.Content, ifMatch)
	if err != nil {
		writeServiceError(w, "update draft", id, err)
		return
	}
	w.Header().Set("ETag", `"`+d.Checksum+`"`)
	writeJSON(w, http.StatusOK, d)
}

// DeleteDraft handles DELETE /api/drafts/{id}.
//
//	@Summary		Delete a draft
//	@Tags			drafts
//	@Param			id	path	string	true	"Draft ID"
//	@Success		204	"Draft deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id} [delete]
func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, "delete draft", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PreviewDraft handles POST /api/drafts/{id}/preview.
//
//	@Summary		Render the outbound text of a stored draft
//	@Tags			drafts
//	@Produce		json
//	@Param			id	path		string	true	"Draft ID"
//	@Success		200	{object}	Preview
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id}/preview [post]
func (h *Handler) PreviewDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.svc.Preview(r.Context(), id)
	if err != nil {
		writeServiceError(w, "preview draft", id, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PublishDraft handles POST /api/drafts/{id}/publish.
//
//	@Summary		Publish a draft now
//	@Tags			drafts
//	@Produce		json
//	@Param			id	path		string	true	"Draft ID"
//	@Success		200	{object}	PublishResponse
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id}/publish [post]
func (h *Handler) PublishDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.svc.Publish(r.Context(), id)
	if err != nil {
		writeServiceError(w, "publish draft", id, err)
		return
	}
	slog.Info("draft published", slog.String("id", id), slog.Int("chars", post.Chars))
	writeJSON(w, http.StatusOK, PublishResponse(*post))
}

// ScheduleDraft handles POST /api/drafts/{id}/schedule.
//
//	@Summary		Schedule a draft for later publishing
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Draft ID"
//	@Param			body	body		ScheduleRequest	true	"Publish time"
//	@Success		200		{object}	DraftDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id}/schedule [post]
func (h *Handler) ScheduleDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ScheduleRequest
	if !decodeJSON(w, r, &req) || !validRequest(w, req) {
		return
	}
	d, err := h.svc.Schedule(r.Context(), id, req.At)
	if err != nil {
		writeServiceError(w, "schedule draft", id, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// UnscheduleDraft handles DELETE /api/drafts/{id}/schedule.
//
//	@Summary		Cancel a scheduled publish
//	@Tags			drafts
//	@Produce		json
//	@Param			id	path		string	true	"Draft ID"
//	@Success		200	{object}	DraftDetail
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id}/schedule [delete]
func (h *Handler) UnscheduleDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.svc.Unschedule(r.Context(), id)
	if err != nil {
		writeServiceError(w, "unschedule draft", id, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across drafts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", "", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Render handles POST /api/render.
//
//	@Summary		Render content to outbound text without storing it
//	@Tags			render
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RenderRequest	true	"Document JSON or plain text"
//	@Success		200		{object}	Preview
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/render [post]
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !decodeJSON(w, r, &req) || !validRequest(w, req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Render(req.Content))
}
