package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/postcraft/internal/draftservice"
	"github.com/starford/postcraft/internal/repo"
)

const maxTitleLen = 200

// CreateDraftRequest is the request body for creating a draft. Content is
// document JSON or legacy plain text; it may be empty.
type CreateDraftRequest struct {
	Title   string `json:"title" example:"Launch day"`
	Content string `json:"content" example:"[{\"type\":\"paragraph\",\"children\":[{\"text\":\"Hi\",\"bold\":true}]}]"`
}

// Validate implements validation.Validatable.
func (r CreateDraftRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.RuneLength(0, maxTitleLen)),
	)
}

// UpdateDraftRequest is the request body for updating a draft.
type UpdateDraftRequest struct {
	Title   string `json:"title"`
	Content string `json:"content" validate:"required"`
}

// Validate implements validation.Validatable.
func (r UpdateDraftRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.RuneLength(0, maxTitleLen)),
		validation.Field(&r.Content, validation.Required),
	)
}

// ScheduleRequest is the request body for scheduling a draft.
type ScheduleRequest struct {
	At time.Time `json:"at" example:"2026-05-01T09:00:00Z" validate:"required"`
}

// Validate implements validation.Validatable.
func (r ScheduleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.At, validation.Required),
	)
}

// RenderRequest is the request body for a stateless render.
type RenderRequest struct {
	Content string `json:"content" validate:"required"`
}

// Validate implements validation.Validatable.
func (r RenderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

// DraftDetail is the full draft response type (aliased from the domain layer).
type DraftDetail = draftservice.DraftDetail

// DraftListItem is a lightweight item in a list response.
type DraftListItem = draftservice.DraftListItem

// Preview is the rendered outbound text of a draft.
type Preview = draftservice.Preview

// DraftListResponse wraps paginated draft listings.
type DraftListResponse struct {
	Drafts []DraftListItem `json:"drafts" validate:"required"`
	Total  int             `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []repo.SearchResult `json:"results" validate:"required"`
}

// PublishResponse is returned after a draft is published.
type PublishResponse struct {
	DraftID     string    `json:"draft_id"`
	Text        string    `json:"text"`
	Chars       int       `json:"chars"`
	PublishedAt time.Time `json:"published_at"`
}
