// Package draftservice implements the draft lifecycle: editing, preview,
// scheduling and publishing.
package draftservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/starford/postcraft/internal/apperr"
	"github.com/starford/postcraft/internal/checksum"
	"github.com/starford/postcraft/internal/models"
	"github.com/starford/postcraft/internal/publisher"
	"github.com/starford/postcraft/internal/repo"
	"github.com/starford/postcraft/internal/richtext"
)

const maxTitleRunes = 80

// Event kinds passed to EventCallback.
const (
	EventCreated   = "created"
	EventUpdated   = "updated"
	EventDeleted   = "deleted"
	EventPublished = "published"
)

// EventCallback is called after every successful draft mutation.
type EventCallback func(kind, id string)

// DraftDetail is the full representation of a draft.
type DraftDetail struct {
	models.Draft
	Document richtext.Document `json:"document"`
	Stats    richtext.Stats    `json:"stats"`
}

// DraftListItem is a lightweight item in a list response.
type DraftListItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Checksum    string     `json:"checksum"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Preview is the outbound text a draft would publish as.
type Preview struct {
	Text      string         `json:"text"`
	Chars     int            `json:"chars"`
	MaxChars  int            `json:"max_chars"`
	OverLimit bool           `json:"over_limit"`
	Stats     richtext.Stats `json:"stats"`
}

// Service coordinates the draft store and the publisher.
type Service struct {
	db       repo.DraftStore
	pub      publisher.Publisher
	maxChars int
	now      func() time.Time
	onEvent  EventCallback
}

// Option configures a Service.
type Option func(*Service)

// WithMaxChars overrides the post length limit.
func WithMaxChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithEvents registers a mutation callback.
func WithEvents(cb EventCallback) Option {
	return func(s *Service) { s.onEvent = cb }
}

// NewService creates a new draft service.
func NewService(db repo.DraftStore, pub publisher.Publisher, opts ...Option) *Service {
	s := &Service{
		db:       db,
		pub:      pub,
		maxChars: richtext.MaxPostChars,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new draft. Content may be persisted document JSON or
// legacy plain text; it is normalised to the JSON form either way.
func (s *Service) Create(_ context.Context, title, content string) (*DraftDetail, error) {
	doc := richtext.Deserialize(content)
	stored := richtext.Serialize(doc)
	now := s.now().UTC()

	d := models.Draft{
		ID:        uuid.NewString(),
		Title:     deriveTitle(title, doc),
		Content:   stored,
		Status:    models.StatusDraft,
		Checksum:  checksum.Sum(stored),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.Insert(d, doc.PlainText()); err != nil {
		return nil, err
	}
	s.emit(EventCreated, d.ID)
	return buildDetail(d), nil
}

// Get returns a draft with its decoded document.
func (s *Service) Get(_ context.Context, id string) (*DraftDetail, error) {
	d, err := s.db.Get(id)
	if err != nil {
		return nil, err
	}
	return buildDetail(*d), nil
}

// Update replaces title and content with optimistic concurrency: a
// non-empty ifMatch must equal the checksum of the stored content.
// An empty title keeps the current one.
func (s *Service) Update(_ context.Context, id, title, content, ifMatch string) (*DraftDetail, error) {
	d, err := s.db.Get(id)
	if err != nil {
		return nil, err
	}
	if !checksum.Match(ifMatch, d.Content) {
		return nil, apperr.ErrConflict
	}
	if err := editable(d); err != nil {
		return nil, err
	}
	from := repo.VersionOf(*d)

	doc := richtext.Deserialize(content)
	d.Content = richtext.Serialize(doc)
	d.Checksum = checksum.Sum(d.Content)
	if t := strings.TrimSpace(title); t != "" {
		d.Title = t
	} else if d.Title == "" {
		d.Title = deriveTitle("", doc)
	}
	d.UpdatedAt = s.now().UTC()

	if err := s.db.Update(*d, doc.PlainText(), from); err != nil {
		return nil, err
	}
	s.emit(EventUpdated, id)
	return buildDetail(*d), nil
}

// Delete removes a draft.
func (s *Service) Delete(_ context.Context, id string) error {
	if err := s.db.Delete(id); err != nil {
		return err
	}
	s.emit(EventDeleted, id)
	return nil
}

// List returns paginated drafts with an optional status filter.
func (s *Service) List(_ context.Context, limit, offset int, status string) ([]DraftListItem, int, error) {
	rows, total, err := s.db.List(limit, offset, status)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DraftListItem, len(rows))
	for i, r := range rows {
		items[i] = DraftListItem{
			ID:          r.ID,
			Title:       r.Title,
			Status:      r.Status,
			Checksum:    r.Checksum,
			ScheduledAt: r.ScheduledAt,
			UpdatedAt:   r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the store.
func (s *Service) Search(_ context.Context, query string, limit int) ([]repo.SearchResult, error) {
	results, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(results), nil
}

// Render builds the outbound text for content without touching storage.
func (s *Service) Render(content string) Preview {
	doc := richtext.Deserialize(content)
	text := richtext.Escape(richtext.Extract(doc))
	chars := richtext.CharCount(text)
	return Preview{
		Text:      text,
		Chars:     chars,
		MaxChars:  s.maxChars,
		OverLimit: chars > s.maxChars,
		Stats:     doc.Stats(),
	}
}

// Preview renders a stored draft.
func (s *Service) Preview(_ context.Context, id string) (*Preview, error) {
	d, err := s.db.Get(id)
	if err != nil {
		return nil, err
	}
	p := s.Render(d.Content)
	return &p, nil
}

// Publish renders a draft and hands it to the publisher. Published drafts,
// empty drafts and drafts over the length limit are rejected.
//
// The draft is claimed before delivery, so of two concurrent calls only one
// reaches the publisher. A failed delivery returns the draft to the state
// it was claimed from.
func (s *Service) Publish(ctx context.Context, id string) (*models.Post, error) {
	d, err := s.db.Get(id)
	if err != nil {
		return nil, err
	}
	if err := editable(d); err != nil {
		return nil, err
	}
	p := s.Render(d.Content)
	if p.Text == "" {
		return nil, errEmpty
	}
	if p.OverLimit {
		return nil, fmt.Errorf("%w: %d of %d characters", apperr.ErrTooLong, p.Chars, p.MaxChars)
	}

	if err := s.db.Claim(id, repo.VersionOf(*d)); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	post := models.Post{
		DraftID:     d.ID,
		Text:        p.Text,
		Chars:       p.Chars,
		PublishedAt: now,
	}
	if err := s.pub.Publish(ctx, post); err != nil {
		err = fmt.Errorf("draftservice: publish %s: %w", id, err)
		if relErr := s.db.Release(id, d.Status); relErr != nil {
			return nil, errors.Join(err, relErr)
		}
		return nil, err
	}

	if err := s.db.MarkPublished(id, now); err != nil {
		return nil, err
	}
	s.emit(EventPublished, id)
	return &post, nil
}

// Schedule marks a draft for publishing at the given time, which must lie
// in the future.
func (s *Service) Schedule(_ context.Context, id string, at time.Time) (*DraftDetail, error) {
	d, err := s.db.Get(id)
	if err != nil {
		return nil, err
	}
	if err := editable(d); err != nil {
		return nil, err
	}
	now := s.now()
	if !at.After(now) {
		return nil, fmt.Errorf("%w: scheduled time is in the past", apperr.ErrInvalidState)
	}
	doc := richtext.Deserialize(d.Content)
	if blank(doc) {
		return nil, errEmpty
	}

	from := repo.VersionOf(*d)
	at = at.UTC()
	d.Status = models.StatusScheduled
	d.ScheduledAt = &at
	d.UpdatedAt = now.UTC()
	if err := s.db.Update(*d, doc.PlainText(), from); err != nil {
		return nil, err
	}
	s.emit(EventUpdated, id)
	return buildDetail(*d), nil
}

// Unschedule returns a scheduled draft to the draft state.
func (s *Service) Unschedule(_ context.Context, id string) (*DraftDetail, error) {
	d, err := s.db.Get(id)
	if err != nil {
		return nil, err
	}
	if d.Status != models.StatusScheduled {
		return nil, fmt.Errorf("%w: draft is not scheduled", apperr.ErrInvalidState)
	}
	from := repo.VersionOf(*d)
	d.Status = models.StatusDraft
	d.ScheduledAt = nil
	d.UpdatedAt = s.now().UTC()
	if err := s.db.Update(*d, richtext.Deserialize(d.Content).PlainText(), from); err != nil {
		return nil, err
	}
	s.emit(EventUpdated, id)
	return buildDetail(*d), nil
}

// PublishDue publishes every scheduled draft whose time has come. It keeps
// going past individual failures and returns them joined.
func (s *Service) PublishDue(ctx context.Context) (int, error) {
	due, err := s.db.Due(s.now())
	if err != nil {
		return 0, err
	}
	var (
		published int
		errs      []error
	)
	for _, d := range due {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.Publish(ctx, d.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		published++
	}
	return published, errors.Join(errs...)
}

var errEmpty = fmt.Errorf("%w: draft is empty", apperr.ErrInvalidState)

// editable rejects drafts that are published or mid-delivery.
func editable(d *models.Draft) error {
	switch d.Status {
	case models.StatusPublished:
		return fmt.Errorf("%w: draft already published", apperr.ErrInvalidState)
	case models.StatusPublishing:
		return fmt.Errorf("%w: draft is being published", apperr.ErrInvalidState)
	}
	return nil
}

// blank reports whether doc would publish as an empty post.
func blank(doc richtext.Document) bool {
	return richtext.Extract(doc) == ""
}

func (s *Service) emit(kind, id string) {
	if s.onEvent != nil {
		s.onEvent(kind, id)
	}
}

func buildDetail(d models.Draft) *DraftDetail {
	doc := richtext.Deserialize(d.Content)
	return &DraftDetail{
		Draft:    d,
		Document: doc,
		Stats:    doc.Stats(),
	}
}

// deriveTitle prefers the explicit title, falling back to the first line
// of the document cut to maxTitleRunes.
func deriveTitle(title string, doc richtext.Document) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	line := doc.FirstLine()
	if utf8.RuneCountInString(line) <= maxTitleRunes {
		return line
	}
	return strings.TrimSpace(string([]rune(line)[:maxTitleRunes])) + "…"
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
