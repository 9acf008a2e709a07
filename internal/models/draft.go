// Package models defines the domain types for Postcraft.
package models

import "time"

// Draft statuses.
const (
	StatusDraft      = "draft"
	StatusScheduled  = "scheduled"
	StatusPublishing = "publishing"
	StatusPublished  = "published"
)

// Draft is a post under edit. Content holds the persisted document JSON;
// it is empty for drafts created without a body.
type Draft struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Checksum    string     `json:"checksum"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Post is the outbound payload handed to a publisher.
type Post struct {
	DraftID     string    `json:"draft_id"`
	Text        string    `json:"text"`
	Chars       int       `json:"chars"`
	PublishedAt time.Time `json:"published_at"`
}
