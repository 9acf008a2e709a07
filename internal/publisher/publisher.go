// Package publisher delivers rendered posts to their destination.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/starford/postcraft/internal/models"
	"github.com/starford/postcraft/internal/storage"
)

// Publisher hands a finished post to the outside world.
type Publisher interface {
	Publish(ctx context.Context, post models.Post) error
}

// Outbox writes each post as <draft-id>.json into a directory, where a
// separate delivery process picks it up.
type Outbox struct {
	store  storage.Provider
	logger *slog.Logger
}

// NewOutbox creates an outbox publisher on top of store.
func NewOutbox(store storage.Provider, logger *slog.Logger) *Outbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Outbox{store: store, logger: logger}
}

// Publish writes the post atomically. A post for the same draft replaces
// any earlier file.
func (o *Outbox) Publish(ctx context.Context, post models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(post, "", "  ")
	if err != nil {
		return fmt.Errorf("outbox: encode: %w", err)
	}
	name := post.DraftID + ".json"
	if err := o.store.Write(name, append(data, '\n')); err != nil {
		return fmt.Errorf("outbox: %w", err)
	}
	o.logger.Info("post written to outbox",
		slog.String("draft_id", post.DraftID),
		slog.String("file", name),
		slog.Int("chars", post.Chars))
	return nil
}

// Pending lists the posts currently waiting in the outbox.
func (o *Outbox) Pending() ([]models.Post, error) {
	entries, err := o.store.List("", ".json")
	if err != nil {
		return nil, err
	}
	out := make([]models.Post, 0, len(entries))
	for _, e := range entries {
		data, err := o.store.Read(e.Path)
		if err != nil {
			return nil, err
		}
		var p models.Post
		if err := json.Unmarshal(data, &p); err != nil {
			o.logger.Warn("outbox: skipping unreadable file", slog.String("file", e.Path), slog.String("error", err.Error()))
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
