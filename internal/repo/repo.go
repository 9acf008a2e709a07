package repo

import (
	"time"

	"github.com/starford/postcraft/internal/models"
)

// DraftStore defines the persistence operations the draft service needs.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DraftStore interface {
	Insert(d models.Draft, plain string) error
	Update(d models.Draft, plain string, from Version) error
	Get(id string) (*models.Draft, error)
	Delete(id string) error
	List(limit, offset int, status string) ([]models.Draft, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Due(now time.Time) ([]models.Draft, error)
	Claim(id string, from Version) error
	Release(id, status string) error
	MarkPublished(id string, at time.Time) error
	Close() error
}

// Verify *DB satisfies DraftStore at compile time.
var _ DraftStore = (*DB)(nil)
