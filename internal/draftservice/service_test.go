package draftservice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/postcraft/internal/apperr"
	"github.com/starford/postcraft/internal/models"
	"github.com/starford/postcraft/internal/repo"
	"github.com/starford/postcraft/internal/richtext"
	"github.com/starford/postcraft/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind)
}

func (r *recorder) kinds() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.events, ",")
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, models.Post) error {
	return errors.New("delivery down")
}

// countingPublisher records deliveries. delay widens the window between
// claim and completion.
type countingPublisher struct {
	delay time.Duration
	n     atomic.Int32
}

func (p *countingPublisher) Publish(context.Context, models.Post) error {
	p.n.Add(1)
	time.Sleep(p.delay)
	return nil
}

// racyStore runs hook once, right after the next Get has read its row.
type racyStore struct {
	repo.DraftStore
	mu   sync.Mutex
	hook func()
}

func (r *racyStore) arm(hook func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = hook
}

func (r *racyStore) Get(id string) (*models.Draft, error) {
	d, err := r.DraftStore.Get(id)
	r.mu.Lock()
	hook := r.hook
	r.hook = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return d, err
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func testService(t *testing.T, opts ...Option) (*Service, *recorder) {
	t.Helper()
	rec := &recorder{}
	outbox, _ := testutil.TestOutbox(t)
	opts = append([]Option{WithEvents(rec.record)}, opts...)
	return NewService(testutil.TestDB(t), outbox, opts...), rec
}

func docJSON(lines ...string) string {
	return richtext.Serialize(richtext.FromLines(strings.Join(lines, "\n")))
}

func TestCreate_NormalisesLegacyContent(t *testing.T) {
	svc, rec := testService(t)
	d, err := svc.Create(context.Background(), "", "legacy plain text")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Title != "legacy plain text" {
		t.Errorf("title = %q", d.Title)
	}
	if !strings.HasPrefix(d.Content, `[{"type":"paragraph"`) {
		t.Errorf("content not normalised: %s", d.Content)
	}
	if len(d.Document) != 1 || d.Document[0].Children[0].Text != "legacy plain text" {
		t.Errorf("document = %#v", d.Document)
	}
	if rec.kinds() != EventCreated {
		t.Errorf("events = %q", rec.kinds())
	}
}

func TestCreate_EmptyContent(t *testing.T) {
	svc, _ := testService(t)
	d, err := svc.Create(context.Background(), "Untitled", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Content != richtext.Serialize(richtext.Empty()) {
		t.Errorf("content = %s", d.Content)
	}
}

func TestCreate_LongTitleTruncated(t *testing.T) {
	svc, _ := testService(t)
	d, _ := svc.Create(context.Background(), "", strings.Repeat("word ", 40))
	if n := len([]rune(d.Title)); n > maxTitleRunes+1 {
		t.Errorf("title length = %d", n)
	}
	if !strings.HasSuffix(d.Title, "…") {
		t.Errorf("title = %q, want ellipsis", d.Title)
	}
}

func TestUpdate_OptimisticLocking(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)
	d, _ := svc.Create(ctx, "t", docJSON("v1"))

	updated, err := svc.Update(ctx, d.ID, "", docJSON("v2"), d.Checksum)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Checksum == d.Checksum {
		t.Error("checksum should change with content")
	}
	if updated.Title != "t" {
		t.Errorf("title = %q, want kept", updated.Title)
	}

	if _, err := svc.Update(ctx, d.ID, "", docJSON("v3"), d.Checksum); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale update err = %v, want ErrConflict", err)
	}
	if _, err := svc.Update(ctx, d.ID, "", docJSON("v3"), ""); err != nil {
		t.Errorf("update without If-Match: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.Update(context.Background(), "missing", "", "x", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestRender(t *testing.T) {
	svc, _ := testService(t, WithMaxChars(10))
	doc := richtext.Document{
		richtext.NewParagraph(richtext.Run{Text: "Hi", Bold: true}, richtext.Run{Text: " (all)"}),
	}
	p := svc.Render(richtext.Serialize(doc))
	if p.Text != "\U0001D5DB\U0001D5F6 （all）" {
		t.Errorf("text = %q", p.Text)
	}
	if p.Chars != 10 || p.OverLimit {
		t.Errorf("chars = %d, over = %v", p.Chars, p.OverLimit)
	}
	if p.Stats.StyledRuns != 1 {
		t.Errorf("stats = %+v", p.Stats)
	}
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	svc, rec := testService(t)
	d, _ := svc.Create(ctx, "", docJSON("", "Hello (world)", ""))

	post, err := svc.Publish(ctx, d.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if post.Text != "Hello （world）" {
		t.Errorf("post text = %q", post.Text)
	}

	got, _ := svc.Get(ctx, d.ID)
	if got.Status != models.StatusPublished || got.PublishedAt == nil {
		t.Errorf("draft after publish = %+v", got.Draft)
	}
	if _, err := svc.Publish(ctx, d.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("second publish err = %v", err)
	}
	if _, err := svc.Update(ctx, d.ID, "", "x", ""); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("edit after publish err = %v", err)
	}
	if rec.kinds() != "created,published" {
		t.Errorf("events = %q", rec.kinds())
	}
}

func TestPublish_Rejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t, WithMaxChars(5))

	empty, _ := svc.Create(ctx, "empty", "")
	if _, err := svc.Publish(ctx, empty.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("empty publish err = %v", err)
	}

	long, _ := svc.Create(ctx, "", "far too long")
	if _, err := svc.Publish(ctx, long.ID); !errors.Is(err, apperr.ErrTooLong) {
		t.Errorf("long publish err = %v", err)
	}
}

func TestPublish_PublisherFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.TestDB(t), failingPublisher{})
	d, _ := svc.Create(ctx, "", "text")
	if _, err := svc.Publish(ctx, d.ID); err == nil {
		t.Fatal("expected publisher error")
	}
	got, _ := svc.Get(ctx, d.ID)
	if got.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", got.Status)
	}
}

func TestScheduleAndPublishDue(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc, _ := testService(t, WithClock(c.now))

	d, _ := svc.Create(ctx, "", "scheduled post")
	other, _ := svc.Create(ctx, "", "later post")

	if _, err := svc.Schedule(ctx, d.ID, c.t.Add(-time.Minute)); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("past schedule err = %v", err)
	}
	s, err := svc.Schedule(ctx, d.ID, c.t.Add(time.Hour))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if s.Status != models.StatusScheduled {
		t.Errorf("status = %q", s.Status)
	}
	_, _ = svc.Schedule(ctx, other.ID, c.t.Add(3*time.Hour))

	if n, err := svc.PublishDue(ctx); err != nil || n != 0 {
		t.Fatalf("early PublishDue = %d, %v", n, err)
	}

	c.t = c.t.Add(2 * time.Hour)
	n, err := svc.PublishDue(ctx)
	if err != nil || n != 1 {
		t.Fatalf("PublishDue = %d, %v", n, err)
	}
	got, _ := svc.Get(ctx, d.ID)
	if got.Status != models.StatusPublished || got.ScheduledAt != nil {
		t.Errorf("draft = %+v", got.Draft)
	}
	later, _ := svc.Get(ctx, other.ID)
	if later.Status != models.StatusScheduled {
		t.Errorf("other status = %q", later.Status)
	}
}

func TestUnschedule(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)
	d, _ := svc.Create(ctx, "", "text")

	if _, err := svc.Unschedule(ctx, d.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("unschedule draft err = %v", err)
	}
	_, _ = svc.Schedule(ctx, d.ID, time.Now().Add(time.Hour))
	u, err := svc.Unschedule(ctx, d.ID)
	if err != nil {
		t.Fatalf("Unschedule: %v", err)
	}
	if u.Status != models.StatusDraft || u.ScheduledAt != nil {
		t.Errorf("draft = %+v", u.Draft)
	}
}

func TestSchedule_EmptyRejected(t *testing.T) {
	svc, _ := testService(t)
	d, _ := svc.Create(context.Background(), "blank", "")
	if _, err := svc.Schedule(context.Background(), d.ID, time.Now().Add(time.Hour)); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("err = %v", err)
	}
}

func TestListSearchDelete(t *testing.T) {
	ctx := context.Background()
	svc, rec := testService(t)
	a, _ := svc.Create(ctx, "", "alpha needle")
	_, _ = svc.Create(ctx, "", "beta")

	items, total, err := svc.List(ctx, 10, 0, "")
	if err != nil || total != 2 || len(items) != 2 {
		t.Fatalf("List = %d items, total %d, err %v", len(items), total, err)
	}

	results, err := svc.Search(ctx, "needle", 10)
	if err != nil || len(results) != 1 || results[0].ID != a.ID {
		t.Errorf("Search = %+v, %v", results, err)
	}
	if results, _ := svc.Search(ctx, "nomatch", 10); results == nil {
		t.Error("search should return empty slice, not nil")
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
	if !strings.HasSuffix(rec.kinds(), EventDeleted) {
		t.Errorf("events = %q", rec.kinds())
	}
}

func TestPublish_FailureRestoresSchedule(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewService(testutil.TestDB(t), failingPublisher{}, WithClock(c.now))
	d, _ := svc.Create(ctx, "", "text")
	_, _ = svc.Schedule(ctx, d.ID, c.t.Add(time.Minute))

	c.t = c.t.Add(time.Hour)
	if n, err := svc.PublishDue(ctx); err == nil || n != 0 {
		t.Fatalf("PublishDue = %d, %v; want delivery error", n, err)
	}
	got, _ := svc.Get(ctx, d.ID)
	if got.Status != models.StatusScheduled || got.ScheduledAt == nil {
		t.Errorf("draft after failed delivery = %+v", got.Draft)
	}
}

func TestPublish_ConcurrentCallsDeliverOnce(t *testing.T) {
	ctx := context.Background()
	pub := &countingPublisher{delay: 20 * time.Millisecond}
	svc := NewService(testutil.TestDB(t), pub)
	d, _ := svc.Create(ctx, "", "only once")

	const callers = 4
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Publish(ctx, d.ID)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, apperr.ErrInvalidState):
				rejected.Add(1)
			default:
				t.Errorf("Publish: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := pub.n.Load(); got != 1 {
		t.Errorf("deliveries = %d, want 1", got)
	}
	if succeeded.Load() != 1 || rejected.Load() != callers-1 {
		t.Errorf("succeeded = %d, rejected = %d", succeeded.Load(), rejected.Load())
	}
}

func TestEditsRacingScheduledPublish(t *testing.T) {
	ctx := context.Background()
	edits := map[string]func(svc *Service, id string, now time.Time) error{
		"update": func(svc *Service, id string, _ time.Time) error {
			_, err := svc.Update(ctx, id, "", docJSON("edited"), "")
			return err
		},
		"schedule": func(svc *Service, id string, now time.Time) error {
			_, err := svc.Schedule(ctx, id, now.Add(time.Hour))
			return err
		},
		"unschedule": func(svc *Service, id string, _ time.Time) error {
			_, err := svc.Unschedule(ctx, id)
			return err
		},
	}
	for name, edit := range edits {
		t.Run(name, func(t *testing.T) {
			c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
			store := &racyStore{DraftStore: testutil.TestDB(t)}
			pub := &countingPublisher{}
			svc := NewService(store, pub, WithClock(c.now))

			d, _ := svc.Create(ctx, "", "going out soon")
			if _, err := svc.Schedule(ctx, d.ID, c.t.Add(time.Minute)); err != nil {
				t.Fatalf("Schedule: %v", err)
			}
			c.t = c.t.Add(2 * time.Minute)

			store.arm(func() {
				if n, err := svc.PublishDue(ctx); n != 1 || err != nil {
					t.Errorf("PublishDue during edit = %d, %v", n, err)
				}
			})
			if err := edit(svc, d.ID, c.t); !errors.Is(err, apperr.ErrInvalidState) {
				t.Errorf("edit err = %v, want ErrInvalidState", err)
			}

			got, _ := svc.Get(ctx, d.ID)
			if got.Status != models.StatusPublished || got.PublishedAt == nil {
				t.Errorf("draft after race = %+v", got.Draft)
			}
			if n, err := svc.PublishDue(ctx); n != 0 || err != nil {
				t.Errorf("next tick = %d, %v", n, err)
			}
			if got := pub.n.Load(); got != 1 {
				t.Errorf("deliveries = %d, want 1", got)
			}
		})
	}
}

func TestUpdate_LostUpdatePrevented(t *testing.T) {
	ctx := context.Background()
	store := &racyStore{DraftStore: testutil.TestDB(t)}
	svc := NewService(store, &countingPublisher{})
	d, _ := svc.Create(ctx, "", docJSON("v1"))

	store.arm(func() {
		if _, err := svc.Update(ctx, d.ID, "", docJSON("theirs"), ""); err != nil {
			t.Errorf("concurrent Update: %v", err)
		}
	})
	if _, err := svc.Update(ctx, d.ID, "", docJSON("mine"), d.Checksum); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
	got, _ := svc.Get(ctx, d.ID)
	if got.Document.PlainText() != "theirs" {
		t.Errorf("content = %q, want the concurrent write kept", got.Document.PlainText())
	}
}

func TestSchedule_WhitespaceOnlyRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)
	d, _ := svc.Create(ctx, "blank", "   \n\t ")
	if _, err := svc.Schedule(ctx, d.ID, time.Now().Add(time.Hour)); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("err = %v, want ErrInvalidState", err)
	}
	if _, err := svc.Publish(ctx, d.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("publish err = %v, want ErrInvalidState", err)
	}
}
