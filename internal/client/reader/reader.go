// Package reader ties the session, purchase flow and view tracker together
// into the "open a chapter" experience of the CLI.
package reader

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/novel-reader/internal/client/api"
	"github.com/spec-kit/novel-reader/internal/client/purchase"
	"github.com/spec-kit/novel-reader/internal/client/session"
	"github.com/spec-kit/novel-reader/internal/client/tokenstore"
	"github.com/spec-kit/novel-reader/internal/client/views"
)

// ErrNothingOpen is returned when an action needs an open chapter.
var ErrNothingOpen = errors.New("no chapter is open")

// Backend is the API surface the reader needs.
type Backend interface {
	purchase.Backend
	views.Counter
}

// Session is the session surface the reader needs.
type Session interface {
	Load() session.State
	Reconcile(ctx context.Context) session.State
	Token() (string, bool)
	RefreshUser(ctx context.Context) (tokenstore.UserSnapshot, error)
}

// Reader shows one chapter at a time.
type Reader struct {
	backend Backend
	session Session
	tracker *views.Tracker
	flow    *purchase.Flow
	ui      purchase.UI
	logger  *zap.Logger

	current *api.ChapterResponse
	storyID string
}

// New constructs a reader.
func New(backend Backend, sess Session, tracker *views.Tracker, ui purchase.UI, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		backend: backend,
		session: sess,
		tracker: tracker,
		flow:    purchase.NewFlow(backend, sess, ui, logger),
		ui:      ui,
		logger:  logger.Named("reader"),
	}
}

// Current returns the open chapter.
func (r *Reader) Current() *api.ChapterResponse {
	return r.current
}

// Open loads the session and the chapter side by side, renders the chapter
// and starts view tracking when it is readable.
func (r *Reader) Open(ctx context.Context, storyID, chapterID string) (*api.ChapterResponse, error) {
	r.tracker.ClearViewTimer()
	r.session.Load()
	token, _ := r.session.Token()

	var chapter *api.ChapterResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		state := r.session.Reconcile(gctx)
		r.logger.Debug("session reconciled", zap.Stringer("state", state))
		return nil
	})
	g.Go(func() error {
		res, err := r.backend.Chapter(gctx, token, chapterID)
		if token != "" && errors.Is(err, api.ErrUnauthorized) {
			r.logger.Info("chapter fetch rejected token, retrying anonymously")
			res, err = r.backend.Chapter(gctx, "", chapterID)
		}
		if err != nil {
			return fmt.Errorf("load chapter %s: %w", chapterID, err)
		}
		chapter = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if id := chapter.Data.Chapter.StoryID; id != "" {
		storyID = id
	}
	r.current = chapter
	r.storyID = storyID

	state := purchase.AccessOf(chapter)
	r.ui.Render(chapter, state)
	if state == purchase.Unlocked {
		r.tracker.InitChapter(ctx, storyID, chapter.Data.Chapter.ID)
	}
	return chapter, nil
}

// VisitStory counts a view of the story page.
func (r *Reader) VisitStory(ctx context.Context, storyID string) {
	r.tracker.InitStory(ctx, storyID)
}

// Purchase offers to unlock the open chapter.
func (r *Reader) Purchase(ctx context.Context) (purchase.Result, error) {
	if r.current == nil {
		return purchase.Result{}, ErrNothingOpen
	}
	res, err := r.flow.Unlock(ctx, r.current)
	if res.Outcome == purchase.OutcomeUnlocked && res.Chapter != nil {
		r.current = res.Chapter
		if purchase.AccessOf(res.Chapter) == purchase.Unlocked {
			r.tracker.InitChapter(ctx, r.storyID, res.Chapter.Data.Chapter.ID)
		}
	}
	return res, err
}

// Balance re-reads the user to show an up to date coin balance.
func (r *Reader) Balance(ctx context.Context) (int64, error) {
	user, err := r.session.RefreshUser(ctx)
	if err != nil {
		return 0, err
	}
	return user.Coins, nil
}

// Close stops view tracking for the open chapter and waits for in-flight
// view reports.
func (r *Reader) Close() {
	r.tracker.ClearViewTimer()
	r.tracker.Wait()
}
