// Package views reports story and chapter views once the reader has stayed
// on a chapter long enough.
package views

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultMinViewTime is the dwell time before a chapter view counts.
const DefaultMinViewTime = 2 * time.Second

const incrementTimeout = 10 * time.Second

// Counter is the server side of view counting.
type Counter interface {
	IncrementStoryViews(ctx context.Context, storyID string) (int64, error)
	IncrementChapterViews(ctx context.Context, storyID, chapterID string) (int64, error)
}

// Tracker counts views for one reading session. At most one chapter timer
// is pending at a time.
type Tracker struct {
	counter Counter
	minView time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	viewed map[string]bool

	// wg tracks pending timers and in-flight increments.
	wg sync.WaitGroup
}

// NewTracker returns a tracker. A non-positive minView uses DefaultMinViewTime.
func NewTracker(counter Counter, minView time.Duration, logger *zap.Logger) *Tracker {
	if minView <= 0 {
		minView = DefaultMinViewTime
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		counter: counter,
		minView: minView,
		logger:  logger.Named("views"),
		viewed:  make(map[string]bool),
	}
}

// InitChapter starts the dwell timer for a chapter, replacing any pending
// one. A chapter this tracker already counted is sent again right away.
func (t *Tracker) InitChapter(ctx context.Context, storyID, chapterID string) {
	t.mu.Lock()
	t.stopLocked()
	if t.viewed[chapterID] {
		t.wg.Add(1)
		t.mu.Unlock()
		go t.sendChapter(ctx, storyID, chapterID)
		return
	}

	gen := t.gen
	t.wg.Add(1)
	t.timer = time.AfterFunc(t.minView, func() {
		t.mu.Lock()
		if t.gen != gen {
			t.mu.Unlock()
			t.wg.Done()
			return
		}
		t.timer = nil
		t.viewed[chapterID] = true
		t.mu.Unlock()
		t.sendChapter(ctx, storyID, chapterID)
	})
	t.mu.Unlock()
}

// InitStory counts a story view immediately.
func (t *Tracker) InitStory(ctx context.Context, storyID string) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := detached(ctx)
		defer cancel()
		n, err := t.counter.IncrementStoryViews(ctx, storyID)
		if err != nil {
			t.logger.Warn("story view not counted", zap.String("story_id", storyID), zap.Error(err))
			return
		}
		t.logger.Debug("story view counted", zap.String("story_id", storyID), zap.Int64("views", n))
	}()
}

// ClearViewTimer cancels a pending chapter timer. Call it when the reader
// leaves the chapter.
func (t *Tracker) ClearViewTimer() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Wait blocks until pending timers have fired or been cleared and every
// increment has finished.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Viewed reports whether the chapter has been counted by this tracker.
func (t *Tracker) Viewed(chapterID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewed[chapterID]
}

// stopLocked invalidates the pending timer. If the timer callback already
// started it sees the new generation and releases its wg slot itself.
func (t *Tracker) stopLocked() {
	t.gen++
	if t.timer == nil {
		return
	}
	if t.timer.Stop() {
		t.wg.Done()
	}
	t.timer = nil
}

func (t *Tracker) sendChapter(ctx context.Context, storyID, chapterID string) {
	defer t.wg.Done()
	ctx, cancel := detached(ctx)
	defer cancel()
	n, err := t.counter.IncrementChapterViews(ctx, storyID, chapterID)
	if err != nil {
		t.logger.Warn("chapter view not counted",
			zap.String("story_id", storyID),
			zap.String("chapter_id", chapterID),
			zap.Error(err))
		return
	}
	t.logger.Debug("chapter view counted", zap.String("chapter_id", chapterID), zap.Int64("views", n))
}

// detached keeps request values but not cancellation: increments outlive
// the command that started them.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), incrementTimeout)
}
