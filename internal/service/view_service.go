package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/novel-reader/internal/events"
	"github.com/spec-kit/novel-reader/internal/repository"
	apperrors "github.com/spec-kit/novel-reader/pkg/util"
)

// ViewService counts story and chapter views.
type ViewService struct {
	views      repository.ViewRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewViewService constructs the service.
func NewViewService(views repository.ViewRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewService{views: views, dispatcher: dispatcher, logger: logger}
}

// IncrementStory adds one view to a story.
func (s *ViewService) IncrementStory(ctx context.Context, storyID string) (int64, error) {
	if !apperrors.ValidID(storyID) {
		return 0, apperrors.NewNotFound("story", map[string]any{"id": storyID})
	}
	n, err := s.views.IncrementStory(ctx, storyID)
	if err != nil {
		return 0, err
	}
	ev := events.New(events.EventStoryViewed)
	ev.StoryID = storyID
	ev.Payload = events.ViewedPayload{Views: n}
	s.publish(ctx, ev)
	return n, nil
}

// IncrementChapter adds one view to a chapter.
func (s *ViewService) IncrementChapter(ctx context.Context, storyID, chapterID string) (int64, error) {
	if !apperrors.ValidID(storyID) {
		return 0, apperrors.NewNotFound("story", map[string]any{"id": storyID})
	}
	if !apperrors.ValidID(chapterID) {
		return 0, apperrors.NewNotFound("chapter", map[string]any{"id": chapterID})
	}
	n, err := s.views.IncrementChapter(ctx, storyID, chapterID)
	if err != nil {
		return 0, err
	}
	ev := events.New(events.EventChapterViewed)
	ev.StoryID = storyID
	ev.ChapterID = chapterID
	ev.Payload = events.ViewedPayload{Views: n}
	s.publish(ctx, ev)
	return n, nil
}

func (s *ViewService) publish(ctx context.Context, ev events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, ev); err != nil {
		s.logger.Warn("publish view event", zap.String("type", string(ev.Type)), zap.Error(err))
	}
}
