package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/novel-reader/internal/events"
)

// AuditService writes domain events to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventChapterPurchased, a.handleChapterPurchased)
	a.dispatcher.Subscribe(events.EventStoryViewed, a.handleViewed)
	a.dispatcher.Subscribe(events.EventChapterViewed, a.handleViewed)
}

func (a *AuditService) handleChapterPurchased(_ context.Context, event events.Event) error {
	a.logger.Info("ChapterPurchased",
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.String("chapter_id", event.ChapterID),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleViewed(_ context.Context, event events.Event) error {
	a.logger.Debug(string(event.Type),
		zap.String("story_id", event.StoryID),
		zap.String("chapter_id", event.ChapterID),
		zap.Any("payload", event.Payload))
	return nil
}
