package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/novel-reader/internal/domain"
	"github.com/spec-kit/novel-reader/internal/events"
	"github.com/spec-kit/novel-reader/internal/repository"
	apperrors "github.com/spec-kit/novel-reader/pkg/util"
)

// PurchaseSuccessMessage is the message sent with every successful purchase.
// Older clients match on it instead of the success flag.
const PurchaseSuccessMessage = "Mua chương thành công"

const (
	msgChapterFree     = "Chương này miễn phí, không cần mua"
	msgAlreadyOwned    = "Bạn đã mua chương này rồi"
	msgNotEnoughCoins  = "Bạn không đủ xu để mua chương này"
	defaultPreviewSize = 300
)

// ChapterService serves chapters with per-reader lock state and sells
// paid chapters for coins.
type ChapterService struct {
	chapters     repository.ChapterRepository
	stories      repository.StoryRepository
	purchases    repository.PurchaseRepository
	users        repository.UserRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	previewRunes int
}

// ChapterDependencies bundles repositories for the chapter service.
type ChapterDependencies struct {
	ChapterRepo  repository.ChapterRepository
	StoryRepo    repository.StoryRepository
	PurchaseRepo repository.PurchaseRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	PreviewRunes int
}

// NewChapterService constructs the service.
func NewChapterService(deps ChapterDependencies) *ChapterService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	preview := deps.PreviewRunes
	if preview <= 0 {
		preview = defaultPreviewSize
	}
	return &ChapterService{
		chapters:     deps.ChapterRepo,
		stories:      deps.StoryRepo,
		purchases:    deps.PurchaseRepo,
		users:        deps.UserRepo,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		previewRunes: preview,
	}
}

// ChapterView is a chapter as one particular reader may see it.
type ChapterView struct {
	Chapter *domain.Chapter
	Story   *domain.Story
	Prev    *domain.ChapterRef
	Next    *domain.ChapterRef
	Locked  bool
	Preview string
}

// Get loads a chapter for viewerID, which is empty for anonymous readers.
// Locked views never carry the chapter content.
func (s *ChapterService) Get(ctx context.Context, chapterID, viewerID string) (*ChapterView, error) {
	ch, err := s.loadChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	story, err := s.stories.GetByID(ctx, ch.StoryID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	prev, next, err := s.chapters.Neighbors(ctx, ch.StoryID, ch.Number)
	if err != nil {
		return nil, err
	}

	locked, err := s.isLocked(ctx, ch, viewerID)
	if err != nil {
		return nil, err
	}

	view := &ChapterView{Chapter: ch, Story: story, Prev: prev, Next: next, Locked: locked}
	if locked {
		view.Preview = ch.Preview(s.previewRunes)
		stripped := *ch
		stripped.Content = ""
		view.Chapter = &stripped
	}
	return view, nil
}

func (s *ChapterService) isLocked(ctx context.Context, ch *domain.Chapter, viewerID string) (bool, error) {
	if !ch.RequiresPurchase() {
		return false, nil
	}
	// Subjects that are not user ids read as anonymous.
	if viewerID == "" || !apperrors.ValidID(viewerID) {
		return true, nil
	}

	user, err := s.users.GetByID(ctx, viewerID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}
	if user.IsAdmin() {
		return false, nil
	}

	owned, err := s.purchases.HasPurchased(ctx, viewerID, ch.ID)
	if err != nil {
		return false, err
	}
	return !owned, nil
}

// Purchase unlocks a paid chapter for userID. The coin balance is debited
// server side; callers must re-fetch the user to see the new balance.
func (s *ChapterService) Purchase(ctx context.Context, userID, chapterID string) (*domain.Purchase, error) {
	ch, err := s.loadChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if !ch.RequiresPurchase() {
		return nil, apperrors.NewValidationError(msgChapterFree, nil)
	}
	if !apperrors.ValidID(userID) {
		return nil, apperrors.NewUnauthorized(msgAccountGone)
	}

	purchase, err := s.purchases.Purchase(ctx, userID, ch.ID, ch.CoinPrice)
	switch {
	case errors.Is(err, repository.ErrAlreadyPurchased):
		return nil, apperrors.NewConflict(msgAlreadyOwned, nil)
	case errors.Is(err, repository.ErrInsufficientCoins):
		return nil, apperrors.NewValidationError(msgNotEnoughCoins, map[string]any{"price": ch.CoinPrice})
	case errors.Is(err, pgx.ErrNoRows):
		return nil, apperrors.NewUnauthorized(msgAccountGone)
	case err != nil:
		return nil, err
	}

	s.logger.Info("chapter purchased",
		zap.String("user_id", userID),
		zap.String("chapter_id", ch.ID),
		zap.Int64("price", ch.CoinPrice),
	)

	if s.dispatcher != nil {
		ev := events.New(events.EventChapterPurchased)
		ev.UserID = userID
		ev.StoryID = ch.StoryID
		ev.ChapterID = ch.ID
		ev.Payload = events.ChapterPurchasedPayload{PurchaseID: purchase.ID, Price: purchase.Price}
		if err := s.dispatcher.Publish(ctx, ev); err != nil {
			s.logger.Warn("publish purchase event", zap.Error(err))
		}
	}
	return purchase, nil
}

func (s *ChapterService) loadChapter(ctx context.Context, chapterID string) (*domain.Chapter, error) {
	if !apperrors.ValidID(chapterID) {
		return nil, apperrors.NewNotFound("chapter", map[string]any{"id": chapterID})
	}
	ch, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("chapter", map[string]any{"id": chapterID})
		}
		return nil, err
	}
	return ch, nil
}
