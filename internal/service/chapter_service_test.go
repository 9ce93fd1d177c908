package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/novel-reader/internal/domain"
	"github.com/spec-kit/novel-reader/internal/events"
	apperrors "github.com/spec-kit/novel-reader/pkg/util"
)

const (
	storyID   = "3b241101-e2bb-4255-8caf-4136c566a962"
	freeID    = "7d444840-9dc0-11d1-b245-5ffdce74fad2"
	paidID    = "9a7b330a-a736-41e5-a2f0-43c0e8bc5a7f"
	lastID    = "c1c9b1d0-7c0f-4c2a-9a84-0f5b7b3c1e10"
	missingID = "00000000-0000-4000-8000-000000000000"

	readerID = "5f1d7a2e-0b7c-4b8e-9a51-3e2f6c9d1a01"
	poorID   = "5f1d7a2e-0b7c-4b8e-9a51-3e2f6c9d1a02"
	modID    = "5f1d7a2e-0b7c-4b8e-9a51-3e2f6c9d1a03"
	ghostID  = "5f1d7a2e-0b7c-4b8e-9a51-3e2f6c9d1a04"
)

type chapterFixture struct {
	svc       *ChapterService
	users     *fakeUsers
	purchases *fakePurchases
	published []events.Event
}

func newChapterFixture(t *testing.T) *chapterFixture {
	t.Helper()
	users := newFakeUsers(
		&domain.User{ID: readerID, Role: domain.RoleUser, Coins: 100},
		&domain.User{ID: poorID, Role: domain.RoleUser, Coins: 10},
		&domain.User{ID: modID, Role: domain.RoleAdmin},
	)
	chapters := newFakeChapters(
		&domain.Chapter{ID: freeID, StoryID: storyID, Number: 1, Title: "Mở đầu", Content: "Nội dung miễn phí"},
		&domain.Chapter{ID: paidID, StoryID: storyID, Number: 2, Title: "Bí mật", Content: "Nội dung trả phí rất dài", CoinPrice: 50},
		&domain.Chapter{ID: lastID, StoryID: storyID, Number: 3, Title: "Kết"},
	)
	purchases := newFakePurchases(users)
	dispatcher := events.NewInMemoryDispatcher()
	fx := &chapterFixture{users: users, purchases: purchases}
	dispatcher.Subscribe(events.EventChapterPurchased, func(_ context.Context, e events.Event) error {
		fx.published = append(fx.published, e)
		return nil
	})
	fx.svc = NewChapterService(ChapterDependencies{
		ChapterRepo:  chapters,
		StoryRepo:    fakeStories{storyID: {ID: storyID, Title: "Truyện thử"}},
		PurchaseRepo: purchases,
		UserRepo:     users,
		Dispatcher:   dispatcher,
		PreviewRunes: 8,
	})
	return fx
}

func TestChapterService_FreeChapterUnlockedForEveryone(t *testing.T) {
	fx := newChapterFixture(t)

	view, err := fx.svc.Get(context.Background(), freeID, "")
	require.NoError(t, err)
	assert.False(t, view.Locked)
	assert.Equal(t, "Nội dung miễn phí", view.Chapter.Content)
	assert.Nil(t, view.Prev)
	require.NotNil(t, view.Next)
	assert.Equal(t, paidID, view.Next.ID)
	assert.Equal(t, "Truyện thử", view.Story.Title)
}

func TestChapterService_PaidChapterLockState(t *testing.T) {
	fx := newChapterFixture(t)
	ctx := context.Background()

	anon, err := fx.svc.Get(ctx, paidID, "")
	require.NoError(t, err)
	assert.True(t, anon.Locked)
	assert.Empty(t, anon.Chapter.Content)
	assert.Equal(t, "Nội dung...", anon.Preview)
	assert.Equal(t, int64(50), anon.Chapter.CoinPrice)

	reader, err := fx.svc.Get(ctx, paidID, readerID)
	require.NoError(t, err)
	assert.True(t, reader.Locked)

	admin, err := fx.svc.Get(ctx, paidID, modID)
	require.NoError(t, err)
	assert.False(t, admin.Locked)
	assert.NotEmpty(t, admin.Chapter.Content)
}

func TestChapterService_PurchaseUnlocksWithoutTouchingResponseBalance(t *testing.T) {
	fx := newChapterFixture(t)
	ctx := context.Background()

	purchase, err := fx.svc.Purchase(ctx, readerID, paidID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), purchase.Price)

	view, err := fx.svc.Get(ctx, paidID, readerID)
	require.NoError(t, err)
	assert.False(t, view.Locked)
	assert.Equal(t, "Nội dung trả phí rất dài", view.Chapter.Content)

	me, err := fx.users.GetByID(ctx, readerID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), me.Coins)

	require.Len(t, fx.published, 1)
	assert.Equal(t, paidID, fx.published[0].ChapterID)
	assert.Equal(t, readerID, fx.published[0].UserID)
}

func TestChapterService_PurchaseFailures(t *testing.T) {
	fx := newChapterFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Purchase(ctx, poorID, paidID)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidationFailed, de.Code)
	assert.Equal(t, msgNotEnoughCoins, de.Message)

	_, err = fx.svc.Purchase(ctx, readerID, paidID)
	require.NoError(t, err)
	_, err = fx.svc.Purchase(ctx, readerID, paidID)
	assert.Equal(t, msgAlreadyOwned, apperrors.ToDomainError(err).Message)

	_, err = fx.svc.Purchase(ctx, readerID, freeID)
	assert.Equal(t, msgChapterFree, apperrors.ToDomainError(err).Message)

	_, err = fx.svc.Purchase(ctx, readerID, missingID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)

	_, err = fx.svc.Purchase(ctx, readerID, "not-a-uuid")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)

	_, err = fx.svc.Purchase(ctx, ghostID, paidID)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.ToDomainError(err).Code)

	assert.Len(t, fx.published, 1)
}

func TestChapterService_NonUUIDViewerReadsAsAnonymous(t *testing.T) {
	fx := newChapterFixture(t)
	ctx := context.Background()

	for _, subject := range []string{"42", "m1"} {
		view, err := fx.svc.Get(ctx, paidID, subject)
		require.NoError(t, err, subject)
		assert.True(t, view.Locked)
		assert.Equal(t, "Nội dung...", view.Preview)
	}
	assert.Zero(t, fx.users.calls)
}

func TestChapterService_PurchaseWithNonUUIDSubject(t *testing.T) {
	fx := newChapterFixture(t)

	_, err := fx.svc.Purchase(context.Background(), "42", paidID)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeUnauthorized, de.Code)
	assert.Equal(t, msgAccountGone, de.Message)
	assert.Empty(t, fx.published)
}
