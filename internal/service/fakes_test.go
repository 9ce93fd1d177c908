package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/novel-reader/internal/domain"
	"github.com/spec-kit/novel-reader/internal/repository"
)

// uuidColumn mirrors Postgres rejecting a malformed value for a UUID column.
func uuidColumn(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation, Message: "invalid input syntax for type uuid"}
	}
	return nil
}

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[string]*domain.User
	err   error
	calls int
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*domain.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if err := uuidColumn(id); err != nil {
		return nil, err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeStories map[string]*domain.Story

func (f fakeStories) GetByID(_ context.Context, id string) (*domain.Story, error) {
	if s, ok := f[id]; ok {
		return s, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeChapters struct {
	byID map[string]*domain.Chapter
}

func newFakeChapters(chs ...*domain.Chapter) *fakeChapters {
	f := &fakeChapters{byID: map[string]*domain.Chapter{}}
	for _, ch := range chs {
		f.byID[ch.ID] = ch
	}
	return f
}

func (f *fakeChapters) GetByID(_ context.Context, id string) (*domain.Chapter, error) {
	ch, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ch
	return &cp, nil
}

func (f *fakeChapters) Neighbors(_ context.Context, storyID string, number int) (*domain.ChapterRef, *domain.ChapterRef, error) {
	var prev, next *domain.ChapterRef
	for _, ch := range f.byID {
		if ch.StoryID != storyID {
			continue
		}
		ref := &domain.ChapterRef{ID: ch.ID, Number: ch.Number, Title: ch.Title}
		if ch.Number < number && (prev == nil || ch.Number > prev.Number) {
			prev = ref
		}
		if ch.Number > number && (next == nil || ch.Number < next.Number) {
			next = ref
		}
	}
	return prev, next, nil
}

// fakePurchases debits the shared fakeUsers balance like the SQL transaction.
type fakePurchases struct {
	users *fakeUsers
	owned map[string]bool
}

func newFakePurchases(users *fakeUsers) *fakePurchases {
	return &fakePurchases{users: users, owned: map[string]bool{}}
}

func (f *fakePurchases) HasPurchased(_ context.Context, userID, chapterID string) (bool, error) {
	if err := uuidColumn(userID); err != nil {
		return false, err
	}
	return f.owned[userID+"/"+chapterID], nil
}

func (f *fakePurchases) Purchase(_ context.Context, userID, chapterID string, price int64) (*domain.Purchase, error) {
	if err := uuidColumn(userID); err != nil {
		return nil, err
	}
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	u, ok := f.users.byID[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if f.owned[userID+"/"+chapterID] {
		return nil, repository.ErrAlreadyPurchased
	}
	if u.Coins < price {
		return nil, repository.ErrInsufficientCoins
	}
	u.Coins -= price
	f.owned[userID+"/"+chapterID] = true
	return &domain.Purchase{ID: uuid.NewString(), UserID: userID, ChapterID: chapterID, Price: price, CreatedAt: time.Now()}, nil
}

var (
	_ repository.UserRepository     = (*fakeUsers)(nil)
	_ repository.StoryRepository    = fakeStories(nil)
	_ repository.ChapterRepository  = (*fakeChapters)(nil)
	_ repository.PurchaseRepository = (*fakePurchases)(nil)
)
