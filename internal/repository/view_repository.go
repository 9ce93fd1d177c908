package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const viewKeyPrefix = "views:"

// ViewRepository keeps story and chapter view counters.
type ViewRepository interface {
	IncrementStory(ctx context.Context, storyID string) (int64, error)
	IncrementChapter(ctx context.Context, storyID, chapterID string) (int64, error)
	StoryViews(ctx context.Context, storyID string) (int64, error)
	ChapterViews(ctx context.Context, storyID, chapterID string) (int64, error)
}

type viewRepository struct {
	client redis.UniversalClient
}

// NewViewRepository returns a Redis-backed implementation.
func NewViewRepository(client redis.UniversalClient) ViewRepository {
	return &viewRepository{client: client}
}

func storyKey(storyID string) string {
	return viewKeyPrefix + "story:" + storyID
}

func chapterKey(storyID, chapterID string) string {
	return viewKeyPrefix + "chapter:" + storyID + ":" + chapterID
}

func (r *viewRepository) IncrementStory(ctx context.Context, storyID string) (int64, error) {
	return r.client.Incr(ctx, storyKey(storyID)).Result()
}

func (r *viewRepository) IncrementChapter(ctx context.Context, storyID, chapterID string) (int64, error) {
	return r.client.Incr(ctx, chapterKey(storyID, chapterID)).Result()
}

func (r *viewRepository) StoryViews(ctx context.Context, storyID string) (int64, error) {
	return r.get(ctx, storyKey(storyID))
}

func (r *viewRepository) ChapterViews(ctx context.Context, storyID, chapterID string) (int64, error) {
	return r.get(ctx, chapterKey(storyID, chapterID))
}

func (r *viewRepository) get(ctx context.Context, key string) (int64, error) {
	raw, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}
