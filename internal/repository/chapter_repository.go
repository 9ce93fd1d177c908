package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/novel-reader/internal/domain"
)

// ChapterRepository reads chapters and their navigation neighbours.
type ChapterRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Chapter, error)
	// Neighbors returns the chapters immediately before and after number
	// within the story. Either may be nil.
	Neighbors(ctx context.Context, storyID string, number int) (prev, next *domain.ChapterRef, err error)
}

type chapterRepository struct {
	pool *pgxpool.Pool
}

// NewChapterRepository returns a Postgres-backed implementation.
func NewChapterRepository(pool *pgxpool.Pool) ChapterRepository {
	return &chapterRepository{pool: pool}
}

func (r *chapterRepository) GetByID(ctx context.Context, id string) (*domain.Chapter, error) {
	const query = `
        SELECT id, story_id, number, title, content, coin_price, created_at, updated_at
        FROM chapters WHERE id=$1`

	var ch domain.Chapter
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ch.ID,
		&ch.StoryID,
		&ch.Number,
		&ch.Title,
		&ch.Content,
		&ch.CoinPrice,
		&ch.CreatedAt,
		&ch.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *chapterRepository) Neighbors(ctx context.Context, storyID string, number int) (*domain.ChapterRef, *domain.ChapterRef, error) {
	const prevQuery = `
        SELECT id, number, title FROM chapters
        WHERE story_id=$1 AND number < $2
        ORDER BY number DESC LIMIT 1`
	const nextQuery = `
        SELECT id, number, title FROM chapters
        WHERE story_id=$1 AND number > $2
        ORDER BY number ASC LIMIT 1`

	prev, err := r.ref(ctx, prevQuery, storyID, number)
	if err != nil {
		return nil, nil, err
	}
	next, err := r.ref(ctx, nextQuery, storyID, number)
	if err != nil {
		return nil, nil, err
	}
	return prev, next, nil
}

func (r *chapterRepository) ref(ctx context.Context, query, storyID string, number int) (*domain.ChapterRef, error) {
	var ref domain.ChapterRef
	err := r.pool.QueryRow(ctx, query, storyID, number).Scan(&ref.ID, &ref.Number, &ref.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
