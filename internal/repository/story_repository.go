package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/novel-reader/internal/domain"
)

// StoryRepository reads story metadata.
type StoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Story, error)
}

type storyRepository struct {
	pool *pgxpool.Pool
}

// NewStoryRepository returns a Postgres-backed implementation.
func NewStoryRepository(pool *pgxpool.Pool) StoryRepository {
	return &storyRepository{pool: pool}
}

func (r *storyRepository) GetByID(ctx context.Context, id string) (*domain.Story, error) {
	const query = `
        SELECT id, title, slug, author, description, cover_url, status, created_at, updated_at
        FROM stories WHERE id=$1`

	var story domain.Story
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&story.ID,
		&story.Title,
		&story.Slug,
		&story.Author,
		&story.Description,
		&story.CoverURL,
		&story.Status,
		&story.CreatedAt,
		&story.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &story, nil
}
