package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/novel-reader/internal/domain"
)

var (
	// ErrAlreadyPurchased is returned when the user already owns the chapter.
	ErrAlreadyPurchased = errors.New("chapter already purchased")
	// ErrInsufficientCoins is returned when the balance cannot cover the price.
	ErrInsufficientCoins = errors.New("insufficient coins")
)

// PurchaseRepository records chapter unlocks.
type PurchaseRepository interface {
	HasPurchased(ctx context.Context, userID, chapterID string) (bool, error)
	// Purchase debits price coins from the user and records the unlock in
	// one transaction.
	Purchase(ctx context.Context, userID, chapterID string, price int64) (*domain.Purchase, error)
}

type purchaseRepository struct {
	pool *pgxpool.Pool
}

// NewPurchaseRepository returns a Postgres-backed implementation.
func NewPurchaseRepository(pool *pgxpool.Pool) PurchaseRepository {
	return &purchaseRepository{pool: pool}
}

func (r *purchaseRepository) HasPurchased(ctx context.Context, userID, chapterID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM chapter_purchases WHERE user_id=$1 AND chapter_id=$2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, chapterID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *purchaseRepository) Purchase(ctx context.Context, userID, chapterID string, price int64) (*domain.Purchase, error) {
	purchase := &domain.Purchase{UserID: userID, ChapterID: chapterID, Price: price}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var coins int64
		if err := tx.QueryRow(ctx, `SELECT coins FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&coins); err != nil {
			return err
		}

		var owned bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM chapter_purchases WHERE user_id=$1 AND chapter_id=$2)`,
			userID, chapterID,
		).Scan(&owned); err != nil {
			return err
		}
		if owned {
			return ErrAlreadyPurchased
		}
		if coins < price {
			return ErrInsufficientCoins
		}

		if _, err := tx.Exec(ctx,
			`UPDATE users SET coins = coins - $1, updated_at = NOW() WHERE id=$2`,
			price, userID,
		); err != nil {
			return fmt.Errorf("debit coins: %w", err)
		}

		return tx.QueryRow(ctx, `
            INSERT INTO chapter_purchases (user_id, chapter_id, price)
            VALUES ($1, $2, $3)
            RETURNING id, created_at`,
			userID, chapterID, price,
		).Scan(&purchase.ID, &purchase.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}
