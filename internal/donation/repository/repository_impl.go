package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/internal/donation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, pool *domain.DonationPool) error {
	return db.WithContext(ctx).Create(pool).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.DonationPool, error) {
	var pool domain.DonationPool
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM donation_pools WHERE id = ?`, id).
		Scan(&pool).Error
	if err != nil {
		return nil, err
	}
	if pool.ID == 0 {
		return nil, nil
	}
	return &pool, nil
}

func (r *repo) FindLatestOpen(ctx context.Context, db *gorm.DB) (*domain.DonationPool, error) {
	var pool domain.DonationPool
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM donation_pools WHERE status = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
			domain.PoolStatusOpen).
		Scan(&pool).Error
	if err != nil {
		return nil, err
	}
	if pool.ID == 0 {
		return nil, nil
	}
	return &pool, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.DonationPool, error) {
	var pools []*domain.DonationPool
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&pools).Error
	if err != nil {
		return nil, err
	}
	return pools, nil
}

func (r *repo) AddPoints(ctx context.Context, db *gorm.DB, poolID snowflake.ID, amount int64) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE donation_pools SET current_points = current_points + ? WHERE id = ?`,
		amount, poolID,
	)
	if result.Error != nil {
		return fmt.Errorf("failed to add pool points: %w", result.Error)
	}
	return nil
}

func (r *repo) Complete(ctx context.Context, db *gorm.DB, poolID snowflake.ID, completedAt time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE donation_pools SET status = ?, completed_at = ? WHERE id = ? AND status = ?`,
		domain.PoolStatusCompleted, completedAt, poolID, domain.PoolStatusOpen,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) InsertHistory(ctx context.Context, db *gorm.DB, row *domain.DonationHistory) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO donation_histories (
			id, pool_id, user_id, contributed_points, created_at
		) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (pool_id, user_id) DO NOTHING`,
		row.ID, row.PoolID, row.UserID, row.ContributedPoints, row.CreatedAt,
	)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to insert donation history: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *repo) ListHistory(ctx context.Context, db *gorm.DB, poolID snowflake.ID) ([]*domain.DonationHistory, error) {
	var rows []*domain.DonationHistory
	err := db.WithContext(ctx).
		Where("pool_id = ?", poolID).
		Order("contributed_points desc, user_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
