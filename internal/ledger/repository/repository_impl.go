package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Append(ctx context.Context, db *gorm.DB, entry *domain.PointsHistory) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) SumForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(points_change), 0) FROM points_history WHERE user_id = ?`,
		userID,
	).Scan(&total).Error
	return total, err
}

func (r *repo) ListForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, limit int) ([]*domain.PointsHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []*domain.PointsHistory
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) PositiveContributionsSince(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.Contribution, error) {
	var contributions []domain.Contribution
	err := db.WithContext(ctx).Raw(
		`SELECT user_id, SUM(points_change) AS total
		 FROM points_history
		 WHERE points_change > 0 AND created_at >= ?
		 GROUP BY user_id
		 HAVING SUM(points_change) > 0`,
		since.UTC(),
	).Scan(&contributions).Error
	if err != nil {
		return nil, err
	}
	return contributions, nil
}
