package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, pool *DonationPool) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DonationPool, error)
	// FindLatestOpen returns the most-recently-created open pool, nil if none.
	FindLatestOpen(ctx context.Context, db *gorm.DB) (*DonationPool, error)
	List(ctx context.Context, db *gorm.DB) ([]*DonationPool, error)

	// AddPoints bumps current_points with a single atomic UPDATE.
	AddPoints(ctx context.Context, db *gorm.DB, poolID snowflake.ID, amount int64) error
	// Complete flips open→completed; the status guard makes completion
	// fire exactly once. Returns rows affected.
	Complete(ctx context.Context, db *gorm.DB, poolID snowflake.ID, completedAt time.Time) (int64, error)

	// InsertHistory writes the contributor snapshot row, ON CONFLICT DO
	// NOTHING on (pool_id, user_id). Returns rows affected.
	InsertHistory(ctx context.Context, db *gorm.DB, row *DonationHistory) (int64, error)
	ListHistory(ctx context.Context, db *gorm.DB, poolID snowflake.ID) ([]*DonationHistory, error)
}
