package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository appends to and reads from the points ledger. Entries are
// never updated or deleted.
type Repository interface {
	Append(ctx context.Context, db *gorm.DB, entry *PointsHistory) error
	SumForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	ListForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, limit int) ([]*PointsHistory, error)
	// PositiveContributionsSince sums positive deltas per user for entries
	// created at or after the given time, skipping users with zero total.
	PositiveContributionsSince(ctx context.Context, db *gorm.DB, since time.Time) ([]Contribution, error)
}
