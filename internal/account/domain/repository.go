package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	ListStaff(ctx context.Context, db *gorm.DB) ([]*User, error)
	// IncrementPoints adjusts the cached total atomically in SQL. Callers
	// must pair it with a ledger append in the same transaction.
	IncrementPoints(ctx context.Context, db *gorm.DB, userID snowflake.ID, delta int64) error
	// ReconcileTotals recomputes total_points from the ledger sum. A zero
	// userID reconciles every user. Returns the number of rows updated.
	ReconcileTotals(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
}
