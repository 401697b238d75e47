package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	UnreadOnly bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*Notification, error)
	CountUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	MarkRead(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (int64, error)
	MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
}
