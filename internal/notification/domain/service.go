package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/pkg/db/pagination"
)

type ListRequest struct {
	UserID     snowflake.ID
	UnreadOnly bool
	PageToken  string
	PageSize   int32
}

type ListResponse struct {
	pagination.PageInfo
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unread_count"`
}

type MarkReadRequest struct {
	UserID snowflake.ID
	ID     string
}

type Service interface {
	List(context.Context, ListRequest) (ListResponse, error)
	MarkRead(context.Context, MarkReadRequest) error
	MarkAllRead(ctx context.Context, userID snowflake.ID) (int64, error)
}

var (
	ErrInvalidUser = errors.New("invalid_user")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("not_found")
)
