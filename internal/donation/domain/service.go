package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type CreatePoolRequest struct {
	Title       string
	Sponsor     string
	Description string
	GoalPoints  int64
}

type PoolDetail struct {
	Pool         DonationPool      `json:"pool"`
	Progress     float64           `json:"progress"`
	Contributors []DonationHistory `json:"contributors,omitempty"`
}

type Service interface {
	// AddPoints feeds reward points into the open pool inside the
	// caller's transaction. No open pool is a no-op. Crossing the goal
	// completes the pool and archives the contributor snapshot.
	AddPoints(ctx context.Context, tx *gorm.DB, amount int64) error

	Create(ctx context.Context, req CreatePoolRequest) (DonationPool, error)
	List(ctx context.Context) ([]PoolDetail, error)
	Get(ctx context.Context, id string) (PoolDetail, error)
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidTitle = errors.New("invalid_title")
	ErrInvalidGoal  = errors.New("invalid_goal")
	ErrNotFound     = errors.New("pool_not_found")
)
