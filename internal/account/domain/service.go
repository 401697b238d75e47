package domain

import (
	"context"
	"errors"
)

type CreateUserRequest struct {
	Email    string
	Username string
	IsStaff  bool
}

type GetProfileRequest struct {
	ID string
}

type Profile struct {
	User
	LedgerTotal int64 `json:"ledger_total"`
}

type Service interface {
	Create(context.Context, CreateUserRequest) (User, error)
	GetProfile(context.Context, GetProfileRequest) (Profile, error)
	// Reconcile repairs drifted total_points caches from the ledger.
	// An empty id reconciles all users.
	Reconcile(ctx context.Context, id string) (int64, error)
}

var (
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidUsername = errors.New("invalid_username")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrDuplicateUser   = errors.New("duplicate_user")
)
