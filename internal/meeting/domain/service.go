package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/pkg/db/pagination"
	"gorm.io/gorm"
)

type CreateMeetingRequest struct {
	HostID         snowflake.ID
	Title          string
	Description    string
	LocationName   string
	LocationCoords string
	MeetingDate    time.Time
	Capacity       int
}

type JoinMeetingRequest struct {
	MeetingID string
	UserID    snowflake.ID
}

type ListMeetingsRequest struct {
	PageToken string
	PageSize  int32
}

type ListMeetingsResponse struct {
	pagination.PageInfo
	Meetings []Meeting `json:"meetings"`
}

type Service interface {
	Create(ctx context.Context, req CreateMeetingRequest) (Meeting, error)
	Get(ctx context.Context, id string) (Meeting, error)
	List(ctx context.Context, req ListMeetingsRequest) (ListMeetingsResponse, error)
	Join(ctx context.Context, req JoinMeetingRequest) (MeetingParticipant, error)

	// RewardSet resolves the host plus every distinct participant of the
	// meeting, host deduplicated, inside the caller's transaction.
	RewardSet(ctx context.Context, tx *gorm.DB, meetingID snowflake.ID) (*Meeting, []snowflake.ID, error)
}

var (
	ErrInvalidUser   = errors.New("invalid_user")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidTitle  = errors.New("invalid_title")
	ErrNotFound      = errors.New("meeting_not_found")
	ErrMeetingFull   = errors.New("meeting_full")
	ErrAlreadyJoined = errors.New("already_joined")
)
