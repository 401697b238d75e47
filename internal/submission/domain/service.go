package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type MediaUpload struct {
	Kind     MediaKind
	UserID   *snowflake.ID
	FileName string
	Data     []byte
}

type CreateRequest struct {
	MeetingID   string
	HostID      snowflake.ID
	TextSummary string
	Media       []MediaUpload
}

type SubmissionDetail struct {
	Submission Submission        `json:"submission"`
	Media      []SubmissionMedia `json:"media"`
}

type Service interface {
	// Create stores the submission and its evidence files. At most one
	// active (pending or ai_pass) submission may exist per meeting+host.
	Create(ctx context.Context, req CreateRequest) (Submission, error)

	Get(ctx context.Context, id string) (SubmissionDetail, error)
	ListForMeeting(ctx context.Context, meetingID string) ([]Submission, error)
}

var (
	ErrInvalidUser      = errors.New("invalid_user")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidMedia     = errors.New("invalid_media")
	ErrNotFound         = errors.New("submission_not_found")
	ErrActiveSubmission = errors.New("active_submission_exists")
)
