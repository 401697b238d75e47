package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type ApproveRequest struct {
	SubmissionID string
	AdminID      snowflake.ID
}

type RejectRequest struct {
	SubmissionID string
	AdminID      snowflake.ID
	Feedback     string
}

// Service drives a submission from pending to a terminal state.
type Service interface {
	// Verify runs the automatic check. A missing submission is logged
	// and swallowed; a terminal submission is a no-op. Any outcome short
	// of approval leaves the submission pending.
	Verify(ctx context.Context, submissionID snowflake.ID) error

	// Approve and Reject are the manual override path. Both record the
	// processing admin and refuse already-terminal submissions.
	Approve(ctx context.Context, req ApproveRequest) error
	Reject(ctx context.Context, req RejectRequest) error
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidAdmin     = errors.New("invalid_admin")
	ErrNotFound         = errors.New("submission_not_found")
	ErrAlreadyProcessed = errors.New("already_processed")
)
