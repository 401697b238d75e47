package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, submission *Submission) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Submission, error)
	ListForMeeting(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) ([]*Submission, error)
	CountActive(ctx context.Context, db *gorm.DB, meetingID, hostID snowflake.ID) (int64, error)

	// Transition flips a pending submission; the WHERE status='pending'
	// guard is what makes terminal states sticky. Returns rows affected.
	Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, to Status, feedback *string, processedBy *snowflake.ID, processedAt *time.Time) (int64, error)

	InsertMedia(ctx context.Context, db *gorm.DB, media *SubmissionMedia) error
	ListMedia(ctx context.Context, db *gorm.DB, submissionID snowflake.ID) ([]*SubmissionMedia, error)
}
