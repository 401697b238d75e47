package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/internal/submission/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, submission *domain.Submission) error {
	return db.WithContext(ctx).Create(submission).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Submission, error) {
	var submission domain.Submission
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM submissions WHERE id = ?`, id).
		Scan(&submission).Error
	if err != nil {
		return nil, err
	}
	if submission.ID == 0 {
		return nil, nil
	}
	return &submission, nil
}

func (r *repo) ListForMeeting(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) ([]*domain.Submission, error) {
	var submissions []*domain.Submission
	err := db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at desc, id desc").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *repo) CountActive(ctx context.Context, db *gorm.DB, meetingID, hostID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("meeting_id = ? AND host_id = ? AND status IN ?", meetingID, hostID,
			[]domain.Status{domain.StatusPending, domain.StatusAIPass}).
		Count(&count).Error
	return count, err
}

func (r *repo) Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, to domain.Status, feedback *string, processedBy *snowflake.ID, processedAt *time.Time) (int64, error) {
	updates := map[string]any{"status": to}
	if feedback != nil {
		updates["admin_feedback"] = *feedback
	}
	if processedBy != nil {
		updates["processed_by"] = *processedBy
	}
	if processedAt != nil {
		updates["processed_at"] = *processedAt
	}

	result := db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repo) InsertMedia(ctx context.Context, db *gorm.DB, media *domain.SubmissionMedia) error {
	return db.WithContext(ctx).Create(media).Error
}

func (r *repo) ListMedia(ctx context.Context, db *gorm.DB, submissionID snowflake.ID) ([]*domain.SubmissionMedia, error) {
	var media []*domain.SubmissionMedia
	err := db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at desc, id desc").
		Find(&media).Error
	if err != nil {
		return nil, err
	}
	return media, nil
}
