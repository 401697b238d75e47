package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/internal/meeting/domain"
	"github.com/moimlab/moim/pkg/db/option"
	"github.com/moimlab/moim/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, meeting *domain.Meeting) error {
	return db.WithContext(ctx).Create(meeting).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Meeting, error) {
	var meeting domain.Meeting
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM meetings WHERE id = ?`, id).
		Scan(&meeting).Error
	if err != nil {
		return nil, err
	}
	if meeting.ID == 0 {
		return nil, nil
	}
	return &meeting, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*domain.Meeting, error) {
	var meetings []*domain.Meeting
	stmt := db.WithContext(ctx).Model(&domain.Meeting{})
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&meetings).Error
	if err != nil {
		return nil, err
	}
	return meetings, nil
}

func (r *repo) InsertParticipant(ctx context.Context, db *gorm.DB, row *domain.MeetingParticipant) error {
	return db.WithContext(ctx).Create(row).Error
}

func (r *repo) CountParticipants(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.MeetingParticipant{}).
		Where("meeting_id = ?", meetingID).
		Count(&count).Error
	return count, err
}

func (r *repo) ListParticipantIDs(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Model(&domain.MeetingParticipant{}).
		Where("meeting_id = ?", meetingID).
		Order("joined_at asc").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
