package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, meeting *Meeting) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Meeting, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*Meeting, error)

	InsertParticipant(ctx context.Context, db *gorm.DB, row *MeetingParticipant) error
	CountParticipants(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) (int64, error)
	ListParticipantIDs(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) ([]snowflake.ID, error)
}
