package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAIPass    Status = "ai_pass"
	StatusAdminPass Status = "admin_pass"
	StatusRejected  Status = "rejected"
)

// Terminal reports whether the status accepts no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusAIPass, StatusAdminPass, StatusRejected:
		return true
	}
	return false
}

type MediaKind string

const (
	KindScenePhoto MediaKind = "scene_photo"
	KindSelfie     MediaKind = "selfie"
)

type Submission struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	MeetingID     snowflake.ID  `gorm:"not null;index" json:"meeting_id"`
	HostID        snowflake.ID  `gorm:"not null;index" json:"host_id"`
	Status        Status        `gorm:"not null;default:pending;index" json:"status"`
	TextSummary   string        `json:"text_summary"`
	AdminFeedback *string       `json:"admin_feedback,omitempty"`
	ProcessedBy   *snowflake.ID `json:"processed_by,omitempty"`
	ProcessedAt   *time.Time    `json:"processed_at,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

type SubmissionMedia struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	SubmissionID snowflake.ID      `gorm:"not null;index" json:"submission_id"`
	UserID       *snowflake.ID     `json:"user_id,omitempty"`
	Kind         MediaKind         `gorm:"not null" json:"kind"`
	FileURL      string            `gorm:"not null" json:"file_url"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (SubmissionMedia) TableName() string {
	return "submission_media"
}
