package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Meeting struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	HostID         snowflake.ID `gorm:"not null;index" json:"host_id"`
	Title          string       `gorm:"not null" json:"title"`
	Description    string       `json:"description"`
	LocationName   string       `json:"location_name"`
	LocationCoords string       `json:"location_coords"`
	MeetingDate    time.Time    `gorm:"not null" json:"meeting_date"`
	Capacity       int          `gorm:"not null;default:0" json:"capacity"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

type MeetingParticipant struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	MeetingID snowflake.ID `gorm:"not null;uniqueIndex:ux_meeting_participants_meeting_user" json:"meeting_id"`
	UserID    snowflake.ID `gorm:"not null;uniqueIndex:ux_meeting_participants_meeting_user" json:"user_id"`
	JoinedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
}
