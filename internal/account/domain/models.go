package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type User struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Email       string       `gorm:"not null;uniqueIndex" json:"email"`
	Username    string       `gorm:"not null;uniqueIndex" json:"username"`
	IsStaff     bool         `gorm:"not null;default:false" json:"is_staff"`
	TotalPoints int64        `gorm:"not null;default:0" json:"total_points"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
