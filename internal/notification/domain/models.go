package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Type string

const (
	TypeAIApproved          Type = "ai_approved"
	TypeAdminReview         Type = "admin_review"
	TypeAdminReviewRequired Type = "admin_review_required"
	TypeAdminRejected       Type = "admin_rejected"
	TypePointsEarned        Type = "points_earned"
	TypeLevelUp             Type = "level_up"
	TypeDonationCompleted   Type = "donation_completed"
)

type Notification struct {
	ID               snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID           snowflake.ID  `gorm:"not null;index:idx_notifications_user_read" json:"user_id"`
	Type             Type          `gorm:"not null" json:"type"`
	Title            string        `gorm:"not null" json:"title"`
	Message          string        `gorm:"not null" json:"message"`
	IsRead           bool          `gorm:"not null;default:false;index:idx_notifications_user_read" json:"is_read"`
	RelatedMeetingID *snowflake.ID `json:"related_meeting_id,omitempty"`
	RelatedPoolID    *snowflake.ID `json:"related_pool_id,omitempty"`
	CreatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
