package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Reason string

const (
	ReasonAIApproval           Reason = "ai_approval"
	ReasonAdminApproval        Reason = "admin_approval"
	ReasonMeetingParticipation Reason = "meeting_participation"
	ReasonItemPurchase         Reason = "item_purchase"
)

// PointsHistory is the append-only ledger of point movement. It is the
// system of record; users.total_points is a derived cache of its sum.
type PointsHistory struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID       snowflake.ID  `gorm:"not null;index" json:"user_id"`
	MeetingID    *snowflake.ID `gorm:"index" json:"meeting_id,omitempty"`
	ItemID       *snowflake.ID `json:"item_id,omitempty"`
	PointsChange int64         `gorm:"not null" json:"points_change"`
	Reason       Reason        `gorm:"not null" json:"reason"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (PointsHistory) TableName() string {
	return "points_history"
}

// Contribution is a user's summed positive point activity in a window.
type Contribution struct {
	UserID snowflake.ID
	Total  int64
}
