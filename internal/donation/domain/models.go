package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PoolStatus string

const (
	PoolStatusOpen      PoolStatus = "open"
	PoolStatusCompleted PoolStatus = "completed"
)

type DonationPool struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Title         string       `gorm:"not null" json:"title"`
	Sponsor       string       `json:"sponsor"`
	Description   string       `json:"description"`
	GoalPoints    int64        `gorm:"not null" json:"goal_points"`
	CurrentPoints int64        `gorm:"not null;default:0" json:"current_points"`
	Status        PoolStatus   `gorm:"not null;default:open;index" json:"status"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
}

// Progress is the pool fill percentage, capped at 100.
func (p DonationPool) Progress() float64 {
	if p.GoalPoints <= 0 {
		return 0
	}
	pct := float64(p.CurrentPoints) / float64(p.GoalPoints) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

type DonationHistory struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	PoolID            snowflake.ID `gorm:"not null;uniqueIndex:ux_donation_histories_pool_user" json:"pool_id"`
	UserID            snowflake.ID `gorm:"not null;uniqueIndex:ux_donation_histories_pool_user" json:"user_id"`
	ContributedPoints int64        `gorm:"not null" json:"contributed_points"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (DonationHistory) TableName() string {
	return "donation_histories"
}
