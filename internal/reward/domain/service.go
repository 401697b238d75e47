package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// PointsPerGrant is the flat award for every member of a reward set.
const PointsPerGrant int64 = 100

// Engine fans a completed meeting out into ledger entries, cached
// totals, pet xp, notifications, and the donation pool. It performs no
// duplicate detection; the caller's terminal-state guard is the only
// protection against double grants.
type Engine interface {
	// GrantForMeeting runs inside the caller's transaction; every write
	// commits or rolls back with the caller's status transition.
	GrantForMeeting(ctx context.Context, tx *gorm.DB, meetingID snowflake.ID) error
}
