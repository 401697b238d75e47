package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/moimlab/moim/internal/notification/domain"
	notificationrepository "github.com/moimlab/moim/internal/notification/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Notification{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: notificationrepository.Provide(),
	})
	return svc, db, node
}

func seed(t *testing.T, db *gorm.DB, node *snowflake.Node, userID snowflake.ID, read bool) snowflake.ID {
	t.Helper()
	n := domain.Notification{
		ID:        node.Generate(),
		UserID:    userID,
		Type:      domain.TypePointsEarned,
		Title:     "Points earned",
		Message:   "You earned 100 points.",
		IsRead:    read,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&n).Error)
	return n.ID
}

func TestList_CountsUnread(t *testing.T) {
	svc, db, node := newService(t)
	ctx := context.Background()

	userID := node.Generate()
	seed(t, db, node, userID, false)
	seed(t, db, node, userID, false)
	seed(t, db, node, userID, true)
	// Another user's rows stay invisible.
	seed(t, db, node, node.Generate(), false)

	resp, err := svc.List(ctx, domain.ListRequest{UserID: userID})
	require.NoError(t, err)
	assert.Len(t, resp.Notifications, 3)
	assert.Equal(t, int64(2), resp.UnreadCount)

	resp, err = svc.List(ctx, domain.ListRequest{UserID: userID, UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, resp.Notifications, 2)
}

func TestMarkRead(t *testing.T) {
	svc, db, node := newService(t)
	ctx := context.Background()

	userID := node.Generate()
	id := seed(t, db, node, userID, false)

	require.NoError(t, svc.MarkRead(ctx, domain.MarkReadRequest{UserID: userID, ID: id.String()}))

	var row domain.Notification
	require.NoError(t, db.First(&row, "id = ?", id).Error)
	assert.True(t, row.IsRead)
}

func TestMarkRead_OtherUsersRowRefused(t *testing.T) {
	svc, db, node := newService(t)

	owner := node.Generate()
	id := seed(t, db, node, owner, false)

	err := svc.MarkRead(context.Background(), domain.MarkReadRequest{
		UserID: node.Generate(),
		ID:     id.String(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var row domain.Notification
	require.NoError(t, db.First(&row, "id = ?", id).Error)
	assert.False(t, row.IsRead)
}

func TestMarkAllRead(t *testing.T) {
	svc, db, node := newService(t)
	ctx := context.Background()

	userID := node.Generate()
	seed(t, db, node, userID, false)
	seed(t, db, node, userID, false)
	seed(t, db, node, userID, true)

	affected, err := svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	resp, err := svc.List(ctx, domain.ListRequest{UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.UnreadCount)
}
