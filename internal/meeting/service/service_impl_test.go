package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/moimlab/moim/internal/clock"
	"github.com/moimlab/moim/internal/meeting/domain"
	meetingrepository "github.com/moimlab/moim/internal/meeting/repository"
	"github.com/moimlab/moim/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	clk  *clock.FakeClock
	svc  domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.Meeting{},
		&domain.MeetingParticipant{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  meetingrepository.Provide(),
	})

	return &fixture{db: db, node: node, clk: clk, svc: svc}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreateMeetingRequest{Title: "Game night"})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = f.svc.Create(ctx, domain.CreateMeetingRequest{HostID: f.node.Generate(), Title: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)
}

func TestCreate_DefaultsMeetingDate(t *testing.T) {
	f := newFixture(t)

	meeting, err := f.svc.Create(context.Background(), domain.CreateMeetingRequest{
		HostID: f.node.Generate(),
		Title:  " Game night ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Game night", meeting.Title)
	assert.Equal(t, f.clk.Now(), meeting.MeetingDate)
}

func TestJoin_AddsParticipant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	meeting, err := f.svc.Create(ctx, domain.CreateMeetingRequest{
		HostID: f.node.Generate(),
		Title:  "Game night",
	})
	require.NoError(t, err)

	userID := f.node.Generate()
	row, err := f.svc.Join(ctx, domain.JoinMeetingRequest{
		MeetingID: meeting.ID.String(),
		UserID:    userID,
	})
	require.NoError(t, err)
	assert.Equal(t, meeting.ID, row.MeetingID)
	assert.Equal(t, userID, row.UserID)
}

func TestJoin_DuplicateRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	meeting, err := f.svc.Create(ctx, domain.CreateMeetingRequest{
		HostID: f.node.Generate(),
		Title:  "Game night",
	})
	require.NoError(t, err)

	req := domain.JoinMeetingRequest{MeetingID: meeting.ID.String(), UserID: f.node.Generate()}
	_, err = f.svc.Join(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, req)
	assert.ErrorIs(t, err, domain.ErrAlreadyJoined)
}

func TestJoin_CapacityEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	meeting, err := f.svc.Create(ctx, domain.CreateMeetingRequest{
		HostID:   f.node.Generate(),
		Title:    "Game night",
		Capacity: 2,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = f.svc.Join(ctx, domain.JoinMeetingRequest{
			MeetingID: meeting.ID.String(),
			UserID:    f.node.Generate(),
		})
		require.NoError(t, err)
	}

	_, err = f.svc.Join(ctx, domain.JoinMeetingRequest{
		MeetingID: meeting.ID.String(),
		UserID:    f.node.Generate(),
	})
	assert.ErrorIs(t, err, domain.ErrMeetingFull)
}

func TestJoin_ZeroCapacityIsUnlimited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	meeting, err := f.svc.Create(ctx, domain.CreateMeetingRequest{
		HostID: f.node.Generate(),
		Title:  "Game night",
	})
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		_, err = f.svc.Join(ctx, domain.JoinMeetingRequest{
			MeetingID: meeting.ID.String(),
			UserID:    f.node.Generate(),
		})
		require.NoError(t, err)
	}
}

func TestJoin_UnknownMeeting(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Join(context.Background(), domain.JoinMeetingRequest{
		MeetingID: f.node.Generate().String(),
		UserID:    f.node.Generate(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRewardSet_DeduplicatesHost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	host := f.node.Generate()
	meeting, err := f.svc.Create(ctx, domain.CreateMeetingRequest{HostID: host, Title: "Game night"})
	require.NoError(t, err)

	alice := f.node.Generate()
	for _, userID := range []snowflake.ID{host, alice} {
		_, err = f.svc.Join(ctx, domain.JoinMeetingRequest{
			MeetingID: meeting.ID.String(),
			UserID:    userID,
		})
		require.NoError(t, err)
	}

	got, participants, err := f.svc.RewardSet(ctx, f.db, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, meeting.ID, got.ID)
	assert.Equal(t, []snowflake.ID{alice}, participants)
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	host := f.node.Generate()
	var ids []snowflake.ID
	for i := 0; i < 5; i++ {
		meeting, err := f.svc.Create(ctx, domain.CreateMeetingRequest{HostID: host, Title: "Game night"})
		require.NoError(t, err)
		ids = append(ids, meeting.ID)
		f.clk.Advance(time.Minute)
	}

	resp, err := f.svc.List(ctx, domain.ListMeetingsRequest{PageSize: 3})
	require.NoError(t, err)
	require.Len(t, resp.Meetings, 3)
	assert.True(t, resp.HasMore)
	assert.Equal(t, ids[4], resp.Meetings[0].ID)
	assert.Equal(t, ids[3], resp.Meetings[1].ID)
	assert.Equal(t, ids[2], resp.Meetings[2].ID)

	// The token points at the last row of the page.
	cursor, err := pagination.DecodeCursor(resp.NextPageToken)
	require.NoError(t, err)
	assert.Equal(t, ids[2].String(), cursor.ID)
}

func TestList_LastPageHasNoMore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	host := f.node.Generate()
	for i := 0; i < 2; i++ {
		_, err := f.svc.Create(ctx, domain.CreateMeetingRequest{HostID: host, Title: "Game night"})
		require.NoError(t, err)
		f.clk.Advance(time.Minute)
	}

	resp, err := f.svc.List(ctx, domain.ListMeetingsRequest{PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, resp.Meetings, 2)
	assert.False(t, resp.HasMore)
}
