package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/moimlab/moim/internal/account/domain"
	accountrepository "github.com/moimlab/moim/internal/account/repository"
	"github.com/moimlab/moim/internal/clock"
	donationdomain "github.com/moimlab/moim/internal/donation/domain"
	donationrepository "github.com/moimlab/moim/internal/donation/repository"
	donationservice "github.com/moimlab/moim/internal/donation/service"
	ledgerdomain "github.com/moimlab/moim/internal/ledger/domain"
	ledgerrepository "github.com/moimlab/moim/internal/ledger/repository"
	meetingdomain "github.com/moimlab/moim/internal/meeting/domain"
	meetingrepository "github.com/moimlab/moim/internal/meeting/repository"
	meetingservice "github.com/moimlab/moim/internal/meeting/service"
	notificationdomain "github.com/moimlab/moim/internal/notification/domain"
	notificationrepository "github.com/moimlab/moim/internal/notification/repository"
	"github.com/moimlab/moim/internal/observability/metrics"
	petdomain "github.com/moimlab/moim/internal/pet/domain"
	petrepository "github.com/moimlab/moim/internal/pet/repository"
	petservice "github.com/moimlab/moim/internal/pet/service"
	rewarddomain "github.com/moimlab/moim/internal/reward/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	node   *snowflake.Node
	clk    *clock.FakeClock
	engine rewarddomain.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&accountdomain.User{},
		&meetingdomain.Meeting{},
		&meetingdomain.MeetingParticipant{},
		&ledgerdomain.PointsHistory{},
		&petdomain.UserPet{},
		&donationdomain.DonationPool{},
		&donationdomain.DonationHistory{},
		&notificationdomain.Notification{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	m, err := metrics.New(metrics.Config{}, noop.NewMeterProvider())
	require.NoError(t, err)

	accountRepo := accountrepository.Provide()
	ledgerRepo := ledgerrepository.Provide()
	notificationRepo := notificationrepository.Provide()

	meetingSvc := meetingservice.New(meetingservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  meetingrepository.Provide(),
	})
	petSvc := petservice.New(petservice.Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       clk,
		Repo:        petrepository.Provide(),
		AccountRepo: accountRepo,
		LedgerRepo:  ledgerRepo,
	})
	donationSvc := donationservice.New(donationservice.Params{
		DB:               db,
		Log:              log,
		GenID:            node,
		Clock:            clk,
		Metrics:          m,
		Repo:             donationrepository.Provide(),
		LedgerRepo:       ledgerRepo,
		NotificationRepo: notificationRepo,
	})

	engine := New(Params{
		Log:              log,
		GenID:            node,
		Clock:            clk,
		Metrics:          m,
		MeetingService:   meetingSvc,
		AccountRepo:      accountRepo,
		LedgerRepo:       ledgerRepo,
		PetService:       petSvc,
		NotificationRepo: notificationRepo,
		DonationService:  donationSvc,
	})

	return &fixture{db: db, node: node, clk: clk, engine: engine}
}

func (f *fixture) createUser(t *testing.T, username string) snowflake.ID {
	t.Helper()
	user := accountdomain.User{
		ID:        f.node.Generate(),
		Email:     username + "@example.com",
		Username:  username,
		CreatedAt: f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user.ID
}

func (f *fixture) createMeeting(t *testing.T, hostID snowflake.ID, participants ...snowflake.ID) snowflake.ID {
	t.Helper()
	meeting := meetingdomain.Meeting{
		ID:          f.node.Generate(),
		HostID:      hostID,
		Title:       "Board game night",
		MeetingDate: f.clk.Now(),
		CreatedAt:   f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&meeting).Error)
	for _, userID := range participants {
		require.NoError(t, f.db.Create(&meetingdomain.MeetingParticipant{
			ID:        f.node.Generate(),
			MeetingID: meeting.ID,
			UserID:    userID,
			JoinedAt:  f.clk.Now(),
		}).Error)
	}
	return meeting.ID
}

func (f *fixture) createOpenPool(t *testing.T, goal int64) snowflake.ID {
	t.Helper()
	pool := donationdomain.DonationPool{
		ID:         f.node.Generate(),
		Title:      "Community donation pool",
		GoalPoints: goal,
		Status:     donationdomain.PoolStatusOpen,
		CreatedAt:  f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&pool).Error)
	return pool.ID
}

func (f *fixture) ledgerEntries(t *testing.T, userID snowflake.ID) []ledgerdomain.PointsHistory {
	t.Helper()
	var entries []ledgerdomain.PointsHistory
	require.NoError(t, f.db.Where("user_id = ?", userID).Find(&entries).Error)
	return entries
}

func (f *fixture) totalPoints(t *testing.T, userID snowflake.ID) int64 {
	t.Helper()
	var user accountdomain.User
	require.NoError(t, f.db.First(&user, "id = ?", userID).Error)
	return user.TotalPoints
}

func TestGrantForMeeting_HostAndParticipants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	host := f.createUser(t, "host")
	p1 := f.createUser(t, "alice")
	p2 := f.createUser(t, "bob")
	meetingID := f.createMeeting(t, host, p1, p2)
	f.createOpenPool(t, 10000)

	require.NoError(t, f.engine.GrantForMeeting(ctx, f.db, meetingID))

	hostEntries := f.ledgerEntries(t, host)
	require.Len(t, hostEntries, 1)
	assert.Equal(t, int64(100), hostEntries[0].PointsChange)
	assert.Equal(t, ledgerdomain.ReasonAdminApproval, hostEntries[0].Reason)
	require.NotNil(t, hostEntries[0].MeetingID)
	assert.Equal(t, meetingID, *hostEntries[0].MeetingID)

	for _, userID := range []snowflake.ID{p1, p2} {
		entries := f.ledgerEntries(t, userID)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(100), entries[0].PointsChange)
		assert.Equal(t, ledgerdomain.ReasonMeetingParticipation, entries[0].Reason)
	}

	// Cached totals stay equal to the ledger sum.
	for _, userID := range []snowflake.ID{host, p1, p2} {
		assert.Equal(t, int64(100), f.totalPoints(t, userID))
	}
}

func TestGrantForMeeting_HostListedAsParticipantGrantedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	host := f.createUser(t, "host")
	p1 := f.createUser(t, "alice")
	meetingID := f.createMeeting(t, host, host, p1)
	f.createOpenPool(t, 10000)

	require.NoError(t, f.engine.GrantForMeeting(ctx, f.db, meetingID))

	hostEntries := f.ledgerEntries(t, host)
	require.Len(t, hostEntries, 1)
	assert.Equal(t, ledgerdomain.ReasonAdminApproval, hostEntries[0].Reason)
	assert.Equal(t, int64(100), f.totalPoints(t, host))

	// Pool received points for two distinct people, not three rows.
	var pool donationdomain.DonationPool
	require.NoError(t, f.db.First(&pool).Error)
	assert.Equal(t, int64(200), pool.CurrentPoints)
}

func TestGrantForMeeting_FeedsDonationPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	host := f.createUser(t, "host")
	p1 := f.createUser(t, "alice")
	p2 := f.createUser(t, "bob")
	meetingID := f.createMeeting(t, host, p1, p2)
	poolID := f.createOpenPool(t, 10000)

	require.NoError(t, f.engine.GrantForMeeting(ctx, f.db, meetingID))

	var pool donationdomain.DonationPool
	require.NoError(t, f.db.First(&pool, "id = ?", poolID).Error)
	assert.Equal(t, int64(300), pool.CurrentPoints)
	assert.Equal(t, donationdomain.PoolStatusOpen, pool.Status)
}

func TestGrantForMeeting_GrantsPetXP(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	host := f.createUser(t, "host")
	meetingID := f.createMeeting(t, host)
	f.createOpenPool(t, 10000)

	require.NoError(t, f.engine.GrantForMeeting(ctx, f.db, meetingID))

	var pet petdomain.UserPet
	require.NoError(t, f.db.First(&pet, "user_id = ?", host).Error)
	assert.Equal(t, petdomain.DefaultPetType, pet.PetType)
	assert.Equal(t, 1, pet.CurrentLevel)
	assert.Equal(t, int64(100), pet.CurrentXP)

	// Second grant crosses the level 1 bound of 200 xp.
	secondMeeting := f.createMeeting(t, host)
	require.NoError(t, f.engine.GrantForMeeting(ctx, f.db, secondMeeting))

	require.NoError(t, f.db.First(&pet, "user_id = ?", host).Error)
	assert.Equal(t, 2, pet.CurrentLevel)
	assert.Equal(t, int64(0), pet.CurrentXP)
	assert.Less(t, pet.CurrentXP, pet.MaxXP())

	var levelUps int64
	require.NoError(t, f.db.Model(&notificationdomain.Notification{}).
		Where("user_id = ? AND type = ?", host, notificationdomain.TypeLevelUp).
		Count(&levelUps).Error)
	assert.Equal(t, int64(1), levelUps)
}

func TestGrantForMeeting_NotifiesEveryRecipient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	host := f.createUser(t, "host")
	p1 := f.createUser(t, "alice")
	meetingID := f.createMeeting(t, host, p1)
	f.createOpenPool(t, 10000)

	require.NoError(t, f.engine.GrantForMeeting(ctx, f.db, meetingID))

	for _, userID := range []snowflake.ID{host, p1} {
		var count int64
		require.NoError(t, f.db.Model(&notificationdomain.Notification{}).
			Where("user_id = ? AND type = ?", userID, notificationdomain.TypePointsEarned).
			Count(&count).Error)
		assert.Equal(t, int64(1), count, "user %s", userID)
	}
}

func TestGrantForMeeting_RollsBackAsOneUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	host := f.createUser(t, "host")
	meetingID := f.createMeeting(t, host)
	f.createOpenPool(t, 10000)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := f.engine.GrantForMeeting(ctx, tx, meetingID); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	assert.Empty(t, f.ledgerEntries(t, host))
	assert.Equal(t, int64(0), f.totalPoints(t, host))

	var pool donationdomain.DonationPool
	require.NoError(t, f.db.First(&pool).Error)
	assert.Equal(t, int64(0), pool.CurrentPoints)
}

func TestGrantForMeeting_UnknownMeeting(t *testing.T) {
	f := newFixture(t)

	err := f.engine.GrantForMeeting(context.Background(), f.db, f.node.Generate())
	assert.ErrorIs(t, err, meetingdomain.ErrNotFound)
}
