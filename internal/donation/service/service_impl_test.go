package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/moimlab/moim/internal/clock"
	"github.com/moimlab/moim/internal/donation/domain"
	donationrepository "github.com/moimlab/moim/internal/donation/repository"
	ledgerdomain "github.com/moimlab/moim/internal/ledger/domain"
	ledgerrepository "github.com/moimlab/moim/internal/ledger/repository"
	notificationdomain "github.com/moimlab/moim/internal/notification/domain"
	notificationrepository "github.com/moimlab/moim/internal/notification/repository"
	"github.com/moimlab/moim/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
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
		&domain.DonationPool{},
		&domain.DonationHistory{},
		&ledgerdomain.PointsHistory{},
		&notificationdomain.Notification{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	m, err := metrics.New(metrics.Config{}, noop.NewMeterProvider())
	require.NoError(t, err)

	svc := New(Params{
		DB:               db,
		Log:              zap.NewNop(),
		GenID:            node,
		Clock:            clk,
		Metrics:          m,
		Repo:             donationrepository.Provide(),
		LedgerRepo:       ledgerrepository.Provide(),
		NotificationRepo: notificationrepository.Provide(),
	})

	return &fixture{db: db, node: node, clk: clk, svc: svc}
}

func (f *fixture) createPool(t *testing.T, goal, current int64, status domain.PoolStatus) snowflake.ID {
	t.Helper()
	pool := domain.DonationPool{
		ID:            f.node.Generate(),
		Title:         "Animal shelter drive",
		GoalPoints:    goal,
		CurrentPoints: current,
		Status:        status,
		CreatedAt:     f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&pool).Error)
	return pool.ID
}

func (f *fixture) appendLedger(t *testing.T, userID snowflake.ID, points int64) {
	t.Helper()
	require.NoError(t, f.db.Create(&ledgerdomain.PointsHistory{
		ID:           f.node.Generate(),
		UserID:       userID,
		PointsChange: points,
		Reason:       ledgerdomain.ReasonMeetingParticipation,
		CreatedAt:    f.clk.Now(),
	}).Error)
}

func (f *fixture) pool(t *testing.T, id snowflake.ID) domain.DonationPool {
	t.Helper()
	var pool domain.DonationPool
	require.NoError(t, f.db.First(&pool, "id = ?", id).Error)
	return pool
}

func TestAddPoints_AccumulatesBelowGoal(t *testing.T) {
	f := newFixture(t)
	poolID := f.createPool(t, 1000, 0, domain.PoolStatusOpen)

	require.NoError(t, f.svc.AddPoints(context.Background(), f.db, 300))

	pool := f.pool(t, poolID)
	assert.Equal(t, int64(300), pool.CurrentPoints)
	assert.Equal(t, domain.PoolStatusOpen, pool.Status)
	assert.Nil(t, pool.CompletedAt)
}

func TestAddPoints_CrossingGoalCompletesPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.node.Generate()
	bob := f.node.Generate()
	f.appendLedger(t, alice, 200)
	f.appendLedger(t, bob, 100)
	// Negative activity must not appear in the snapshot.
	f.appendLedger(t, bob, -50)

	poolID := f.createPool(t, 1000, 950, domain.PoolStatusOpen)

	require.NoError(t, f.svc.AddPoints(ctx, f.db, 100))

	pool := f.pool(t, poolID)
	assert.Equal(t, int64(1050), pool.CurrentPoints)
	assert.Equal(t, domain.PoolStatusCompleted, pool.Status)
	require.NotNil(t, pool.CompletedAt)
	assert.WithinDuration(t, f.clk.Now(), *pool.CompletedAt, time.Second)

	var histories []domain.DonationHistory
	require.NoError(t, f.db.Where("pool_id = ?", poolID).Order("user_id asc").Find(&histories).Error)
	require.Len(t, histories, 2)

	byUser := map[snowflake.ID]int64{}
	for _, h := range histories {
		byUser[h.UserID] = h.ContributedPoints
	}
	assert.Equal(t, int64(200), byUser[alice])
	assert.Equal(t, int64(100), byUser[bob])

	for _, userID := range []snowflake.ID{alice, bob} {
		var count int64
		require.NoError(t, f.db.Model(&notificationdomain.Notification{}).
			Where("user_id = ? AND type = ?", userID, notificationdomain.TypeDonationCompleted).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	}
}

func TestAddPoints_CompletedPoolReceivesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	poolID := f.createPool(t, 1000, 950, domain.PoolStatusOpen)
	require.NoError(t, f.svc.AddPoints(ctx, f.db, 100))
	require.Equal(t, domain.PoolStatusCompleted, f.pool(t, poolID).Status)

	// No open pool remains, so further grants go nowhere.
	require.NoError(t, f.svc.AddPoints(ctx, f.db, 500))
	assert.Equal(t, int64(1050), f.pool(t, poolID).CurrentPoints)
}

func TestAddPoints_ArchiveIsRetrySafe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.node.Generate()
	f.appendLedger(t, alice, 200)
	poolID := f.createPool(t, 100, 90, domain.PoolStatusOpen)

	// Pre-existing snapshot row, as a crashed-and-retried completion
	// would leave behind.
	require.NoError(t, f.db.Create(&domain.DonationHistory{
		ID:                f.node.Generate(),
		PoolID:            poolID,
		UserID:            alice,
		ContributedPoints: 200,
		CreatedAt:         f.clk.Now(),
	}).Error)

	require.NoError(t, f.svc.AddPoints(ctx, f.db, 50))

	var count int64
	require.NoError(t, f.db.Model(&domain.DonationHistory{}).
		Where("pool_id = ? AND user_id = ?", poolID, alice).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The duplicate row was skipped, so no second notification either.
	require.NoError(t, f.db.Model(&notificationdomain.Notification{}).
		Where("user_id = ?", alice).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestAddPoints_NoOpenPoolIsNoOp(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.svc.AddPoints(context.Background(), f.db, 100))
}

func TestAddPoints_NonPositiveAmountIsNoOp(t *testing.T) {
	f := newFixture(t)
	poolID := f.createPool(t, 1000, 100, domain.PoolStatusOpen)

	require.NoError(t, f.svc.AddPoints(context.Background(), f.db, 0))
	require.NoError(t, f.svc.AddPoints(context.Background(), f.db, -10))

	assert.Equal(t, int64(100), f.pool(t, poolID).CurrentPoints)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreatePoolRequest{Title: "  ", GoalPoints: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)

	_, err = f.svc.Create(ctx, domain.CreatePoolRequest{Title: "Drive", GoalPoints: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidGoal)

	pool, err := f.svc.Create(ctx, domain.CreatePoolRequest{Title: "Drive", GoalPoints: 500})
	require.NoError(t, err)
	assert.Equal(t, domain.PoolStatusOpen, pool.Status)
	assert.Equal(t, int64(500), pool.GoalPoints)
}

func TestGet_CompletedPoolIncludesContributors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.node.Generate()
	f.appendLedger(t, alice, 300)
	poolID := f.createPool(t, 100, 50, domain.PoolStatusOpen)

	require.NoError(t, f.svc.AddPoints(ctx, f.db, 100))

	detail, err := f.svc.Get(ctx, poolID.String())
	require.NoError(t, err)
	assert.Equal(t, float64(100), detail.Progress)
	require.Len(t, detail.Contributors, 1)
	assert.Equal(t, alice, detail.Contributors[0].UserID)
	assert.Equal(t, int64(300), detail.Contributors[0].ContributedPoints)
}

func TestGet_UnknownPool(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), f.node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Get(context.Background(), "not-a-snowflake")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
