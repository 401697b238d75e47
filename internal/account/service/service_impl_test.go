package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/moimlab/moim/internal/account/domain"
	accountrepository "github.com/moimlab/moim/internal/account/repository"
	ledgerdomain "github.com/moimlab/moim/internal/ledger/domain"
	ledgerrepository "github.com/moimlab/moim/internal/ledger/repository"
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

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&ledgerdomain.PointsHistory{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       accountrepository.Provide(),
		LedgerRepo: ledgerrepository.Provide(),
	})
	return svc, db, node
}

func appendLedger(t *testing.T, db *gorm.DB, node *snowflake.Node, userID snowflake.ID, points int64) {
	t.Helper()
	require.NoError(t, db.Create(&ledgerdomain.PointsHistory{
		ID:           node.Generate(),
		UserID:       userID,
		PointsChange: points,
		Reason:       ledgerdomain.ReasonMeetingParticipation,
		CreatedAt:    time.Now().UTC(),
	}).Error)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateUserRequest{Email: "no-at-sign", Username: "alice"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(ctx, domain.CreateUserRequest{Email: "alice@example.com", Username: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidUsername)

	user, err := svc.Create(ctx, domain.CreateUserRequest{Email: " alice@example.com ", Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, int64(0), user.TotalPoints)
	assert.False(t, user.IsStaff)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateUserRequest{Email: "alice@example.com", Username: "alice"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateUserRequest{Email: "alice@example.com", Username: "alice2"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
}

func TestGetProfile_ReportsLedgerTotal(t *testing.T) {
	svc, db, node := newService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, domain.CreateUserRequest{Email: "alice@example.com", Username: "alice"})
	require.NoError(t, err)

	appendLedger(t, db, node, user.ID, 100)
	appendLedger(t, db, node, user.ID, -30)

	profile, err := svc.GetProfile(ctx, domain.GetProfileRequest{ID: user.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(70), profile.LedgerTotal)
	// Cache drift reported, never silently fixed here.
	assert.Equal(t, int64(0), profile.TotalPoints)
}

func TestGetProfile_Unknown(t *testing.T) {
	svc, _, node := newService(t)

	_, err := svc.GetProfile(context.Background(), domain.GetProfileRequest{ID: node.Generate().String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetProfile(context.Background(), domain.GetProfileRequest{ID: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestReconcile_RepairsDriftedCache(t *testing.T) {
	svc, db, node := newService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, domain.CreateUserRequest{Email: "alice@example.com", Username: "alice"})
	require.NoError(t, err)
	appendLedger(t, db, node, user.ID, 200)

	// Simulate drift: the cache never saw the ledger append.
	require.NoError(t, db.Model(&domain.User{}).
		Where("id = ?", user.ID).
		Update("total_points", 9999).Error)

	affected, err := svc.Reconcile(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var got domain.User
	require.NoError(t, db.First(&got, "id = ?", user.ID).Error)
	assert.Equal(t, int64(200), got.TotalPoints)
}

func TestReconcile_AllUsers(t *testing.T) {
	svc, db, node := newService(t)
	ctx := context.Background()

	alice, err := svc.Create(ctx, domain.CreateUserRequest{Email: "alice@example.com", Username: "alice"})
	require.NoError(t, err)
	bob, err := svc.Create(ctx, domain.CreateUserRequest{Email: "bob@example.com", Username: "bob"})
	require.NoError(t, err)

	appendLedger(t, db, node, alice.ID, 150)
	appendLedger(t, db, node, bob.ID, 50)

	affected, err := svc.Reconcile(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	var got domain.User
	require.NoError(t, db.First(&got, "id = ?", alice.ID).Error)
	assert.Equal(t, int64(150), got.TotalPoints)
	got = domain.User{}
	require.NoError(t, db.First(&got, "id = ?", bob.ID).Error)
	assert.Equal(t, int64(50), got.TotalPoints)
}
