package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/moimlab/moim/internal/account"
	accountdomain "github.com/moimlab/moim/internal/account/domain"
	"github.com/moimlab/moim/internal/clock"
	"github.com/moimlab/moim/internal/config"
	"github.com/moimlab/moim/internal/donation"
	donationdomain "github.com/moimlab/moim/internal/donation/domain"
	"github.com/moimlab/moim/internal/ledger"
	ledgerdomain "github.com/moimlab/moim/internal/ledger/domain"
	"github.com/moimlab/moim/internal/meeting"
	meetingdomain "github.com/moimlab/moim/internal/meeting/domain"
	"github.com/moimlab/moim/internal/migration"
	"github.com/moimlab/moim/internal/notification"
	notificationdomain "github.com/moimlab/moim/internal/notification/domain"
	"github.com/moimlab/moim/internal/observability"
	"github.com/moimlab/moim/internal/pet"
	petdomain "github.com/moimlab/moim/internal/pet/domain"
	emailprovider "github.com/moimlab/moim/internal/providers/email"
	"github.com/moimlab/moim/internal/providers/media"
	"github.com/moimlab/moim/internal/ratelimit"
	"github.com/moimlab/moim/internal/reward"
	"github.com/moimlab/moim/internal/seed"
	"github.com/moimlab/moim/internal/server"
	"github.com/moimlab/moim/internal/submission"
	submissiondomain "github.com/moimlab/moim/internal/submission/domain"
	"github.com/moimlab/moim/internal/verification"
	"github.com/moimlab/moim/internal/vision"
	"github.com/moimlab/moim/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const adminEmail = "admin@moim.local"

type testEnv struct {
	app     *fx.App
	server  *server.Server
	db      *gorm.DB
	cfg     config.Config
	baseURL string
	httpSrv *httptest.Server
}

var env *testEnv

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	setDefaultEnv()

	var err error
	env, err = startEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start test environment:", err)
		os.Exit(1)
	}

	code := m.Run()
	env.shutdown()
	os.Exit(code)
}

func TestE2E_HealthCheck(t *testing.T) {
	resetDatabase(t, env.db)

	resp, err := http.Get(env.baseURL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestE2E_BootstrapSeedsDefaults(t *testing.T) {
	resetDatabase(t, env.db)

	var admin accountdomain.User
	if err := env.db.Where("email = ?", adminEmail).First(&admin).Error; err != nil {
		t.Fatalf("query default admin: %v", err)
	}
	if !admin.IsStaff {
		t.Fatalf("expected default admin to be staff")
	}

	var pool donationdomain.DonationPool
	if err := env.db.Where("status = ?", donationdomain.PoolStatusOpen).First(&pool).Error; err != nil {
		t.Fatalf("query open pool: %v", err)
	}
	if pool.GoalPoints != env.cfg.Bootstrap.DefaultPoolGoal {
		t.Fatalf("expected pool goal %d, got %d", env.cfg.Bootstrap.DefaultPoolGoal, pool.GoalPoints)
	}

	var itemCount int64
	if err := env.db.Model(&petdomain.PetItem{}).Count(&itemCount).Error; err != nil {
		t.Fatalf("count shop items: %v", err)
	}
	if itemCount == 0 {
		t.Fatalf("expected seeded shop catalog")
	}

	profile := profileResponse{}
	resp, body := doJSON(t, http.MethodGet, env.baseURL+"/api/users/me", nil, authHeaders(admin.ID.String()))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin profile failed: %d: %s", resp.StatusCode, string(body))
	}
	mustDecode(t, body, &profile)
	if !profile.Data.IsStaff {
		t.Fatalf("expected staff profile for default admin")
	}
}

func startEnv() (*testEnv, error) {
	var (
		srv    *server.Server
		dbConn *gorm.DB
		cfg    config.Config
	)

	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		clock.Module,
		migration.Module,
		media.Module,
		emailprovider.Module,
		vision.Module,
		ratelimit.Module,
		account.Module,
		meeting.Module,
		submission.Module,
		ledger.Module,
		pet.Module,
		notification.Module,
		donation.Module,
		reward.Module,
		verification.Module,
		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Populate(&srv, &dbConn, &cfg),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return nil, err
	}

	httpSrv := httptest.NewServer(srv.Engine())

	return &testEnv{
		app:     app,
		server:  srv,
		db:      dbConn,
		cfg:     cfg,
		baseURL: httpSrv.URL,
		httpSrv: httpSrv,
	}, nil
}

func (e *testEnv) shutdown() {
	if e == nil {
		return
	}
	if e.httpSrv != nil {
		e.httpSrv.Close()
	}
	if e.app != nil {
		_ = e.app.Stop(context.Background())
	}
}

func setDefaultEnv() {
	setEnvIfEmpty("ENVIRONMENT", "test")
	setEnvIfEmpty("LOG_LEVEL", "error")
	setEnvIfEmpty("OTEL_ENABLED", "false")
	setEnvIfEmpty("DATABASE_TYPE", "sqlite")
	setEnvIfEmpty("DATABASE_NAME", "file:moim_e2e?mode=memory&cache=shared")
	setEnvIfEmpty("RATE_LIMIT_ENABLED", "false")
	setEnvIfEmpty("VISION_PROVIDER", "histogram")
	setEnvIfEmpty("BOOTSTRAP_DEFAULT_ADMIN", "true")
	setEnvIfEmpty("BOOTSTRAP_DEFAULT_POOL_GOAL", "500")

	if strings.TrimSpace(os.Getenv("MEDIA_ROOT")) == "" {
		dir, err := os.MkdirTemp("", "moim-media-")
		if err != nil {
			panic(err)
		}
		_ = os.Setenv("MEDIA_ROOT", dir)
	}
}

func setEnvIfEmpty(key, value string) {
	if strings.TrimSpace(os.Getenv(key)) != "" {
		return
	}
	_ = os.Setenv(key, value)
}

// resetDatabase wipes per-test state and reseeds the bootstrap rows.
// The shop catalog survives resets so item ids stay stable across the
// running app's catalog cache.
func resetDatabase(t *testing.T, dbConn *gorm.DB) {
	t.Helper()

	wipe := dbConn.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{
		&notificationdomain.Notification{},
		&donationdomain.DonationHistory{},
		&donationdomain.DonationPool{},
		&petdomain.UserInventory{},
		&petdomain.UserPet{},
		&ledgerdomain.PointsHistory{},
		&submissiondomain.SubmissionMedia{},
		&submissiondomain.Submission{},
		&meetingdomain.MeetingParticipant{},
		&meetingdomain.Meeting{},
		&accountdomain.User{},
	} {
		if err := wipe.Delete(model).Error; err != nil {
			t.Fatalf("wipe table: %v", err)
		}
	}

	if err := seed.EnsureDefaultAdmin(dbConn); err != nil {
		t.Fatalf("seed default admin: %v", err)
	}
	if err := seed.EnsureOpenPool(dbConn, env.cfg.Bootstrap.DefaultPoolGoal); err != nil {
		t.Fatalf("seed open pool: %v", err)
	}
	if err := seed.EnsureShopCatalog(dbConn); err != nil {
		t.Fatalf("seed shop catalog: %v", err)
	}
}

func adminID(t *testing.T) string {
	t.Helper()
	var admin accountdomain.User
	if err := env.db.Where("email = ?", adminEmail).First(&admin).Error; err != nil {
		t.Fatalf("query default admin: %v", err)
	}
	return admin.ID.String()
}

func authHeaders(userID string) map[string]string {
	return map[string]string{"X-User-Id": userID}
}

func mustDecode(t *testing.T, body []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("decode response: %v: %s", err, string(body))
	}
}

func doJSON(t *testing.T, method, reqURL string, payload any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode json: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, reqURL, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := newHTTPClient().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, data
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}
