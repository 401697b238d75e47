package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/moimlab/moim/internal/account"
	accountdomain "github.com/moimlab/moim/internal/account/domain"
	"github.com/moimlab/moim/internal/config"
	"github.com/moimlab/moim/internal/donation"
	donationdomain "github.com/moimlab/moim/internal/donation/domain"
	"github.com/moimlab/moim/internal/ledger"
	"github.com/moimlab/moim/internal/meeting"
	meetingdomain "github.com/moimlab/moim/internal/meeting/domain"
	"github.com/moimlab/moim/internal/notification"
	notificationdomain "github.com/moimlab/moim/internal/notification/domain"
	"github.com/moimlab/moim/internal/observability"
	obsmiddleware "github.com/moimlab/moim/internal/observability/logger"
	obsmetrics "github.com/moimlab/moim/internal/observability/metrics"
	obstracing "github.com/moimlab/moim/internal/observability/tracing"
	"github.com/moimlab/moim/internal/pet"
	petdomain "github.com/moimlab/moim/internal/pet/domain"
	"github.com/moimlab/moim/internal/providers/email"
	"github.com/moimlab/moim/internal/providers/media"
	"github.com/moimlab/moim/internal/ratelimit"
	"github.com/moimlab/moim/internal/reward"
	"github.com/moimlab/moim/internal/submission"
	submissiondomain "github.com/moimlab/moim/internal/submission/domain"
	"github.com/moimlab/moim/internal/verification"
	verificationdomain "github.com/moimlab/moim/internal/verification/domain"
	"github.com/moimlab/moim/internal/vision"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	media.Module,
	email.Module,
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
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	accountSvc      accountdomain.Service
	meetingSvc      meetingdomain.Service
	submissionSvc   submissiondomain.Service
	verificationSvc verificationdomain.Service
	petSvc          petdomain.Service
	notificationSvc notificationdomain.Service
	donationSvc     donationdomain.Service
	obsMetrics      *obsmetrics.Metrics
	submitLimiter   *ratelimit.SubmissionLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	AccountSvc      accountdomain.Service
	MeetingSvc      meetingdomain.Service
	SubmissionSvc   submissiondomain.Service
	VerificationSvc verificationdomain.Service
	PetSvc          petdomain.Service
	NotificationSvc notificationdomain.Service
	DonationSvc     donationdomain.Service
	ObsMetrics      *obsmetrics.Metrics          `optional:"true"`
	SubmitLimiter   *ratelimit.SubmissionLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		accountSvc:      p.AccountSvc,
		meetingSvc:      p.MeetingSvc,
		submissionSvc:   p.SubmissionSvc,
		verificationSvc: p.VerificationSvc,
		petSvc:          p.PetSvc,
		notificationSvc: p.NotificationSvc,
		donationSvc:     p.DonationSvc,
		obsMetrics:      p.ObsMetrics,
		submitLimiter:   p.SubmitLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

// Engine exposes the underlying router for in-process test servers.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/users", s.CreateUser)
	api.GET("/users/me", s.GetProfile)

	api.POST("/meetings", s.CreateMeeting)
	api.GET("/meetings", s.ListMeetings)
	api.GET("/meetings/:id", s.GetMeeting)
	api.POST("/meetings/:id/join", s.JoinMeeting)
	api.POST("/meetings/:id/submissions", s.CreateSubmission)
	api.GET("/meetings/:id/submissions", s.ListSubmissions)

	api.GET("/submissions/:id", s.GetSubmission)
	api.POST("/submissions/:id/verify", s.VerifySubmission)

	api.GET("/pools", s.ListPools)
	api.GET("/pools/:id", s.GetPool)

	api.GET("/notifications", s.ListNotifications)
	api.POST("/notifications/:id/read", s.MarkNotificationRead)
	api.POST("/notifications/read-all", s.MarkAllNotificationsRead)

	api.GET("/pets/me", s.GetPet)
	api.POST("/pets/select", s.SelectPet)
	api.GET("/shop/items", s.ListShopItems)
	api.POST("/shop/items/:id/purchase", s.PurchaseItem)
	api.POST("/shop/items/:id/equip", s.EquipItem)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.RequireStaff())

	admin.POST("/submissions/:id/approve", s.ApproveSubmission)
	admin.POST("/submissions/:id/reject", s.RejectSubmission)
	admin.POST("/pools", s.CreatePool)
	admin.POST("/reconcile", s.ReconcileTotals)
}
