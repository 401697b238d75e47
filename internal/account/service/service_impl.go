package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/internal/account/domain"
	ledgerdomain "github.com/moimlab/moim/internal/ledger/domain"
	"github.com/moimlab/moim/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	LedgerRepo ledgerdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	ledgerRepo ledgerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("account.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		ledgerRepo: p.LedgerRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return domain.User{}, domain.ErrInvalidUsername
	}

	user := domain.User{
		ID:        s.genID.Generate(),
		Email:     email,
		Username:  username,
		IsStaff:   req.IsStaff,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.User{}, domain.ErrDuplicateUser
		}
		return domain.User{}, err
	}

	return user, nil
}

func (s *Service) GetProfile(ctx context.Context, req domain.GetProfileRequest) (domain.Profile, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Profile{}, err
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if user == nil {
		return domain.Profile{}, domain.ErrNotFound
	}

	ledgerTotal, err := s.ledgerRepo.SumForUser(ctx, s.db, id)
	if err != nil {
		return domain.Profile{}, err
	}

	if ledgerTotal != user.TotalPoints {
		s.log.Warn("total_points cache drift detected",
			zap.String("user_id", id.String()),
			zap.Int64("cached", user.TotalPoints),
			zap.Int64("ledger", ledgerTotal),
		)
	}

	return domain.Profile{User: *user, LedgerTotal: ledgerTotal}, nil
}

func (s *Service) Reconcile(ctx context.Context, id string) (int64, error) {
	var userID snowflake.ID
	if strings.TrimSpace(id) != "" {
		parsed, err := s.parseID(id)
		if err != nil {
			return 0, err
		}
		userID = parsed
	}

	affected, err := s.repo.ReconcileTotals(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}

	s.log.Info("reconciled total_points from ledger",
		zap.Int64("rows", affected),
	)
	return affected, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
