package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/internal/clock"
	"github.com/moimlab/moim/internal/donation/domain"
	ledgerdomain "github.com/moimlab/moim/internal/ledger/domain"
	notificationdomain "github.com/moimlab/moim/internal/notification/domain"
	"github.com/moimlab/moim/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	GenID            *snowflake.Node
	Clock            clock.Clock
	Metrics          *metrics.Metrics
	Repo             domain.Repository
	LedgerRepo       ledgerdomain.Repository
	NotificationRepo notificationdomain.Repository
}

type Service struct {
	db               *gorm.DB
	log              *zap.Logger
	genID            *snowflake.Node
	clock            clock.Clock
	metrics          *metrics.Metrics
	repo             domain.Repository
	ledgerRepo       ledgerdomain.Repository
	notificationRepo notificationdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:               p.DB,
		log:              p.Log.Named("donation.service"),
		genID:            p.GenID,
		clock:            p.Clock,
		metrics:          p.Metrics,
		repo:             p.Repo,
		ledgerRepo:       p.LedgerRepo,
		notificationRepo: p.NotificationRepo,
	}
}

func (s *Service) AddPoints(ctx context.Context, tx *gorm.DB, amount int64) error {
	if amount <= 0 {
		return nil
	}

	pool, err := s.repo.FindLatestOpen(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to find open pool: %w", err)
	}
	if pool == nil {
		return nil
	}

	if err := s.repo.AddPoints(ctx, tx, pool.ID, amount); err != nil {
		return err
	}

	// Re-read after the increment; the counter may have been advanced by
	// a concurrent grant in between.
	pool, err = s.repo.FindByID(ctx, tx, pool.ID)
	if err != nil {
		return fmt.Errorf("failed to reload pool: %w", err)
	}
	if pool == nil || pool.CurrentPoints < pool.GoalPoints {
		return nil
	}

	affected, err := s.repo.Complete(ctx, tx, pool.ID, s.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to complete pool: %w", err)
	}
	if affected == 0 {
		// Another transaction completed it first.
		return nil
	}

	s.log.Info("donation pool completed",
		zap.String("pool_id", pool.ID.String()),
		zap.Int64("goal_points", pool.GoalPoints),
		zap.Int64("current_points", pool.CurrentPoints),
	)
	s.metrics.RecordPoolCompletion(ctx)

	return s.archive(ctx, tx, pool)
}

// archive snapshots every positive contributor since the pool opened.
// Contribution covers all positive ledger activity in the window, not
// only activity tied to this pool; inherited business rule.
func (s *Service) archive(ctx context.Context, tx *gorm.DB, pool *domain.DonationPool) error {
	contributions, err := s.ledgerRepo.PositiveContributionsSince(ctx, tx, pool.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to load contributions: %w", err)
	}

	now := s.clock.Now()
	archived := 0
	for _, c := range contributions {
		affected, err := s.repo.InsertHistory(ctx, tx, &domain.DonationHistory{
			ID:                s.genID.Generate(),
			PoolID:            pool.ID,
			UserID:            c.UserID,
			ContributedPoints: c.Total,
			CreatedAt:         now,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			// Snapshot row already exists; retry-safe.
			continue
		}
		archived++

		poolID := pool.ID
		if err := s.notificationRepo.Insert(ctx, tx, &notificationdomain.Notification{
			ID:            s.genID.Generate(),
			UserID:        c.UserID,
			Type:          notificationdomain.TypeDonationCompleted,
			Title:         "Donation goal reached",
			Message:       fmt.Sprintf("%q reached its goal. Your points contributed %d to the donation.", pool.Title, c.Total),
			RelatedPoolID: &poolID,
			CreatedAt:     now,
		}); err != nil {
			return err
		}
	}

	s.log.Info("donation pool archived",
		zap.String("pool_id", pool.ID.String()),
		zap.Int("contributors", len(contributions)),
		zap.Int("archived", archived),
	)
	return nil
}

func (s *Service) Create(ctx context.Context, req domain.CreatePoolRequest) (domain.DonationPool, error) {
	if strings.TrimSpace(req.Title) == "" {
		return domain.DonationPool{}, domain.ErrInvalidTitle
	}
	if req.GoalPoints <= 0 {
		return domain.DonationPool{}, domain.ErrInvalidGoal
	}

	pool := domain.DonationPool{
		ID:          s.genID.Generate(),
		Title:       strings.TrimSpace(req.Title),
		Sponsor:     req.Sponsor,
		Description: req.Description,
		GoalPoints:  req.GoalPoints,
		Status:      domain.PoolStatusOpen,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, &pool); err != nil {
		return domain.DonationPool{}, err
	}

	s.log.Info("donation pool created",
		zap.String("pool_id", pool.ID.String()),
		zap.Int64("goal_points", pool.GoalPoints),
	)
	return pool, nil
}

func (s *Service) List(ctx context.Context) ([]domain.PoolDetail, error) {
	pools, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	details := make([]domain.PoolDetail, 0, len(pools))
	for _, pool := range pools {
		if pool == nil {
			continue
		}
		details = append(details, domain.PoolDetail{
			Pool:     *pool,
			Progress: pool.Progress(),
		})
	}
	return details, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.PoolDetail, error) {
	poolID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || poolID == 0 {
		return domain.PoolDetail{}, domain.ErrInvalidID
	}

	pool, err := s.repo.FindByID(ctx, s.db, poolID)
	if err != nil {
		return domain.PoolDetail{}, err
	}
	if pool == nil {
		return domain.PoolDetail{}, domain.ErrNotFound
	}

	detail := domain.PoolDetail{Pool: *pool, Progress: pool.Progress()}
	if pool.Status == domain.PoolStatusCompleted {
		rows, err := s.repo.ListHistory(ctx, s.db, poolID)
		if err != nil {
			return domain.PoolDetail{}, err
		}
		for _, row := range rows {
			if row == nil {
				continue
			}
			detail.Contributors = append(detail.Contributors, *row)
		}
	}
	return detail, nil
}
