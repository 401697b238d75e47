package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/moimlab/moim/internal/account/domain"
	"github.com/moimlab/moim/internal/clock"
	donationdomain "github.com/moimlab/moim/internal/donation/domain"
	ledgerdomain "github.com/moimlab/moim/internal/ledger/domain"
	meetingdomain "github.com/moimlab/moim/internal/meeting/domain"
	notificationdomain "github.com/moimlab/moim/internal/notification/domain"
	"github.com/moimlab/moim/internal/observability/metrics"
	petdomain "github.com/moimlab/moim/internal/pet/domain"
	"github.com/moimlab/moim/internal/reward/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log              *zap.Logger
	GenID            *snowflake.Node
	Clock            clock.Clock
	Metrics          *metrics.Metrics
	MeetingService   meetingdomain.Service
	AccountRepo      accountdomain.Repository
	LedgerRepo       ledgerdomain.Repository
	PetService       petdomain.Service
	NotificationRepo notificationdomain.Repository
	DonationService  donationdomain.Service
}

type Service struct {
	log              *zap.Logger
	genID            *snowflake.Node
	clock            clock.Clock
	metrics          *metrics.Metrics
	meetingService   meetingdomain.Service
	accountRepo      accountdomain.Repository
	ledgerRepo       ledgerdomain.Repository
	petService       petdomain.Service
	notificationRepo notificationdomain.Repository
	donationService  donationdomain.Service
}

func New(p Params) domain.Engine {
	return &Service{
		log:              p.Log.Named("reward.engine"),
		genID:            p.GenID,
		clock:            p.Clock,
		metrics:          p.Metrics,
		meetingService:   p.MeetingService,
		accountRepo:      p.AccountRepo,
		ledgerRepo:       p.LedgerRepo,
		petService:       p.PetService,
		notificationRepo: p.NotificationRepo,
		donationService:  p.DonationService,
	}
}

func (s *Service) GrantForMeeting(ctx context.Context, tx *gorm.DB, meetingID snowflake.ID) error {
	meeting, participants, err := s.meetingService.RewardSet(ctx, tx, meetingID)
	if err != nil {
		return fmt.Errorf("failed to resolve reward set: %w", err)
	}

	if err := s.grantOne(ctx, tx, meeting, meeting.HostID, ledgerdomain.ReasonAdminApproval); err != nil {
		return err
	}
	for _, userID := range participants {
		if err := s.grantOne(ctx, tx, meeting, userID, ledgerdomain.ReasonMeetingParticipation); err != nil {
			return err
		}
	}

	total := domain.PointsPerGrant * int64(1+len(participants))
	if err := s.donationService.AddPoints(ctx, tx, total); err != nil {
		return fmt.Errorf("failed to feed donation pool: %w", err)
	}

	s.log.Info("meeting rewards granted",
		zap.String("meeting_id", meetingID.String()),
		zap.Int("reward_set_size", 1+len(participants)),
		zap.Int64("total_points", total),
	)
	return nil
}

func (s *Service) grantOne(ctx context.Context, tx *gorm.DB, meeting *meetingdomain.Meeting, userID snowflake.ID, reason ledgerdomain.Reason) error {
	now := s.clock.Now()
	meetingID := meeting.ID

	if err := s.ledgerRepo.Append(ctx, tx, &ledgerdomain.PointsHistory{
		ID:           s.genID.Generate(),
		UserID:       userID,
		MeetingID:    &meetingID,
		PointsChange: domain.PointsPerGrant,
		Reason:       reason,
		CreatedAt:    now,
	}); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	if err := s.accountRepo.IncrementPoints(ctx, tx, userID, domain.PointsPerGrant); err != nil {
		return fmt.Errorf("failed to increment cached total: %w", err)
	}
	s.metrics.RecordLedgerEntry(ctx, string(reason))

	xp, err := s.petService.GrantXP(ctx, tx, userID, domain.PointsPerGrant)
	if err != nil {
		return fmt.Errorf("failed to grant pet xp: %w", err)
	}

	if err := s.notificationRepo.Insert(ctx, tx, &notificationdomain.Notification{
		ID:               s.genID.Generate(),
		UserID:           userID,
		Type:             notificationdomain.TypePointsEarned,
		Title:            "Points earned",
		Message:          fmt.Sprintf("You earned %d points for %q.", domain.PointsPerGrant, meeting.Title),
		RelatedMeetingID: &meetingID,
		CreatedAt:        now,
	}); err != nil {
		return err
	}

	// One level-up notification per grant call, however many levels the
	// xp cascade crossed.
	if xp.LevelsGained > 0 {
		if err := s.notificationRepo.Insert(ctx, tx, &notificationdomain.Notification{
			ID:               s.genID.Generate(),
			UserID:           userID,
			Type:             notificationdomain.TypeLevelUp,
			Title:            "Level up!",
			Message:          fmt.Sprintf("Your pet reached level %d.", xp.Pet.CurrentLevel),
			RelatedMeetingID: &meetingID,
			CreatedAt:        now,
		}); err != nil {
			return err
		}
	}

	s.metrics.RecordRewardGrant(ctx, string(reason))
	return nil
}
