package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/moimlab/moim/internal/account/domain"
	"github.com/moimlab/moim/internal/clock"
	"github.com/moimlab/moim/internal/config"
	notificationdomain "github.com/moimlab/moim/internal/notification/domain"
	"github.com/moimlab/moim/internal/observability/metrics"
	"github.com/moimlab/moim/internal/providers/email"
	"github.com/moimlab/moim/internal/providers/media"
	rewarddomain "github.com/moimlab/moim/internal/reward/domain"
	submissiondomain "github.com/moimlab/moim/internal/submission/domain"
	"github.com/moimlab/moim/internal/verification/domain"
	"github.com/moimlab/moim/internal/vision"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultRejectFeedback = "Your submission did not meet the verification requirements."

type Params struct {
	fx.In

	Config           config.Config
	DB               *gorm.DB
	Log              *zap.Logger
	GenID            *snowflake.Node
	Clock            clock.Clock
	Metrics          *metrics.Metrics
	Scorer           vision.Scorer
	Media            media.Provider
	Email            email.Provider `optional:"true"`
	SubmissionRepo   submissiondomain.Repository
	AccountRepo      accountdomain.Repository
	NotificationRepo notificationdomain.Repository
	Reward           rewarddomain.Engine
}

type Service struct {
	threshold        float64
	provider         string
	db               *gorm.DB
	log              *zap.Logger
	genID            *snowflake.Node
	clock            clock.Clock
	metrics          *metrics.Metrics
	scorer           vision.Scorer
	media            media.Provider
	email            email.Provider
	submissionRepo   submissiondomain.Repository
	accountRepo      accountdomain.Repository
	notificationRepo notificationdomain.Repository
	reward           rewarddomain.Engine
}

func New(p Params) domain.Service {
	return &Service{
		threshold:        p.Config.Vision.ApprovalThreshold,
		provider:         p.Config.Vision.Provider,
		db:               p.DB,
		log:              p.Log.Named("verification.service"),
		genID:            p.GenID,
		clock:            p.Clock,
		metrics:          p.Metrics,
		scorer:           p.Scorer,
		media:            p.Media,
		email:            p.Email,
		submissionRepo:   p.SubmissionRepo,
		accountRepo:      p.AccountRepo,
		notificationRepo: p.NotificationRepo,
		reward:           p.Reward,
	}
}

func (s *Service) Verify(ctx context.Context, submissionID snowflake.ID) error {
	submission, err := s.submissionRepo.FindByID(ctx, s.db, submissionID)
	if err != nil {
		return err
	}
	if submission == nil {
		s.log.Warn("verify called for missing submission",
			zap.String("submission_id", submissionID.String()),
		)
		return nil
	}
	if submission.Status.Terminal() {
		s.log.Info("submission already terminal, skipping",
			zap.String("submission_id", submissionID.String()),
			zap.String("status", string(submission.Status)),
		)
		s.metrics.RecordVerification(ctx, "noop")
		return nil
	}

	scene, selfies, err := s.loadMedia(ctx, submission)
	if err != nil {
		return err
	}
	if scene == nil || len(selfies) == 0 {
		// Recoverable: resubmission or manual review, no state change.
		s.log.Warn("submission media incomplete, staying pending",
			zap.String("submission_id", submissionID.String()),
			zap.Bool("has_scene", scene != nil),
			zap.Int("selfies", len(selfies)),
		)
		s.metrics.RecordVerification(ctx, "pending_missing_media")
		return nil
	}

	sceneBytes, err := s.media.Fetch(ctx, scene.FileURL)
	if err != nil || len(sceneBytes) == 0 {
		s.log.Warn("scene photo unreadable, staying pending",
			zap.String("submission_id", submissionID.String()),
			zap.Error(err),
		)
		s.metrics.RecordVerification(ctx, "pending_missing_media")
		return nil
	}

	best, anyScored := s.scoreSelfies(ctx, submissionID, sceneBytes, selfies)
	if !anyScored {
		s.metrics.RecordVerification(ctx, "pending_service_error")
		return s.notifyServiceError(ctx, submission)
	}

	if best >= s.threshold {
		s.metrics.RecordVerification(ctx, "ai_pass")
		return s.approveAutomatic(ctx, submission, best)
	}

	s.metrics.RecordVerification(ctx, "pending_low_confidence")
	return s.notifyLowConfidence(ctx, submission, best)
}

// loadMedia selects the most-recently-uploaded scene photo and every
// selfie. ListMedia already orders newest first.
func (s *Service) loadMedia(ctx context.Context, submission *submissiondomain.Submission) (*submissiondomain.SubmissionMedia, []*submissiondomain.SubmissionMedia, error) {
	rows, err := s.submissionRepo.ListMedia(ctx, s.db, submission.ID)
	if err != nil {
		return nil, nil, err
	}

	var scene *submissiondomain.SubmissionMedia
	var selfies []*submissiondomain.SubmissionMedia
	for _, row := range rows {
		if row == nil {
			continue
		}
		switch row.Kind {
		case submissiondomain.KindScenePhoto:
			if scene == nil {
				scene = row
			}
		case submissiondomain.KindSelfie:
			selfies = append(selfies, row)
		}
	}
	return scene, selfies, nil
}

// scoreSelfies returns the best score observed and whether any selfie
// scored at all. A failing selfie counts as 0 as long as at least one
// other selfie scores; the scan short-circuits on a threshold cross.
func (s *Service) scoreSelfies(ctx context.Context, submissionID snowflake.ID, scene []byte, selfies []*submissiondomain.SubmissionMedia) (float64, bool) {
	var best float64
	anyScored := false

	for _, selfie := range selfies {
		data, err := s.media.Fetch(ctx, selfie.FileURL)
		if err != nil || len(data) == 0 {
			s.log.Warn("selfie unreadable",
				zap.String("submission_id", submissionID.String()),
				zap.String("media_id", selfie.ID.String()),
				zap.Error(err),
			)
			s.metrics.RecordScoringFailure(ctx, s.provider)
			continue
		}

		score, err := s.scorer.Score(ctx, scene, data)
		if err != nil {
			if !errors.Is(err, vision.ErrScoringUnavailable) {
				s.log.Error("unexpected scorer error",
					zap.String("submission_id", submissionID.String()),
					zap.Error(err),
				)
			}
			s.metrics.RecordScoringFailure(ctx, s.provider)
			continue
		}

		anyScored = true
		if score > best {
			best = score
		}
		if best >= s.threshold {
			break
		}
	}
	return best, anyScored
}

func (s *Service) approveAutomatic(ctx context.Context, submission *submissiondomain.Submission, score float64) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		affected, err := s.submissionRepo.Transition(ctx, tx, submission.ID, submissiondomain.StatusAIPass, nil, nil, nil)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Lost the race against a concurrent transition.
			return nil
		}

		if err := s.reward.GrantForMeeting(ctx, tx, submission.MeetingID); err != nil {
			return err
		}

		meetingID := submission.MeetingID
		return s.notificationRepo.Insert(ctx, tx, &notificationdomain.Notification{
			ID:               s.genID.Generate(),
			UserID:           submission.HostID,
			Type:             notificationdomain.TypeAIApproved,
			Title:            "Submission approved",
			Message:          "Your meetup proof passed automatic verification. Points have been awarded.",
			RelatedMeetingID: &meetingID,
			CreatedAt:        s.clock.Now(),
		})
	})
	if err != nil {
		return fmt.Errorf("failed to approve submission: %w", err)
	}

	s.log.Info("submission auto-approved",
		zap.String("submission_id", submission.ID.String()),
		zap.Float64("score", score),
		zap.Float64("threshold", s.threshold),
	)
	return nil
}

func (s *Service) notifyLowConfidence(ctx context.Context, submission *submissiondomain.Submission, score float64) error {
	s.log.Info("submission below threshold, awaiting manual review",
		zap.String("submission_id", submission.ID.String()),
		zap.Float64("score", score),
		zap.Float64("threshold", s.threshold),
	)
	return s.notifyPending(ctx, submission,
		"Submission needs review",
		"Automatic verification was inconclusive. An administrator will review your submission.",
		"Submission awaiting review",
		fmt.Sprintf("Submission %s scored below the approval threshold and needs manual review.", submission.ID),
	)
}

func (s *Service) notifyServiceError(ctx context.Context, submission *submissiondomain.Submission) error {
	s.log.Error("all scoring attempts failed",
		zap.String("submission_id", submission.ID.String()),
	)
	if err := s.notifyPending(ctx, submission,
		"Submission needs review",
		"Automatic verification is temporarily unavailable. An administrator will review your submission.",
		"AI service error",
		fmt.Sprintf("Submission %s could not be scored (AI service error) and needs manual review.", submission.ID),
	); err != nil {
		return err
	}

	s.emailStaff(ctx, submission)
	return nil
}

// emailStaff escalates a scoring outage over SMTP. Best-effort; the
// in-app staff notification is the system of record.
func (s *Service) emailStaff(ctx context.Context, submission *submissiondomain.Submission) {
	if s.email == nil {
		return
	}
	staff, err := s.accountRepo.ListStaff(ctx, s.db)
	if err != nil {
		s.log.Warn("failed to list staff for escalation mail", zap.Error(err))
		return
	}
	recipients := make([]string, 0, len(staff))
	for _, admin := range staff {
		if admin == nil || strings.TrimSpace(admin.Email) == "" {
			continue
		}
		recipients = append(recipients, admin.Email)
	}
	if len(recipients) == 0 {
		return
	}

	subject := fmt.Sprintf("[moim] submission %s needs manual review", submission.ID)
	body := fmt.Sprintf(
		"<p>Submission <b>%s</b> could not be scored because the AI verification service is unavailable.</p><p>Please review it in the admin console.</p>",
		submission.ID,
	)
	if err := s.email.Send(ctx, recipients, subject, body); err != nil {
		s.log.Warn("failed to send escalation mail",
			zap.String("submission_id", submission.ID.String()),
			zap.Error(err),
		)
	}
}

// notifyPending informs the host once and every staff user once.
func (s *Service) notifyPending(ctx context.Context, submission *submissiondomain.Submission, hostTitle, hostMessage, staffTitle, staffMessage string) error {
	staff, err := s.accountRepo.ListStaff(ctx, s.db)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	meetingID := submission.MeetingID
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.notificationRepo.Insert(ctx, tx, &notificationdomain.Notification{
			ID:               s.genID.Generate(),
			UserID:           submission.HostID,
			Type:             notificationdomain.TypeAdminReview,
			Title:            hostTitle,
			Message:          hostMessage,
			RelatedMeetingID: &meetingID,
			CreatedAt:        now,
		}); err != nil {
			return err
		}

		for _, admin := range staff {
			if admin == nil {
				continue
			}
			if err := s.notificationRepo.Insert(ctx, tx, &notificationdomain.Notification{
				ID:               s.genID.Generate(),
				UserID:           admin.ID,
				Type:             notificationdomain.TypeAdminReviewRequired,
				Title:            staffTitle,
				Message:          staffMessage,
				RelatedMeetingID: &meetingID,
				CreatedAt:        now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) Approve(ctx context.Context, req domain.ApproveRequest) error {
	if req.AdminID == 0 {
		return domain.ErrInvalidAdmin
	}
	submissionID, err := s.parseID(req.SubmissionID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.submissionRepo.FindByID(ctx, tx, submissionID)
		if err != nil {
			return err
		}
		if submission == nil {
			return domain.ErrNotFound
		}

		now := s.clock.Now()
		adminID := req.AdminID
		affected, err := s.submissionRepo.Transition(ctx, tx, submissionID, submissiondomain.StatusAdminPass, nil, &adminID, &now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrAlreadyProcessed
		}

		if err := s.reward.GrantForMeeting(ctx, tx, submission.MeetingID); err != nil {
			return err
		}

		meetingID := submission.MeetingID
		return s.notificationRepo.Insert(ctx, tx, &notificationdomain.Notification{
			ID:               s.genID.Generate(),
			UserID:           submission.HostID,
			Type:             notificationdomain.TypeAIApproved,
			Title:            "Submission approved",
			Message:          "An administrator approved your meetup proof. Points have been awarded.",
			RelatedMeetingID: &meetingID,
			CreatedAt:        now,
		})
	})
	if err != nil {
		return err
	}

	s.metrics.RecordVerification(ctx, "admin_pass")
	s.log.Info("submission approved by admin",
		zap.String("submission_id", submissionID.String()),
		zap.String("admin_id", req.AdminID.String()),
	)
	return nil
}

func (s *Service) Reject(ctx context.Context, req domain.RejectRequest) error {
	if req.AdminID == 0 {
		return domain.ErrInvalidAdmin
	}
	submissionID, err := s.parseID(req.SubmissionID)
	if err != nil {
		return err
	}

	feedback := strings.TrimSpace(req.Feedback)
	if feedback == "" {
		feedback = defaultRejectFeedback
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.submissionRepo.FindByID(ctx, tx, submissionID)
		if err != nil {
			return err
		}
		if submission == nil {
			return domain.ErrNotFound
		}

		now := s.clock.Now()
		adminID := req.AdminID
		affected, err := s.submissionRepo.Transition(ctx, tx, submissionID, submissiondomain.StatusRejected, &feedback, &adminID, &now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrAlreadyProcessed
		}

		meetingID := submission.MeetingID
		return s.notificationRepo.Insert(ctx, tx, &notificationdomain.Notification{
			ID:               s.genID.Generate(),
			UserID:           submission.HostID,
			Type:             notificationdomain.TypeAdminRejected,
			Title:            "Submission rejected",
			Message:          feedback,
			RelatedMeetingID: &meetingID,
			CreatedAt:        now,
		})
	})
	if err != nil {
		return err
	}

	s.metrics.RecordVerification(ctx, "rejected")
	s.log.Info("submission rejected by admin",
		zap.String("submission_id", submissionID.String()),
		zap.String("admin_id", req.AdminID.String()),
	)
	return nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
