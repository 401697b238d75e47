package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/internal/clock"
	"github.com/moimlab/moim/internal/providers/media"
	"github.com/moimlab/moim/internal/submission/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
	Media media.Provider
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	media media.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("submission.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		media: p.Media,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.Submission, error) {
	if req.HostID == 0 {
		return domain.Submission{}, domain.ErrInvalidUser
	}
	meetingID, err := s.parseID(req.MeetingID)
	if err != nil {
		return domain.Submission{}, err
	}
	for _, upload := range req.Media {
		if upload.Kind != domain.KindScenePhoto && upload.Kind != domain.KindSelfie {
			return domain.Submission{}, domain.ErrInvalidMedia
		}
		if len(upload.Data) == 0 {
			return domain.Submission{}, domain.ErrInvalidMedia
		}
	}

	now := s.clock.Now()
	submission := domain.Submission{
		ID:          s.genID.Generate(),
		MeetingID:   meetingID,
		HostID:      req.HostID,
		Status:      domain.StatusPending,
		TextSummary: req.TextSummary,
		CreatedAt:   now,
	}

	// Files land on disk before the transaction; an aborted insert leaves
	// orphaned files rather than rows pointing at missing files.
	type stored struct {
		upload  domain.MediaUpload
		fileURL string
	}
	storedMedia := make([]stored, 0, len(req.Media))
	for i, upload := range req.Media {
		name := fmt.Sprintf("%s/%d_%s_%s", submission.ID.String(), i, upload.Kind, upload.FileName)
		fileURL, err := s.media.Save(ctx, name, upload.Data)
		if err != nil {
			return domain.Submission{}, err
		}
		storedMedia = append(storedMedia, stored{upload: upload, fileURL: fileURL})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		active, err := s.repo.CountActive(ctx, tx, meetingID, req.HostID)
		if err != nil {
			return err
		}
		if active > 0 {
			return domain.ErrActiveSubmission
		}

		if err := s.repo.Insert(ctx, tx, &submission); err != nil {
			return err
		}
		for _, m := range storedMedia {
			row := domain.SubmissionMedia{
				ID:           s.genID.Generate(),
				SubmissionID: submission.ID,
				UserID:       m.upload.UserID,
				Kind:         m.upload.Kind,
				FileURL:      m.fileURL,
				Metadata: datatypes.JSONMap{
					"original_name": m.upload.FileName,
					"size_bytes":    len(m.upload.Data),
				},
				CreatedAt: now,
			}
			if err := s.repo.InsertMedia(ctx, tx, &row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Submission{}, err
	}

	s.log.Info("submission created",
		zap.String("submission_id", submission.ID.String()),
		zap.String("meeting_id", meetingID.String()),
		zap.Int("media_count", len(storedMedia)),
	)
	return submission, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.SubmissionDetail, error) {
	submissionID, err := s.parseID(id)
	if err != nil {
		return domain.SubmissionDetail{}, err
	}

	submission, err := s.repo.FindByID(ctx, s.db, submissionID)
	if err != nil {
		return domain.SubmissionDetail{}, err
	}
	if submission == nil {
		return domain.SubmissionDetail{}, domain.ErrNotFound
	}

	rows, err := s.repo.ListMedia(ctx, s.db, submissionID)
	if err != nil {
		return domain.SubmissionDetail{}, err
	}
	media := make([]domain.SubmissionMedia, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		media = append(media, *row)
	}

	return domain.SubmissionDetail{Submission: *submission, Media: media}, nil
}

func (s *Service) ListForMeeting(ctx context.Context, meetingID string) ([]domain.Submission, error) {
	id, err := s.parseID(meetingID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListForMeeting(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	submissions := make([]domain.Submission, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		submissions = append(submissions, *row)
	}
	return submissions, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
