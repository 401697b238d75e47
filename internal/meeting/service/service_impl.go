package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/moimlab/moim/internal/clock"
	"github.com/moimlab/moim/internal/meeting/domain"
	"github.com/moimlab/moim/pkg/db"
	"github.com/moimlab/moim/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("meeting.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateMeetingRequest) (domain.Meeting, error) {
	if req.HostID == 0 {
		return domain.Meeting{}, domain.ErrInvalidUser
	}
	if strings.TrimSpace(req.Title) == "" {
		return domain.Meeting{}, domain.ErrInvalidTitle
	}

	now := s.clock.Now()
	meeting := domain.Meeting{
		ID:             s.genID.Generate(),
		HostID:         req.HostID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		LocationName:   req.LocationName,
		LocationCoords: req.LocationCoords,
		MeetingDate:    req.MeetingDate,
		Capacity:       req.Capacity,
		CreatedAt:      now,
	}
	if meeting.MeetingDate.IsZero() {
		meeting.MeetingDate = now
	}

	if err := s.repo.Insert(ctx, s.db, &meeting); err != nil {
		return domain.Meeting{}, err
	}

	s.log.Info("meeting created",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("host_id", meeting.HostID.String()),
	)
	return meeting, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Meeting, error) {
	meetingID, err := s.parseID(id)
	if err != nil {
		return domain.Meeting{}, err
	}
	meeting, err := s.repo.FindByID(ctx, s.db, meetingID)
	if err != nil {
		return domain.Meeting{}, err
	}
	if meeting == nil {
		return domain.Meeting{}, domain.ErrNotFound
	}
	return *meeting, nil
}

func (s *Service) List(ctx context.Context, req domain.ListMeetingsRequest) (domain.ListMeetingsResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	items, err := s.repo.List(ctx, s.db, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListMeetingsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(m *domain.Meeting) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        m.ID.String(),
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	meetings := make([]domain.Meeting, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		meetings = append(meetings, *item)
	}

	resp := domain.ListMeetingsResponse{Meetings: meetings}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Join(ctx context.Context, req domain.JoinMeetingRequest) (domain.MeetingParticipant, error) {
	if req.UserID == 0 {
		return domain.MeetingParticipant{}, domain.ErrInvalidUser
	}
	meetingID, err := s.parseID(req.MeetingID)
	if err != nil {
		return domain.MeetingParticipant{}, err
	}

	var row domain.MeetingParticipant
	err = s.db.Transaction(func(tx *gorm.DB) error {
		meeting, err := s.repo.FindByID(ctx, tx, meetingID)
		if err != nil {
			return err
		}
		if meeting == nil {
			return domain.ErrNotFound
		}
		if meeting.Capacity > 0 {
			count, err := s.repo.CountParticipants(ctx, tx, meetingID)
			if err != nil {
				return err
			}
			if count >= int64(meeting.Capacity) {
				return domain.ErrMeetingFull
			}
		}

		row = domain.MeetingParticipant{
			ID:        s.genID.Generate(),
			MeetingID: meetingID,
			UserID:    req.UserID,
			JoinedAt:  s.clock.Now(),
		}
		if err := s.repo.InsertParticipant(ctx, tx, &row); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrAlreadyJoined
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.MeetingParticipant{}, err
	}
	return row, nil
}

func (s *Service) RewardSet(ctx context.Context, tx *gorm.DB, meetingID snowflake.ID) (*domain.Meeting, []snowflake.ID, error) {
	meeting, err := s.repo.FindByID(ctx, tx, meetingID)
	if err != nil {
		return nil, nil, err
	}
	if meeting == nil {
		return nil, nil, domain.ErrNotFound
	}

	participantIDs, err := s.repo.ListParticipantIDs(ctx, tx, meetingID)
	if err != nil {
		return nil, nil, err
	}

	seen := map[snowflake.ID]struct{}{meeting.HostID: {}}
	set := make([]snowflake.ID, 0, len(participantIDs))
	for _, id := range participantIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		set = append(set, id)
	}
	return meeting, set, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
