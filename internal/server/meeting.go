package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	meetingdomain "github.com/moimlab/moim/internal/meeting/domain"
	"github.com/moimlab/moim/pkg/db/pagination"
)

type createMeetingRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	LocationName   string `json:"location_name"`
	LocationCoords string `json:"location_coords"`
	MeetingDate    string `json:"meeting_date"`
	Capacity       int    `json:"capacity"`
}

func (s *Server) CreateMeeting(c *gin.Context) {
	userID, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var meetingDate time.Time
	if raw := strings.TrimSpace(req.MeetingDate); raw != "" {
		meetingDate, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("meeting_date", "invalid_meeting_date", "invalid meeting_date"))
			return
		}
	}

	meeting, err := s.meetingSvc.Create(c.Request.Context(), meetingdomain.CreateMeetingRequest{
		HostID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		LocationName:   req.LocationName,
		LocationCoords: req.LocationCoords,
		MeetingDate:    meetingDate,
		Capacity:       req.Capacity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": meeting})
}

func (s *Server) ListMeetings(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.meetingSvc.List(c.Request.Context(), meetingdomain.ListMeetingsRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMeeting(c *gin.Context) {
	meeting, err := s.meetingSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": meeting})
}

func (s *Server) JoinMeeting(c *gin.Context) {
	userID, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	row, err := s.meetingSvc.Join(c.Request.Context(), meetingdomain.JoinMeetingRequest{
		MeetingID: c.Param("id"),
		UserID:    userID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": row})
}
