package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	donationdomain "github.com/moimlab/moim/internal/donation/domain"
	verificationdomain "github.com/moimlab/moim/internal/verification/domain"
)

func (s *Server) ApproveSubmission(c *gin.Context) {
	err := s.verificationSvc.Approve(c.Request.Context(), verificationdomain.ApproveRequest{
		SubmissionID: c.Param("id"),
		AdminID:      adminFromContext(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "admin_pass"}})
}

type rejectSubmissionRequest struct {
	Feedback string `json:"feedback"`
}

func (s *Server) RejectSubmission(c *gin.Context) {
	var req rejectSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	err := s.verificationSvc.Reject(c.Request.Context(), verificationdomain.RejectRequest{
		SubmissionID: c.Param("id"),
		AdminID:      adminFromContext(c),
		Feedback:     req.Feedback,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "rejected"}})
}

type createPoolRequest struct {
	Title       string `json:"title"`
	Sponsor     string `json:"sponsor"`
	Description string `json:"description"`
	GoalPoints  int64  `json:"goal_points"`
}

func (s *Server) CreatePool(c *gin.Context) {
	var req createPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pool, err := s.donationSvc.Create(c.Request.Context(), donationdomain.CreatePoolRequest{
		Title:       req.Title,
		Sponsor:     req.Sponsor,
		Description: req.Description,
		GoalPoints:  req.GoalPoints,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pool})
}
