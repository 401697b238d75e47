package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	accountdomain "github.com/moimlab/moim/internal/account/domain"
)

func (s *Server) profileRequest(userID snowflake.ID) accountdomain.GetProfileRequest {
	return accountdomain.GetProfileRequest{ID: userID.String()}
}

type createUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.accountSvc.Create(c.Request.Context(), accountdomain.CreateUserRequest{
		Email:    strings.TrimSpace(req.Email),
		Username: strings.TrimSpace(req.Username),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) GetProfile(c *gin.Context) {
	userID, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	profile, err := s.accountSvc.GetProfile(c.Request.Context(), s.profileRequest(userID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

type reconcileRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) ReconcileTotals(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	rows, err := s.accountSvc.Reconcile(c.Request.Context(), strings.TrimSpace(req.UserID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"reconciled": rows}})
}
