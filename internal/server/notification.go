package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	notificationdomain "github.com/moimlab/moim/internal/notification/domain"
	"github.com/moimlab/moim/pkg/db/pagination"
)

func (s *Server) ListNotifications(c *gin.Context) {
	userID, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query struct {
		pagination.Pagination
		UnreadOnly bool `form:"unread_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.notificationSvc.List(c.Request.Context(), notificationdomain.ListRequest{
		UserID:     userID,
		UnreadOnly: query.UnreadOnly,
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	userID, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.notificationSvc.MarkRead(c.Request.Context(), notificationdomain.MarkReadRequest{
		UserID: userID,
		ID:     c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"read": true}})
}

func (s *Server) MarkAllNotificationsRead(c *gin.Context) {
	userID, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	updated, err := s.notificationSvc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"updated": updated}})
}
