package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListPools(c *gin.Context) {
	pools, err := s.donationSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pools})
}

func (s *Server) GetPool(c *gin.Context) {
	detail, err := s.donationSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}
