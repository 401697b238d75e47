package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	petdomain "github.com/moimlab/moim/internal/pet/domain"
)

func (s *Server) GetPet(c *gin.Context) {
	userID, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pet, err := s.petSvc.GetForUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pet})
}

type selectPetRequest struct {
	PetType string `json:"pet_type"`
}

func (s *Server) SelectPet(c *gin.Context) {
	userID, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req selectPetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pet, err := s.petSvc.Select(c.Request.Context(), petdomain.SelectRequest{
		UserID:  userID,
		PetType: req.PetType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pet})
}

func (s *Server) ListShopItems(c *gin.Context) {
	items, err := s.petSvc.ListItems(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) PurchaseItem(c *gin.Context) {
	userID, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	row, err := s.petSvc.Purchase(c.Request.Context(), petdomain.PurchaseRequest{
		UserID: userID,
		ItemID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": row})
}

type equipItemRequest struct {
	Equipped *bool `json:"equipped"`
}

func (s *Server) EquipItem(c *gin.Context) {
	userID, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	equipped := true
	var req equipItemRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Equipped != nil {
		equipped = *req.Equipped
	}

	err = s.petSvc.Equip(c.Request.Context(), petdomain.EquipRequest{
		UserID:   userID,
		ItemID:   c.Param("id"),
		Equipped: equipped,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"equipped": equipped}})
}
