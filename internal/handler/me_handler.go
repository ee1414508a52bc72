package handler

import (
	"net/http"

	"ridepool/internal/middleware"
	"ridepool/internal/repository"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	userRepo    *repository.UserRepository
	rideRepo    *repository.RideRepository
	historyRepo *repository.HistoryRepository
}

func NewMeHandler(userRepo *repository.UserRepository, rideRepo *repository.RideRepository, historyRepo *repository.HistoryRepository) *MeHandler {
	return &MeHandler{userRepo: userRepo, rideRepo: rideRepo, historyRepo: historyRepo}
}

func (h *MeHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetOrCreate(userID, middleware.GetEmail(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *MeHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Name      *string `json:"name"`
		Phone     *string `json:"phone"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	if _, err := h.userRepo.GetOrCreate(userID, middleware.GetEmail(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile lookup failed"})
		return
	}
	if err := h.userRepo.UpdateProfile(userID, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetRides returns rides the user owns and rides they joined.
func (h *MeHandler) GetRides(c *gin.Context) {
	userID := middleware.GetUserID(c)
	owned, err := h.rideRepo.ListByOwner(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	joined, err := h.rideRepo.ListJoined(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"owned": owned, "joined": joined})
}

func (h *MeHandler) GetHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c, 20)
	list, err := h.historyRepo.ListByUserID(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": list})
}
