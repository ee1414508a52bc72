package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"ridepool/internal/domain"
	"ridepool/internal/middleware"
	"ridepool/internal/models"
	"ridepool/internal/repository"
	"ridepool/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

// ChatHandler is thin pass-through persistence for ride chat: message rows
// in the data store, audio attachments in the object store. Access requires
// being the ride owner or a paid participant.
type ChatHandler struct {
	rideRepo        *repository.RideRepository
	participantRepo *repository.ParticipantRepository
	messageRepo     *repository.MessageRepository
	cloud           cloudinary.Client
}

func NewChatHandler(
	rideRepo *repository.RideRepository,
	participantRepo *repository.ParticipantRepository,
	messageRepo *repository.MessageRepository,
	cloud cloudinary.Client,
) *ChatHandler {
	return &ChatHandler{
		rideRepo:        rideRepo,
		participantRepo: participantRepo,
		messageRepo:     messageRepo,
		cloud:           cloud,
	}
}

func (h *ChatHandler) authorize(c *gin.Context) (rideID uint, userID uint, ok bool) {
	userID = middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ride id"})
		return 0, 0, false
	}
	rideID = uint(id)
	ride, err := h.rideRepo.GetByID(c.Request.Context(), rideID)
	if err != nil {
		if errors.Is(err, repository.ErrRideNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ride not found"})
			return 0, 0, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return 0, 0, false
	}
	if ride.OwnerID == userID {
		return rideID, userID, true
	}
	p, err := h.participantRepo.GetByRideAndUser(rideID, userID)
	if err != nil || !p.Paid {
		c.JSON(http.StatusForbidden, gin.H{"error": "chat requires a paid seat"})
		return 0, 0, false
	}
	return rideID, userID, true
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	rideID, _, ok := h.authorize(c)
	if !ok {
		return
	}
	limit, offset := pagination(c, 50)
	list, err := h.messageRepo.ListByRide(rideID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": list})
}

func (h *ChatHandler) PostMessage(c *gin.Context) {
	rideID, userID, ok := h.authorize(c)
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg := &models.RideMessage{
		RideID:   rideID,
		SenderID: userID,
		Kind:     domain.MessageKindText,
		Body:     req.Body,
	}
	if err := h.messageRepo.Create(msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "message create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// PostImage uploads an image to the object store and records a message row
// pointing at it.
func (h *ChatHandler) PostImage(c *gin.Context) {
	rideID, userID, ok := h.authorize(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	folder := "ridepool/chat/" + strconv.FormatUint(uint64(rideID), 10)
	publicID := "img_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	url, err := h.cloud.UploadImage(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	msg := &models.RideMessage{
		RideID:   rideID,
		SenderID: userID,
		Kind:     domain.MessageKindImage,
		MediaURL: url,
	}
	if err := h.messageRepo.Create(msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "message create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// PostAudio uploads an audio clip to the object store and records a message
// row pointing at it.
func (h *ChatHandler) PostAudio(c *gin.Context) {
	rideID, userID, ok := h.authorize(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	folder := "ridepool/chat/" + strconv.FormatUint(uint64(rideID), 10)
	publicID := "audio_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	url, err := h.cloud.UploadAudio(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	msg := &models.RideMessage{
		RideID:   rideID,
		SenderID: userID,
		Kind:     domain.MessageKindAudio,
		MediaURL: url,
	}
	if err := h.messageRepo.Create(msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "message create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
