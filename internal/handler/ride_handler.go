package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"ridepool/internal/domain"
	"ridepool/internal/middleware"
	"ridepool/internal/repository"
	"ridepool/internal/service"

	"github.com/gin-gonic/gin"
)

type RideHandler struct {
	bookingSvc      *service.BookingService
	rideRepo        *repository.RideRepository
	participantRepo *repository.ParticipantRepository
	notifSvc        *service.NotificationService
}

func NewRideHandler(
	bookingSvc *service.BookingService,
	rideRepo *repository.RideRepository,
	participantRepo *repository.ParticipantRepository,
	notifSvc *service.NotificationService,
) *RideHandler {
	return &RideHandler{
		bookingSvc:      bookingSvc,
		rideRepo:        rideRepo,
		participantRepo: participantRepo,
		notifSvc:        notifSvc,
	}
}

func (h *RideHandler) Create(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	var req struct {
		Origin        string    `json:"origin" binding:"required"`
		Destination   string    `json:"destination" binding:"required"`
		DepartureTime time.Time `json:"departure_time" binding:"required"`
		TotalSeats    int       `json:"total_seats" binding:"required,min=1"`
		PriceCents    int64     `json:"price_cents" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ride, err := h.bookingSvc.CreateRide(c.Request.Context(), service.CreateRideInput{
		OwnerID:       ownerID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		TotalSeats:    req.TotalSeats,
		PriceCents:    req.PriceCents,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRideInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ride input"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ride create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ride": ride})
}

func (h *RideHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	rides, err := h.rideRepo.ListActive(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides})
}

func (h *RideHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ride id"})
		return
	}
	ride, err := h.rideRepo.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrRideNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ride not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ride": ride})
}

func (h *RideHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code required"})
		return
	}
	ride, err := h.rideRepo.GetByDisplayCode(code)
	if err != nil {
		if errors.Is(err, repository.ErrRideNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ride not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ride": ride})
}

// Join reserves a seat and returns the private join code plus the checkout
// redirect. 409 distinguishes "no seats" from "already joined".
func (h *RideHandler) Join(c *gin.Context) {
	userID := middleware.GetUserID(c)
	rideID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if rideID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ride id"})
		return
	}
	var req struct {
		AmountDueCents int64 `json:"amount_due_cents"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	res, err := h.bookingSvc.Join(c.Request.Context(), uint(rideID), userID, req.AmountDueCents)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRideNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "ride not found"})
		case errors.Is(err, repository.ErrRideNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": "ride is not active"})
		case errors.Is(err, repository.ErrSeatsExhausted):
			c.JSON(http.StatusConflict, gin.H{"error": "no seats left"})
		case errors.Is(err, repository.ErrAlreadyJoined):
			c.JSON(http.StatusConflict, gin.H{"error": "already joined"})
		case errors.Is(err, service.ErrOwnRide):
			c.JSON(http.StatusConflict, gin.H{"error": "cannot join your own ride"})
		case errors.Is(err, service.ErrCheckoutUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "join failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"participant":  res.Participant,
		"join_code":    res.JoinCode,
		"session_id":   res.SessionID,
		"checkout_url": res.CheckoutURL,
	})
}

// Participants lists a ride's participants for its owner.
func (h *RideHandler) Participants(c *gin.Context) {
	userID := middleware.GetUserID(c)
	rideID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	ride, err := h.rideRepo.GetByID(c.Request.Context(), uint(rideID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ride not found"})
		return
	}
	if ride.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	list, err := h.participantRepo.ListByRide(uint(rideID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": list})
}

func (h *RideHandler) Cancel(c *gin.Context) {
	h.updateStatus(c, domain.RideStatusCancelled)
}

func (h *RideHandler) Complete(c *gin.Context) {
	h.updateStatus(c, domain.RideStatusCompleted)
}

func (h *RideHandler) updateStatus(c *gin.Context, status string) {
	userID := middleware.GetUserID(c)
	rideID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if rideID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ride id"})
		return
	}
	if err := h.rideRepo.UpdateStatus(uint(rideID), userID, status); err != nil {
		if errors.Is(err, repository.ErrRideNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ride not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if status == domain.RideStatusCancelled {
		rid := uint(rideID)
		if list, err := h.participantRepo.ListByRide(rid); err == nil {
			for _, p := range list {
				h.notifSvc.Notify(p.UserID, domain.NotifRideCancelled, "Ride cancelled",
					"A ride you joined was cancelled by its owner.",
					map[string]interface{}{"ride_id": rid})
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
