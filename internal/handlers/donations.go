package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodcycle-realtime/internal/models"
	"foodcycle-realtime/internal/observability"
	"foodcycle-realtime/internal/realtime"
	"foodcycle-realtime/internal/repositories"
)

// DonationHandler manages donation endpoints. Its write path is where
// donation notifications enter the broadcast channel.
type DonationHandler struct {
	repo repositories.DonationRepository
	hub  *realtime.Hub
}

// NewDonationHandler builds a DonationHandler.
func NewDonationHandler(repo repositories.DonationRepository, hub *realtime.Hub) *DonationHandler {
	return &DonationHandler{repo: repo, hub: hub}
}

// ListDonations returns donations filtered by status (default available).
func (h *DonationHandler) ListDonations(c *gin.Context) {
	status := c.DefaultQuery("status", models.DonationAvailable)
	if !models.ValidDonationStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
		return
	}

	donations, err := h.repo.ListByStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load donations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"donations": donations})
}

// GetDonation returns a single donation with donor contact info.
func (h *DonationHandler) GetDonation(c *gin.Context) {
	donationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid donation id"})
		return
	}

	donation, err := h.repo.Get(c.Request.Context(), donationID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrDonationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "donation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"donation": donation})
}

// CreateDonation stores a new donation and fans the created record out to
// every connected client.
func (h *DonationHandler) CreateDonation(c *gin.Context) {
	var input repositories.DonationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.DonorID == 0 || input.FoodName == "" || input.Quantity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	donation, err := h.repo.Create(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create donation"})
		return
	}

	h.notify(donation)
	_ = observability.PublishEvent(c.Request.Context(), "donations.created", observability.EventEnvelope{
		EventType: "donation_events",
		EventName: "donation_created",
		Payload:   donation,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Donation created successfully",
		"donation": donation,
	})
}

// UpdateDonationStatus moves a donation through its lifecycle
// (available, reserved, completed) and notifies connected clients.
func (h *DonationHandler) UpdateDonationStatus(c *gin.Context) {
	donationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid donation id"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	if !models.ValidDonationStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
		return
	}

	if err := h.repo.UpdateStatus(c.Request.Context(), donationID, req.Status); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrDonationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "donation not found"})
		return
	}

	h.notify(gin.H{"id": donationID, "status": req.Status})
	_ = observability.PublishEvent(c.Request.Context(), "donations.status_changed", observability.EventEnvelope{
		EventType: "donation_events",
		EventName: "donation_status_changed",
		Payload:   gin.H{"id": donationID, "status": req.Status},
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Donation status updated successfully",
		"id":      donationID,
		"status":  req.Status,
	})
}

// DeleteDonation removes a donation.
func (h *DonationHandler) DeleteDonation(c *gin.Context) {
	donationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid donation id"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), donationID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrDonationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "donation not found"})
		return
	}

	_ = observability.PublishEvent(c.Request.Context(), "donations.deleted", observability.EventEnvelope{
		EventType: "donation_events",
		EventName: "donation_deleted",
		Payload:   gin.H{"id": donationID},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Donation deleted successfully", "id": donationID})
}

// ListUserDonations returns all donations posted by one donor.
func (h *DonationHandler) ListUserDonations(c *gin.Context) {
	donorID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	donations, err := h.repo.ListByDonor(c.Request.Context(), donorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load donations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"donations": donations})
}

// notify pushes an opaque payload to every connection as a donation
// notification; marshal failure means nothing to send.
func (h *DonationHandler) notify(payload any) {
	if h.hub == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.hub.BroadcastDonation(data)
}
