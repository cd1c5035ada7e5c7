package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harborview/hotel-backend/internal/application"
	"github.com/harborview/hotel-backend/internal/domain"
	"github.com/harborview/hotel-backend/internal/domain/booking"
	"github.com/harborview/hotel-backend/internal/middleware"
	"github.com/harborview/hotel-backend/internal/notify"
)

// GuestBookingHandler exposes guest self-service: booking their own stays,
// viewing and cancelling them, and a notification stream.
type GuestBookingHandler struct {
	bookings *application.BookingService
	notifier *notify.Registry
	logger   *zap.Logger
}

func NewGuestBookingHandler(bookings *application.BookingService, notifier *notify.Registry, logger *zap.Logger) *GuestBookingHandler {
	return &GuestBookingHandler{bookings: bookings, notifier: notifier, logger: logger}
}

// RegisterRoutes mounts the guest self-service routes.
func (h *GuestBookingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	guest := rg.Group("/guest", middleware.RequireRole(domain.RoleGuest))
	guest.POST("/bookings", h.create)
	guest.GET("/bookings", h.list)
	guest.GET("/bookings/:id", h.get)
	guest.POST("/bookings/:id/cancel", h.cancel)
	guest.GET("/notifications", h.notifications)
}

func (h *GuestBookingHandler) create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, domain.NewUnauthorizedError("authentication required"))
		return
	}
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	dto, err := h.bookings.CreateGuestBooking(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}

func (h *GuestBookingHandler) list(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, domain.NewUnauthorizedError("authentication required"))
		return
	}
	var status *booking.Status
	if s := c.Query("status"); s != "" {
		parsed, err := booking.ParseStatus(s)
		if err != nil {
			respondError(c, err)
			return
		}
		status = &parsed
	}
	dtos, err := h.bookings.ListGuestBookings(c.Request.Context(), userID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": dtos, "count": len(dtos)})
}

func (h *GuestBookingHandler) get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, domain.NewUnauthorizedError("authentication required"))
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	dto, err := h.bookings.GetGuestBooking(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *GuestBookingHandler) cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, domain.NewUnauthorizedError("authentication required"))
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	dto, err := h.bookings.CancelGuestBooking(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// notifications streams booking updates for the authenticated guest as
// server-sent events until the client disconnects.
func (h *GuestBookingHandler) notifications(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, domain.NewUnauthorizedError("authentication required"))
		return
	}

	ch, cancel := h.notifier.Subscribe(userID)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(_ io.Writer) bool {
		select {
		case event, open := <-ch:
			if !open {
				return false
			}
			c.SSEvent("booking", event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
