package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harborview/hotel-backend/internal/application"
	"github.com/harborview/hotel-backend/internal/domain"
	"github.com/harborview/hotel-backend/internal/domain/booking"
	"github.com/harborview/hotel-backend/internal/middleware"
)

// BookingHandler exposes the staff-facing booking lifecycle over HTTP.
type BookingHandler struct {
	bookings   *application.BookingService
	reconciler *application.Reconciler
	logger     *zap.Logger
}

func NewBookingHandler(bookings *application.BookingService, reconciler *application.Reconciler, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, reconciler: reconciler, logger: logger}
}

// RegisterRoutes mounts the staff booking routes.
func (h *BookingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	staff := rg.Group("/bookings", middleware.RequireRole(domain.RoleAdmin, domain.RoleReceptionist))
	staff.POST("", h.create)
	staff.GET("", h.list)
	staff.GET("/availability", h.availability)
	staff.GET("/:id", h.get)
	staff.GET("/reference/:reference", h.getByReference)
	staff.POST("/:id/check-in", h.checkIn)
	staff.POST("/:id/check-out", h.checkOut)
	staff.POST("/:id/cancel", h.cancel)
	rg.POST("/reconcile", middleware.RequireRole(domain.RoleAdmin), h.reconcile)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	dto, err := h.bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}

func (h *BookingHandler) list(c *gin.Context) {
	ctx := c.Request.Context()

	// Staff expect the desk view to reflect today: sweep stale bookings
	// before listing so a missed arrival reads no_show, not upcoming.
	if _, err := h.reconciler.Reconcile(ctx); err != nil {
		h.logger.Warn("pre-list reconcile failed", zap.Error(err))
	}

	filter, err := parseBookingFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	dtos, err := h.bookings.ListBookings(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": dtos, "count": len(dtos)})
}

func (h *BookingHandler) availability(c *gin.Context) {
	roomID, err := uuid.Parse(c.Query("room_id"))
	if err != nil {
		respondBadRequest(c, "room_id must be a valid UUID")
		return
	}
	result, err := h.bookings.CheckAvailability(c.Request.Context(), roomID, c.Query("check_in_date"), c.Query("check_out_date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	dto, err := h.bookings.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *BookingHandler) getByReference(c *gin.Context) {
	dto, err := h.bookings.GetBookingByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

type checkInRequest struct {
	ConfirmEarly bool `json:"confirm_early"`
}

func (h *BookingHandler) checkIn(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req checkInRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
	}
	dto, err := h.bookings.CheckIn(c.Request.Context(), id, req.ConfirmEarly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *BookingHandler) checkOut(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	// The body may carry confirm_early for symmetry with check-in; it has no
	// effect on check-out and is accepted silently.
	var req checkInRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
	}
	dto, err := h.bookings.CheckOut(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	dto, err := h.bookings.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *BookingHandler) reconcile(c *gin.Context) {
	result, err := h.reconciler.Reconcile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseBookingFilter(c *gin.Context) (booking.ListFilter, error) {
	var filter booking.ListFilter
	if s := c.Query("status"); s != "" {
		parsed, err := booking.ParseStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Status = &parsed
	}
	filter.GuestName = c.Query("guest_name")
	if s := c.Query("from_date"); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return filter, domain.NewValidationError("from_date must be a YYYY-MM-DD date")
		}
		filter.FromDate = &d
	}
	if s := c.Query("to_date"); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return filter, domain.NewValidationError("to_date must be a YYYY-MM-DD date")
		}
		filter.ToDate = &d
	}
	return filter, nil
}
