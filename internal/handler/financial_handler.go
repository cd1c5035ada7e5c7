package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harborview/hotel-backend/internal/application"
	"github.com/harborview/hotel-backend/internal/domain"
	"github.com/harborview/hotel-backend/internal/middleware"
)

// FinancialHandler exposes revenue and occupancy reporting to admins.
type FinancialHandler struct {
	financials *application.FinancialService
	logger     *zap.Logger
}

func NewFinancialHandler(financials *application.FinancialService, logger *zap.Logger) *FinancialHandler {
	return &FinancialHandler{financials: financials, logger: logger}
}

// RegisterRoutes mounts the financial routes. The extra middleware (typically
// a response cache) applies to the whole group.
func (h *FinancialHandler) RegisterRoutes(rg *gin.RouterGroup, extra ...gin.HandlerFunc) {
	fin := rg.Group("/admin/financials", middleware.RequireRole(domain.RoleAdmin))
	fin.Use(extra...)
	fin.GET("/rooms", h.allRooms)
	fin.GET("/rooms/:id", h.room)
	fin.GET("/rooms/:id/history", h.roomHistory)
	fin.GET("/revenue-series", h.revenueSeries)
	fin.POST("/compare", h.compare)
}

func (h *FinancialHandler) allRooms(c *gin.Context) {
	start, end, ok := queryWindow(c)
	if !ok {
		return
	}
	results, err := h.financials.AllRoomFinancials(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": results, "count": len(results)})
}

func (h *FinancialHandler) room(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	start, end, ok := queryWindow(c)
	if !ok {
		return
	}
	result, err := h.financials.RoomFinancials(c.Request.Context(), id, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FinancialHandler) roomHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	start, end, ok := queryWindow(c)
	if !ok {
		return
	}
	history, err := h.financials.RoomBookingHistory(c.Request.Context(), id, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": history, "count": len(history)})
}

func (h *FinancialHandler) revenueSeries(c *gin.Context) {
	start, end, ok := queryWindow(c)
	if !ok {
		return
	}
	var roomID *uuid.UUID
	if s := c.Query("room_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respondBadRequest(c, "room_id must be a valid UUID")
			return
		}
		roomID = &id
	}
	points, err := h.financials.RevenueTimeSeries(c.Request.Context(), roomID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": points, "count": len(points)})
}

type compareRequest struct {
	RoomIDs   []uuid.UUID `json:"room_ids" binding:"required"`
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
}

func (h *FinancialHandler) compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	start, err := optionalDate(req.StartDate, "start_date")
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := optionalDate(req.EndDate, "end_date")
	if err != nil {
		respondError(c, err)
		return
	}
	results, err := h.financials.CompareRooms(c.Request.Context(), req.RoomIDs, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": results, "count": len(results)})
}

func queryWindow(c *gin.Context) (*time.Time, *time.Time, bool) {
	start, err := optionalDate(c.Query("start_date"), "start_date")
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	end, err := optionalDate(c.Query("end_date"), "end_date")
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	if start != nil && end != nil && end.Before(*start) {
		respondBadRequest(c, "end_date must not be before start_date")
		return nil, nil, false
	}
	return start, end, true
}

func optionalDate(s, name string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, domain.NewValidationError(name + " must be a YYYY-MM-DD date")
	}
	return &d, nil
}
