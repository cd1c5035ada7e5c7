package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harborview/hotel-backend/internal/application"
	"github.com/harborview/hotel-backend/internal/domain"
	"github.com/harborview/hotel-backend/internal/middleware"
)

// RoomHandler exposes room inventory management over HTTP.
type RoomHandler struct {
	rooms  *application.RoomService
	logger *zap.Logger
}

func NewRoomHandler(rooms *application.RoomService, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, logger: logger}
}

// RegisterRoutes mounts the room routes. Every authenticated role may browse
// rooms; creating is admin-only and updating is open to staff roles, with the
// service narrowing what each role may change.
func (h *RoomHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rooms := rg.Group("/rooms")
	rooms.GET("", h.list)
	rooms.GET("/:id", h.get)
	rooms.GET("/number/:number", h.getByNumber)
	rooms.POST("", middleware.RequireRole(domain.RoleAdmin), h.create)
	rooms.PATCH("/:id",
		middleware.RequireRole(domain.RoleAdmin, domain.RoleReceptionist, domain.RoleCleaner),
		h.update)
}

func (h *RoomHandler) create(c *gin.Context) {
	var req application.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	dto, err := h.rooms.CreateRoom(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}

func (h *RoomHandler) list(c *gin.Context) {
	dtos, err := h.rooms.ListRooms(c.Request.Context(), c.Query("status"), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": dtos, "count": len(dtos)})
}

func (h *RoomHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	dto, err := h.rooms.GetRoom(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *RoomHandler) getByNumber(c *gin.Context) {
	dto, err := h.rooms.GetRoomByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *RoomHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	role, ok := middleware.GetRole(c)
	if !ok {
		respondError(c, domain.NewUnauthorizedError("authentication required"))
		return
	}
	var req application.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	dto, err := h.rooms.UpdateRoom(c.Request.Context(), id, req, role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}
