package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborview/hotel-backend/internal/domain"
)

// ErrorResponse is the JSON body every failed request carries.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var kindCodes = map[domain.ErrorKind]struct {
	status int
	code   string
}{
	domain.KindValidation:        {http.StatusBadRequest, "VALIDATION_ERROR"},
	domain.KindNotFound:          {http.StatusNotFound, "NOT_FOUND"},
	domain.KindRoomUnavailable:   {http.StatusConflict, "ROOM_UNAVAILABLE"},
	domain.KindInvalidTransition: {http.StatusConflict, "INVALID_STATUS_TRANSITION"},
	domain.KindConflict:          {http.StatusConflict, "CONFLICT"},
	domain.KindUnauthorized:      {http.StatusUnauthorized, "UNAUTHORIZED"},
	domain.KindForbidden:         {http.StatusForbidden, "FORBIDDEN"},
}

// respondError maps a domain error to its HTTP shape. Anything that is not a
// typed domain error is an infrastructure failure and must not leak details.
func respondError(c *gin.Context, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		if m, ok := kindCodes[derr.Kind]; ok {
			c.JSON(m.status, ErrorResponse{Code: m.code, Message: derr.Message})
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "internal server error",
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION_ERROR", Message: message})
}
