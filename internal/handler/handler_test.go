package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/harborview/hotel-backend/internal/application"
	"github.com/harborview/hotel-backend/internal/auth"
	"github.com/harborview/hotel-backend/internal/domain"
	"github.com/harborview/hotel-backend/internal/middleware"
	"github.com/harborview/hotel-backend/internal/notify"
	"github.com/harborview/hotel-backend/internal/repository"
)

// apiFixture runs the real HTTP surface against an in-memory database, with
// only Kafka left out.
type apiFixture struct {
	router     *gin.Engine
	jwtManager *auth.JWTManager
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&repository.RoomModel{}, &repository.BookingModel{}))

	log := zap.NewNop()
	bookingRepo := repository.NewGormBookingRepository(db)
	roomRepo := repository.NewGormRoomRepository(db)
	uow := repository.NewGormUnitOfWork(db)
	notifier := notify.NewRegistry()

	bookings := application.NewBookingService(uow, bookingRepo, roomRepo, nil, notifier, log)
	rooms := application.NewRoomService(roomRepo, log)
	financials := application.NewFinancialService(bookingRepo, roomRepo, log)
	reconciler := application.NewReconciler(bookingRepo, time.Minute, log)

	jwtManager := auth.NewJWTManager("handler-test-secret", time.Hour)

	router := gin.New()
	api := router.Group("/api/v1", middleware.Auth(jwtManager))
	NewBookingHandler(bookings, reconciler, log).RegisterRoutes(api)
	NewGuestBookingHandler(bookings, notifier, log).RegisterRoutes(api)
	NewRoomHandler(rooms, log).RegisterRoutes(api)
	NewFinancialHandler(financials, log).RegisterRoutes(api)

	return &apiFixture{router: router, jwtManager: jwtManager}
}

func (f *apiFixture) token(t *testing.T, role domain.Role) string {
	t.Helper()
	token, err := f.jwtManager.Generate(uuid.New(), role)
	require.NoError(t, err)
	return token
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestAuthBoundary(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("missing token is unauthorized", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/rooms", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/rooms", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("guest cannot reach the staff desk", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/bookings", f.token(t, domain.RoleGuest), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("receptionist cannot read financials", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/admin/financials/rooms", f.token(t, domain.RoleReceptionist), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRoomEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, domain.RoleAdmin)

	t.Run("create and fetch a room", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/rooms", admin, gin.H{"number": "101", "type": "double"})
		require.Equal(t, http.StatusCreated, w.Code)

		var created application.RoomDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "available", created.Status)

		w = f.do(t, http.MethodGet, "/api/v1/rooms/"+created.ID.String(), admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("duplicate number maps to conflict", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/rooms", admin, gin.H{"number": "101", "type": "single"})
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CONFLICT", decodeErr(t, w).Code)
	})

	t.Run("receptionist cannot create rooms", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/rooms", f.token(t, domain.RoleReceptionist),
			gin.H{"number": "102", "type": "single"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("bad list filter maps to validation error", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/rooms?status=sparkling", admin, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeErr(t, w).Code)

		w = f.do(t, http.MethodGet, "/api/v1/rooms?type=penthouse", admin, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeErr(t, w).Code)
	})

	t.Run("cleaner role limits status targets", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/rooms", admin, gin.H{"number": "103", "type": "single"})
		require.Equal(t, http.StatusCreated, w.Code)
		var created application.RoomDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		w = f.do(t, http.MethodPatch, "/api/v1/rooms/"+created.ID.String(), f.token(t, domain.RoleCleaner),
			gin.H{"status": "maintenance"})
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", decodeErr(t, w).Code)
	})
}

func TestBookingEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, domain.RoleAdmin)

	createRoom := func(t *testing.T, number string) application.RoomDTO {
		t.Helper()
		w := f.do(t, http.MethodPost, "/api/v1/rooms", admin, gin.H{"number": number, "type": "single"})
		require.Equal(t, http.StatusCreated, w.Code)
		var created application.RoomDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		return created
	}

	t.Run("full desk flow: book, check in early, check out", func(t *testing.T) {
		rm := createRoom(t, "201")

		w := f.do(t, http.MethodPost, "/api/v1/bookings", admin, gin.H{
			"guest_name":     "Desk Guest",
			"room_id":        rm.ID,
			"check_in_date":  futureDate(2),
			"check_out_date": futureDate(5),
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var b application.BookingDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
		assert.Equal(t, "upcoming", b.Status)

		// Early check-in needs explicit confirmation.
		w = f.do(t, http.MethodPost, "/api/v1/bookings/"+b.ID.String()+"/check-in", admin, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeErr(t, w).Code)

		w = f.do(t, http.MethodPost, "/api/v1/bookings/"+b.ID.String()+"/check-in", admin,
			gin.H{"confirm_early": true})
		require.Equal(t, http.StatusOK, w.Code)

		w = f.do(t, http.MethodPost, "/api/v1/bookings/"+b.ID.String()+"/check-out", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
		assert.Equal(t, "checked_out", b.Status)

		// The room is back in the housekeeping loop.
		w = f.do(t, http.MethodGet, "/api/v1/rooms/"+rm.ID.String(), admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var gotRoom application.RoomDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gotRoom))
		assert.Equal(t, "dirty", gotRoom.Status)
	})

	t.Run("overlapping booking maps to room unavailable", func(t *testing.T) {
		rm := createRoom(t, "202")
		body := gin.H{
			"guest_name":     "First Guest",
			"room_id":        rm.ID,
			"check_in_date":  futureDate(2),
			"check_out_date": futureDate(5),
		}
		w := f.do(t, http.MethodPost, "/api/v1/bookings", admin, body)
		require.Equal(t, http.StatusCreated, w.Code)

		w = f.do(t, http.MethodPost, "/api/v1/bookings", admin, body)
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ROOM_UNAVAILABLE", decodeErr(t, w).Code)
	})

	t.Run("availability endpoint", func(t *testing.T) {
		rm := createRoom(t, "203")
		path := fmt.Sprintf("/api/v1/bookings/availability?room_id=%s&check_in_date=%s&check_out_date=%s",
			rm.ID, futureDate(2), futureDate(4))
		w := f.do(t, http.MethodGet, path, admin, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var result application.AvailabilityResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Available)
	})

	t.Run("bad status filter maps to validation error", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/bookings?status=lingering", admin, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeErr(t, w).Code)
	})

	t.Run("unknown booking maps to not found", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/bookings/"+uuid.NewString()+"/cancel", admin, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", decodeErr(t, w).Code)
	})

	t.Run("malformed id maps to validation error", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/bookings/not-a-uuid", admin, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeErr(t, w).Code)
	})
}

func TestGuestEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, domain.RoleAdmin)
	guestID := uuid.New()
	guestToken, err := f.jwtManager.Generate(guestID, domain.RoleGuest)
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/api/v1/rooms", admin, gin.H{"number": "301", "type": "suite"})
	require.Equal(t, http.StatusCreated, w.Code)
	var rm application.RoomDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rm))

	t.Run("guest books, lists and cancels their own stay", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/guest/bookings", guestToken, gin.H{
			"guest_name":     "Self Service",
			"room_id":        rm.ID,
			"check_in_date":  futureDate(3),
			"check_out_date": futureDate(6),
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var b application.BookingDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
		assert.Equal(t, "guest", b.CreationSource)

		w = f.do(t, http.MethodGet, "/api/v1/guest/bookings", guestToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var listed struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
		assert.Equal(t, 1, listed.Count)

		// Another guest cannot even see it.
		w = f.do(t, http.MethodGet, "/api/v1/guest/bookings/"+b.ID.String(), f.token(t, domain.RoleGuest), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = f.do(t, http.MethodPost, "/api/v1/guest/bookings/"+b.ID.String()+"/cancel", guestToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
		assert.Equal(t, "cancelled", b.Status)
	})
}

func TestFinancialEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, domain.RoleAdmin)

	w := f.do(t, http.MethodPost, "/api/v1/rooms", admin, gin.H{"number": "401", "type": "single"})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("room summaries", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/admin/financials/rooms", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("bad window is rejected", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/admin/financials/rooms?start_date=2026-03-10&end_date=2026-03-01", admin, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeErr(t, w).Code)
	})

	t.Run("compare requires room ids", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/admin/financials/compare", admin, gin.H{"room_ids": []string{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
