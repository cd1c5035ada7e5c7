package application

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harborview/hotel-backend/internal/domain"
	"github.com/harborview/hotel-backend/internal/domain/booking"
	"github.com/harborview/hotel-backend/internal/domain/room"
)

// RoomFinancials aggregates realized revenue for one room. Only checked-out
// bookings count: money is recognized when the stay settles, never before.
type RoomFinancials struct {
	RoomID         uuid.UUID        `json:"room_id"`
	RoomNumber     string           `json:"room_number"`
	TotalRevenue   decimal.Decimal  `json:"total_revenue"`
	BookingCount   int              `json:"booking_count"`
	AverageRevenue *decimal.Decimal `json:"average_revenue,omitempty"`
	OccupancyRate  *float64         `json:"occupancy_rate,omitempty"`
}

// RevenuePoint is one day of realized revenue, keyed by check-out date.
type RevenuePoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// FinancialService aggregates realized revenue and occupancy over rooms.
type FinancialService struct {
	bookings booking.Repository
	rooms    room.Repository
	logger   *zap.Logger
}

func NewFinancialService(bookings booking.Repository, rooms room.Repository, logger *zap.Logger) *FinancialService {
	return &FinancialService{bookings: bookings, rooms: rooms, logger: logger}
}

// RoomFinancials computes totals for one room over an optional closed date
// window. The occupancy rate is reported only when both bounds are given.
func (s *FinancialService) RoomFinancials(ctx context.Context, roomID uuid.UUID, start, end *time.Time) (*RoomFinancials, error) {
	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	settled, err := s.bookings.ListCheckedOut(ctx, &roomID, start, end)
	if err != nil {
		return nil, err
	}
	return s.aggregate(rm.ID(), rm.Number(), settled, start, end), nil
}

// AllRoomFinancials computes per-room totals for every registered room.
func (s *FinancialService) AllRoomFinancials(ctx context.Context, start, end *time.Time) ([]*RoomFinancials, error) {
	rooms, err := s.rooms.List(ctx, room.ListFilter{})
	if err != nil {
		return nil, err
	}

	results := make([]*RoomFinancials, 0, len(rooms))
	for _, rm := range rooms {
		id := rm.ID()
		settled, err := s.bookings.ListCheckedOut(ctx, &id, start, end)
		if err != nil {
			return nil, err
		}
		results = append(results, s.aggregate(rm.ID(), rm.Number(), settled, start, end))
	}
	return results, nil
}

// CompareRooms computes financials for an explicit set of rooms.
func (s *FinancialService) CompareRooms(ctx context.Context, roomIDs []uuid.UUID, start, end *time.Time) ([]*RoomFinancials, error) {
	if len(roomIDs) == 0 {
		return nil, domain.NewValidationError("room_ids must not be empty")
	}
	results := make([]*RoomFinancials, 0, len(roomIDs))
	for _, id := range roomIDs {
		rf, err := s.RoomFinancials(ctx, id, start, end)
		if err != nil {
			return nil, err
		}
		results = append(results, rf)
	}
	return results, nil
}

// RevenueTimeSeries buckets realized revenue by check-out day, across all
// rooms or one room, sorted by date.
func (s *FinancialService) RevenueTimeSeries(ctx context.Context, roomID *uuid.UUID, start, end *time.Time) ([]RevenuePoint, error) {
	if roomID != nil {
		if _, err := s.rooms.FindByID(ctx, *roomID); err != nil {
			return nil, err
		}
	}
	settled, err := s.bookings.ListCheckedOut(ctx, roomID, start, end)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]decimal.Decimal)
	for _, b := range settled {
		day := b.CheckOutDate().Format(dateLayout)
		buckets[day] = buckets[day].Add(b.Price())
	}

	points := make([]RevenuePoint, 0, len(buckets))
	for day, revenue := range buckets {
		points = append(points, RevenuePoint{Date: day, Revenue: revenue})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

// RoomBookingHistory lists the settled bookings behind a room's totals.
func (s *FinancialService) RoomBookingHistory(ctx context.Context, roomID uuid.UUID, start, end *time.Time) ([]*BookingDTO, error) {
	if _, err := s.rooms.FindByID(ctx, roomID); err != nil {
		return nil, err
	}
	settled, err := s.bookings.ListCheckedOut(ctx, &roomID, start, end)
	if err != nil {
		return nil, err
	}
	dtos := make([]*BookingDTO, 0, len(settled))
	for _, b := range settled {
		dtos = append(dtos, toBookingDTO(b))
	}
	return dtos, nil
}

func (s *FinancialService) aggregate(roomID uuid.UUID, roomNumber string, settled []*booking.Booking, start, end *time.Time) *RoomFinancials {
	rf := &RoomFinancials{
		RoomID:       roomID,
		RoomNumber:   roomNumber,
		TotalRevenue: decimal.Zero,
		BookingCount: len(settled),
	}
	for _, b := range settled {
		rf.TotalRevenue = rf.TotalRevenue.Add(b.Price())
	}
	if len(settled) > 0 {
		avg := rf.TotalRevenue.Div(decimal.NewFromInt(int64(len(settled)))).Round(2)
		rf.AverageRevenue = &avg
	}
	if start != nil && end != nil {
		rate := occupancyRate(settled, *start, *end)
		rf.OccupancyRate = &rate
	}
	return rf
}

// occupancyRate is the share of days in the closed window [start, end] covered
// by settled stays, as a percentage clamped to [0, 100]. Overlapping stays can
// otherwise push the raw ratio past 100 during overbooked corrections.
func occupancyRate(settled []*booking.Booking, start, end time.Time) float64 {
	start, end = booking.DateOnly(start), booking.DateOnly(end)
	windowDays := int64(end.Sub(start).Hours()/24) + 1
	if windowDays <= 0 {
		return 0
	}

	var occupied int64
	for _, b := range settled {
		from, to := b.CheckInDate(), b.CheckOutDate()
		if from.Before(start) {
			from = start
		}
		// The window is closed on its end day, the stay half-open on its
		// check-out day.
		limit := end.AddDate(0, 0, 1)
		if to.After(limit) {
			to = limit
		}
		if days := int64(to.Sub(from).Hours() / 24); days > 0 {
			occupied += days
		}
	}

	rate := float64(occupied) / float64(windowDays) * 100
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}
