package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborview/hotel-backend/internal/domain/booking"
	"github.com/harborview/hotel-backend/internal/domain/room"
)

const dateLayout = "2006-01-02"

// BookingDTO is the serialized view of a booking returned by the service layer.
type BookingDTO struct {
	ID              uuid.UUID       `json:"id"`
	Reference       string          `json:"reference"`
	GuestName       string          `json:"guest_name"`
	RoomID          uuid.UUID       `json:"room_id"`
	CheckInDate     string          `json:"check_in_date"`
	CheckOutDate    string          `json:"check_out_date"`
	Status          string          `json:"status"`
	CreatedByUserID *uuid.UUID      `json:"created_by_user_id,omitempty"`
	CreationSource  string          `json:"creation_source"`
	Price           decimal.Decimal `json:"price"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// BookingWithRoomDTO embeds the room summary alongside the booking so list
// endpoints do not force a second round trip.
type BookingWithRoomDTO struct {
	BookingDTO
	Room *RoomDTO `json:"room,omitempty"`
}

// RoomDTO is the serialized view of a room.
type RoomDTO struct {
	ID        uuid.UUID       `json:"id"`
	Number    string          `json:"number"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toBookingDTO(b *booking.Booking) *BookingDTO {
	return &BookingDTO{
		ID:              b.ID(),
		Reference:       b.Reference(),
		GuestName:       b.GuestName(),
		RoomID:          b.RoomID(),
		CheckInDate:     b.CheckInDate().Format(dateLayout),
		CheckOutDate:    b.CheckOutDate().Format(dateLayout),
		Status:          string(b.Status()),
		CreatedByUserID: b.CreatedByUserID(),
		CreationSource:  string(b.CreationSource()),
		Price:           b.Price(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}

func toRoomDTO(r *room.Room) *RoomDTO {
	return &RoomDTO{
		ID:        r.ID(),
		Number:    r.Number(),
		Type:      string(r.RoomType()),
		Status:    string(r.Status()),
		Price:     r.Price(),
		CreatedAt: r.CreatedAt(),
		UpdatedAt: r.UpdatedAt(),
	}
}
