package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kafka topics this service produces to and consumes from.
const (
	TopicBookingEvents      = "booking.events"
	TopicHousekeepingEvents = "housekeeping.events"
)

// CloudEvent type attributes.
const (
	TypeBookingCreated    = "booking.created"
	TypeBookingCheckedIn  = "booking.checked_in"
	TypeBookingCheckedOut = "booking.checked_out"
	TypeBookingCancelled  = "booking.cancelled"
	TypeRoomCleaned       = "room.cleaned"
)

// BookingCreated is emitted when a booking is accepted, staff or guest sourced.
type BookingCreated struct {
	BookingID    uuid.UUID       `json:"booking_id"`
	Reference    string          `json:"reference"`
	RoomID       uuid.UUID       `json:"room_id"`
	GuestName    string          `json:"guest_name"`
	CheckInDate  string          `json:"check_in_date"`
	CheckOutDate string          `json:"check_out_date"`
	Price        decimal.Decimal `json:"price"`
	Source       string          `json:"source"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// BookingCheckedIn is emitted when a guest takes possession of a room.
type BookingCheckedIn struct {
	BookingID     uuid.UUID `json:"booking_id"`
	Reference     string    `json:"reference"`
	RoomID        uuid.UUID `json:"room_id"`
	EffectiveDate string    `json:"effective_date"`
	EarlyCheckIn  bool      `json:"early_check_in"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCheckedOut is emitted when a stay ends and the room turns dirty.
type BookingCheckedOut struct {
	BookingID    uuid.UUID       `json:"booking_id"`
	Reference    string          `json:"reference"`
	RoomID       uuid.UUID       `json:"room_id"`
	CheckOutDate string          `json:"check_out_date"`
	FinalPrice   decimal.Decimal `json:"final_price"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// BookingCancelled is emitted when a booking is cancelled.
type BookingCancelled struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	RoomID     uuid.UUID `json:"room_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RoomCleaned arrives from the housekeeping system when cleaning finishes.
type RoomCleaned struct {
	RoomID     uuid.UUID `json:"room_id"`
	CleanedBy  string    `json:"cleaned_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
