package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harborview/hotel-backend/internal/domain"
	"github.com/harborview/hotel-backend/internal/domain/booking"
	"github.com/harborview/hotel-backend/internal/domain/room"
	"github.com/harborview/hotel-backend/internal/events"
	"github.com/harborview/hotel-backend/internal/kafka"
	"github.com/harborview/hotel-backend/internal/metrics"
	"github.com/harborview/hotel-backend/internal/notify"
)

const eventSource = "hotel-backend/bookings"

// referenceAttempts bounds retries when a generated reference collides.
const referenceAttempts = 10

// CreateBookingRequest carries the fields needed to open a booking. Dates are
// calendar days in YYYY-MM-DD form. Price, when nil, is derived from the
// room's nightly rate.
type CreateBookingRequest struct {
	GuestName    string           `json:"guest_name" binding:"required"`
	RoomID       uuid.UUID        `json:"room_id" binding:"required"`
	CheckInDate  string           `json:"check_in_date" binding:"required"`
	CheckOutDate string           `json:"check_out_date" binding:"required"`
	Price        *decimal.Decimal `json:"price,omitempty"`
}

// AvailabilityResult reports whether a room can take a new booking for a date
// range, and why not when it cannot.
type AvailabilityResult struct {
	RoomID    uuid.UUID `json:"room_id"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
}

// BookingService owns the booking lifecycle: creation, check-in, check-out
// and cancellation, including every room side effect those carry.
type BookingService struct {
	uow       UnitOfWork
	bookings  booking.Repository
	rooms     room.Repository
	publisher kafka.Publisher
	notifier  *notify.Registry
	logger    *zap.Logger
	now       func() time.Time
}

// BookingServiceOption tweaks service construction.
type BookingServiceOption func(*BookingService)

// WithClock overrides the wall clock, used by tests to pin "today".
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) { s.now = now }
}

func NewBookingService(
	uow UnitOfWork,
	bookings booking.Repository,
	rooms room.Repository,
	publisher kafka.Publisher,
	notifier *notify.Registry,
	logger *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		uow:       uow,
		bookings:  bookings,
		rooms:     rooms,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookingService) today() time.Time {
	return booking.DateOnly(s.now())
}

// CreateBooking opens a staff-created booking after resolving availability.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	return s.create(ctx, req, booking.SourceStaff, nil)
}

// CreateGuestBooking opens a self-service booking owned by the guest account.
func (s *BookingService) CreateGuestBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	return s.create(ctx, req, booking.SourceGuest, &userID)
}

func (s *BookingService) create(
	ctx context.Context,
	req CreateBookingRequest,
	source booking.CreationSource,
	createdBy *uuid.UUID,
) (*BookingDTO, error) {
	checkIn, checkOut, err := s.parseStayDates(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	var created *booking.Booking
	err = s.uow.Do(ctx, func(bookings booking.Repository, rooms room.Repository) error {
		rm, err := rooms.FindByID(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if err := checkRoomAvailable(ctx, bookings, rm, checkIn, checkOut, nil); err != nil {
			return err
		}

		price := rm.Price().Mul(decimal.NewFromInt(booking.Nights(checkIn, checkOut)))
		if req.Price != nil {
			price = *req.Price
		}

		reference, err := s.uniqueReference(ctx, bookings)
		if err != nil {
			return err
		}

		b, err := booking.NewBooking(reference, req.GuestName, rm.ID(), checkIn, checkOut, price, source, createdBy)
		if err != nil {
			return err
		}
		if err := bookings.Save(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsCreated.WithLabelValues(string(source)).Inc()
	s.logger.Info("booking created",
		zap.String("reference", created.Reference()),
		zap.String("room_id", created.RoomID().String()),
		zap.String("source", string(source)))

	s.publishEvent(ctx, events.TypeBookingCreated, events.BookingCreated{
		BookingID:    created.ID(),
		Reference:    created.Reference(),
		RoomID:       created.RoomID(),
		GuestName:    created.GuestName(),
		CheckInDate:  created.CheckInDate().Format(dateLayout),
		CheckOutDate: created.CheckOutDate().Format(dateLayout),
		Price:        created.Price(),
		Source:       string(source),
		OccurredAt:   s.now().UTC(),
	})
	s.notifyOwner(created, "Your booking has been created.")

	return toBookingDTO(created), nil
}

// CheckAvailability resolves whether the room can host a stay over the
// half-open range [checkIn, checkOut) given current bookings and room state.
func (s *BookingService) CheckAvailability(ctx context.Context, roomID uuid.UUID, checkInDate, checkOutDate string) (*AvailabilityResult, error) {
	checkIn, checkOut, err := s.parseStayDates(checkInDate, checkOutDate)
	if err != nil {
		return nil, err
	}
	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := checkRoomAvailable(ctx, s.bookings, rm, checkIn, checkOut, nil); err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) && derr.Kind == domain.KindRoomUnavailable {
			return &AvailabilityResult{RoomID: roomID, Available: false, Reason: derr.Message}, nil
		}
		return nil, err
	}
	return &AvailabilityResult{RoomID: roomID, Available: true}, nil
}

// CheckIn transitions a booking to checked_in and claims the room. When the
// booking's check-in date is in the future, confirmEarly must be set; the
// booking's date is then pulled forward to today and the widened range is
// re-checked for conflicts.
func (s *BookingService) CheckIn(ctx context.Context, id uuid.UUID, confirmEarly bool) (*BookingDTO, error) {
	var (
		checked *booking.Booking
		early   bool
	)
	err := s.uow.Do(ctx, func(bookings booking.Repository, rooms room.Repository) error {
		b, err := bookings.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !b.Status().CanTransitionTo(booking.StatusCheckedIn) {
			return domain.NewInvalidTransitionError(b.Status().String(), booking.StatusCheckedIn.String())
		}

		today := s.today()
		effective := b.CheckInDate()
		if today.Before(b.CheckInDate()) {
			if !confirmEarly {
				return domain.NewValidationError(fmt.Sprintf(
					"booking check-in date is %s; confirm early check-in to proceed",
					b.CheckInDate().Format(dateLayout)))
			}
			effective = today
			early = true
		}

		rm, err := rooms.FindByID(ctx, b.RoomID())
		if err != nil {
			return err
		}
		if rm.Status() == room.StatusMaintenance {
			return domain.NewRoomUnavailableError(fmt.Sprintf("room %s is under maintenance", rm.Number()))
		}

		// An early check-in widens the occupied range; make sure the extra
		// nights are not already promised to someone else.
		if early {
			excludeID := b.ID()
			conflicts, err := bookings.FindBlockingOverlaps(ctx, b.RoomID(), effective, b.CheckInDate(), &excludeID)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return domain.NewRoomUnavailableError(fmt.Sprintf(
					"room %s is booked until %s", rm.Number(),
					conflicts[0].CheckOutDate().Format(dateLayout)))
			}
		}

		if rm.Status() == room.StatusOccupied {
			if holder, err := s.currentOccupant(ctx, bookings, b.RoomID(), today, b.ID()); err != nil {
				return err
			} else if holder != nil {
				return domain.NewRoomUnavailableError(fmt.Sprintf(
					"room %s is occupied by another guest until %s", rm.Number(),
					holder.CheckOutDate().Format(dateLayout)))
			}
		}

		expected := b.Status()
		if err := b.CheckIn(effective); err != nil {
			return err
		}
		if err := bookings.UpdateGuarded(ctx, b, expected); err != nil {
			return err
		}
		// Check-in claims the room directly; a lingering dirty or cleaning
		// flag does not hold the guest at the desk.
		if err := rooms.UpdateStatus(ctx, b.RoomID(), room.StatusOccupied); err != nil {
			return err
		}
		checked = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.LifecycleTransitions.WithLabelValues(booking.StatusCheckedIn.String()).Inc()
	s.logger.Info("guest checked in",
		zap.String("reference", checked.Reference()),
		zap.Bool("early", early))

	s.publishEvent(ctx, events.TypeBookingCheckedIn, events.BookingCheckedIn{
		BookingID:     checked.ID(),
		Reference:     checked.Reference(),
		RoomID:        checked.RoomID(),
		EffectiveDate: checked.CheckInDate().Format(dateLayout),
		EarlyCheckIn:  early,
		OccurredAt:    s.now().UTC(),
	})
	s.notifyOwner(checked, "You are checked in. Enjoy your stay.")

	return toBookingDTO(checked), nil
}

// CheckOut ends a stay: the booking's check-out date and price are settled
// against the actual nights spent and the room turns dirty for housekeeping.
// Checking out after the planned date (an overstay) extends and re-prices the
// stay; checking out early shortens it, never below one night.
func (s *BookingService) CheckOut(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	var checked *booking.Booking
	err := s.uow.Do(ctx, func(bookings booking.Repository, rooms room.Repository) error {
		b, err := bookings.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !b.Status().CanTransitionTo(booking.StatusCheckedOut) {
			return domain.NewInvalidTransitionError(b.Status().String(), booking.StatusCheckedOut.String())
		}

		rm, err := rooms.FindByID(ctx, b.RoomID())
		if err != nil {
			return err
		}

		today := s.today()
		settled := today
		if min := b.CheckInDate().AddDate(0, 0, 1); settled.Before(min) {
			settled = min
		}
		price := rm.Price().Mul(decimal.NewFromInt(booking.Nights(b.CheckInDate(), settled)))

		expected := b.Status()
		if err := b.CheckOut(settled, price); err != nil {
			return err
		}
		if err := bookings.UpdateGuarded(ctx, b, expected); err != nil {
			return err
		}
		if err := rooms.UpdateStatus(ctx, b.RoomID(), room.StatusDirty); err != nil {
			return err
		}
		checked = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.LifecycleTransitions.WithLabelValues(booking.StatusCheckedOut.String()).Inc()
	s.logger.Info("guest checked out",
		zap.String("reference", checked.Reference()),
		zap.String("final_price", checked.Price().String()))

	s.publishEvent(ctx, events.TypeBookingCheckedOut, events.BookingCheckedOut{
		BookingID:    checked.ID(),
		Reference:    checked.Reference(),
		RoomID:       checked.RoomID(),
		CheckOutDate: checked.CheckOutDate().Format(dateLayout),
		FinalPrice:   checked.Price(),
		OccurredAt:   s.now().UTC(),
	})
	s.notifyOwner(checked, "You are checked out. Thank you for staying with us.")

	return toBookingDTO(checked), nil
}

// Cancel cancels a booking on behalf of staff.
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, b)
}

// CancelGuestBooking cancels one of the guest's own upcoming bookings.
// Bookings owned by other accounts are reported as not found rather than
// forbidden, so references cannot be probed.
func (s *BookingService) CancelGuestBooking(ctx context.Context, userID, id uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsOwnedBy(userID) {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	if b.Status() != booking.StatusUpcoming {
		return nil, domain.NewInvalidTransitionError(b.Status().String(), booking.StatusCancelled.String())
	}
	return s.cancel(ctx, b)
}

func (s *BookingService) cancel(ctx context.Context, b *booking.Booking) (*BookingDTO, error) {
	expected := b.Status()
	if err := b.Cancel(); err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateGuarded(ctx, b, expected); err != nil {
		return nil, err
	}

	metrics.LifecycleTransitions.WithLabelValues(booking.StatusCancelled.String()).Inc()
	s.logger.Info("booking cancelled", zap.String("reference", b.Reference()))

	s.publishEvent(ctx, events.TypeBookingCancelled, events.BookingCancelled{
		BookingID:  b.ID(),
		Reference:  b.Reference(),
		RoomID:     b.RoomID(),
		OccurredAt: s.now().UTC(),
	})
	s.notifyOwner(b, "Your booking has been cancelled.")

	return toBookingDTO(b), nil
}

// GetBooking retrieves a booking with its room summary.
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*BookingWithRoomDTO, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withRoom(ctx, b)
}

// GetBookingByReference retrieves a booking by its human-facing reference.
func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*BookingWithRoomDTO, error) {
	b, err := s.bookings.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return s.withRoom(ctx, b)
}

// GetGuestBooking retrieves one of the guest's own bookings.
func (s *BookingService) GetGuestBooking(ctx context.Context, userID, id uuid.UUID) (*BookingWithRoomDTO, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsOwnedBy(userID) {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return s.withRoom(ctx, b)
}

// ListBookings retrieves bookings matching the filter, each with its room.
func (s *BookingService) ListBookings(ctx context.Context, filter booking.ListFilter) ([]*BookingWithRoomDTO, error) {
	items, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.withRooms(ctx, items)
}

// ListGuestBookings retrieves the guest's own bookings, newest first.
func (s *BookingService) ListGuestBookings(ctx context.Context, userID uuid.UUID, status *booking.Status) ([]*BookingWithRoomDTO, error) {
	items, err := s.bookings.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	return s.withRooms(ctx, items)
}

// parseStayDates parses and validates a requested stay against today.
func (s *BookingService) parseStayDates(checkInDate, checkOutDate string) (time.Time, time.Time, error) {
	checkIn, err := time.Parse(dateLayout, checkInDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("check_in_date must be a YYYY-MM-DD date")
	}
	checkOut, err := time.Parse(dateLayout, checkOutDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("check_out_date must be a YYYY-MM-DD date")
	}
	checkIn, checkOut = booking.DateOnly(checkIn), booking.DateOnly(checkOut)
	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, domain.NewValidationError("check-out date must be after check-in date")
	}
	if checkIn.Before(s.today()) {
		return time.Time{}, time.Time{}, domain.NewValidationError("check-in date cannot be in the past")
	}
	return checkIn, checkOut, nil
}

// checkRoomAvailable enforces the two availability conditions: no blocking
// booking overlaps the half-open range, and the room itself is ready.
func checkRoomAvailable(
	ctx context.Context,
	bookings booking.Repository,
	rm *room.Room,
	checkIn, checkOut time.Time,
	excludeID *uuid.UUID,
) error {
	conflicts, err := bookings.FindBlockingOverlaps(ctx, rm.ID(), checkIn, checkOut, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return domain.NewRoomUnavailableError(fmt.Sprintf(
			"room %s is not available for the selected dates", rm.Number()))
	}

	switch rm.Status() {
	case room.StatusAvailable:
		return nil
	case room.StatusMaintenance:
		return domain.NewRoomUnavailableError(fmt.Sprintf("room %s is under maintenance", rm.Number()))
	default:
		return domain.NewRoomUnavailableError(fmt.Sprintf(
			"room %s is not ready for booking (status %s)", rm.Number(), rm.Status()))
	}
}

// currentOccupant finds an active booking holding the room tonight, if any.
func (s *BookingService) currentOccupant(
	ctx context.Context,
	bookings booking.Repository,
	roomID uuid.UUID,
	today time.Time,
	excludeID uuid.UUID,
) (*booking.Booking, error) {
	overlaps, err := bookings.FindBlockingOverlaps(ctx, roomID, today, today.AddDate(0, 0, 1), &excludeID)
	if err != nil {
		return nil, err
	}
	for _, o := range overlaps {
		if o.Status().IsActive() {
			return o, nil
		}
	}
	return nil, nil
}

func (s *BookingService) uniqueReference(ctx context.Context, bookings booking.Repository) (string, error) {
	for i := 0; i < referenceAttempts; i++ {
		ref, err := booking.GenerateReference(s.now())
		if err != nil {
			return "", err
		}
		exists, err := bookings.ReferenceExists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", domain.NewInternalError("could not generate a unique booking reference")
}

func (s *BookingService) withRoom(ctx context.Context, b *booking.Booking) (*BookingWithRoomDTO, error) {
	dto := &BookingWithRoomDTO{BookingDTO: *toBookingDTO(b)}
	rm, err := s.rooms.FindByID(ctx, b.RoomID())
	if err == nil {
		dto.Room = toRoomDTO(rm)
	} else if !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}
	return dto, nil
}

func (s *BookingService) withRooms(ctx context.Context, items []*booking.Booking) ([]*BookingWithRoomDTO, error) {
	cache := make(map[uuid.UUID]*RoomDTO)
	dtos := make([]*BookingWithRoomDTO, 0, len(items))
	for _, b := range items {
		dto := &BookingWithRoomDTO{BookingDTO: *toBookingDTO(b)}
		if cached, ok := cache[b.RoomID()]; ok {
			dto.Room = cached
		} else {
			rm, err := s.rooms.FindByID(ctx, b.RoomID())
			if err == nil {
				dto.Room = toRoomDTO(rm)
				cache[b.RoomID()] = dto.Room
			} else if !domain.IsKind(err, domain.KindNotFound) {
				return nil, err
			}
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// publishEvent wraps and sends a CloudEvent; publish failures are logged, not
// surfaced, because the state change has already committed.
func (s *BookingService) publishEvent(ctx context.Context, eventType string, payload any) {
	if s.publisher == nil {
		return
	}
	ce, err := kafka.NewCloudEvent(eventSource, eventType, payload)
	if err != nil {
		s.logger.Error("could not build event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, events.TopicBookingEvents, ce); err != nil {
		s.logger.Error("could not publish event", zap.String("type", eventType), zap.Error(err))
	}
}

// notifyOwner pushes an in-process notification to the booking's guest owner.
func (s *BookingService) notifyOwner(b *booking.Booking, message string) {
	if s.notifier == nil || b.CreatedByUserID() == nil {
		return
	}
	s.notifier.Publish(*b.CreatedByUserID(), notify.Event{
		BookingID:  b.ID(),
		Reference:  b.Reference(),
		Status:     b.Status().String(),
		Message:    message,
		OccurredAt: s.now().UTC(),
	})
}
