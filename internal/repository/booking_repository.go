package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harborview/hotel-backend/internal/domain"
	bookingDomain "github.com/harborview/hotel-backend/internal/domain/booking"
	"github.com/harborview/hotel-backend/internal/metrics"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Reference       string          `gorm:"uniqueIndex;not null;size:20"`
	GuestName       string          `gorm:"not null;size:100"`
	RoomID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	CheckInDate     time.Time       `gorm:"type:date;not null;index"`
	CheckOutDate    time.Time       `gorm:"type:date;not null;index"`
	Status          string          `gorm:"not null;size:20;index"`
	CreatedByUserID *uuid.UUID      `gorm:"type:uuid;index"`
	CreationSource  string          `gorm:"not null;size:10"`
	Price           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByReference retrieves a booking by its human-facing reference.
func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", reference)
		}
		return nil, fmt.Errorf("failed to find booking by reference: %w", err)
	}
	return toDomainBooking(&model), nil
}

// ReferenceExists reports whether a booking with the given reference exists.
func (r *GormBookingRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("reference = ?", reference).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check reference existence: %w", err)
	}
	return count > 0, nil
}

// FindBlockingOverlaps retrieves availability-blocking bookings whose
// half-open [check_in_date, check_out_date) range intersects the query range.
func (r *GormBookingRepository) FindBlockingOverlaps(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Where("status IN ?", blockingStatusStrings()).
		Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var models []BookingModel
	if err := query.Order("check_in_date ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// List retrieves bookings matching the filter, ordered by check-in date.
func (r *GormBookingRepository) List(ctx context.Context, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.GuestName != "" {
		query = query.Where("LOWER(guest_name) LIKE ?", "%"+strings.ToLower(filter.GuestName)+"%")
	}
	if filter.FromDate != nil {
		query = query.Where("check_in_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("check_in_date <= ?", *filter.ToDate)
	}

	var models []BookingModel
	if err := query.Order("check_in_date ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// ListByUser retrieves bookings self-served by the guest account, newest
// check-in first.
func (r *GormBookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, status *bookingDomain.Status) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).Where("created_by_user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", status.String())
	}

	var models []BookingModel
	if err := query.Order("check_in_date DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// ListCheckedOut retrieves checked-out bookings whose stay intersects the
// closed date window.
func (r *GormBookingRepository) ListCheckedOut(ctx context.Context, roomID *uuid.UUID, start, end *time.Time) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).Where("status = ?", bookingDomain.StatusCheckedOut.String())
	if roomID != nil {
		query = query.Where("room_id = ?", *roomID)
	}
	if start != nil {
		query = query.Where("check_out_date >= ?", *start)
	}
	if end != nil {
		query = query.Where("check_in_date <= ?", *end)
	}

	var models []BookingModel
	if err := query.Order("check_out_date ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list checked-out bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("booking reference %s already exists", b.Reference()))
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// UpdateGuarded persists changes to a booking, conditioned on the status the
// caller read. A raced-away row updates nothing and surfaces as a conflict.
func (r *GormBookingRepository) UpdateGuarded(ctx context.Context, b *bookingDomain.Booking, expected bookingDomain.Status) error {
	result := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("id = ? AND status = ?", b.ID(), expected.String()).
		Updates(map[string]any{
			"status":         b.Status().String(),
			"guest_name":     b.GuestName(),
			"check_in_date":  b.CheckInDate(),
			"check_out_date": b.CheckOutDate(),
			"price":          b.Price(),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		metrics.ConcurrencyConflicts.Inc()
		return domain.NewConflictError("booking was modified by another operation")
	}
	return nil
}

// MarkNoShows transitions stale upcoming bookings to no_show in one statement.
func (r *GormBookingRepository) MarkNoShows(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("status = ? AND check_in_date < ?", bookingDomain.StatusUpcoming.String(), today).
		Updates(map[string]any{
			"status":     bookingDomain.StatusNoShow.String(),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark no-shows: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// MarkOverstays transitions stale checked-in bookings to overstay in one
// statement.
func (r *GormBookingRepository) MarkOverstays(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("status = ? AND check_out_date < ?", bookingDomain.StatusCheckedIn.String(), today).
		Updates(map[string]any{
			"status":     bookingDomain.StatusOverstay.String(),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark overstays: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func blockingStatusStrings() []string {
	statuses := bookingDomain.BlockingStatuses()
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, s.String())
	}
	return out
}

func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:              b.ID(),
		Reference:       b.Reference(),
		GuestName:       b.GuestName(),
		RoomID:          b.RoomID(),
		CheckInDate:     b.CheckInDate(),
		CheckOutDate:    b.CheckOutDate(),
		Status:          b.Status().String(),
		CreatedByUserID: b.CreatedByUserID(),
		CreationSource:  string(b.CreationSource()),
		Price:           b.Price(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstruct(
		m.ID,
		m.Reference,
		m.GuestName,
		m.RoomID,
		bookingDomain.DateOnly(m.CheckInDate),
		bookingDomain.DateOnly(m.CheckOutDate),
		bookingDomain.Status(m.Status),
		m.CreatedByUserID,
		bookingDomain.CreationSource(m.CreationSource),
		m.Price,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainBookings(models []BookingModel) []*bookingDomain.Booking {
	out := make([]*bookingDomain.Booking, 0, len(models))
	for i := range models {
		out = append(out, toDomainBooking(&models[i]))
	}
	return out
}
