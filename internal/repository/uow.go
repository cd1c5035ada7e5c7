package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/harborview/hotel-backend/internal/domain/booking"
	"github.com/harborview/hotel-backend/internal/domain/room"
)

// GormUnitOfWork executes a function with repositories bound to a single
// database transaction.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork.
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Do runs fn inside a transaction. Any error rolls the whole transaction back.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(bookings booking.Repository, rooms room.Repository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormBookingRepository(tx), NewGormRoomRepository(tx))
	})
}
