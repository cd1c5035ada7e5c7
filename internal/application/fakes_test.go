package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harborview/hotel-backend/internal/domain"
	"github.com/harborview/hotel-backend/internal/domain/booking"
	"github.com/harborview/hotel-backend/internal/domain/room"
	"github.com/harborview/hotel-backend/internal/kafka"
)

// In-memory repositories backing the service tests. They hand out clones so
// callers mutate aggregates without touching the "stored" state, the same way
// a row read from the database is detached from it.

type fakeBookingRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*booking.Booking

	// beforeGuardedUpdate, when set, runs once before the next guarded update
	// acquires the lock. Tests use it to interleave a competing write.
	beforeGuardedUpdate func()

	// referenceCollisions makes the next N ReferenceExists calls report a
	// taken reference, simulating generator collisions.
	referenceCollisions int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{items: make(map[uuid.UUID]*booking.Booking)}
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	return booking.Reconstruct(
		b.ID(), b.Reference(), b.GuestName(), b.RoomID(),
		b.CheckInDate(), b.CheckOutDate(), b.Status(),
		b.CreatedByUserID(), b.CreationSource(), b.Price(),
		b.CreatedAt(), b.UpdatedAt(),
	)
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) FindByReference(_ context.Context, reference string) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.items {
		if b.Reference() == reference {
			return cloneBooking(b), nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", reference)
}

func (r *fakeBookingRepo) ReferenceExists(_ context.Context, reference string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.referenceCollisions > 0 {
		r.referenceCollisions--
		return true, nil
	}
	for _, b := range r.items {
		if b.Reference() == reference {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookingRepo) FindBlockingOverlaps(_ context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.items {
		if b.RoomID() != roomID || !b.Status().BlocksAvailability() {
			continue
		}
		if excludeID != nil && b.ID() == *excludeID {
			continue
		}
		if booking.Overlaps(b.CheckInDate(), b.CheckOutDate(), checkIn, checkOut) {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) List(_ context.Context, filter booking.ListFilter) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.items {
		if filter.Status != nil && b.Status() != *filter.Status {
			continue
		}
		if filter.GuestName != "" && !strings.Contains(strings.ToLower(b.GuestName()), strings.ToLower(filter.GuestName)) {
			continue
		}
		if filter.FromDate != nil && b.CheckInDate().Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && b.CheckInDate().After(*filter.ToDate) {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInDate().Before(out[j].CheckInDate()) })
	return out, nil
}

func (r *fakeBookingRepo) ListByUser(_ context.Context, userID uuid.UUID, status *booking.Status) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.items {
		if !b.IsOwnedBy(userID) {
			continue
		}
		if status != nil && b.Status() != *status {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[j].CheckInDate().Before(out[i].CheckInDate()) })
	return out, nil
}

func (r *fakeBookingRepo) ListCheckedOut(_ context.Context, roomID *uuid.UUID, start, end *time.Time) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.items {
		if b.Status() != booking.StatusCheckedOut {
			continue
		}
		if roomID != nil && b.RoomID() != *roomID {
			continue
		}
		if start != nil && b.CheckOutDate().Before(*start) {
			continue
		}
		if end != nil && b.CheckInDate().After(*end) {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckOutDate().Before(out[j].CheckOutDate()) })
	return out, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.ID()] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) UpdateGuarded(_ context.Context, b *booking.Booking, expected booking.Status) error {
	if hook := r.beforeGuardedUpdate; hook != nil {
		r.beforeGuardedUpdate = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[b.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	if stored.Status() != expected {
		return domain.NewConflictError("booking was modified by another operation")
	}
	r.items[b.ID()] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) MarkNoShows(_ context.Context, today time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, b := range r.items {
		if b.Status() == booking.StatusUpcoming && b.CheckInDate().Before(today) {
			r.items[id] = booking.Reconstruct(
				b.ID(), b.Reference(), b.GuestName(), b.RoomID(),
				b.CheckInDate(), b.CheckOutDate(), booking.StatusNoShow,
				b.CreatedByUserID(), b.CreationSource(), b.Price(),
				b.CreatedAt(), time.Now().UTC(),
			)
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) MarkOverstays(_ context.Context, today time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, b := range r.items {
		if b.Status() == booking.StatusCheckedIn && b.CheckOutDate().Before(today) {
			r.items[id] = booking.Reconstruct(
				b.ID(), b.Reference(), b.GuestName(), b.RoomID(),
				b.CheckInDate(), b.CheckOutDate(), booking.StatusOverstay,
				b.CreatedByUserID(), b.CreationSource(), b.Price(),
				b.CreatedAt(), time.Now().UTC(),
			)
			n++
		}
	}
	return n, nil
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*room.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{items: make(map[uuid.UUID]*room.Room)}
}

func cloneRoom(r *room.Room) *room.Room {
	return room.Reconstruct(r.ID(), r.Number(), r.RoomType(), r.Status(), r.Price(), r.CreatedAt(), r.UpdatedAt())
}

func (f *fakeRoomRepo) FindByID(_ context.Context, id uuid.UUID) (*room.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rm, ok := f.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Room", id.String())
	}
	return cloneRoom(rm), nil
}

func (f *fakeRoomRepo) FindByNumber(_ context.Context, number string) (*room.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rm := range f.items {
		if rm.Number() == number {
			return cloneRoom(rm), nil
		}
	}
	return nil, domain.NewNotFoundError("Room", number)
}

func (f *fakeRoomRepo) NumberExists(_ context.Context, number string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rm := range f.items {
		if rm.Number() == number {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoomRepo) List(_ context.Context, filter room.ListFilter) ([]*room.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*room.Room
	for _, rm := range f.items {
		if filter.Status != nil && rm.Status() != *filter.Status {
			continue
		}
		if filter.Type != nil && rm.RoomType() != *filter.Type {
			continue
		}
		out = append(out, cloneRoom(rm))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number() < out[j].Number() })
	return out, nil
}

func (f *fakeRoomRepo) Save(_ context.Context, rm *room.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[rm.ID()] = cloneRoom(rm)
	return nil
}

func (f *fakeRoomRepo) Update(_ context.Context, rm *room.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[rm.ID()]; !ok {
		return domain.NewNotFoundError("Room", rm.ID().String())
	}
	f.items[rm.ID()] = cloneRoom(rm)
	return nil
}

func (f *fakeRoomRepo) UpdateStatus(_ context.Context, id uuid.UUID, status room.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rm, ok := f.items[id]
	if !ok {
		return domain.NewNotFoundError("Room", id.String())
	}
	f.items[id] = room.Reconstruct(rm.ID(), rm.Number(), rm.RoomType(), status, rm.Price(), rm.CreatedAt(), time.Now().UTC())
	return nil
}

// fakeUnitOfWork hands the same repositories to fn. The fakes already take
// their own locks per call, which is enough atomicity for these tests.
type fakeUnitOfWork struct {
	bookings booking.Repository
	rooms    room.Repository
}

func (u *fakeUnitOfWork) Do(ctx context.Context, fn func(booking.Repository, room.Repository) error) error {
	return fn(u.bookings, u.rooms)
}

// capturingPublisher records published events in order.
type capturingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *capturingPublisher) Publish(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
