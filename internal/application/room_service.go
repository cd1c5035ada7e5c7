package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harborview/hotel-backend/internal/domain"
	"github.com/harborview/hotel-backend/internal/domain/room"
)

// CreateRoomRequest carries the fields needed to register a room. Price, when
// nil, falls back to the default nightly rate for the room type.
type CreateRoomRequest struct {
	Number string           `json:"number" binding:"required"`
	Type   string           `json:"type" binding:"required"`
	Price  *decimal.Decimal `json:"price,omitempty"`
}

// UpdateRoomRequest carries a partial room update. Nil fields are untouched.
type UpdateRoomRequest struct {
	Type   *string          `json:"type,omitempty"`
	Status *string          `json:"status,omitempty"`
	Price  *decimal.Decimal `json:"price,omitempty"`
}

// RoomService owns the room inventory: registration, pricing and the
// housekeeping status machine.
type RoomService struct {
	rooms  room.Repository
	logger *zap.Logger
}

func NewRoomService(rooms room.Repository, logger *zap.Logger) *RoomService {
	return &RoomService{rooms: rooms, logger: logger}
}

// CreateRoom registers a new room, rejecting duplicate room numbers.
func (s *RoomService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomDTO, error) {
	roomType, err := room.ParseType(req.Type)
	if err != nil {
		return nil, err
	}

	exists, err := s.rooms.NumberExists(ctx, req.Number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflictError(fmt.Sprintf("room number %q already exists", req.Number))
	}

	rm, err := room.NewRoom(req.Number, roomType)
	if err != nil {
		return nil, err
	}
	if req.Price != nil {
		if err := rm.ChangePrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if err := s.rooms.Save(ctx, rm); err != nil {
		return nil, err
	}

	s.logger.Info("room created",
		zap.String("number", rm.Number()),
		zap.String("type", string(rm.RoomType())))
	return toRoomDTO(rm), nil
}

// GetRoom retrieves a room by id.
func (s *RoomService) GetRoom(ctx context.Context, id uuid.UUID) (*RoomDTO, error) {
	rm, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRoomDTO(rm), nil
}

// GetRoomByNumber retrieves a room by its door number.
func (s *RoomService) GetRoomByNumber(ctx context.Context, number string) (*RoomDTO, error) {
	rm, err := s.rooms.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return toRoomDTO(rm), nil
}

// ListRooms retrieves rooms, optionally filtered by status and type.
func (s *RoomService) ListRooms(ctx context.Context, status, roomType string) ([]*RoomDTO, error) {
	var filter room.ListFilter
	if status != "" {
		parsed, err := room.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = &parsed
	}
	if roomType != "" {
		parsed, err := room.ParseType(roomType)
		if err != nil {
			return nil, err
		}
		filter.Type = &parsed
	}

	items, err := s.rooms.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]*RoomDTO, 0, len(items))
	for _, rm := range items {
		dtos = append(dtos, toRoomDTO(rm))
	}
	return dtos, nil
}

// UpdateRoom applies a partial update. Status changes follow the housekeeping
// state machine with two carve-outs: any room may be flagged dirty directly
// (spilled coffee does not wait for a checkout), and an occupied room can
// never be freed here -- only a guest check-out releases it. The caller's role
// limits which statuses it may set.
func (s *RoomService) UpdateRoom(ctx context.Context, id uuid.UUID, req UpdateRoomRequest, role domain.Role) (*RoomDTO, error) {
	rm, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		target, err := room.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		if !target.IsAllowedForRole(role) {
			return nil, domain.NewForbiddenError(fmt.Sprintf(
				"role %s may not set rooms to %s", role, target))
		}
		if rm.Status() == room.StatusOccupied && target == room.StatusAvailable {
			return nil, domain.NewInvalidTransitionError(rm.Status().String(), target.String())
		}
		if target == room.StatusDirty {
			rm.ForceStatus(target)
		} else if err := rm.ChangeStatus(target); err != nil {
			return nil, err
		}
	}

	if req.Type != nil {
		target, err := room.ParseType(*req.Type)
		if err != nil {
			return nil, err
		}
		if err := rm.ChangeType(target); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		if err := rm.ChangePrice(*req.Price); err != nil {
			return nil, err
		}
	}

	if err := s.rooms.Update(ctx, rm); err != nil {
		return nil, err
	}

	s.logger.Info("room updated",
		zap.String("number", rm.Number()),
		zap.String("status", rm.Status().String()))
	return toRoomDTO(rm), nil
}

// CompleteCleaning moves a room from cleaning back to available. Called by
// the housekeeping event consumer.
func (s *RoomService) CompleteCleaning(ctx context.Context, id uuid.UUID) error {
	rm, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return err
	}
	// Dirty is accepted too: housekeeping may report completion without the
	// desk ever having marked the room as in cleaning.
	if rm.Status() != room.StatusCleaning && rm.Status() != room.StatusDirty {
		return domain.NewInvalidTransitionError(rm.Status().String(), room.StatusAvailable.String())
	}
	if err := rm.ChangeStatus(room.StatusAvailable); err != nil {
		return err
	}
	return s.rooms.Update(ctx, rm)
}
