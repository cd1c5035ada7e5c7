package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harborview/hotel-backend/internal/domain"
	roomDomain "github.com/harborview/hotel-backend/internal/domain/room"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Number    string          `gorm:"uniqueIndex;not null;size:20"`
	RoomType  string          `gorm:"not null;size:10"`
	Status    string          `gorm:"not null;size:20;index"`
	Price     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RoomModel) TableName() string {
	return "rooms"
}

// GormRoomRepository is the GORM-based implementation of room.Repository.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID retrieves a room by its unique identifier.
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	var model RoomModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Room", id.String())
		}
		return nil, fmt.Errorf("failed to find room by ID: %w", err)
	}
	return toDomainRoom(&model), nil
}

// FindByNumber retrieves a room by its human-facing number.
func (r *GormRoomRepository) FindByNumber(ctx context.Context, number string) (*roomDomain.Room, error) {
	var model RoomModel
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Room", number)
		}
		return nil, fmt.Errorf("failed to find room by number: %w", err)
	}
	return toDomainRoom(&model), nil
}

// NumberExists reports whether a room with the given number already exists.
func (r *GormRoomRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&RoomModel{}).
		Where("number = ?", number).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check room number existence: %w", err)
	}
	return count > 0, nil
}

// List retrieves rooms matching the filter, ordered by room number.
func (r *GormRoomRepository) List(ctx context.Context, filter roomDomain.ListFilter) ([]*roomDomain.Room, error) {
	query := r.db.WithContext(ctx).Model(&RoomModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.Type != nil {
		query = query.Where("room_type = ?", string(*filter.Type))
	}

	var models []RoomModel
	if err := query.Order("number ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	out := make([]*roomDomain.Room, 0, len(models))
	for i := range models {
		out = append(out, toDomainRoom(&models[i]))
	}
	return out, nil
}

// Save persists a new room.
func (r *GormRoomRepository) Save(ctx context.Context, rm *roomDomain.Room) error {
	model := toRoomModel(rm)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("room number %q already exists", rm.Number()))
		}
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

// Update persists changes to an existing room.
func (r *GormRoomRepository) Update(ctx context.Context, rm *roomDomain.Room) error {
	result := r.db.WithContext(ctx).Model(&RoomModel{}).
		Where("id = ?", rm.ID()).
		Updates(map[string]any{
			"room_type":  string(rm.RoomType()),
			"status":     rm.Status().String(),
			"price":      rm.Price(),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update room: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Room", rm.ID().String())
	}
	return nil
}

// UpdateStatus sets only the room's housekeeping status.
func (r *GormRoomRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status roomDomain.Status) error {
	result := r.db.WithContext(ctx).Model(&RoomModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status.String(),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update room status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Room", id.String())
	}
	return nil
}

func toRoomModel(rm *roomDomain.Room) *RoomModel {
	return &RoomModel{
		ID:        rm.ID(),
		Number:    rm.Number(),
		RoomType:  string(rm.RoomType()),
		Status:    rm.Status().String(),
		Price:     rm.Price(),
		CreatedAt: rm.CreatedAt(),
		UpdatedAt: rm.UpdatedAt(),
	}
}

func toDomainRoom(m *RoomModel) *roomDomain.Room {
	return roomDomain.Reconstruct(
		m.ID,
		m.Number,
		roomDomain.Type(m.RoomType),
		roomDomain.Status(m.Status),
		m.Price,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
