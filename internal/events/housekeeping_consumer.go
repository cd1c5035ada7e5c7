package events

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harborview/hotel-backend/internal/kafka"
)

// RoomCleanedHandler is the slice of the room service the consumer needs.
type RoomCleanedHandler interface {
	CompleteCleaning(ctx context.Context, roomID uuid.UUID) error
}

// HousekeepingConsumer listens for housekeeping events and moves rooms back
// into service when cleaning completes.
type HousekeepingConsumer struct {
	consumer *kafka.Consumer
	rooms    RoomCleanedHandler
	logger   *zap.Logger
}

func NewHousekeepingConsumer(consumer *kafka.Consumer, rooms RoomCleanedHandler, logger *zap.Logger) *HousekeepingConsumer {
	return &HousekeepingConsumer{consumer: consumer, rooms: rooms, logger: logger}
}

// Run consumes housekeeping events until ctx is cancelled.
func (h *HousekeepingConsumer) Run(ctx context.Context) error {
	return h.consumer.Run(ctx, h.handle)
}

func (h *HousekeepingConsumer) handle(ctx context.Context, event kafka.CloudEvent) error {
	switch event.Type {
	case TypeRoomCleaned:
		var payload RoomCleaned
		if err := event.ParseData(&payload); err != nil {
			h.logger.Warn("dropping undecodable room.cleaned event",
				zap.String("id", event.ID), zap.Error(err))
			return nil
		}
		if err := h.rooms.CompleteCleaning(ctx, payload.RoomID); err != nil {
			h.logger.Warn("could not complete cleaning",
				zap.String("room_id", payload.RoomID.String()), zap.Error(err))
			return nil
		}
		h.logger.Info("room returned to service",
			zap.String("room_id", payload.RoomID.String()),
			zap.String("cleaned_by", payload.CleanedBy))
	default:
		h.logger.Debug("ignoring event", zap.String("type", event.Type))
	}
	return nil
}
