package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler processes a single decoded CloudEvent. Returning an error stops
// consumption with the offset uncommitted, so the message is redelivered when
// the group resumes. Handlers that want to skip a message log and return nil.
type Handler func(ctx context.Context, event CloudEvent) error

// fetchCommitter is the slice of kafka.Reader the consume loop needs.
type fetchCommitter interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Consumer reads CloudEvents from a single topic within a consumer group.
type Consumer struct {
	reader *kafka.Reader
	logger *zap.Logger
}

// NewConsumer creates a consumer-group reader for the given topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			GroupID:  groupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		logger: logger.With(zap.String("topic", topic), zap.String("group", groupID)),
	}
}

// Run consumes messages until ctx is cancelled. Malformed envelopes are logged
// and committed so a poison message cannot wedge the partition. A handler
// error stops the loop without committing, keeping the failed message first in
// line for redelivery; committing later messages would silently advance the
// group offset past it.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	return c.consume(ctx, c.reader, handler)
}

func (c *Consumer) consume(ctx context.Context, reader fetchCommitter, handler Handler) error {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		event, err := ParseCloudEvent(msg.Value)
		if err != nil {
			c.logger.Warn("skipping malformed event",
				zap.Int64("offset", msg.Offset), zap.Error(err))
			if err := reader.CommitMessages(ctx, msg); err != nil {
				return err
			}
			continue
		}

		if err := handler(ctx, event); err != nil {
			c.logger.Error("event handler failed",
				zap.String("type", event.Type),
				zap.String("id", event.ID),
				zap.Error(err))
			return fmt.Errorf("failed to handle event %s: %w", event.ID, err)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
