package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/synaptica-ai/cvdrisk/pkg/common/logger"
	"github.com/synaptica-ai/cvdrisk/pkg/common/models"
)

type Consumer struct {
	reader *kafka.Reader
}

type EventHandler func(ctx context.Context, event models.Event) error

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{reader: reader}
}

// Consume blocks until ctx is cancelled. Messages whose handler fails are left
// uncommitted so the group redelivers them.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			logger.Log.WithError(err).Error("Failed to fetch message")
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		var event models.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			logger.Log.WithError(err).Error("Failed to unmarshal event")
			c.reader.CommitMessages(ctx, message)
			continue
		}

		if err := handler(ctx, event); err != nil {
			logger.Log.WithError(err).WithFields(map[string]interface{}{
				"event_id":   event.ID,
				"event_type": event.Type,
			}).Error("Failed to process event")
			continue
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			logger.Log.WithError(err).Error("Failed to commit message")
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
