package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkravets/storecart/internal/domain"
	"github.com/segmentio/kafka-go"
)

// OrderPlacedEvent is the payload published after a successful placement.
type OrderPlacedEvent struct {
	OrderNumber string            `json:"order_number"`
	UserID      string            `json:"user_id"`
	Total       int64             `json:"total"`
	Lines       []domain.CartLine `json:"lines"`
	PlacedAt    time.Time         `json:"placed_at"`
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error
}

type KafkaPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, timeout: 5 * time.Second}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.OrderNumber),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
