package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/soy-fixed-price/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes fixed price quotes to Kafka
type Producer struct {
	writer messageWriter
	topic  string
}

// NewProducer returns a producer writing quotes to topic. Quotes for the
// same leading contract month hash to the same partition.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
		topic: topic,
	}
}

// PublishFixedPriceQuoted publishes the results of a successful calculation
func (p *Producer) PublishFixedPriceQuoted(ctx context.Context, basis float64, results []models.FixedPriceResult) error {
	event := models.FixedPriceQuotedEvent{
		EventType: models.EventTypeFixedPriceQuoted,
		Basis:     basis,
		Results:   results,
		Timestamp: time.Now().UTC(),
	}

	var key string
	if len(results) > 0 {
		key = models.NormalizeContractMonth(results[0].ContractMonth)
	}
	return p.publish(ctx, key, event)
}

func (p *Producer) publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %T: %w", event, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes pending quotes and releases the writer
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close quote writer: %w", err)
	}
	return nil
}
