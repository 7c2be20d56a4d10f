package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/trogers1052/soy-fixed-price/internal/models"
)

// PriceObservationRepository defines the store operations the ingestion consumer needs
type PriceObservationRepository interface {
	CreatePriceObservation(ctx context.Context, p *models.PriceObservation) error
	PriceObservationExists(ctx context.Context, id string) (bool, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
	Config() kafka.ReaderConfig
}

// Consumer stores futures price observations published by an upstream feed
type Consumer struct {
	reader messageReader
	repo   PriceObservationRepository
}

// NewConsumer creates a new Kafka consumer for futures price events
func NewConsumer(brokers []string, topic, groupID string, repo PriceObservationRepository) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
	}
}

// Start consumes messages until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	log.WithField("topic", c.reader.Config().Topic).Info("starting futures price consumer")

	for {
		select {
		case <-ctx.Done():
			log.Info("futures price consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return c.reader.Close()
				}
				log.WithError(err).Error("failed to read message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"partition": msg.Partition,
					"offset":    msg.Offset,
				}).Error("failed to process message")
			}
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.FuturesPriceEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal futures price event: %w", err)
	}

	if event.EventType != models.EventTypeFuturesPriceRecorded {
		log.WithField("event_type", event.EventType).Debug("ignoring event")
		return nil
	}

	if event.Data.ID != "" {
		exists, err := c.repo.PriceObservationExists(ctx, event.Data.ID)
		if err != nil {
			return fmt.Errorf("failed to check for duplicate observation: %w", err)
		}
		if exists {
			log.WithField("id", event.Data.ID).Debug("observation already stored, skipping")
			return nil
		}
	}

	observation, err := convertEventToObservation(event)
	if err != nil {
		return fmt.Errorf("failed to convert event: %w", err)
	}

	if err := c.repo.CreatePriceObservation(ctx, observation); err != nil {
		return fmt.Errorf("failed to save price observation: %w", err)
	}

	log.WithFields(log.Fields{
		"id":             observation.ID,
		"contract_month": observation.ContractMonth,
		"price":          observation.Price.StringFixed(2),
		"source":         event.Source,
	}).Info("stored futures price")
	return nil
}

func convertEventToObservation(event models.FuturesPriceEvent) (*models.PriceObservation, error) {
	data := event.Data

	month := models.NormalizeContractMonth(data.ContractMonth)
	if month == "" {
		return nil, fmt.Errorf("missing contract month")
	}

	price, err := decimal.NewFromString(data.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", data.Price, err)
	}

	createdAt := time.Now().UTC()
	if data.RecordedAt != nil && *data.RecordedAt != "" {
		if t, err := time.Parse(time.RFC3339, *data.RecordedAt); err == nil {
			createdAt = t.UTC()
		} else {
			log.WithField("recorded_at", *data.RecordedAt).Warn("unparseable timestamp, using receive time")
		}
	}

	id := data.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &models.PriceObservation{
		ID:            id,
		ContractMonth: month,
		Price:         price.Round(2),
		CreatedAt:     createdAt,
	}, nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
