// Package seed generates synthetic CBOT soybean futures prices for local use.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/trogers1052/soy-fixed-price/internal/models"
)

// monthCodes are the Portuguese month abbreviations used in contract labels
var monthCodes = []string{"JAN", "FEV", "MAR", "ABR", "MAI", "JUN", "JUL", "AGO", "SET", "OUT", "NOV", "DEZ"}

var (
	basePrice = decimal.NewFromInt(400)
	priceStep = decimal.NewFromInt(5)
)

// BatchWriter stores a batch of observations atomically
type BatchWriter interface {
	CreatePriceObservationBatch(ctx context.Context, observations []*models.PriceObservation) error
}

// ContractMonths returns the twelve contract labels of a year, e.g. JAN24..DEZ24
func ContractMonths(year int) []string {
	suffix := fmt.Sprintf("%02d", year%100)
	months := make([]string, len(monthCodes))
	for i, code := range monthCodes {
		months[i] = code + suffix
	}
	return months
}

// Observations builds one observation per contract month priced 400 + 5*i,
// all sharing the same creation timestamp.
func Observations(year int, now time.Time) []*models.PriceObservation {
	createdAt := now.UTC()
	months := ContractMonths(year)
	observations := make([]*models.PriceObservation, len(months))
	for i, month := range months {
		observations[i] = &models.PriceObservation{
			ID:            uuid.NewString(),
			ContractMonth: month,
			Price:         basePrice.Add(priceStep.Mul(decimal.NewFromInt(int64(i)))),
			CreatedAt:     createdAt,
		}
	}
	return observations
}

// Run inserts a year of synthetic observations in a single batch
func Run(ctx context.Context, w BatchWriter, year int, now time.Time) error {
	observations := Observations(year, now)
	if err := w.CreatePriceObservationBatch(ctx, observations); err != nil {
		log.WithError(err).WithField("year", year).Error("failed to insert seed data")
		return fmt.Errorf("failed to seed %d: %w", year, err)
	}

	log.WithFields(log.Fields{
		"year":  year,
		"count": len(observations),
	}).Info("seed data inserted")
	return nil
}
