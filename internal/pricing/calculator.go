// Package pricing turns stored CBOT soybean futures prices into fixed prices.
package pricing

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/soy-fixed-price/internal/models"
)

// ConversionFactor converts a per-bushel CBOT quote to the metric-ton equivalent
const ConversionFactor = 1.10231

var (
	MinBasis = decimal.NewFromInt(-50)
	MaxBasis = decimal.NewFromInt(50)
)

// PriceLookup resolves a contract month to its latest observation.
// A nil observation with a nil error means the month is not stored.
type PriceLookup interface {
	FindLatestPrice(ctx context.Context, contractMonth string) (*models.PriceObservation, error)
}

// ValidateBasis checks that basis lies in [MinBasis, MaxBasis]
func ValidateBasis(basis decimal.Decimal) error {
	if basis.LessThan(MinBasis) {
		return &ValidationError{
			Field: "base",
			Type:  "greater_than_equal",
			Msg:   "Input should be greater than or equal to " + MinBasis.String(),
		}
	}
	if basis.GreaterThan(MaxBasis) {
		return &ValidationError{
			Field: "base",
			Type:  "less_than_equal",
			Msg:   "Input should be less than or equal to " + MaxBasis.String(),
		}
	}
	return nil
}

// ComputeFixedPrices prices every contract month in input order. The first
// month without a stored price aborts the whole batch.
func ComputeFixedPrices(ctx context.Context, lookup PriceLookup, basis decimal.Decimal, contractMonths []string) ([]models.FixedPriceResult, error) {
	if err := ValidateBasis(basis); err != nil {
		return nil, err
	}

	basisValue := basis.InexactFloat64()
	results := make([]models.FixedPriceResult, 0, len(contractMonths))

	for _, month := range contractMonths {
		observation, err := lookup.FindLatestPrice(ctx, month)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s: %w", month, err)
		}
		if observation == nil {
			return nil, &ContractMonthNotFoundError{ContractMonth: month}
		}

		priceCBOT := observation.Price.InexactFloat64()
		results = append(results, models.FixedPriceResult{
			ContractMonth: month,
			PriceCBOT:     priceCBOT,
			Basis:         basisValue,
			FixedPrice:    FixedPrice(priceCBOT, basisValue),
		})
	}

	return results, nil
}

// FixedPrice applies the basis and unit conversion to a CBOT price
func FixedPrice(priceCBOT, basis float64) float64 {
	return Round2((priceCBOT + basis) * ConversionFactor)
}

// Round2 rounds to two decimal places from the exact binary value of x,
// breaking exact ties to even.
func Round2(x float64) float64 {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	return rounded
}
