package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/soy-fixed-price/internal/models"
)

// MockLookup implements PriceLookup over an in-memory list of observations
type MockLookup struct {
	observations []*models.PriceObservation
	err          error

	// Track lookups in call order
	Calls []string
}

func NewMockLookup(observations ...*models.PriceObservation) *MockLookup {
	return &MockLookup{observations: observations}
}

func (m *MockLookup) FindLatestPrice(ctx context.Context, contractMonth string) (*models.PriceObservation, error) {
	m.Calls = append(m.Calls, contractMonth)
	if m.err != nil {
		return nil, m.err
	}

	month := models.NormalizeContractMonth(contractMonth)
	var latest *models.PriceObservation
	for _, o := range m.observations {
		if o.ContractMonth != month {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	return latest, nil
}

var seededAt = time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

// seededLookup mirrors the seeder output: JAN24..DEZ24 priced 400 + 5*i
func seededLookup() *MockLookup {
	months := []string{"JAN24", "FEV24", "MAR24", "ABR24", "MAI24", "JUN24", "JUL24", "AGO24", "SET24", "OUT24", "NOV24", "DEZ24"}
	var obs []*models.PriceObservation
	for i, m := range months {
		obs = append(obs, &models.PriceObservation{
			ID:            m,
			ContractMonth: m,
			Price:         decimal.NewFromInt(400 + 5*int64(i)),
			CreatedAt:     seededAt,
		})
	}
	return NewMockLookup(obs...)
}

func TestComputeFixedPrices(t *testing.T) {
	ctx := context.Background()

	t.Run("single month applies basis and conversion", func(t *testing.T) {
		results, err := ComputeFixedPrices(ctx, seededLookup(), decimal.NewFromInt(10), []string{"JAN24"})
		require.NoError(t, err)
		require.Len(t, results, 1)

		assert.Equal(t, models.FixedPriceResult{
			ContractMonth: "JAN24",
			PriceCBOT:     400.0,
			Basis:         10.0,
			FixedPrice:    451.95,
		}, results[0])
	})

	t.Run("results follow input order", func(t *testing.T) {
		results, err := ComputeFixedPrices(ctx, seededLookup(), decimal.NewFromInt(-5), []string{"DEZ24", "JAN24"})
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "DEZ24", results[0].ContractMonth)
		assert.Equal(t, 455.0, results[0].PriceCBOT)
		assert.Equal(t, -5.0, results[0].Basis)
		assert.Equal(t, 496.04, results[0].FixedPrice)

		assert.Equal(t, "JAN24", results[1].ContractMonth)
		assert.Equal(t, 400.0, results[1].PriceCBOT)
		assert.Equal(t, 435.41, results[1].FixedPrice)
	})

	t.Run("unknown month fails with not found", func(t *testing.T) {
		results, err := ComputeFixedPrices(ctx, seededLookup(), decimal.Zero, []string{"XYZ99"})
		require.Error(t, err)
		assert.Nil(t, results)

		var notFound *ContractMonthNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "XYZ99", notFound.ContractMonth)
		assert.Equal(t, "contract month XYZ99 not found", err.Error())
	})

	t.Run("unknown month aborts the batch and stops lookups", func(t *testing.T) {
		lookup := seededLookup()
		results, err := ComputeFixedPrices(ctx, lookup, decimal.Zero, []string{"JAN24", "XYZ99", "FEV24"})
		require.Error(t, err)
		assert.Nil(t, results)

		var notFound *ContractMonthNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "XYZ99", notFound.ContractMonth)
		assert.Equal(t, []string{"JAN24", "XYZ99"}, lookup.Calls)
	})

	t.Run("basis out of range fails before any lookup", func(t *testing.T) {
		for _, basis := range []decimal.Decimal{decimal.NewFromInt(60), decimal.NewFromInt(-51), decimal.RequireFromString("50.01")} {
			lookup := seededLookup()
			_, err := ComputeFixedPrices(ctx, lookup, basis, []string{"JAN24"})
			require.Error(t, err)

			var validation *ValidationError
			require.True(t, errors.As(err, &validation), "basis %s", basis)
			assert.Equal(t, "base", validation.Field)
			assert.Empty(t, lookup.Calls)
		}
	})

	t.Run("basis bounds are inclusive", func(t *testing.T) {
		results, err := ComputeFixedPrices(ctx, seededLookup(), decimal.NewFromInt(50), []string{"DEZ24"})
		require.NoError(t, err)
		assert.Equal(t, 556.67, results[0].FixedPrice)

		results, err = ComputeFixedPrices(ctx, seededLookup(), decimal.NewFromInt(-50), []string{"JAN24"})
		require.NoError(t, err)
		assert.Equal(t, 385.81, results[0].FixedPrice)
	})

	t.Run("latest observation wins", func(t *testing.T) {
		lookup := NewMockLookup(
			&models.PriceObservation{ID: "1", ContractMonth: "MAR24", Price: decimal.NewFromInt(410), CreatedAt: seededAt},
			&models.PriceObservation{ID: "2", ContractMonth: "MAR24", Price: decimal.RequireFromString("412.34"), CreatedAt: seededAt.Add(time.Hour)},
			&models.PriceObservation{ID: "3", ContractMonth: "MAR24", Price: decimal.NewFromInt(399), CreatedAt: seededAt.Add(-time.Hour)},
		)

		results, err := ComputeFixedPrices(ctx, lookup, decimal.Zero, []string{"MAR24"})
		require.NoError(t, err)
		assert.Equal(t, 412.34, results[0].PriceCBOT)
		assert.Equal(t, 454.53, results[0].FixedPrice)
	})

	t.Run("labels are echoed as supplied", func(t *testing.T) {
		results, err := ComputeFixedPrices(ctx, seededLookup(), decimal.Zero, []string{" jan24 ", "JAN24"})
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, " jan24 ", results[0].ContractMonth)
		assert.Equal(t, "JAN24", results[1].ContractMonth)
		assert.Equal(t, results[0].FixedPrice, results[1].FixedPrice)
		assert.Equal(t, results[0].PriceCBOT, results[1].PriceCBOT)
	})

	t.Run("duplicates yield one result each", func(t *testing.T) {
		results, err := ComputeFixedPrices(ctx, seededLookup(), decimal.NewFromInt(3), []string{"ABR24", "ABR24", "ABR24"})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, results[0], results[1])
		assert.Equal(t, results[1], results[2])
	})

	t.Run("repeated calls are identical", func(t *testing.T) {
		lookup := seededLookup()
		first, err := ComputeFixedPrices(ctx, lookup, decimal.RequireFromString("12.5"), []string{"FEV24", "OUT24"})
		require.NoError(t, err)
		second, err := ComputeFixedPrices(ctx, lookup, decimal.RequireFromString("12.5"), []string{"FEV24", "OUT24"})
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 460.21, first[0].FixedPrice)
	})

	t.Run("empty month list yields empty results", func(t *testing.T) {
		results, err := ComputeFixedPrices(ctx, seededLookup(), decimal.Zero, []string{})
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		lookup := seededLookup()
		lookup.err = errors.New("connection refused")

		_, err := ComputeFixedPrices(ctx, lookup, decimal.Zero, []string{"JAN24"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")

		var notFound *ContractMonthNotFoundError
		assert.False(t, errors.As(err, &notFound))
	})
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{451.9471, 451.95},
		{440.924, 440.92},
		{0.125, 0.12}, // exact tie rounds to even
		{0.375, 0.38},
		{2.675, 2.67}, // binary value sits just below the tie
		{1.005, 1.0},
		{-3.14159, -3.14},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "Round2(%v)", tt.in)
	}
}

func TestFixedPrice(t *testing.T) {
	assert.Equal(t, 451.95, FixedPrice(400, 10))
	assert.Equal(t, 440.92, FixedPrice(400, 0))
	assert.Equal(t, 462.96, FixedPrice(420, -0.01))
}
