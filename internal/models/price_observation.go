package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceObservation is one recorded CBOT soybean futures price for a contract month.
// Several observations may share a contract month; the newest CreatedAt wins.
type PriceObservation struct {
	ID            string          `json:"id"`
	ContractMonth string          `json:"mes_contrato"`
	Price         decimal.Decimal `json:"preco"`
	CreatedAt     time.Time       `json:"criado_em"`
}

// NormalizeContractMonth trims surrounding whitespace and uppercases a contract month label
func NormalizeContractMonth(contractMonth string) string {
	return strings.ToUpper(strings.TrimSpace(contractMonth))
}
