package models

import "time"

// Event type constants
const (
	EventTypeFuturesPriceRecorded = "FUTURES_PRICE_RECORDED"
	EventTypeFixedPriceQuoted     = "FIXED_PRICE_QUOTED"
)

// FuturesPriceEvent is consumed from Kafka when an upstream feed records a new futures price
type FuturesPriceEvent struct {
	EventType string                `json:"event_type"`
	Source    string                `json:"source"`
	Data      FuturesPriceEventData `json:"data"`
}

// FuturesPriceEventData carries the observation fields as strings so prices keep their precision
type FuturesPriceEventData struct {
	ID            string  `json:"id,omitempty"`
	ContractMonth string  `json:"contract_month"`
	Price         string  `json:"price"`
	RecordedAt    *string `json:"recorded_at,omitempty"`
}

// FixedPriceQuotedEvent is published after a fixed price calculation succeeds
type FixedPriceQuotedEvent struct {
	EventType string             `json:"event_type"`
	Basis     float64            `json:"base"`
	Results   []FixedPriceResult `json:"resultados"`
	Timestamp time.Time          `json:"timestamp"`
}
