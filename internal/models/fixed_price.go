package models

// FixedPriceResult is the computed fixed price for a single requested contract month
type FixedPriceResult struct {
	ContractMonth string  `json:"mes_contrato"`
	PriceCBOT     float64 `json:"preco_cbot"`
	Basis         float64 `json:"base"`
	FixedPrice    float64 `json:"preco_fixo"`
}
