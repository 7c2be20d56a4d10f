package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/trogers1052/soy-fixed-price/internal/database"
	"github.com/trogers1052/soy-fixed-price/internal/metrics"
	"github.com/trogers1052/soy-fixed-price/internal/models"
	"github.com/trogers1052/soy-fixed-price/internal/pricing"
)

const internalErrorMessage = "erro interno do servidor"

// QuotePublisher announces successful fixed price calculations
type QuotePublisher interface {
	PublishFixedPriceQuoted(ctx context.Context, basis float64, results []models.FixedPriceResult) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db        *database.DB
	publisher QuotePublisher
	metrics   *metrics.Metrics
}

// NewHandler creates a new Handler. publisher may be nil.
func NewHandler(db *database.DB, publisher QuotePublisher, m *metrics.Metrics) *Handler {
	return &Handler{
		db:        db,
		publisher: publisher,
		metrics:   m,
	}
}

// FixedPriceResponse is the body of a successful POST /api/preco_fixo
type FixedPriceResponse struct {
	Results []models.FixedPriceResult `json:"resultados"`
}

// ErrorResponse is the body of 404 and 500 responses
type ErrorResponse struct {
	Error string `json:"erro"`
}

// FuturesPriceResponse is the body of GET /api/precos_futuros/{mes_contrato}
type FuturesPriceResponse struct {
	ID            string    `json:"id"`
	ContractMonth string    `json:"mes_contrato"`
	Price         float64   `json:"preco"`
	CreatedAt     time.Time `json:"criado_em"`
}

// CalculateFixedPrice handles POST /api/preco_fixo
func (h *Handler) CalculateFixedPrice(w http.ResponseWriter, r *http.Request) {
	basis, contractMonths, details := decodeFixedPriceRequest(w, r)
	if details != nil {
		h.metrics.ValidationFailuresTotal.Inc()
		respondJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{Detail: details})
		return
	}

	ctx := r.Context()
	session, err := h.db.Session(ctx)
	if err != nil {
		log.WithError(err).Error("failed to open database session")
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: internalErrorMessage})
		return
	}
	defer session.Close()

	results, err := pricing.ComputeFixedPrices(ctx, session, basis, contractMonths)
	if err != nil {
		h.respondCalculationError(w, err)
		return
	}

	h.metrics.QuotesTotal.Inc()
	h.metrics.QuotedMonthsTotal.Add(float64(len(results)))

	if h.publisher != nil {
		if err := h.publisher.PublishFixedPriceQuoted(ctx, basis.InexactFloat64(), results); err != nil {
			log.WithError(err).Warn("failed to publish fixed price quote")
		}
	}

	respondJSON(w, http.StatusOK, FixedPriceResponse{Results: results})
}

func (h *Handler) respondCalculationError(w http.ResponseWriter, err error) {
	var notFound *pricing.ContractMonthNotFoundError
	var validation *pricing.ValidationError

	switch {
	case errors.As(err, &notFound):
		h.metrics.ContractMonthsNotFound.Inc()
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: contractMonthNotFoundMessage(notFound.ContractMonth)})
	case errors.As(err, &validation):
		h.metrics.ValidationFailuresTotal.Inc()
		respondJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{Detail: []ValidationDetail{{
			Loc:  []any{"body", validation.Field},
			Msg:  validation.Msg,
			Type: validation.Type,
		}}})
	default:
		log.WithError(err).Error("fixed price calculation failed")
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: internalErrorMessage})
	}
}

// GetLatestPrice handles GET /api/precos_futuros/{mes_contrato}
func (h *Handler) GetLatestPrice(w http.ResponseWriter, r *http.Request) {
	contractMonth := mux.Vars(r)["mes_contrato"]

	observation, err := h.db.FindLatestPrice(r.Context(), contractMonth)
	if err != nil {
		log.WithError(err).WithField("mes_contrato", contractMonth).Error("failed to get latest price")
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: internalErrorMessage})
		return
	}
	if observation == nil {
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: contractMonthNotFoundMessage(contractMonth)})
		return
	}

	respondJSON(w, http.StatusOK, FuturesPriceResponse{
		ID:            observation.ID,
		ContractMonth: observation.ContractMonth,
		Price:         observation.Price.InexactFloat64(),
		CreatedAt:     observation.CreatedAt,
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		log.WithError(err).Warn("health check failed")
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func contractMonthNotFoundMessage(contractMonth string) string {
	return fmt.Sprintf("Mês de contrato %s não encontrado", contractMonth)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}
