package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trogers1052/soy-fixed-price/internal/models"
)

const latestPriceQuery = `
	SELECT id, mes_contrato, preco, criado_em
	FROM precos_futuros_soja
	WHERE mes_contrato = $1
	ORDER BY criado_em DESC
	LIMIT 1
`

// FindLatestPrice returns the most recent observation for a contract month
// within this session, or nil when none is stored.
func (s *Session) FindLatestPrice(ctx context.Context, contractMonth string) (*models.PriceObservation, error) {
	return findLatestPrice(ctx, s.conn, contractMonth)
}

// FindLatestPrice returns the most recent observation for a contract month, or nil when none is stored
func (db *DB) FindLatestPrice(ctx context.Context, contractMonth string) (*models.PriceObservation, error) {
	return findLatestPrice(ctx, db.conn, contractMonth)
}

func findLatestPrice(ctx context.Context, q queryer, contractMonth string) (*models.PriceObservation, error) {
	month := models.NormalizeContractMonth(contractMonth)

	var p models.PriceObservation
	err := q.QueryRowContext(ctx, latestPriceQuery, month).Scan(
		&p.ID, &p.ContractMonth, &p.Price, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price for %s: %w", month, err)
	}

	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

// CreatePriceObservation inserts a new observation. A missing ID or
// timestamp is filled in before the insert.
func (db *DB) CreatePriceObservation(ctx context.Context, p *models.PriceObservation) error {
	prepareObservation(p, time.Now().UTC())

	query := `
		INSERT INTO precos_futuros_soja (id, mes_contrato, preco, criado_em)
		VALUES ($1, $2, $3, $4)
	`
	_, err := db.conn.ExecContext(ctx, query, p.ID, p.ContractMonth, p.Price, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create price observation: %w", err)
	}
	return nil
}

// CreatePriceObservationBatch inserts all observations in one transaction.
// Either every row is stored or none is.
func (db *DB) CreatePriceObservationBatch(ctx context.Context, observations []*models.PriceObservation) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO precos_futuros_soja (id, mes_contrato, preco, criado_em)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, p := range observations {
		prepareObservation(p, now)
		if _, err := stmt.ExecContext(ctx, p.ID, p.ContractMonth, p.Price, p.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert price observation for %s: %w", p.ContractMonth, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// PriceObservationExists reports whether an observation with the given id is already stored
func (db *DB) PriceObservationExists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM precos_futuros_soja WHERE id = $1)`
	var exists bool
	if err := db.conn.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check price observation existence: %w", err)
	}
	return exists, nil
}

func prepareObservation(p *models.PriceObservation, now time.Time) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.ContractMonth = models.NormalizeContractMonth(p.ContractMonth)
}
