package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const positionColumns = `id, venue, market_id, question, side, entry_price,
	exit_price, quantity, pnl, notes, status, opened_at, closed_at, updated_at`

// ListPositions returns positions newest-first, optionally filtered by status
func (db *DB) ListPositions(ctx context.Context, status string) ([]Position, error) {
	if db.Pool == nil {
		return []Position{}, nil
	}

	query := `SELECT ` + positionColumns + ` FROM positions`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY opened_at DESC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	positions := []Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// GetPosition returns a single position, or nil when the id is unknown
func (db *DB) GetPosition(ctx context.Context, id int64) (*Position, error) {
	if db.Pool == nil {
		return nil, nil
	}

	row := db.Pool.QueryRow(ctx, `SELECT `+positionColumns+` FROM positions WHERE id = $1`, id)
	p, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// CreatePosition inserts a new open position and fills in its id and timestamps
func (db *DB) CreatePosition(ctx context.Context, p *Position) error {
	if db.Pool == nil {
		return errors.New("position journal is not configured")
	}

	if p.Status == "" {
		p.Status = PositionOpen
	}
	now := time.Now()
	if p.OpenedAt.IsZero() {
		p.OpenedAt = now
	}
	p.UpdatedAt = now

	query := `
		INSERT INTO positions (
			venue, market_id, question, side, entry_price, quantity,
			notes, status, opened_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := db.Pool.QueryRow(ctx, query,
		p.Venue, p.MarketID, p.Question, p.Side, p.EntryPrice, p.Quantity,
		p.Notes, p.Status, p.OpenedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}
	return nil
}

// UpdatePosition applies journal edits to an existing position
func (db *DB) UpdatePosition(ctx context.Context, p *Position) error {
	if db.Pool == nil {
		return errors.New("position journal is not configured")
	}

	p.UpdatedAt = time.Now()

	query := `
		UPDATE positions SET
			venue = $2, market_id = $3, question = $4, side = $5,
			entry_price = $6, quantity = $7, notes = $8, status = $9,
			updated_at = $10
		WHERE id = $1`

	tag, err := db.Pool.Exec(ctx, query,
		p.ID, p.Venue, p.MarketID, p.Question, p.Side,
		p.EntryPrice, p.Quantity, p.Notes, p.Status, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("position %d not found", p.ID)
	}
	return nil
}

// ClosePosition marks a position closed with its exit price and realized P&L
func (db *DB) ClosePosition(ctx context.Context, id int64, exitPrice, pnl float64) error {
	if db.Pool == nil {
		return errors.New("position journal is not configured")
	}

	now := time.Now()
	query := `
		UPDATE positions SET
			status = $2, exit_price = $3, pnl = $4, closed_at = $5, updated_at = $5
		WHERE id = $1`

	tag, err := db.Pool.Exec(ctx, query, id, PositionClosed, exitPrice, pnl, now)
	if err != nil {
		return fmt.Errorf("failed to close position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("position %d not found", id)
	}
	return nil
}

// DeletePosition removes a position from the journal
func (db *DB) DeletePosition(ctx context.Context, id int64) error {
	if db.Pool == nil {
		return errors.New("position journal is not configured")
	}

	tag, err := db.Pool.Exec(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("position %d not found", id)
	}
	return nil
}

// PnLSummary totals realized P&L and counts positions by status
func (db *DB) PnLSummary(ctx context.Context) (*PnLSummary, error) {
	if db.Pool == nil {
		return &PnLSummary{}, nil
	}

	query := `
		SELECT
			COALESCE(SUM(pnl), 0),
			COUNT(*) FILTER (WHERE status = 'open'),
			COUNT(*) FILTER (WHERE status = 'closed')
		FROM positions`

	var summary PnLSummary
	err := db.Pool.QueryRow(ctx, query).Scan(
		&summary.TotalPnL, &summary.OpenPositions, &summary.ClosedPositions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize pnl: %w", err)
	}
	return &summary, nil
}

func scanPosition(row pgx.Row) (Position, error) {
	var p Position
	err := row.Scan(
		&p.ID, &p.Venue, &p.MarketID, &p.Question, &p.Side, &p.EntryPrice,
		&p.ExitPrice, &p.Quantity, &p.PnL, &p.Notes, &p.Status,
		&p.OpenedAt, &p.ClosedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Position{}, fmt.Errorf("failed to scan position: %w", err)
	}
	return p, nil
}
