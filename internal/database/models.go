package database

import "time"

// Position status values
const (
	PositionOpen    = "open"
	PositionClosed  = "closed"
	PositionExpired = "expired"
)

// Position is one journaled trade against a prediction market
type Position struct {
	ID         int64      `json:"id"`
	Venue      string     `json:"venue"`
	MarketID   string     `json:"marketId,omitempty"`
	Question   string     `json:"question"`
	Side       string     `json:"side"` // YES or NO
	EntryPrice float64    `json:"entryPrice"`
	ExitPrice  *float64   `json:"exitPrice,omitempty"`
	Quantity   float64    `json:"quantity"`
	PnL        *float64   `json:"pnl,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Status     string     `json:"status"`
	OpenedAt   time.Time  `json:"openedAt"`
	ClosedAt   *time.Time `json:"closedAt,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// PnLSummary aggregates realized profit across the journal
type PnLSummary struct {
	TotalPnL        float64 `json:"totalPnl"`
	OpenPositions   int     `json:"openPositions"`
	ClosedPositions int     `json:"closedPositions"`
}
