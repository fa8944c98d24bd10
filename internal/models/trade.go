package models

import "time"

const (
	TradeSideBuy  = "buy"
	TradeSideSell = "sell"

	TradeStatusActive    = "active"
	TradeStatusCompleted = "completed"
)

// Trade represents a simulated position. Trades live inside the ledger as a
// JSON sequence per user, not as table rows; the struct is the wire and
// storage shape at once.
type Trade struct {
	ID               string     `json:"id"`
	Side             string     `json:"side"` // "buy" or "sell"
	Symbol           string     `json:"symbol"`
	Name             string     `json:"name"`
	Price            float64    `json:"price"`
	OpenedAt         time.Time  `json:"opened_at"`
	Status           string     `json:"status"`
	ProfitPercentage float64    `json:"profit_percentage"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// Active reports whether the trade is still maturing.
func (t *Trade) Active() bool {
	return t.Status == TradeStatusActive
}
