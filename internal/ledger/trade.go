package ledger

import (
	"fmt"
	"time"

	"papertrade-go/internal/models"
	"papertrade-go/pkg/id"

	"go.uber.org/zap"
)

// Profit curve bounds. A trade matures over a 7 hour window: the displayed
// profit percentage ramps from the floor toward the early cap during the
// window, then climbs to the ceiling once the window has elapsed.
const (
	ProfitFloor   = 0.0001
	ProfitCeiling = 0.8

	earlyCap      = 0.05
	maturityHours = 7.0
)

// ProfitPercentage computes the profit percentage of a trade at the given
// instant. The value is a monotonically non-decreasing function of elapsed
// time, bounded in [ProfitFloor, ProfitCeiling]. Completed trades keep their
// stored snapshot.
func ProfitPercentage(t *models.Trade, now time.Time) float64 {
	if t.Status == models.TradeStatusCompleted {
		return t.ProfitPercentage
	}

	hours := now.Sub(t.OpenedAt).Hours()
	if hours < maturityHours {
		p := hours / maturityHours * ProfitCeiling
		if p < ProfitFloor {
			return ProfitFloor
		}
		if p > earlyCap {
			return earlyCap
		}
		return p
	}

	p := earlyCap + (hours-maturityHours)/maturityHours*ProfitCeiling
	if p > ProfitCeiling {
		return ProfitCeiling
	}
	return p
}

// Matured reports whether the trade's maturity window has fully elapsed.
func Matured(t *models.Trade, now time.Time) bool {
	return now.Sub(t.OpenedAt).Hours() >= maturityHours
}

// OpenTrade creates an active trade against a catalog instrument, snapshotting
// its current price. A buy is rejected when the instrument price exceeds the
// wallet balance; both sides are rejected below the minimum trading balance.
func (l *Ledger) OpenTrade(userID uint, side, symbol string) (*models.Trade, error) {
	if side != models.TradeSideBuy && side != models.TradeSideSell {
		return nil, fmt.Errorf("unknown trade side '%s': %w", side, ErrValidation)
	}

	inst, err := l.catalog.Lookup(symbol)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, err := l.store.getFloat(walletKey(userID))
	if err != nil {
		return nil, err
	}
	if balance < l.trading.MinTradeBalance {
		return nil, fmt.Errorf("minimum balance of %.2f required to trade: %w",
			l.trading.MinTradeBalance, ErrInsufficientFunds)
	}
	if side == models.TradeSideBuy && inst.Price > balance {
		return nil, fmt.Errorf("instrument price %.2f exceeds wallet balance %.2f: %w",
			inst.Price, balance, ErrInsufficientFunds)
	}

	trades, err := l.store.getTrades(userID)
	if err != nil {
		return nil, err
	}

	trade := models.Trade{
		ID:               id.New(),
		Side:             side,
		Symbol:           inst.Symbol,
		Name:             inst.Name,
		Price:            inst.Price,
		OpenedAt:         l.now(),
		Status:           models.TradeStatusActive,
		ProfitPercentage: ProfitFloor,
	}
	trades = append(trades, trade)

	if err := l.store.setTrades(userID, trades); err != nil {
		return nil, err
	}

	l.logger.Info("Opened trade",
		zap.Uint("user_id", userID),
		zap.String("trade_id", trade.ID),
		zap.String("side", side),
		zap.String("symbol", inst.Symbol),
		zap.Float64("price", inst.Price))
	return &trade, nil
}

// Trades returns the user's trades, optionally filtered by status. Profit
// percentages of active trades are computed for the current instant; stored
// records are not modified.
func (l *Ledger) Trades(userID uint, status string) ([]models.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	trades, err := l.store.getTrades(userID)
	if err != nil {
		return nil, err
	}

	now := l.now()
	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if status != "" && t.Status != status {
			continue
		}
		t.ProfitPercentage = ProfitPercentage(&t, now)
		out = append(out, t)
	}
	return out, nil
}

// CompleteTrade transitions a trade to completed, freezing its profit
// percentage at the ceiling. Completing an already-completed trade is a no-op
// returning the stored record, so profit can never be applied twice.
func (l *Ledger) CompleteTrade(userID uint, tradeID string) (*models.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	trades, err := l.store.getTrades(userID)
	if err != nil {
		return nil, err
	}

	for i := range trades {
		if trades[i].ID != tradeID {
			continue
		}
		if trades[i].Status == models.TradeStatusCompleted {
			return &trades[i], nil
		}

		completedAt := l.now()
		trades[i].Status = models.TradeStatusCompleted
		trades[i].ProfitPercentage = ProfitCeiling
		trades[i].CompletedAt = &completedAt

		if err := l.store.setTrades(userID, trades); err != nil {
			return nil, err
		}

		l.logger.Info("Completed trade",
			zap.Uint("user_id", userID),
			zap.String("trade_id", tradeID),
			zap.String("symbol", trades[i].Symbol))
		return &trades[i], nil
	}

	return nil, fmt.Errorf("trade '%s': %w", tradeID, ErrNotFound)
}

// SettleMaturedTrades completes every active trade whose maturity window has
// elapsed and credits walletBalance * settle_rate per trade to the profit
// balance. The active -> completed transition is the exactly-once guard.
func (l *Ledger) SettleMaturedTrades(userID uint) ([]models.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	trades, err := l.store.getTrades(userID)
	if err != nil {
		return nil, err
	}

	now := l.now()
	var settled []models.Trade
	for i := range trades {
		if !trades[i].Active() || !Matured(&trades[i], now) {
			continue
		}
		completedAt := now
		trades[i].Status = models.TradeStatusCompleted
		trades[i].ProfitPercentage = ProfitCeiling
		trades[i].CompletedAt = &completedAt
		settled = append(settled, trades[i])
	}
	if len(settled) == 0 {
		return nil, nil
	}

	balance, err := l.store.getFloat(walletKey(userID))
	if err != nil {
		return nil, err
	}
	profit, err := l.store.getFloat(profitKey(userID))
	if err != nil {
		return nil, err
	}
	credit := balance * l.trading.SettleRate * float64(len(settled))

	err = l.store.Transaction(func(tx *Store) error {
		if err := tx.setTrades(userID, trades); err != nil {
			return err
		}
		return tx.setFloat(profitKey(userID), profit+credit)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Settled matured trades",
		zap.Uint("user_id", userID),
		zap.Int("count", len(settled)),
		zap.Float64("profit_credited", credit))
	return settled, nil
}
