package engine

import (
	"fmt"
	"time"

	"papertrade-go/internal/models"

	"go.uber.org/zap"
)

// SettlementTask applies approved transactions and settles matured trades for
// every user on each pass. Each operation is idempotent, so a pass that
// overlaps a user action cannot double-apply anything.
type SettlementTask struct {
	interval time.Duration
}

func (t *SettlementTask) Name() string {
	return "settlement"
}

func (t *SettlementTask) Interval() time.Duration {
	return t.interval
}

func (t *SettlementTask) Run(ctx TaskContext) error {
	var userIDs []uint
	if err := ctx.DB.Model(&models.User{}).Pluck("id", &userIDs).Error; err != nil {
		return fmt.Errorf("could not list users for settlement: %w", err)
	}

	for _, userID := range userIDs {
		if _, err := ctx.Ledger.ApplyApprovedDeposits(userID); err != nil {
			ctx.Logger.Error("Failed to apply approved deposits",
				zap.Uint("user_id", userID), zap.Error(err))
		}
		if _, err := ctx.Ledger.ApplyApprovedWithdrawals(userID); err != nil {
			ctx.Logger.Error("Failed to apply approved withdrawals",
				zap.Uint("user_id", userID), zap.Error(err))
		}
		if _, err := ctx.Ledger.SettleMaturedTrades(userID); err != nil {
			ctx.Logger.Error("Failed to settle matured trades",
				zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// PriceRefreshTask pulls the latest quotes from the feed and writes them into
// the catalog.
type PriceRefreshTask struct {
	interval time.Duration
}

func (t *PriceRefreshTask) Name() string {
	return "price-refresh"
}

func (t *PriceRefreshTask) Interval() time.Duration {
	return t.interval
}

func (t *PriceRefreshTask) Run(ctx TaskContext) error {
	prices, err := ctx.Quotes.GetQuotes()
	if err != nil {
		return fmt.Errorf("could not fetch quotes: %w", err)
	}
	if _, err := ctx.Catalog.UpdatePrices(prices); err != nil {
		return fmt.Errorf("could not update catalog prices: %w", err)
	}
	return nil
}
