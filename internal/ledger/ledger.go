package ledger

import (
	"sync"
	"time"

	"papertrade-go/internal/config"
	"papertrade-go/internal/models"

	"go.uber.org/zap"
)

// InstrumentSource resolves catalog symbols when opening trades.
type InstrumentSource interface {
	Lookup(symbol string) (*models.Instrument, error)
}

// Ledger owns all wallet, profit, trade and transaction state. Every exported
// operation holds the mutex for its whole read-modify-write span, so the
// store's whole-value access pattern cannot lose updates between concurrent
// timers and handlers. The guarantee requires a single writing process: the
// server daemon is the only mutator, and out-of-process tooling must go
// through its API.
type Ledger struct {
	mu      sync.Mutex
	store   *Store
	catalog InstrumentSource
	logger  *zap.Logger
	wallet  config.Wallet
	trading config.Trading

	// now is swappable so tests can simulate elapsed time.
	now func() time.Time
}

// New creates a ledger over the given store and catalog.
func New(store *Store, catalog InstrumentSource, cfg *config.Config, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:   store,
		catalog: catalog,
		logger:  logger,
		wallet:  cfg.Wallet,
		trading: cfg.Trading,
		now:     time.Now,
	}
}

// SetClock overrides the ledger's time source. Intended for tests.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// Balances returns the current wallet and profit balances.
func (l *Ledger) Balances(userID uint) (wallet, profit float64, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	wallet, err = l.store.getFloat(walletKey(userID))
	if err != nil {
		return 0, 0, err
	}
	profit, err = l.store.getFloat(profitKey(userID))
	if err != nil {
		return 0, 0, err
	}
	return wallet, profit, nil
}

// TransferProfitToWallet moves the whole profit balance into the wallet.
// A zero profit balance is a no-op.
func (l *Ledger) TransferProfitToWallet(userID uint) (wallet, profit float64, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	profit, err = l.store.getFloat(profitKey(userID))
	if err != nil {
		return 0, 0, err
	}
	wallet, err = l.store.getFloat(walletKey(userID))
	if err != nil {
		return 0, 0, err
	}
	if profit <= 0 {
		return wallet, profit, nil
	}

	wallet += profit
	err = l.store.Transaction(func(tx *Store) error {
		if err := tx.setFloat(walletKey(userID), wallet); err != nil {
			return err
		}
		return tx.setFloat(profitKey(userID), 0)
	})
	if err != nil {
		return 0, 0, err
	}

	l.logger.Info("Transferred profit balance to wallet",
		zap.Uint("user_id", userID),
		zap.Float64("amount", profit),
		zap.Float64("new_wallet_balance", wallet))
	return wallet, 0, nil
}
