package ledger

import (
	"errors"
	"testing"
	"time"

	"papertrade-go/internal/config"
	"papertrade-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeClock lets tests simulate elapsed time.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type catalogStub struct {
	instruments map[string]models.Instrument
}

func (c *catalogStub) Lookup(symbol string) (*models.Instrument, error) {
	inst, ok := c.instruments[symbol]
	if !ok {
		return nil, ErrNotFound
	}
	return &inst, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Wallet: config.Wallet{
			MinDeposit:    40,
			MinWithdrawal: 10,
			Fee:           1,
		},
		Trading: config.Trading{
			MinTradeBalance: 40,
			SettleRate:      0.008,
			TickInterval:    1,
		},
	}
}

// setupLedger creates a ledger over a fresh in-memory database with a fixed
// clock and a two-instrument catalog.
func setupLedger(t *testing.T) (*Ledger, *fakeClock) {
	// Use a new, non-shared in-memory database for each test to ensure isolation.
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.LedgerEntry{}))

	cat := &catalogStub{instruments: map[string]models.Instrument{
		"AAPL": {Symbol: "AAPL", Name: "Apple Inc.", Price: 50},
		"MSFT": {Symbol: "MSFT", Name: "Microsoft Corporation", Price: 2000},
	}}

	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	l := New(NewStore(db), cat, testConfig(), zap.NewNop())
	l.SetClock(clock.Now)
	return l, clock
}

// seedWallet writes a wallet balance directly into the store.
func seedWallet(t *testing.T, l *Ledger, userID uint, balance float64) {
	require.NoError(t, l.store.setFloat(walletKey(userID), balance))
}

func TestStore_GetSet(t *testing.T) {
	l, _ := setupLedger(t)

	// Unwritten keys read as absent
	_, ok, err := l.store.Get("wallet_balance:1")
	assert.NoError(t, err)
	assert.False(t, ok)

	// Round trip
	require.NoError(t, l.store.Set("wallet_balance:1", "123.45"))
	raw, ok, err := l.store.Get("wallet_balance:1")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "123.45", raw)

	// Overwrite replaces the whole value
	require.NoError(t, l.store.Set("wallet_balance:1", "67"))
	raw, _, _ = l.store.Get("wallet_balance:1")
	assert.Equal(t, "67", raw)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	l, _ := setupLedger(t)
	require.NoError(t, l.store.setFloat(walletKey(1), 100))

	// A failure after the first write must undo both
	injected := errors.New("disk full")
	err := l.store.Transaction(func(tx *Store) error {
		if err := tx.setFloat(walletKey(1), 250); err != nil {
			return err
		}
		if err := tx.setTransactions(1, []models.Transaction{{ID: "tx-1", Processed: true}}); err != nil {
			return err
		}
		return injected
	})
	assert.ErrorIs(t, err, injected)

	balance, err := l.store.getFloat(walletKey(1))
	assert.NoError(t, err)
	assert.Equal(t, 100.0, balance)

	txs, err := l.store.getTransactions(1)
	assert.NoError(t, err)
	assert.Empty(t, txs)
}

func TestStore_TransactionCommitsAllWrites(t *testing.T) {
	l, _ := setupLedger(t)

	err := l.store.Transaction(func(tx *Store) error {
		if err := tx.setFloat(walletKey(1), 250); err != nil {
			return err
		}
		return tx.setFloat(profitKey(1), 8)
	})
	require.NoError(t, err)

	wallet, profit, err := l.Balances(1)
	assert.NoError(t, err)
	assert.Equal(t, 250.0, wallet)
	assert.Equal(t, 8.0, profit)
}

func TestBalances_DefaultZero(t *testing.T) {
	l, _ := setupLedger(t)

	wallet, profit, err := l.Balances(42)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, wallet)
	assert.Equal(t, 0.0, profit)
}

func TestTransferProfitToWallet(t *testing.T) {
	l, _ := setupLedger(t)
	seedWallet(t, l, 1, 100)
	require.NoError(t, l.store.setFloat(profitKey(1), 8))

	wallet, profit, err := l.TransferProfitToWallet(1)
	assert.NoError(t, err)
	assert.Equal(t, 108.0, wallet)
	assert.Equal(t, 0.0, profit)

	// A second transfer with zero profit is a no-op
	wallet, profit, err = l.TransferProfitToWallet(1)
	assert.NoError(t, err)
	assert.Equal(t, 108.0, wallet)
	assert.Equal(t, 0.0, profit)
}
