package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"papertrade-go/internal/models"

	"gorm.io/gorm"
)

// Store is the key-value persistence surface of the ledger. Every value is a
// whole JSON document read and written in one piece; there are no partial
// updates. Serialization of read-modify-write spans is the Ledger's job, not
// the Store's.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store backed by the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the raw JSON value under key. The second return is false when
// the key has never been written.
func (s *Store) Get(key string) (string, bool, error) {
	var entry models.LedgerEntry
	err := s.db.First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("ledger read for key '%s' failed: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set writes the raw JSON value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	entry := models.LedgerEntry{Key: key, Value: value}
	err := s.db.Save(&entry).Error
	if err != nil {
		return fmt.Errorf("ledger write for key '%s' failed: %w", key, err)
	}
	return nil
}

// Transaction runs fn against a store view bound to one database
// transaction. Either every write inside fn persists or none do, so a
// mutation spanning several keys can never be applied partially.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// getFloat reads a numeric ledger value, defaulting to 0 for unwritten keys.
func (s *Store) getFloat(key string) (float64, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt numeric value under key '%s': %w", key, err)
	}
	return v, nil
}

func (s *Store) setFloat(key string, v float64) error {
	return s.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
}

// getTrades reads the whole trade sequence for a user.
func (s *Store) getTrades(userID uint) ([]models.Trade, error) {
	raw, ok, err := s.Get(tradesKey(userID))
	if err != nil || !ok {
		return nil, err
	}
	var trades []models.Trade
	if err := json.Unmarshal([]byte(raw), &trades); err != nil {
		return nil, fmt.Errorf("corrupt trade sequence for user %d: %w", userID, err)
	}
	return trades, nil
}

func (s *Store) setTrades(userID uint, trades []models.Trade) error {
	raw, err := json.Marshal(trades)
	if err != nil {
		return fmt.Errorf("failed to encode trade sequence: %w", err)
	}
	return s.Set(tradesKey(userID), string(raw))
}

// getTransactions reads the whole transaction sequence for a user.
func (s *Store) getTransactions(userID uint) ([]models.Transaction, error) {
	raw, ok, err := s.Get(transactionsKey(userID))
	if err != nil || !ok {
		return nil, err
	}
	var txs []models.Transaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		return nil, fmt.Errorf("corrupt transaction sequence for user %d: %w", userID, err)
	}
	return txs, nil
}

func (s *Store) setTransactions(userID uint, txs []models.Transaction) error {
	raw, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("failed to encode transaction sequence: %w", err)
	}
	return s.Set(transactionsKey(userID), string(raw))
}

// Ledger key layout. The original kept one browser-local ledger per user;
// here keys are namespaced by user id instead.
func walletKey(userID uint) string {
	return fmt.Sprintf("wallet_balance:%d", userID)
}

func profitKey(userID uint) string {
	return fmt.Sprintf("profit_balance:%d", userID)
}

func tradesKey(userID uint) string {
	return fmt.Sprintf("trades:%d", userID)
}

func transactionsKey(userID uint) string {
	return fmt.Sprintf("transactions:%d", userID)
}
