package models

import "time"

// LedgerEntry is one key of the ledger key-value surface. Values are whole
// JSON documents; there are no partial updates.
type LedgerEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}
