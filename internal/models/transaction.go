package models

import "time"

const (
	TransactionDeposit    = "deposit"
	TransactionWithdrawal = "withdrawal"

	TransactionPending  = "pending"
	TransactionApproved = "approved"
	TransactionRejected = "rejected"
)

// Transaction is a deposit or withdrawal request. Like trades, transactions
// are stored as a JSON sequence per user inside the ledger.
//
// Processed guards exactly-once application of an approved transaction to the
// wallet balance.
type Transaction struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"` // "deposit" or "withdrawal"
	Amount     float64    `json:"amount"`
	Fee        float64    `json:"fee"`
	Status     string     `json:"status"`
	Timestamp  time.Time  `json:"timestamp"`
	Processed  bool       `json:"processed"`
	ProofRef   string     `json:"proof_ref,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// Pending reports whether the transaction still awaits admin review.
func (t *Transaction) Pending() bool {
	return t.Status == TransactionPending
}
