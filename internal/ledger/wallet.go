package ledger

import (
	"fmt"

	"papertrade-go/internal/models"
	"papertrade-go/pkg/id"

	"go.uber.org/zap"
)

// RequestDeposit creates a pending deposit request. The wallet balance is not
// touched until an admin approves the request and the engine applies it.
// A payment-proof reference is required.
func (l *Ledger) RequestDeposit(userID uint, amount float64, proofRef string) (*models.Transaction, error) {
	if amount < l.wallet.MinDeposit {
		return nil, fmt.Errorf("minimum deposit amount is %.2f: %w", l.wallet.MinDeposit, ErrValidation)
	}
	if proofRef == "" {
		return nil, fmt.Errorf("payment proof is required: %w", ErrValidation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	txs, err := l.store.getTransactions(userID)
	if err != nil {
		return nil, err
	}

	tx := models.Transaction{
		ID:        id.New(),
		Type:      models.TransactionDeposit,
		Amount:    amount,
		Fee:       l.wallet.Fee,
		Status:    models.TransactionPending,
		Timestamp: l.now(),
		ProofRef:  proofRef,
	}
	txs = append(txs, tx)

	if err := l.store.setTransactions(userID, txs); err != nil {
		return nil, err
	}

	l.logger.Info("Created deposit request",
		zap.Uint("user_id", userID),
		zap.String("transaction_id", tx.ID),
		zap.Float64("amount", amount))
	return &tx, nil
}

// RequestWithdrawal creates a pending withdrawal request. The requested
// amount plus the fee must fit the current wallet balance; the payout
// credited externally is amount - fee.
func (l *Ledger) RequestWithdrawal(userID uint, amount float64) (*models.Transaction, error) {
	if amount < l.wallet.MinWithdrawal {
		return nil, fmt.Errorf("minimum withdrawal amount is %.2f: %w", l.wallet.MinWithdrawal, ErrValidation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, err := l.store.getFloat(walletKey(userID))
	if err != nil {
		return nil, err
	}
	if amount+l.wallet.Fee > balance {
		return nil, fmt.Errorf("withdrawal of %.2f plus fee %.2f exceeds balance %.2f: %w",
			amount, l.wallet.Fee, balance, ErrInsufficientFunds)
	}

	txs, err := l.store.getTransactions(userID)
	if err != nil {
		return nil, err
	}

	tx := models.Transaction{
		ID:        id.New(),
		Type:      models.TransactionWithdrawal,
		Amount:    amount,
		Fee:       l.wallet.Fee,
		Status:    models.TransactionPending,
		Timestamp: l.now(),
	}
	txs = append(txs, tx)

	if err := l.store.setTransactions(userID, txs); err != nil {
		return nil, err
	}

	l.logger.Info("Created withdrawal request",
		zap.Uint("user_id", userID),
		zap.String("transaction_id", tx.ID),
		zap.Float64("amount", amount))
	return &tx, nil
}

// Transactions returns the user's transaction history, newest last.
func (l *Ledger) Transactions(userID uint) ([]models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.getTransactions(userID)
}

// ReviewTransaction moves a pending transaction to approved or rejected.
// Reviewing a transaction that already left pending returns the stored record
// unchanged.
func (l *Ledger) ReviewTransaction(userID uint, txID string, approve bool) (*models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txs, err := l.store.getTransactions(userID)
	if err != nil {
		return nil, err
	}

	for i := range txs {
		if txs[i].ID != txID {
			continue
		}
		if !txs[i].Pending() {
			return &txs[i], nil
		}

		reviewedAt := l.now()
		if approve {
			txs[i].Status = models.TransactionApproved
		} else {
			txs[i].Status = models.TransactionRejected
		}
		txs[i].ReviewedAt = &reviewedAt

		if err := l.store.setTransactions(userID, txs); err != nil {
			return nil, err
		}

		l.logger.Info("Reviewed transaction",
			zap.Uint("user_id", userID),
			zap.String("transaction_id", txID),
			zap.String("status", txs[i].Status))
		return &txs[i], nil
	}

	return nil, fmt.Errorf("transaction '%s': %w", txID, ErrNotFound)
}

// ApplyApprovedDeposits credits every approved, unapplied deposit to the
// wallet balance exactly once, guarded by the processed flag. Returns the new
// wallet balance.
func (l *Ledger) ApplyApprovedDeposits(userID uint) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txs, err := l.store.getTransactions(userID)
	if err != nil {
		return 0, err
	}
	balance, err := l.store.getFloat(walletKey(userID))
	if err != nil {
		return 0, err
	}

	applied := 0
	for i := range txs {
		if txs[i].Type != models.TransactionDeposit ||
			txs[i].Status != models.TransactionApproved ||
			txs[i].Processed {
			continue
		}
		balance += txs[i].Amount
		txs[i].Processed = true
		applied++
	}
	if applied == 0 {
		return balance, nil
	}

	err = l.store.Transaction(func(tx *Store) error {
		if err := tx.setTransactions(userID, txs); err != nil {
			return err
		}
		return tx.setFloat(walletKey(userID), balance)
	})
	if err != nil {
		return 0, err
	}

	l.logger.Info("Applied approved deposits",
		zap.Uint("user_id", userID),
		zap.Int("count", applied),
		zap.Float64("new_balance", balance))
	return balance, nil
}

// ApplyApprovedWithdrawals debits every approved, unapplied withdrawal from
// the wallet balance exactly once. A withdrawal that no longer fits the
// balance is left unapplied and logged; it will be retried on the next pass.
func (l *Ledger) ApplyApprovedWithdrawals(userID uint) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txs, err := l.store.getTransactions(userID)
	if err != nil {
		return 0, err
	}
	balance, err := l.store.getFloat(walletKey(userID))
	if err != nil {
		return 0, err
	}

	applied := 0
	for i := range txs {
		if txs[i].Type != models.TransactionWithdrawal ||
			txs[i].Status != models.TransactionApproved ||
			txs[i].Processed {
			continue
		}
		if txs[i].Amount > balance {
			l.logger.Warn("Approved withdrawal exceeds current balance, deferring",
				zap.Uint("user_id", userID),
				zap.String("transaction_id", txs[i].ID),
				zap.Float64("amount", txs[i].Amount),
				zap.Float64("balance", balance))
			continue
		}
		balance -= txs[i].Amount
		txs[i].Processed = true
		applied++
	}
	if applied == 0 {
		return balance, nil
	}

	err = l.store.Transaction(func(tx *Store) error {
		if err := tx.setTransactions(userID, txs); err != nil {
			return err
		}
		return tx.setFloat(walletKey(userID), balance)
	})
	if err != nil {
		return 0, err
	}

	l.logger.Info("Applied approved withdrawals",
		zap.Uint("user_id", userID),
		zap.Int("count", applied),
		zap.Float64("new_balance", balance))
	return balance, nil
}
