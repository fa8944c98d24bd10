package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"papertrade-go/internal/ledger"
	"papertrade-go/internal/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// StatsResponse is the structure for the /api/admin/stats endpoint.
type StatsResponse struct {
	TotalUsers      int64   `json:"total_users"`
	PendingKYC      int64   `json:"pending_kyc"`
	PendingRequests int     `json:"pending_requests"`
	ApprovedVolume  float64 `json:"approved_deposit_volume"`
}

// StatsHandler calculates and returns platform statistics.
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	var stats StatsResponse

	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.db.Model(&models.KYCSubmission{}).
		Where("status = ?", models.KYCSubmissionPending).
		Count(&stats.PendingKYC).Error; err != nil {
		s.writeError(w, err)
		return
	}

	userTxs, err := s.allTransactions()
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, utx := range userTxs {
		if utx.Pending() {
			stats.PendingRequests++
		}
		if utx.Type == models.TransactionDeposit && utx.Status == models.TransactionApproved {
			stats.ApprovedVolume += utx.Amount
		}
	}

	s.writeJSON(w, http.StatusOK, stats)
}

// UsersHandler returns all registered users.
func (s *Server) UsersHandler(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := s.db.Order("created_at desc").Find(&users).Error; err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

// DeleteUserHandler removes a user account and its KYC submissions. Ledger
// entries are left in place; a deleted user's id is never reused by the
// sequence anyway.
func (s *Server) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUintVar(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	result := s.db.Delete(&models.User{}, userID)
	if result.Error != nil {
		s.writeError(w, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		s.writeError(w, fmt.Errorf("user %d: %w", userID, ledger.ErrNotFound))
		return
	}
	if err := s.db.Where("user_id = ?", userID).Delete(&models.KYCSubmission{}).Error; err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("Deleted user", zap.Uint("user_id", userID))
	w.WriteHeader(http.StatusNoContent)
}

// KYCListHandler returns KYC submissions, optionally filtered by status.
func (s *Server) KYCListHandler(w http.ResponseWriter, r *http.Request) {
	query := s.db.Order("created_at desc")
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var submissions []models.KYCSubmission
	if err := query.Find(&submissions).Error; err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, submissions)
}

type reviewRequest struct {
	Approve bool `json:"approve"`
}

// KYCReviewHandler approves or rejects a pending KYC submission and updates
// the submitting user's verification status.
func (s *Server) KYCReviewHandler(w http.ResponseWriter, r *http.Request) {
	submissionID, err := parseUintVar(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req reviewRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var submission models.KYCSubmission
	if err := s.db.First(&submission, submissionID).Error; err != nil {
		s.writeError(w, fmt.Errorf("kyc submission %d: %w", submissionID, ledger.ErrNotFound))
		return
	}
	if submission.Status != models.KYCSubmissionPending {
		s.writeJSON(w, http.StatusOK, submission)
		return
	}

	now := time.Now()
	userStatus := models.KYCStatusVerified
	submission.Status = models.KYCSubmissionApproved
	if !req.Approve {
		submission.Status = models.KYCSubmissionRejected
		userStatus = models.KYCStatusRejected
	}
	submission.ReviewedAt = &now

	if err := s.db.Save(&submission).Error; err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", submission.UserID).
		Update("kyc_status", userStatus).Error; err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("Reviewed KYC submission",
		zap.Uint("submission_id", submissionID),
		zap.String("status", submission.Status))
	s.writeJSON(w, http.StatusOK, submission)
}

// userTransaction pairs a transaction with its owning user for admin views.
type userTransaction struct {
	UserID uint `json:"user_id"`
	models.Transaction
}

// allTransactions flattens every user's transaction sequence.
func (s *Server) allTransactions() ([]userTransaction, error) {
	var userIDs []uint
	if err := s.db.Model(&models.User{}).Pluck("id", &userIDs).Error; err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}

	var out []userTransaction
	for _, userID := range userIDs {
		txs, err := s.ledger.Transactions(userID)
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			out = append(out, userTransaction{UserID: userID, Transaction: tx})
		}
	}
	return out, nil
}

// AdminTransactionsHandler returns transactions across all users, optionally
// filtered by status.
func (s *Server) AdminTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userTxs, err := s.allTransactions()
	if err != nil {
		s.writeError(w, err)
		return
	}

	status := r.URL.Query().Get("status")
	out := make([]userTransaction, 0, len(userTxs))
	for _, utx := range userTxs {
		if status != "" && utx.Status != status {
			continue
		}
		out = append(out, utx)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// TransactionReviewHandler approves or rejects a pending deposit/withdrawal.
// The balance itself moves later, when the settlement task applies the
// approved transaction.
func (s *Server) TransactionReviewHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUintVar(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req reviewRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	tx, err := s.ledger.ReviewTransaction(userID, mux.Vars(r)["txID"], req.Approve)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tx)
}

func parseUintVar(r *http.Request, name string) (uint, error) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed %s: %w", name, ledger.ErrValidation)
	}
	return uint(v), nil
}
