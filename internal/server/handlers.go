package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"papertrade-go/internal/auth"
	"papertrade-go/internal/ledger"
	"papertrade-go/internal/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// writeJSON encodes v as the response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps domain errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, ledger.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailTaken):
		status = http.StatusConflict
	default:
		s.logger.Error("Request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("malformed request body: %w", ledger.ErrValidation)
	}
	return nil
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// SignupHandler registers a new user account and returns a token.
func (s *Server) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	user, err := s.auth.Register(req.Email, req.Password, req.FullName, models.RoleUser)
	if err != nil {
		s.writeError(w, err)
		return
	}

	token, err := s.auth.GenerateToken(user)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler authenticates a user and returns a token.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	user, err := s.auth.Authenticate(req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	token, err := s.auth.GenerateToken(user)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// InstrumentsHandler returns the whole catalog.
func (s *Server) InstrumentsHandler(w http.ResponseWriter, r *http.Request) {
	instruments, err := s.catalog.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, instruments)
}

// InstrumentHandler returns one catalog entry.
func (s *Server) InstrumentHandler(w http.ResponseWriter, r *http.Request) {
	inst, err := s.catalog.Lookup(mux.Vars(r)["symbol"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, inst)
}

// ChartHandler returns the fabricated price series for a symbol and range.
func (s *Server) ChartHandler(w http.ResponseWriter, r *http.Request) {
	rng := r.URL.Query().Get("range")
	if rng == "" {
		rng = "1D"
	}
	series, err := s.catalog.ChartSeries(mux.Vars(r)["symbol"], rng, time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, series)
}

type walletResponse struct {
	WalletBalance float64 `json:"wallet_balance"`
	ProfitBalance float64 `json:"profit_balance"`
}

// WalletHandler returns the caller's balances.
func (s *Server) WalletHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	wallet, profit, err := s.ledger.Balances(claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, walletResponse{WalletBalance: wallet, ProfitBalance: profit})
}

type depositRequest struct {
	Amount   float64 `json:"amount"`
	ProofRef string  `json:"proof_ref"`
}

// DepositHandler creates a pending deposit request.
func (s *Server) DepositHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	var req depositRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	tx, err := s.ledger.RequestDeposit(claims.UserID, req.Amount, req.ProofRef)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tx)
}

type withdrawRequest struct {
	Amount float64 `json:"amount"`
}

// WithdrawHandler creates a pending withdrawal request.
func (s *Server) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	var req withdrawRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	tx, err := s.ledger.RequestWithdrawal(claims.UserID, req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tx)
}

// TransferProfitHandler moves the profit balance into the wallet.
func (s *Server) TransferProfitHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	wallet, profit, err := s.ledger.TransferProfitToWallet(claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, walletResponse{WalletBalance: wallet, ProfitBalance: profit})
}

// TransactionsHandler returns the caller's transaction history.
func (s *Server) TransactionsHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	txs, err := s.ledger.Transactions(claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	s.writeJSON(w, http.StatusOK, txs)
}

// TradesHandler returns the caller's trades, optionally filtered by status.
func (s *Server) TradesHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	trades, err := s.ledger.Trades(claims.UserID, r.URL.Query().Get("status"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, trades)
}

type openTradeRequest struct {
	Side   string `json:"side"`
	Symbol string `json:"symbol"`
}

// OpenTradeHandler opens a simulated trade.
func (s *Server) OpenTradeHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	var req openTradeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	trade, err := s.ledger.OpenTrade(claims.UserID, req.Side, req.Symbol)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, trade)
}

// CloseTradeHandler completes a trade (close position).
func (s *Server) CloseTradeHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	trade, err := s.ledger.CompleteTrade(claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, trade)
}

type kycRequest struct {
	DocumentType string `json:"document_type"`
	DocumentRef  string `json:"document_ref"`
}

// SubmitKYCHandler files an identity verification request for admin review.
func (s *Server) SubmitKYCHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	var req kycRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.DocumentType == "" || req.DocumentRef == "" {
		s.writeError(w, fmt.Errorf("document type and reference are required: %w", ledger.ErrValidation))
		return
	}

	var pending int64
	err := s.db.Model(&models.KYCSubmission{}).
		Where("user_id = ? AND status = ?", claims.UserID, models.KYCSubmissionPending).
		Count(&pending).Error
	if err != nil {
		s.writeError(w, err)
		return
	}
	if pending > 0 {
		s.writeError(w, fmt.Errorf("a verification request is already pending: %w", ledger.ErrValidation))
		return
	}

	submission := models.KYCSubmission{
		UserID:       claims.UserID,
		DocumentType: req.DocumentType,
		DocumentRef:  req.DocumentRef,
		Status:       models.KYCSubmissionPending,
	}
	if err := s.db.Create(&submission).Error; err != nil {
		s.writeError(w, err)
		return
	}

	// The user shows as pending until an admin reviews the submission.
	if err := s.db.Model(&models.User{}).Where("id = ?", claims.UserID).
		Update("kyc_status", models.KYCStatusPending).Error; err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, submission)
}
