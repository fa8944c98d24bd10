package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"papertrade-go/internal/auth"
	"papertrade-go/internal/catalog"
	"papertrade-go/internal/config"
	"papertrade-go/internal/ledger"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server provides the HTTP API over the ledger, catalog and account services.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	cfg        *config.Config
	db         *gorm.DB
	ledger     *ledger.Ledger
	catalog    *catalog.Catalog
	auth       *auth.Service
}

// NewServer creates the API server and wires up all routes.
func NewServer(logger *zap.Logger, cfg *config.Config, db *gorm.DB, ldg *ledger.Ledger, cat *catalog.Catalog, authSvc *auth.Service) *Server {
	s := &Server{
		logger:  logger.Named("api"),
		cfg:     cfg,
		db:      db,
		ledger:  ldg,
		catalog: cat,
		auth:    authSvc,
	}

	router := mux.NewRouter()
	router.Use(s.logRequests)

	// Public routes
	router.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/signup", s.SignupHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", s.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/instruments", s.InstrumentsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/instruments/{symbol}", s.InstrumentHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/instruments/{symbol}/chart", s.ChartHandler).Methods(http.MethodGet)

	// Authenticated routes
	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(auth.Middleware(authSvc))
	authed.HandleFunc("/wallet", s.WalletHandler).Methods(http.MethodGet)
	authed.HandleFunc("/wallet/deposits", s.DepositHandler).Methods(http.MethodPost)
	authed.HandleFunc("/wallet/withdrawals", s.WithdrawHandler).Methods(http.MethodPost)
	authed.HandleFunc("/wallet/transfer-profit", s.TransferProfitHandler).Methods(http.MethodPost)
	authed.HandleFunc("/wallet/transactions", s.TransactionsHandler).Methods(http.MethodGet)
	authed.HandleFunc("/trades", s.TradesHandler).Methods(http.MethodGet)
	authed.HandleFunc("/trades", s.OpenTradeHandler).Methods(http.MethodPost)
	authed.HandleFunc("/trades/{id}/close", s.CloseTradeHandler).Methods(http.MethodPost)
	authed.HandleFunc("/kyc", s.SubmitKYCHandler).Methods(http.MethodPost)

	// The websocket endpoint authenticates itself so browser clients can
	// pass the token as a query parameter.
	router.HandleFunc("/api/ws/trades", s.TradeStreamHandler).Methods(http.MethodGet)

	// Admin routes
	admin := router.PathPrefix("/api/admin").Subrouter()
	admin.Use(auth.Middleware(authSvc))
	admin.Use(auth.RequireAdmin)
	admin.HandleFunc("/stats", s.StatsHandler).Methods(http.MethodGet)
	admin.HandleFunc("/users", s.UsersHandler).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", s.DeleteUserHandler).Methods(http.MethodDelete)
	admin.HandleFunc("/kyc", s.KYCListHandler).Methods(http.MethodGet)
	admin.HandleFunc("/kyc/{id}/review", s.KYCReviewHandler).Methods(http.MethodPost)
	admin.HandleFunc("/transactions", s.AdminTransactionsHandler).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/transactions/{txID}/review", s.TransactionReviewHandler).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      c.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket streams stay open
	}
	return s
}

// Handler returns the fully wired root handler, so tests and embedders can
// mount the API without binding a port.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the HTTP server in a new goroutine.
func (s *Server) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.httpServer.Addr))
	go func() {
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.httpServer.Shutdown(ctx)
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("Handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}
