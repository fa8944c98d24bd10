package server

import (
	"net/http"
	"strings"
	"time"

	"papertrade-go/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced by the outer middleware; the upgrade itself accepts
	// any origin the middleware let through.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// tradeSnapshot is one frame of the live progress stream.
type tradeSnapshot struct {
	Timestamp time.Time      `json:"timestamp"`
	Trades    []models.Trade `json:"trades"`
}

// TradeStreamHandler streams per-second snapshots of the caller's active
// trades over a websocket. This replaces the 1-second polling loop the
// browser client used against local storage.
//
// Browser websocket clients cannot set headers, so the token may arrive as a
// ?token= query parameter instead of an Authorization header.
func (s *Server) TradeStreamHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		tokenString = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	claims, err := s.auth.ParseToken(tokenString)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	l := s.logger.With(zap.Uint("user_id", claims.UserID))
	l.Debug("Trade stream opened")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			l.Debug("Trade stream closed by client")
			return
		case now := <-ticker.C:
			trades, err := s.ledger.Trades(claims.UserID, models.TradeStatusActive)
			if err != nil {
				l.Error("Failed to load trades for stream", zap.Error(err))
				return
			}
			if trades == nil {
				trades = []models.Trade{}
			}
			if err := conn.WriteJSON(tradeSnapshot{Timestamp: now, Trades: trades}); err != nil {
				l.Debug("Trade stream write failed, closing", zap.Error(err))
				return
			}
		}
	}
}
