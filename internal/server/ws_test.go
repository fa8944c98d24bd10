package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"papertrade-go/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTrades connects to the trade stream of a running test server.
func dialTrades(ts *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws/trades?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func TestTradeStream_RejectsBadToken(t *testing.T) {
	s := setupServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, resp, err := dialTrades(ts, "not-a-token")
	if conn != nil {
		conn.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTradeStream_SnapshotsActiveTrades(t *testing.T) {
	s := setupServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	token := signup(t, s, "stream@example.com")
	claims, err := s.auth.ParseToken(token)
	require.NoError(t, err)

	// Fund the account through the regular lifecycle, then open a trade
	dep, err := s.ledger.RequestDeposit(claims.UserID, 100, "receipt-1")
	require.NoError(t, err)
	_, err = s.ledger.ReviewTransaction(claims.UserID, dep.ID, true)
	require.NoError(t, err)
	_, err = s.ledger.ApplyApprovedDeposits(claims.UserID)
	require.NoError(t, err)
	trade, err := s.ledger.OpenTrade(claims.UserID, models.TradeSideBuy, "AAPL")
	require.NoError(t, err)

	conn, resp, err := dialTrades(ts, token)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	// The first frame ticks in after one second
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var snapshot tradeSnapshot
	require.NoError(t, conn.ReadJSON(&snapshot))

	require.Len(t, snapshot.Trades, 1)
	assert.Equal(t, trade.ID, snapshot.Trades[0].ID)
	assert.Equal(t, models.TradeStatusActive, snapshot.Trades[0].Status)
	assert.False(t, snapshot.Timestamp.IsZero())
}
