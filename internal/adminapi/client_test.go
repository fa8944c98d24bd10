package adminapi_test

import (
	"net/http/httptest"
	"testing"

	"papertrade-go/internal/adminapi"
	"papertrade-go/internal/auth"
	"papertrade-go/internal/catalog"
	"papertrade-go/internal/config"
	"papertrade-go/internal/ledger"
	"papertrade-go/internal/models"
	"papertrade-go/internal/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupAPI starts a full server over an in-memory database and returns its
// base URL, the ledger behind it and the seeded account ids.
func setupAPI(t *testing.T) (baseURL string, ldg *ledger.Ledger, userID uint) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Instrument{}, &models.KYCSubmission{}, &models.LedgerEntry{},
	))

	cfg := &config.Config{
		Auth:    config.Auth{JWTSecret: "test-secret", TokenTTLMins: 60},
		Wallet:  config.Wallet{MinDeposit: 40, MinWithdrawal: 10, Fee: 1},
		Trading: config.Trading{MinTradeBalance: 40, SettleRate: 0.008, TickInterval: 1},
	}

	log := zap.NewNop()
	cat := catalog.New(db, log)
	ldg = ledger.New(ledger.NewStore(db), cat, cfg, log)
	authSvc := auth.NewService(db, &cfg.Auth)

	_, err = authSvc.Register("admin@example.com", "supersecret", "Administrator", models.RoleAdmin)
	require.NoError(t, err)
	user, err := authSvc.Register("trader@example.com", "supersecret", "Test Trader", models.RoleUser)
	require.NoError(t, err)

	srv := server.NewServer(log, cfg, db, ldg, cat, authSvc)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts.URL, ldg, user.ID
}

func TestClient_Login(t *testing.T) {
	baseURL, _, _ := setupAPI(t)

	t.Run("Success", func(t *testing.T) {
		client := adminapi.NewClient(baseURL)
		assert.NoError(t, client.Login("admin@example.com", "supersecret"))
	})

	t.Run("BadPassword", func(t *testing.T) {
		client := adminapi.NewClient(baseURL)
		err := client.Login("admin@example.com", "wrong")
		assert.ErrorContains(t, err, "401")
	})
}

func TestClient_ReviewFlow(t *testing.T) {
	baseURL, ldg, userID := setupAPI(t)

	deposit, err := ldg.RequestDeposit(userID, 100, "ref-1")
	require.NoError(t, err)

	client := adminapi.NewClient(baseURL)
	require.NoError(t, client.Login("admin@example.com", "supersecret"))

	pending, err := client.PendingTransactions()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, userID, pending[0].UserID)
	assert.Equal(t, deposit.ID, pending[0].ID)

	tx, err := client.ReviewTransaction(userID, deposit.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionApproved, tx.Status)

	// Nothing pending anymore; the review landed in the server's ledger
	pending, err = client.PendingTransactions()
	require.NoError(t, err)
	assert.Empty(t, pending)

	stored, err := ldg.Transactions(userID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.TransactionApproved, stored[0].Status)
}

func TestClient_AdminGate(t *testing.T) {
	baseURL, ldg, userID := setupAPI(t)

	deposit, err := ldg.RequestDeposit(userID, 100, "ref-1")
	require.NoError(t, err)

	// A non-admin login authenticates but cannot reach the admin surface
	client := adminapi.NewClient(baseURL)
	require.NoError(t, client.Login("trader@example.com", "supersecret"))

	_, err = client.PendingTransactions()
	assert.ErrorContains(t, err, "403")

	_, err = client.ReviewTransaction(userID, deposit.ID, true)
	assert.ErrorContains(t, err, "403")
}
