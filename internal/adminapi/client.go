package adminapi

import (
	"fmt"

	"papertrade-go/internal/models"

	"github.com/go-resty/resty/v2"
)

// Client drives a running server's admin API. Ledger mutations must flow
// through the server daemon, which serializes them; writing the database file
// from a second process would bypass that serialization and can lose updates.
type Client struct {
	client *resty.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{client: resty.New().SetBaseURL(baseURL)}
}

// Login authenticates the operator account and keeps the bearer token for
// subsequent calls.
func (c *Client) Login(email, password string) error {
	var token models.TokenResponse
	resp, err := c.client.R().
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&token).
		Post("/api/auth/login")
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("login rejected with status %d: %s", resp.StatusCode(), resp.String())
	}
	c.client.SetAuthToken(token.AccessToken)
	return nil
}

// UserTransaction pairs a transaction with its owning user.
type UserTransaction struct {
	UserID uint `json:"user_id"`
	models.Transaction
}

// PendingTransactions lists deposit and withdrawal requests awaiting review
// across all users.
func (c *Client) PendingTransactions() ([]UserTransaction, error) {
	var txs []UserTransaction
	resp, err := c.client.R().
		SetQueryParam("status", models.TransactionPending).
		SetResult(&txs).
		Get("/api/admin/transactions")
	if err != nil {
		return nil, fmt.Errorf("transaction listing failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("transaction listing rejected with status %d: %s", resp.StatusCode(), resp.String())
	}
	return txs, nil
}

// ReviewTransaction approves or rejects a pending deposit/withdrawal and
// returns the reviewed record.
func (c *Client) ReviewTransaction(userID uint, txID string, approve bool) (*models.Transaction, error) {
	var tx models.Transaction
	resp, err := c.client.R().
		SetBody(map[string]bool{"approve": approve}).
		SetResult(&tx).
		Post(fmt.Sprintf("/api/admin/users/%d/transactions/%s/review", userID, txID))
	if err != nil {
		return nil, fmt.Errorf("review request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("review rejected with status %d: %s", resp.StatusCode(), resp.String())
	}
	return &tx, nil
}
