// internal/app/system/ledger/client.go
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the SBD token service over HTTP. Requests carry an API key
// header and a bounded timeout.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates an HTTP ledger client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type balanceResponse struct {
	Account string `json:"account"`
	Balance int64  `json:"balance"`
}

// Balance implements Ledger.
func (c *Client) Balance(ctx context.Context, account string) (int64, error) {
	u := fmt.Sprintf("%s/v1/accounts/%s/balance", c.baseURL, url.PathEscape(account))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ledger balance: unexpected status %d", resp.StatusCode)
	}

	var body balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	return body.Balance, nil
}

type transferRequest struct {
	FromAccount    string `json:"from_account"`
	ToUser         string `json:"to_user"`
	Amount         int64  `json:"amount"`
	Memo           string `json:"memo,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type transferResponse struct {
	Reference string `json:"reference"`
	Error     string `json:"error,omitempty"`
}

// Transfer implements Ledger. The dedupe key rides along as the transfer
// service's idempotency key, which it uses to collapse replays of the same
// logical transfer.
func (c *Client) Transfer(ctx context.Context, fromAccount, toUser string, amount int64, memo, dedupeKey string) (string, error) {
	payload, err := json.Marshal(transferRequest{
		FromAccount:    fromAccount,
		ToUser:         toUser,
		Amount:         amount,
		Memo:           memo,
		IdempotencyKey: dedupeKey,
	})
	if err != nil {
		return "", err
	}

	u := c.baseURL + "/v1/transfers"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	if dedupeKey != "" {
		req.Header.Set("Idempotency-Key", dedupeKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return body.Reference, nil
	case http.StatusPaymentRequired, http.StatusUnprocessableEntity:
		return "", ErrInsufficientBalance
	default:
		return "", fmt.Errorf("ledger transfer: unexpected status %d: %s", resp.StatusCode, body.Error)
	}
}
