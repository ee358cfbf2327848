package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shuttlecourt/internal/pkg/config"
	"shuttlecourt/internal/pkg/errs"

	"github.com/google/uuid"
)

// Client talks to the external payment provider's hold API. A hold reserves
// the settlement amount on the customer's payment method; confirmation
// captures it, cancellation or TTL expiry releases it.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type holdRequest struct {
	OrderID   uuid.UUID `json:"order_id"`
	Amount    int64     `json:"amount"`
	ExpiresAt time.Time `json:"expires_at"`
}

type holdResponse struct {
	HoldID string `json:"hold_id"`
}

func (c *Client) CreateHold(ctx context.Context, orderID uuid.UUID, amount int64, expiresAt time.Time) (string, error) {
	body, err := json.Marshal(holdRequest{OrderID: orderID, Amount: amount, ExpiresAt: expiresAt})
	if err != nil {
		return "", errs.Wrap(err, "marshal hold request")
	}

	resp, err := c.do(ctx, http.MethodPost, "/v1/holds", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment provider rejected hold: %s", resp.Status)
	}

	var hold holdResponse
	if err := json.NewDecoder(resp.Body).Decode(&hold); err != nil {
		return "", errs.Wrap(err, "decode hold response")
	}
	if hold.HoldID == "" {
		return "", errs.New("payment provider returned empty hold id")
	}
	return hold.HoldID, nil
}

func (c *Client) Confirm(ctx context.Context, holdID string) error {
	return c.postAction(ctx, holdID, "confirm")
}

func (c *Client) Cancel(ctx context.Context, holdID string) error {
	return c.postAction(ctx, holdID, "cancel")
}

func (c *Client) postAction(ctx context.Context, holdID, action string) error {
	resp, err := c.do(ctx, http.MethodPost, "/v1/holds/"+holdID+"/"+action, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("payment provider rejected %s: %s", action, resp.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errs.Wrap(err, "build payment request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "call payment provider")
	}
	return resp, nil
}
