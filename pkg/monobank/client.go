package monobank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkoval/monoynab/pkg/models"
)

// DefaultBaseURL is the production Monobank personal API endpoint.
const DefaultBaseURL = "https://api.monobank.ua"

// ErrRateLimited signals an HTTP 429 from the provider. It is never terminal:
// the fetcher backs off and retries the same request.
var ErrRateLimited = errors.New("monobank: rate limited")

// APIError is a non-429 provider-side failure.
type APIError struct {
	Status   int
	Endpoint string
	Body     string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("monobank: %s returned %d: %s", e.Endpoint, e.Status, e.Body)
	}
	return fmt.Sprintf("monobank: %s returned %d", e.Endpoint, e.Status)
}

// Account is a bank account entry from the client-info endpoint.
type Account struct {
	ID           string   `json:"id"`
	SendID       string   `json:"sendId,omitempty"`
	Balance      int64    `json:"balance"`
	CreditLimit  int64    `json:"creditLimit"`
	Type         string   `json:"type"`
	CurrencyCode int      `json:"currencyCode"`
	MaskedPan    []string `json:"maskedPan"`
	IBAN         string   `json:"iban,omitempty"`
}

// LastFour returns the last four digits of the account's card number, taken
// from the final maskedPan entry the same way the provider orders reissued
// cards. Empty when the account has no card attached.
func (a Account) LastFour() string {
	if len(a.MaskedPan) == 0 {
		return ""
	}
	pan := a.MaskedPan[len(a.MaskedPan)-1]
	if len(pan) < 4 {
		return pan
	}
	return pan[len(pan)-4:]
}

// ClientInfo is the response of GET /personal/client-info.
type ClientInfo struct {
	ClientID string    `json:"clientId"`
	Name     string    `json:"name"`
	Accounts []Account `json:"accounts"`
}

// Client is a minimal Monobank personal API client authenticated via the
// X-Token header.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Monobank client. An empty baseURL falls back to the
// production endpoint.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, ret any) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("monobank: encoding request body: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, payload)
	if err != nil {
		return err
	}
	req.Header.Set("X-Token", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("monobank: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		// The error body is short when present; no guarantee it exists at all.
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Status: resp.StatusCode, Endpoint: endpoint, Body: strings.TrimSpace(string(b))}
	}

	if ret == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(ret); err != nil {
		return fmt.Errorf("monobank: decoding response: %w", err)
	}
	return nil
}

// ClientInfo fetches the account list for the token's owner.
func (c *Client) ClientInfo(ctx context.Context) (*ClientInfo, error) {
	var info ClientInfo
	if err := c.do(ctx, http.MethodGet, "/personal/client-info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Statement fetches raw transaction records for one account over a single
// bounded window. Callers are expected to respect the provider's window cap;
// see Fetcher for chunked retrieval over arbitrary ranges.
func (c *Client) Statement(ctx context.Context, accountID string, from, to time.Time) ([]models.StatementItem, error) {
	endpoint := fmt.Sprintf("/personal/statement/%s/%d/%d", accountID, from.Unix(), to.Unix())
	var items []models.StatementItem
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetupWebhook registers the callback URL for push delivery of new
// transactions.
func (c *Client) SetupWebhook(ctx context.Context, url string) error {
	body := map[string]string{"webHookUrl": url}
	return c.do(ctx, http.MethodPost, "/personal/webhook", body, nil)
}
