package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/niveshpath/client/src/logger"
	"github.com/niveshpath/client/src/models"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
)

// ErrNoCredential is returned by a TokenSource when an authenticated endpoint
// is called without a stored session.
var ErrNoCredential = errors.New("no credential available")

// APIError carries the backend's error body alongside the HTTP status, so
// callers can distinguish authentication failures (401/403) from the rest.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether err is a credential rejection from the backend.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// Client talks to the NiveshPath backend. Anonymous endpoints (login,
// register) go through a plain client; everything else goes through an
// oauth2.Transport that injects "Authorization: Bearer <token>" from the
// supplied TokenSource on every request.
type Client struct {
	baseURL  string
	anonHTTP *http.Client
	authHTTP *http.Client
}

func NewClient(baseURL string, timeout time.Duration, tokenSource oauth2.TokenSource) *Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		anonHTTP: &http.Client{Jar: jar, Timeout: timeout},
		authHTTP: &http.Client{
			Jar:     jar,
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: tokenSource,
				Base:   http.DefaultTransport,
			},
		},
	}
}

// Login exchanges credentials for a token and user record.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.doJSON(ctx, c.anonHTTP, http.MethodPost, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "login response missing token"}
	}
	return &out, nil
}

// Register creates an account; the response contract matches Login.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.doJSON(ctx, c.anonHTTP, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "register response missing token"}
	}
	return &out, nil
}

// CurrentUser fetches the account behind the stored credential. Used once at
// startup for session restoration.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.doJSON(ctx, c.authHTTP, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// SubmitOnboarding sends the finished profile. Called exactly once per
// successful wizard run.
func (c *Client) SubmitOnboarding(ctx context.Context, payload models.OnboardingPayload) error {
	return c.doJSON(ctx, c.authHTTP, http.MethodPost, "/onboarding", payload, nil)
}

// OnboardingStatus asks the backend whether onboarding was completed. The
// endpoint is unreliable; callers keep a local flag as the authoritative
// fallback.
func (c *Client) OnboardingStatus(ctx context.Context) (bool, error) {
	var out struct {
		Completed bool `json:"completed"`
	}
	if err := c.doJSON(ctx, c.authHTTP, http.MethodGet, "/onboarding/status", nil, &out); err != nil {
		return false, err
	}
	return out.Completed, nil
}

// ChatQuery sends one user message and returns the advisor's reply.
func (c *Client) ChatQuery(ctx context.Context, query string) (string, error) {
	var out struct {
		Response string `json:"response"`
	}
	body := map[string]string{"query": query}
	if err := c.doJSON(ctx, c.authHTTP, http.MethodPost, "/chatbot/query", body, &out); err != nil {
		return "", err
	}
	if out.Response == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: "unexpected response format from server"}
	}
	return out.Response, nil
}

// ChatHistory returns the stored conversation messages, oldest first.
func (c *Client) ChatHistory(ctx context.Context) ([]models.HistoryMessage, error) {
	var out []models.HistoryMessage
	if err := c.doJSON(ctx, c.authHTTP, http.MethodGet, "/chatbot/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// currencyResponse matches /external/currency: rates are quoted as foreign
// units per INR, changes as day-over-day percentages.
type currencyResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Rates   map[string]float64 `json:"rates"`
		Changes map[string]float64 `json:"changes"`
	} `json:"data"`
}

// CurrencyRates fetches and inverts the currency table into INR-per-unit rows
// for the four currencies the dashboard shows.
func (c *Client) CurrencyRates(ctx context.Context) ([]models.CurrencyRate, error) {
	var out currencyResponse
	if err := c.doJSON(ctx, c.authHTTP, http.MethodGet, "/external/currency", nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "invalid data received from currency API"}
	}

	wanted := []struct{ code, name string }{
		{"USD", "US Dollar"},
		{"EUR", "Euro"},
		{"GBP", "British Pound"},
		{"JPY", "Japanese Yen"},
	}
	rates := make([]models.CurrencyRate, 0, len(wanted))
	for _, w := range wanted {
		perINR, ok := out.Data.Rates[w.code]
		if !ok || perINR == 0 {
			continue
		}
		rates = append(rates, models.CurrencyRate{
			Code:      w.code,
			Name:      w.name,
			Rate:      1 / perINR,
			ChangePct: out.Data.Changes[w.code],
		})
	}
	return rates, nil
}

// Markets fetches the dashboard's index snapshot.
func (c *Client) Markets(ctx context.Context) ([]models.MarketIndex, error) {
	var out struct {
		Success bool                 `json:"success"`
		Data    []models.MarketIndex `json:"data"`
	}
	if err := c.doJSON(ctx, c.authHTTP, http.MethodGet, "/external/markets", nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "invalid data received from markets API"}
	}
	return out.Data, nil
}

// RBINews fetches the central-bank news feed for the dashboard.
func (c *Client) RBINews(ctx context.Context) ([]models.NewsItem, error) {
	var out struct {
		Success bool              `json:"success"`
		Data    []models.NewsItem `json:"data"`
	}
	if err := c.doJSON(ctx, c.authHTTP, http.MethodGet, "/external/rbi-news", nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "invalid data received from news API"}
	}
	return out.Data, nil
}

// doJSON performs one request/response round-trip. Non-2xx responses are
// turned into *APIError with the body's error or message field; a body that
// does not decode into out is reported as a malformed response.
func (c *Client) doJSON(ctx context.Context, client *http.Client, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body for %s: %w", path, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errBody) == nil {
			if errBody.Error != "" {
				apiErr.Message = errBody.Error
			} else if errBody.Message != "" {
				apiErr.Message = errBody.Message
			}
		}
		logger.L.Warn("Backend request failed", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed response from %s: %v", path, err)}
	}
	return nil
}
