package pnw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/xonecas/pnw-recruiter/internal/config"
	"github.com/xonecas/pnw-recruiter/internal/constants"
)

// ErrUnexpectedShape is returned when the nation listing does not carry a nations array.
var ErrUnexpectedShape = errors.New("unexpected nation listing shape")

// maxErrorBody bounds how much of an error response is kept for the error message.
const maxErrorBody = 512

// Client fetches nation listings and opens game sessions.
// All requests share one rate limiter.
type Client struct {
	nationsURL string
	loginURL   string
	msgURL     string
	apiKey     string

	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is reused by sessions.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithLimiter replaces the outbound rate limiter.
func WithLimiter(l *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient creates a client for the endpoints in s.
func NewClient(s *config.Settings, opts ...ClientOption) *Client {
	limit := rate.Inf
	if s.ReadOnly.RequestRate > 0 {
		limit = rate.Limit(s.ReadOnly.RequestRate)
	}
	burst := s.ReadOnly.RequestBurst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		nationsURL: s.ReadOnly.Nations,
		loginURL:   s.ReadOnly.Login,
		msgURL:     s.ReadOnly.Msg,
		apiKey:     s.Sec.APIKey,
		httpClient: &http.Client{Timeout: constants.HTTPRequestTimeout},
		limiter:    rate.NewLimiter(limit, burst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type nationsResponse struct {
	Nations        *[]Nation `json:"nations"`
	Success        *bool     `json:"success"`
	GeneralMessage string    `json:"general_message"`
}

// FetchNations returns every nation in one listing response, in listing order.
func (c *Client) FetchNations(ctx context.Context) ([]Nation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.nationsURL+c.apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request URL carries the API key, so drop it from the error.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error %d: %s", resp.StatusCode, truncate(string(body), maxErrorBody))
	}

	var listing nationsResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	if listing.Nations == nil {
		if listing.Success != nil && !*listing.Success && listing.GeneralMessage != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedShape, listing.GeneralMessage)
		}
		return nil, fmt.Errorf("%w: missing nations array", ErrUnexpectedShape)
	}

	return *listing.Nations, nil
}

// NewSession creates an unauthenticated session with its own cookie jar.
func (c *Client) NewSession() *Session {
	// cookiejar.New only fails for a non-nil PublicSuffixList.
	jar, _ := cookiejar.New(nil)

	return &Session{
		client: c,
		http: &http.Client{
			Transport: c.httpClient.Transport,
			Timeout:   c.httpClient.Timeout,
			Jar:       jar,
		},
		jar: jar,
	}
}

func (c *Client) postForm(ctx context.Context, h *http.Client, endpoint string, form url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", constants.UserAgent)

	resp, err := h.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	return resp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
