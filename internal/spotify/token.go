package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/oauth2"
)

const tokenURL = "https://accounts.spotify.com/api/token"

// Credentials are the long-lived secrets supplied at startup.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// TokenManager holds the current access token and exchanges the refresh token for a
// new one on demand. It is safe for concurrent use.
type TokenManager struct {
	conf         *oauth2.Config
	refreshToken string
	httpClient   *http.Client

	mu    sync.RWMutex
	token *oauth2.Token
}

// TokenOption configures a TokenManager.
type TokenOption func(*TokenManager)

// WithTokenURL overrides the token endpoint.
func WithTokenURL(u string) TokenOption {
	return func(m *TokenManager) {
		m.conf.Endpoint.TokenURL = u
	}
}

// WithTokenHTTPClient sets the HTTP client used for token requests.
func WithTokenHTTPClient(c *http.Client) TokenOption {
	return func(m *TokenManager) {
		m.httpClient = c
	}
}

// NewTokenManager creates a TokenManager with no access token yet.
func NewTokenManager(creds Credentials, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		conf: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		refreshToken: creds.RefreshToken,
	}
	for _, opt := range opts {
		opt(m)
	}

	base := http.DefaultClient
	if m.httpClient != nil {
		base = m.httpClient
	}
	c := *base
	c.Transport = &clientIDTransport{base: base.Transport, clientID: creds.ClientID}
	m.httpClient = &c
	return m
}

// Refresh performs a single refresh_token grant. On failure the previous access token
// is kept and the error is returned for logging; callers are expected to retry on a
// later poll.
func (m *TokenManager) Refresh(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)

	// A token without an access token is never valid, so every call hits the endpoint.
	src := m.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: m.refreshToken})
	tok, err := src.Token()
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			slog.Error("error refreshing token", "status", rErr.Response.StatusCode)
		} else {
			slog.Error("error refreshing token", "error", err)
		}
		return fmt.Errorf("refresh access token: %w", err)
	}

	m.mu.Lock()
	m.token = tok
	m.mu.Unlock()

	slog.Debug("access token refreshed", "expiry", tok.Expiry)
	return nil
}

// AccessToken returns the current access token, or an empty string before the first
// successful refresh.
func (m *TokenManager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == nil {
		return ""
	}
	return m.token.AccessToken
}

// SetAuthHeader authorizes r with the current access token.
func (m *TokenManager) SetAuthHeader(r *http.Request) {
	r.Header.Set("Authorization", "Bearer "+m.AccessToken())
}

// clientIDTransport adds client_id to form bodies. Spotify accepts the refresh grant
// with Basic auth alone, but the account service expects the id in the body as well.
type clientIDTransport struct {
	base     http.RoundTripper
	clientID string
}

func (t *clientIDTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if r.Body == nil || r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
		return base.RoundTrip(r)
	}

	data, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read token request body: %w", err)
	}
	form, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse token request body: %w", err)
	}
	form.Set("client_id", t.clientID)
	body := form.Encode()

	out := r.Clone(r.Context())
	out.Body = io.NopCloser(strings.NewReader(body))
	out.ContentLength = int64(len(body))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}
	return base.RoundTrip(out)
}
