package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	zspotify "github.com/zmb3/spotify"
)

const currentlyPlayingURL = "https://api.spotify.com/v1/me/player/currently-playing"

// ErrNothingPlaying is returned when the player has no current item.
var ErrNothingPlaying = errors.New("nothing is playing")

// APIError is a non-2xx response from the Web API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("spotify api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("spotify api error: status %d: %s", e.StatusCode, e.Message)
}

// Client fetches playback state from the Spotify Web API.
type Client struct {
	httpClient          *http.Client
	tokens              *TokenManager
	currentlyPlayingURL string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithCurrentlyPlayingURL overrides the currently playing endpoint.
func WithCurrentlyPlayingURL(url string) ClientOption {
	return func(cl *Client) {
		cl.currentlyPlayingURL = url
	}
}

// NewClient creates a Client authorized by tokens.
//
// Unlike an oauth2 transport, the client never refreshes on its own: a 401 surfaces
// as an [*APIError] so the caller decides when to call [TokenManager.Refresh].
func NewClient(tokens *TokenManager, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:          http.DefaultClient,
		tokens:              tokens,
		currentlyPlayingURL: currentlyPlayingURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentlyPlaying fetches the user's currently playing track.
func (c *Client) CurrentlyPlaying(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.currentlyPlayingURL, nil)
	if err != nil {
		return nil, err
	}
	c.tokens.SetAuthHeader(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close spotify api response body", "error", err)
		}
	}()

	// When nothing is playing, Spotify returns 204 No Content.
	if resp.StatusCode == http.StatusNoContent {
		return nil, ErrNothingPlaying
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var cp zspotify.CurrentlyPlaying
	if err := json.NewDecoder(resp.Body).Decode(&cp); err != nil {
		return nil, fmt.Errorf("decode currently playing: %w", err)
	}

	// Ads and some episodes come back with a null item.
	if cp.Item == nil {
		return nil, ErrNothingPlaying
	}

	return newSnapshot(&cp), nil
}

// decodeError builds an APIError from an error response. The body is best effort:
// Spotify wraps the detail as {"error": {"status": ..., "message": ...}}.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error zspotify.Error `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.Error.Message
	}
	return apiErr
}
