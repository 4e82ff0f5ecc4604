/*
Package backend aggregates a user's context from the PantauSiKecil backend API.
The caller's bearer token is forwarded unchanged on every call; identity is
resolved first and the remaining sections are fetched concurrently.
*/
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"PantauSiKecil_AI/internal/config"
	"PantauSiKecil_AI/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

// maxBodyBytes caps a single upstream response; the food and activity
// catalogs are the largest payloads.
const maxBodyBytes = 8 << 20

// Client fetches context bundles from the upstream backend.
type Client struct {
	baseURL    string
	timeout    time.Duration
	location   *time.Location
	httpClient *http.Client
	now        func() time.Time
}

// NewClient builds a Client from the service configuration.
func NewClient(cfg *config.Config) *Client {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		baseURL:  cfg.BackendURL,
		timeout:  cfg.BackendTimeout,
		location: loc,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		now: time.Now,
	}
}

// FetchContext resolves the caller behind token and assembles the bundle for
// kind. Every failure is reported as an *UpstreamError; a partial bundle is
// never returned.
func (c *Client) FetchContext(ctx context.Context, token string, kind Kind) (Bundle, error) {
	sections, ok := contextSections[kind]
	if !ok {
		return nil, fmt.Errorf("unknown context kind %q", kind)
	}

	logger := zerolog.Ctx(ctx)

	me, err := c.get(ctx, token, "user_data", "/api/auth/me")
	if err != nil {
		logger.Warn().Err(err).Msg("Identity resolution against backend failed")
		return nil, err
	}

	id := gjson.GetBytes(me, "data.user.id")
	if !id.Exists() || id.String() == "" {
		return nil, &UpstreamError{
			Endpoint: "/api/auth/me",
			Err:      errors.New("response does not contain data.user.id"),
		}
	}
	userID := id.String()

	bundle := Bundle{
		KeyUserID:   json.RawMessage(id.Raw),
		KeyUserData: me,
	}
	today := c.now().In(c.location).Format(time.DateOnly)

	// errgroup cancels the sibling calls as soon as one of them fails
	g, grpCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for _, s := range sections {
		g.Go(func() error {
			body, err := c.get(grpCtx, token, s.Key, s.Path(userID, today))
			if err != nil {
				return err
			}
			mu.Lock()
			bundle[s.Key] = body
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Str("kind", string(kind)).Msg("Context aggregation aborted")
		return nil, err
	}

	logger.Debug().
		Str("kind", string(kind)).
		Str("user_id", userID).
		Int("sections", len(bundle)).
		Msg("Context bundle assembled")

	return bundle, nil
}

// get performs one authenticated GET and returns the body if it is valid JSON.
func (c *Client) get(ctx context.Context, token, section, endpoint string) (body json.RawMessage, err error) {
	started := time.Now()
	defer func() { metrics.ObserveUpstream(section, started, err) }()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, &UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if !json.Valid(raw) {
		return nil, &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: errors.New("response body is not valid JSON")}
	}

	return json.RawMessage(raw), nil
}

// userPath joins a per-user endpoint, escaping the id.
func userPath(userID, suffix string, query url.Values) string {
	p := "/api/users/" + url.PathEscape(userID) + suffix
	if len(query) > 0 {
		p += "?" + query.Encode()
	}
	return p
}
