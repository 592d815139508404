package sleeper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.sleeper.app/v1"

	// the API answers unknown usernames with 200 and a JSON null
	nullBody = "null"

	responseTTL = 5 * time.Minute
	playersTTL  = time.Hour
)

var ErrNotFound = errors.New("not found at provider")

// Provider is the read-only view of the fantasy platform used by the rest of
// the application.
type Provider interface {
	GetUser(ctx context.Context, username string) (*User, error)
	GetUserLeagues(ctx context.Context, userId, sport, season string) ([]League, error)
	GetLeague(ctx context.Context, leagueId string) (*League, error)
	GetLeagueRosters(ctx context.Context, leagueId string) ([]Roster, error)
	GetLeagueUsers(ctx context.Context, leagueId string) ([]LeagueUser, error)
	GetUserRoster(ctx context.Context, userId, leagueId string) (*Roster, error)
	GetAllPlayers(ctx context.Context, sport string) (Players, error)
}

// StatusError is returned for responses that are neither successful nor retried.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sleeper %s: unexpected status %d", e.Path, e.StatusCode)
}

// RetryConfig holds configuration for exponential backoff retries.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	Jitter         bool
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

// CalculateBackoff returns initialBackoff * multiplier^attempt capped at
// maxBackoff. A Retry-After from the server takes precedence.
func CalculateBackoff(cfg RetryConfig, attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}

	backoff := cfg.InitialBackoff
	for i := 0; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * cfg.Multiplier)
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
			break
		}
	}

	// deterministic jitter, up to a quarter of the backoff
	if cfg.Jitter && backoff > 0 {
		if jitterRange := int64(backoff) / 4; jitterRange > 0 {
			backoff += time.Duration((int64(attempt) * 137) % jitterRange)
		}
	}

	return backoff
}

func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	// the players dump is several megabytes
	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// Client talks to the Sleeper read API. Successful responses are cached by
// request path.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Cache   Cache
	Limiter *rate.Limiter
	Retry   RetryConfig
}

// NewClient builds a client for baseURL; an empty baseURL means the public
// API and a nil cache means an in-process one.
func NewClient(baseURL string, cache Cache) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    NewHTTPClient(),
		Cache:   cache,
		// the API asks for fewer than 1000 calls a minute
		Limiter: rate.NewLimiter(rate.Every(75*time.Millisecond), 10),
		Retry:   DefaultRetryConfig(),
	}
}

func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.get(ctx, "/user/"+url.PathEscape(username), responseTTL, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUserLeagues(ctx context.Context, userId, sport, season string) ([]League, error) {
	var leagues []League
	path := fmt.Sprintf("/user/%s/leagues/%s/%s", url.PathEscape(userId), url.PathEscape(sport), url.PathEscape(season))
	if err := c.get(ctx, path, responseTTL, &leagues); err != nil {
		return nil, err
	}
	return leagues, nil
}

func (c *Client) GetLeague(ctx context.Context, leagueId string) (*League, error) {
	var league League
	if err := c.get(ctx, "/league/"+url.PathEscape(leagueId), responseTTL, &league); err != nil {
		return nil, err
	}
	return &league, nil
}

func (c *Client) GetLeagueRosters(ctx context.Context, leagueId string) ([]Roster, error) {
	var rosters []Roster
	if err := c.get(ctx, "/league/"+url.PathEscape(leagueId)+"/rosters", responseTTL, &rosters); err != nil {
		return nil, err
	}
	return rosters, nil
}

func (c *Client) GetLeagueUsers(ctx context.Context, leagueId string) ([]LeagueUser, error) {
	var users []LeagueUser
	if err := c.get(ctx, "/league/"+url.PathEscape(leagueId)+"/users", responseTTL, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUserRoster picks the roster owned by userId out of the league rosters.
func (c *Client) GetUserRoster(ctx context.Context, userId, leagueId string) (*Roster, error) {
	rosters, err := c.GetLeagueRosters(ctx, leagueId)
	if err != nil {
		return nil, err
	}
	for i := range rosters {
		if rosters[i].OwnerId == userId {
			return &rosters[i], nil
		}
	}
	return nil, fmt.Errorf("roster of %s in league %s: %w", userId, leagueId, ErrNotFound)
}

func (c *Client) GetAllPlayers(ctx context.Context, sport string) (Players, error) {
	players := Players{}
	if err := c.get(ctx, "/players/"+url.PathEscape(sport), playersTTL, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// get fetches path, serving from and filling the cache, and decodes the JSON
// body into out.
func (c *Client) get(ctx context.Context, path string, ttl time.Duration, out any) error {
	if body, err := c.Cache.Get(ctx, path); err == nil {
		return json.Unmarshal(body, out)
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Warn("sleeper cache read failed", "path", path, "err", err)
	}

	body, err := c.fetch(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("sleeper %s: decode: %w", path, err)
	}

	if err := c.Cache.Set(ctx, path, body, ttl); err != nil {
		log.Warn("sleeper cache write failed", "path", path, "err", err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.Retry.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := CalculateBackoff(c.Retry, attempt-1, retryAfterOf(lastErr))
			log.Debug("retrying sleeper request", "path", path, "attempt", attempt, "wait", wait, "err", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		body, retry, err := c.do(ctx, path)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("sleeper %s: giving up after %d attempts: %w", path, c.Retry.MaxRetries+1, lastErr)
}

type retryableError struct {
	err        error
	retryAfter time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func retryAfterOf(err error) time.Duration {
	var re *retryableError
	if errors.As(err, &re) {
		return re.retryAfter
	}
	return 0
}

// do performs one request and reports whether a failure is worth retrying.
func (c *Client) do(ctx context.Context, path string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, &retryableError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, &retryableError{err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || string(trimmed) == nullBody {
			return nil, false, fmt.Errorf("sleeper %s: %w", path, ErrNotFound)
		}
		return body, false, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("sleeper %s: %w", path, ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, &retryableError{
			err:        &StatusError{Path: path, StatusCode: resp.StatusCode},
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return nil, false, &StatusError{Path: path, StatusCode: resp.StatusCode}
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
