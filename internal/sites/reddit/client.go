// Package reddit is the activity source backed by the Reddit OAuth API.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"persona-agent/internal/core/domain"
	"persona-agent/internal/core/ports"
)

const (
	DefaultBaseURL  = "https://oauth.reddit.com"
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"

	maxLimit = 100
)

type Config struct {
	ClientID        string
	ClientSecret    string
	UserAgent       string
	BaseURL         string
	TokenURL        string
	RequestInterval time.Duration
	Timeout         time.Duration
}

// Client fetches a user's newest submissions and comments. Every request
// waits on Limiter first.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Logger     *zap.Logger
}

var _ ports.ActivitySource = (*Client)(nil)

// NewClient builds a client using application-only OAuth.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET are required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("REDDIT_USER_AGENT is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	base := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &userAgentTransport{agent: cfg.UserAgent, base: http.DefaultTransport},
	}
	oauthCfg := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	httpClient := oauthCfg.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	httpClient.Timeout = cfg.Timeout

	return &Client{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		UserAgent:  cfg.UserAgent,
		HTTPClient: httpClient,
		Limiter:    NewLimiter(cfg.RequestInterval),
		Logger:     logger,
	}, nil
}

// NewLimiter allows one request per interval; a non-positive interval disables pacing.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Fetch returns up to limit newest posts and limit newest comments.
func (c *Client) Fetch(ctx context.Context, username string, limit int) (domain.UserActivity, error) {
	limit = max(1, min(limit, maxLimit))
	activity := domain.UserActivity{Username: username}

	posts, err := c.listing(ctx, username, "submitted", limit)
	if err != nil {
		return activity, err
	}
	for _, t := range posts {
		if t.Kind != "t3" {
			continue
		}
		activity.Posts = append(activity.Posts, postRecord(t.Data))
	}

	comments, err := c.listing(ctx, username, "comments", limit)
	if err != nil {
		return activity, err
	}
	for _, t := range comments {
		if t.Kind != "t1" {
			continue
		}
		activity.Comments = append(activity.Comments, commentRecord(t.Data))
	}

	c.logger().Debug("Fetched activity",
		zap.String("username", username),
		zap.Int("posts", len(activity.Posts)),
		zap.Int("comments", len(activity.Comments)))
	return activity.Truncate(limit), nil
}

func postRecord(d thingData) domain.ActivityRecord {
	r := domain.ActivityRecord{
		Kind:        domain.KindPost,
		ID:          d.ID,
		Subreddit:   d.Subreddit,
		Title:       d.Title,
		URLOrParent: d.URL,
	}
	// link posts carry no body
	if d.IsSelf {
		r.Body = d.SelfText
	}
	return r
}

func commentRecord(d thingData) domain.ActivityRecord {
	return domain.ActivityRecord{
		Kind:        domain.KindComment,
		ID:          d.ID,
		Subreddit:   d.Subreddit,
		Body:        d.Body,
		URLOrParent: strings.TrimPrefix(d.LinkID, "t3_"),
	}
}

func (c *Client) listing(ctx context.Context, username, kind string, limit int) ([]thing, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, domain.NewFetchError(domain.ErrTransientNetwork, username, err)
		}
	}

	q := url.Values{}
	q.Set("sort", "new")
	q.Set("limit", fmt.Sprint(limit))
	q.Set("raw_json", "1")
	endpoint := fmt.Sprintf("%s/user/%s/%s?%s", c.BaseURL, url.PathEscape(username), kind, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewFetchError(domain.ErrTransientNetwork, username, err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, domain.NewFetchError(domain.ErrTransientNetwork, username, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden:
		return nil, domain.NewFetchError(domain.ErrUserNotFound, username, fmt.Errorf("%s: status %d", kind, resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.NewFetchError(domain.ErrRateLimited, username, fmt.Errorf("%s: status %d", kind, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, domain.NewFetchError(domain.ErrTransientNetwork, username,
			fmt.Errorf("%s: status %d: %s", kind, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var data listing
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, domain.NewFetchError(domain.ErrTransientNetwork, username, fmt.Errorf("decode %s: %w", kind, err))
	}
	return data.Data.Children, nil
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(req)
}
