package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/transport"
)

const (
	perPage        = 100
	requestRetries = 3
	requestTimeout = 30 * time.Second
)

// Client wraps the go-github client with a shared request rate limit.
type Client struct {
	api     *gh.Client
	limiter *rate.Limiter
}

// NewClient builds a GitHub client from the settings. An empty token means
// anonymous access.
func NewClient(settings entities.GitHubSettings) (*Client, error) {
	api := gh.NewClient(transport.NewStandardClient(requestRetries, requestTimeout))
	if settings.Token != "" {
		api = api.WithAuthToken(settings.Token)
	} else {
		logger.Warn("[github] No token configured, using anonymous rate limits")
	}

	if settings.BaseURL != "" {
		base := settings.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid github base_url %q: %w", settings.BaseURL, err)
		}
		api.BaseURL = parsed
	}

	limit := rate.Inf
	if settings.RequestsPerSecond > 0 {
		limit = rate.Limit(settings.RequestsPerSecond)
	}
	return &Client{api: api, limiter: rate.NewLimiter(limit, 1)}, nil
}

// wait blocks until the next request may be sent.
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// splitRepo splits "owner/name".
func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("repository %q is not in owner/name form", repo)
	}
	return owner, name, nil
}
