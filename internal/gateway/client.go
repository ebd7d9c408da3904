package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/merged-pr-stats/internal/domain"
)

// tokenType is the Authorization scheme GitHub documents for personal access tokens.
const tokenType = "token"

// NewHTTPClient returns an HTTP client that authenticates every request with token.
// When waitRateLimit is set, requests hitting a secondary rate limit sleep and retry
// instead of failing.
func NewHTTPClient(token string, waitRateLimit bool) (*http.Client, error) {
	var base http.RoundTripper = http.DefaultTransport
	if waitRateLimit {
		rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
		}
		base = rateLimitWaiter
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: tokenType})
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   base,
			Source: ts,
		},
	}, nil
}

// Client issues GET requests against the GitHub REST API and returns raw bodies.
type Client struct {
	rest *github.Client
}

// NewClient creates a Client rooted at baseURL. An empty baseURL keeps api.github.com.
func NewClient(httpClient *http.Client, baseURL string) (*Client, error) {
	rest := github.NewClient(httpClient)
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		rest.BaseURL = u
	}
	return &Client{rest: rest}, nil
}

// Fetch sends GET path?params and returns the response body of any 2xx response,
// including a 202 that go-github reports as an AcceptedError. Non-2xx responses yield a domain.Error of kind KindHTTPStatus, anything
// failing below HTTP yields KindTransport. Nothing is retried.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	req, err := c.rest.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	var body bytes.Buffer
	resp, err := c.rest.Do(ctx, req, &body)
	var accepted *github.AcceptedError
	if errors.As(err, &accepted) {
		return accepted.Raw, nil
	}
	if err != nil {
		return nil, classify(resp, err)
	}
	return body.Bytes(), nil
}

func classify(resp *github.Response, err error) error {
	if resp != nil && resp.Response != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return domain.NewStatusError(resp.StatusCode, err)
	}
	return domain.NewTransportError(err)
}
