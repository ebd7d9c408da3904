// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/merged-pr-stats/internal/domain"
)

// perPage is the largest page size the pulls endpoint accepts.
const perPage = 100

// Fetcher defines the behavior of a gateway for fetching merged pull requests.
type Fetcher interface {
	ListMergedSince(ctx context.Context, repo domain.Repository, since time.Time) ([]domain.PullRequest, error)
}

// Options configures the gateway returned by New.
type Options struct {
	Token         string
	BaseURL       string
	API           string
	MaxPages      int
	WaitRateLimit bool
}

const (
	APIREST    = "rest"
	APIGraphQL = "graphql"
)

// New builds the Fetcher selected by opts.API.
func New(opts Options, logger *logrus.Logger) (Fetcher, error) {
	httpClient, err := NewHTTPClient(opts.Token, opts.WaitRateLimit)
	if err != nil {
		return nil, err
	}
	switch opts.API {
	case "", APIREST:
		client, err := NewClient(httpClient, opts.BaseURL)
		if err != nil {
			return nil, err
		}
		return NewRESTGateway(client, opts.MaxPages, logger), nil
	case APIGraphQL:
		return NewGraphQLGateway(httpClient, graphQLEndpoint(opts.BaseURL), opts.MaxPages, logger), nil
	default:
		return nil, fmt.Errorf("unsupported API %q", opts.API)
	}
}

// RESTGateway lists pull requests through GET /repos/{owner}/{repo}/pulls.
type RESTGateway struct {
	client   *Client
	maxPages int
	logger   *logrus.Logger
}

// NewRESTGateway creates a RESTGateway. maxPages <= 0 means no page limit.
func NewRESTGateway(client *Client, maxPages int, logger *logrus.Logger) *RESTGateway {
	return &RESTGateway{
		client:   client,
		maxPages: maxPages,
		logger:   logger,
	}
}

// ListMergedSince walks closed pull requests page by page until the API returns
// an empty page, keeping those merged at or after since. Every page is fetched
// even when later pages can only hold older pull requests.
// Any failed page aborts the walk and no partial result is returned.
func (g *RESTGateway) ListMergedSince(ctx context.Context, repo domain.Repository, since time.Time) ([]domain.PullRequest, error) {
	path := fmt.Sprintf("repos/%s/%s/pulls", url.PathEscape(repo.Owner), url.PathEscape(repo.Name))
	merged := []domain.PullRequest{}
	for page := 1; ; page++ {
		if g.maxPages > 0 && page > g.maxPages {
			g.logger.Warnf("Stopped after %d pages of %s without reaching an empty page.", g.maxPages, repo)
			break
		}
		g.logger.Infof("Fetching pull request page %d (%s)...", page, repo)
		params := url.Values{
			"state":    {"closed"},
			"per_page": {strconv.Itoa(perPage)},
			"page":     {strconv.Itoa(page)},
		}
		body, err := g.client.Fetch(ctx, path, params)
		if err != nil {
			return nil, err
		}
		var prs []*github.PullRequest
		if err := json.Unmarshal(body, &prs); err != nil {
			return nil, fmt.Errorf("failed to decode pull request page %d of %s: %w", page, repo, err)
		}
		if len(prs) == 0 {
			break
		}
		for _, pr := range prs {
			if p := fromREST(repo, pr); p.MergedSince(since) {
				merged = append(merged, p)
			}
		}
		g.logger.Debugf("  page %d: %d pull requests, %d merged since %s so far", page, len(prs), len(merged), since.Format(time.RFC3339))
	}
	g.logger.Infof("Completed fetching pull requests of %s.", repo)
	return merged, nil
}

func fromREST(repo domain.Repository, pr *github.PullRequest) domain.PullRequest {
	p := domain.PullRequest{
		Repository: repo,
		Number:     pr.GetNumber(),
		Author:     pr.GetUser().GetLogin(),
	}
	if pr.MergedAt != nil {
		mergedAt := pr.MergedAt.Time
		p.MergedAt = &mergedAt
	}
	return p
}
