package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/merged-pr-stats/internal/domain"
)

const defaultGraphQLEndpoint = "https://api.github.com/graphql"

// repositoryNotFound is the message GitHub returns, with HTTP 200 and a
// NOT_FOUND error type, when the owner/name pair does not resolve.
const repositoryNotFound = "Could not resolve to a Repository"

// mergedPRQuery pages through merged pull requests, most recently updated first.
type mergedPRQuery struct {
	Repository struct {
		PullRequests struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Number   githubv4.Int
				MergedAt *githubv4.DateTime
				Author   struct {
					Login githubv4.String
				}
			}
		} `graphql:"pullRequests(states: MERGED, first: 100, after: $cursor, orderBy: {field: UPDATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// GraphQLGateway lists merged pull requests through the GraphQL API.
type GraphQLGateway struct {
	client   *githubv4.Client
	maxPages int
	logger   *logrus.Logger
}

// NewGraphQLGateway creates a GraphQLGateway posting to endpoint.
// Non-2xx responses surface as domain.Error of kind KindHTTPStatus.
func NewGraphQLGateway(httpClient *http.Client, endpoint string, maxPages int, logger *logrus.Logger) *GraphQLGateway {
	guarded := &http.Client{Transport: statusGuard{base: transportOf(httpClient)}}
	if httpClient != nil {
		guarded.Timeout = httpClient.Timeout
	}
	return &GraphQLGateway{
		client:   githubv4.NewEnterpriseClient(endpoint, guarded),
		maxPages: maxPages,
		logger:   logger,
	}
}

// ListMergedSince follows the cursor until a page is empty or the API reports
// no further page, keeping pull requests merged at or after since.
func (g *GraphQLGateway) ListMergedSince(ctx context.Context, repo domain.Repository, since time.Time) ([]domain.PullRequest, error) {
	variables := map[string]interface{}{
		"owner":  githubv4.String(repo.Owner),
		"name":   githubv4.String(repo.Name),
		"cursor": (*githubv4.String)(nil),
	}
	merged := []domain.PullRequest{}
	for page := 1; ; page++ {
		if g.maxPages > 0 && page > g.maxPages {
			g.logger.Warnf("Stopped after %d pages of %s without reaching the last page.", g.maxPages, repo)
			break
		}
		g.logger.Infof("Fetching pull request page %d (%s)...", page, repo)
		var q mergedPRQuery
		if err := g.client.Query(ctx, &q, variables); err != nil {
			return nil, classifyGraphQL(repo, err)
		}
		conn := q.Repository.PullRequests
		if len(conn.Nodes) == 0 {
			break
		}
		for _, node := range conn.Nodes {
			p := domain.PullRequest{
				Repository: repo,
				Number:     int(node.Number),
				Author:     string(node.Author.Login),
			}
			if node.MergedAt != nil {
				mergedAt := node.MergedAt.Time
				p.MergedAt = &mergedAt
			}
			if p.MergedSince(since) {
				merged = append(merged, p)
			}
		}
		if !conn.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(conn.PageInfo.EndCursor)
	}
	g.logger.Infof("Completed fetching pull requests of %s.", repo)
	return merged, nil
}

func classifyGraphQL(repo domain.Repository, err error) error {
	if derr, ok := domain.AsError(err); ok {
		return derr
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return domain.NewTransportError(err)
	}
	if strings.Contains(err.Error(), repositoryNotFound) {
		return domain.NewStatusError(http.StatusNotFound, fmt.Errorf("failed to execute GraphQL query for %s: %w", repo, err))
	}
	return fmt.Errorf("failed to execute GraphQL query for %s: %w", repo, err)
}

// graphQLEndpoint derives the GraphQL URL from the REST base URL.
func graphQLEndpoint(baseURL string) string {
	if baseURL == "" {
		return defaultGraphQLEndpoint
	}
	return strings.TrimSuffix(baseURL, "/") + "/graphql"
}

// transportOf returns the RoundTripper used by c.
func transportOf(c *http.Client) http.RoundTripper {
	if c == nil || c.Transport == nil {
		return http.DefaultTransport
	}
	return c.Transport
}

// statusGuard turns non-2xx responses into errors carrying the status code,
// which the GraphQL client would otherwise fold into an opaque message.
type statusGuard struct {
	base http.RoundTripper
}

func (s statusGuard) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := s.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, domain.NewStatusError(resp.StatusCode, errors.New(resp.Status))
	}
	return resp, nil
}
