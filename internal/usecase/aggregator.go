// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/merged-pr-stats/internal/domain"
	"github.com/naka-gawa/merged-pr-stats/internal/gateway"
)

// Aggregator is the use case for tallying merged pull requests per author.
// It orchestrates the fetching and counting of data.
type Aggregator struct {
	fetcher     gateway.Fetcher
	logger      *logrus.Logger
	concurrency int
}

// NewAggregator creates a new Aggregator instance. At most concurrency
// repositories are fetched at once.
func NewAggregator(fetcher gateway.Fetcher, logger *logrus.Logger, concurrency int) *Aggregator {
	return &Aggregator{
		fetcher:     fetcher,
		logger:      logger,
		concurrency: max(concurrency, 1),
	}
}

// Aggregate fetches merged pull requests of every repository and tallies them by author.
// Repositories are fetched concurrently; the result keeps repository order and,
// within a repository, fetch order. The first failure aborts the whole run.
func (a *Aggregator) Aggregate(ctx context.Context, repos []domain.Repository, since time.Time) (*domain.Report, error) {
	a.logger.Debugf("Usecase: Starting aggregation for %d repositories...", len(repos))

	perRepo := make([][]domain.PullRequest, len(repos))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)
	for i, repo := range repos {
		i, repo := i, repo
		eg.Go(func() error {
			prs, err := a.fetcher.ListMergedSince(egCtx, repo, since)
			if err != nil {
				return err
			}
			perRepo[i] = prs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	a.logger.Debugln("Usecase: All data fetched successfully.")

	prs := []domain.PullRequest{}
	for _, repoPRs := range perRepo {
		prs = append(prs, repoPRs...)
	}

	authors := Tally(prs)
	report := &domain.Report{
		Since:        since,
		PullRequests: prs,
		Authors:      authors,
		Summary:      Summarize(authors),
	}
	a.logger.Debugln("Usecase: Aggregation complete.")
	return report, nil
}

// Tally counts pull requests per author and sorts authors by descending count.
// Authors with equal counts stay in the order they were first seen.
func Tally(prs []domain.PullRequest) []*domain.AuthorStats {
	byAuthor := make(map[string]*domain.AuthorStats)
	authors := make([]*domain.AuthorStats, 0)
	for _, pr := range prs {
		author := pr.AuthorOrUnknown()
		s, ok := byAuthor[author]
		if !ok {
			s = &domain.AuthorStats{Author: author}
			byAuthor[author] = s
			authors = append(authors, s)
		}
		s.MergedPRs++
	}
	sort.SliceStable(authors, func(i, j int) bool {
		return authors[i].MergedPRs > authors[j].MergedPRs
	})
	return authors
}

// Summarize computes the distribution of merged pull requests across authors.
func Summarize(authors []*domain.AuthorStats) domain.Summary {
	if len(authors) == 0 {
		return domain.Summary{}
	}
	counts := make(stats.Float64Data, 0, len(authors))
	total := 0
	for _, a := range authors {
		counts = append(counts, float64(a.MergedPRs))
		total += a.MergedPRs
	}
	// Both only fail on empty input, ruled out above.
	mean, _ := stats.Mean(counts)
	median, _ := stats.Median(counts)
	return domain.Summary{
		TotalMerged: total,
		Authors:     len(authors),
		Mean:        mean,
		Median:      median,
	}
}
