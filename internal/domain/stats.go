// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// AuthorStats holds the merged pull request count for a single author.
// It is the core domain entity of this application.
type AuthorStats struct {
	Author    string `json:"author"`
	MergedPRs int    `json:"merged_prs"`
}

// Summary describes the distribution of merged pull requests across authors.
type Summary struct {
	TotalMerged int     `json:"total_merged"`
	Authors     int     `json:"authors"`
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
}

// Report is the outcome of one run: the qualifying pull requests in fetch
// order and the per-author tally sorted by descending count.
type Report struct {
	Since        time.Time      `json:"since"`
	PullRequests []PullRequest  `json:"pull_requests"`
	Authors      []*AuthorStats `json:"authors"`
	Summary      Summary        `json:"summary"`
}
