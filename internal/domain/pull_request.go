package domain

import (
	"fmt"
	"strings"
	"time"
)

// UnknownAuthor is used when a pull request carries no author login.
const UnknownAuthor = "unknown author"

// PullRequest is the subset of a GitHub pull request this tool consumes.
type PullRequest struct {
	Repository Repository `json:"repository"`
	Number     int        `json:"number"`
	Author     string     `json:"author"`
	MergedAt   *time.Time `json:"merged_at"`
}

// AuthorOrUnknown returns the author login, or UnknownAuthor when it is empty.
func (p PullRequest) AuthorOrUnknown() string {
	if p.Author == "" {
		return UnknownAuthor
	}
	return p.Author
}

// MergedSince reports whether the pull request was merged at or after cutoff.
// Unmerged pull requests never qualify.
func (p PullRequest) MergedSince(cutoff time.Time) bool {
	return p.MergedAt != nil && !p.MergedAt.Before(cutoff)
}

// Repository identifies a GitHub repository.
type Repository struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepository parses an "owner/name" string.
func ParseRepository(s string) (Repository, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, NewConfigError(fmt.Sprintf("invalid repository %q, expected owner/name", s))
	}
	return Repository{Owner: owner, Name: name}, nil
}
