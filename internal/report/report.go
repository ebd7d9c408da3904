// Package report renders everything the user sees on standard output.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/naka-gawa/merged-pr-stats/internal/domain"
)

const (
	hintUnauthorized = "  Authentication failed. Check that GITHUB_TOKEN is valid and has the required scopes."
	hintNotFound     = "  Repository not found. Check the repository owner and name."
	hintForbidden    = "  Rate limit exceeded or insufficient permissions. Wait a while or check the token's permissions."
)

// Printer writes progress, diagnostics and the final tally.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Hint returns guidance for the common HTTP failures, or "" when there is none.
func Hint(err error) string {
	derr, ok := domain.AsError(err)
	if !ok || derr.Kind != domain.KindHTTPStatus {
		return ""
	}
	switch derr.StatusCode {
	case 401:
		return hintUnauthorized
	case 404:
		return hintNotFound
	case 403:
		return hintForbidden
	default:
		return ""
	}
}

// ConfigFailed explains why the run stopped before any request was sent.
func (p *Printer) ConfigFailed(err error) {
	derr, ok := domain.AsError(err)
	if !ok {
		fmt.Fprintf(p.out, "Error: %v\n", err)
		return
	}
	switch derr.Kind {
	case domain.KindInvalidDate:
		fmt.Fprintln(p.out, "Invalid --since date format. Example: 2024-04-01")
	case domain.KindAuthMissing:
		fmt.Fprintln(p.out, "Error: GITHUB_TOKEN environment variable is not set.")
		fmt.Fprintln(p.out, "Set a GitHub personal access token (PAT).")
		fmt.Fprintln(p.out, "  e.g. export GITHUB_TOKEN='YOUR_PAT_HERE'")
		fmt.Fprintln(p.out, "  Tokens can be created at https://github.com/settings/tokens")
	default:
		fmt.Fprintf(p.out, "Error: %s\n", derr.Detail())
	}
}

// Header announces what is about to be fetched.
func (p *Printer) Header(repos []domain.Repository, since time.Time) {
	fmt.Fprintf(p.out, "Fetching merged pull requests of %s... (since: %s)\n", joinRepos(repos), since.Format(time.RFC3339))
}

// FetchFailed prints the failure code or message and a hint when one applies.
func (p *Printer) FetchFailed(err error) {
	detail := err.Error()
	if derr, ok := domain.AsError(err); ok {
		detail = derr.Detail()
	}
	fmt.Fprintf(p.out, "An error occurred while fetching pull requests: %s\n", detail)
	if hint := Hint(err); hint != "" {
		fmt.Fprintln(p.out, hint)
	}
}

// NoneFound reports that no pull request qualified.
func (p *Printer) NoneFound(repos []domain.Repository) {
	fmt.Fprintf(p.out, "No merged pull requests were found in %s.\n", joinRepos(repos))
}

// Report prints one progress line per pull request in fetch order, then
// one "<author>: <count>" line per author and the summary.
func (p *Printer) Report(r *domain.Report) {
	total := len(r.PullRequests)
	fmt.Fprintf(p.out, "\nFound %d merged pull requests. Counting by author...\n", total)
	for i, pr := range r.PullRequests {
		fmt.Fprintf(p.out, "Checking author of %s#%d... (%d/%d) - author: %s\n", pr.Repository, pr.Number, i+1, total, pr.AuthorOrUnknown())
	}

	fmt.Fprintln(p.out, "\n--- Merged pull requests by author ---")
	for _, a := range r.Authors {
		fmt.Fprintf(p.out, "%s: %d\n", a.Author, a.MergedPRs)
	}

	s := r.Summary
	fmt.Fprintf(p.out, "\nTotal: %d merged by %d authors (mean %.2f, median %.1f per author)\n", s.TotalMerged, s.Authors, s.Mean, s.Median)
}

func joinRepos(repos []domain.Repository) string {
	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.String())
	}
	return strings.Join(names, ", ")
}
