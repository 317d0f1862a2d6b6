// Package triage implements the interactive PR triage session: classifying
// pull requests by size, invoking the AI reviewer for the rest, and walking
// the user through the results.
package triage

import (
	"fmt"

	"github.com/prtriage/prtriage/internal/domain"
)

// Criteria holds the size thresholds separating simple PRs from those that
// need an AI review. All bounds are inclusive.
type Criteria struct {
	MaxAdditions    int
	MaxDeletions    int
	MaxChangedFiles int
	MaxLinesChanged int
}

// DefaultCriteria returns the stock thresholds.
func DefaultCriteria() Criteria {
	return Criteria{
		MaxAdditions:    50,
		MaxDeletions:    50,
		MaxChangedFiles: 5,
		MaxLinesChanged: 100,
	}
}

// Merge fills any zero threshold in c from the defaults, so partial config
// overrides only what it names.
func (c Criteria) Merge() Criteria {
	defaults := DefaultCriteria()
	if c.MaxAdditions == 0 {
		c.MaxAdditions = defaults.MaxAdditions
	}
	if c.MaxDeletions == 0 {
		c.MaxDeletions = defaults.MaxDeletions
	}
	if c.MaxChangedFiles == 0 {
		c.MaxChangedFiles = defaults.MaxChangedFiles
	}
	if c.MaxLinesChanged == 0 {
		c.MaxLinesChanged = defaults.MaxLinesChanged
	}
	return c
}

// IsSimple reports whether the PR is small enough to approve without an AI
// review. Draft PRs are never simple regardless of size.
func (c Criteria) IsSimple(pr domain.PullRequest) bool {
	if pr.Draft {
		return false
	}
	return pr.Additions <= c.MaxAdditions &&
		pr.Deletions <= c.MaxDeletions &&
		pr.ChangedFiles <= c.MaxChangedFiles &&
		pr.LinesChanged() <= c.MaxLinesChanged
}

// ApprovalComment builds the canned approval message for a simple PR. The
// counts are embedded so the review explains itself later.
func ApprovalComment(pr domain.PullRequest) string {
	return fmt.Sprintf(
		"Auto-approved as a simple change: +%d/-%d across %d file(s).",
		pr.Additions, pr.Deletions, pr.ChangedFiles)
}
