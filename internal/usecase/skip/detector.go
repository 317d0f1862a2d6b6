// Package skip detects the opt-out marker authors can place in a PR title
// or description to keep automated triage away.
package skip

import (
	"regexp"

	"github.com/prtriage/prtriage/internal/domain"
)

// markerPattern matches "[skip triage]" and "[skip-triage]" in any case.
var markerPattern = regexp.MustCompile(`(?i)\[skip[ -]triage\]`)

// Detector checks pull requests for the skip marker.
type Detector struct{}

// NewDetector creates a skip marker detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Check reports whether the PR's title or body carries the skip marker.
func (d *Detector) Check(pr domain.PullRequest) bool {
	return markerPattern.MatchString(pr.Title) || markerPattern.MatchString(pr.Body)
}
