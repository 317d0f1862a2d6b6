package github

import (
	"fmt"
	"strings"

	"github.com/prtriage/prtriage/internal/domain"
)

// buildCreateReviewRequest assembles the wire payload for a review.
//
// Comments anchored to a real file line become inline comments on the new
// side of the diff. Comments without a usable anchor (line <= 0, e.g. the
// sentinel comment emitted when automated review fails) are folded into the
// review body so they are never lost to GitHub's anchor validation.
func buildCreateReviewRequest(input CreateReviewInput) createReviewRequest {
	req := createReviewRequest{
		CommitID: input.CommitSHA,
		Event:    input.Event,
		Body:     input.Body,
	}

	var unanchored []string
	for _, c := range input.Comments {
		if c.Line <= 0 || c.Path == "" {
			unanchored = append(unanchored, c.Content)
			continue
		}
		req.Comments = append(req.Comments, ReviewComment{
			Path: c.Path,
			Line: c.Line,
			Side: "RIGHT",
			Body: formatCommentBody(c),
		})
	}

	if len(unanchored) > 0 {
		var sb strings.Builder
		sb.WriteString(req.Body)
		for _, content := range unanchored {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(content)
		}
		req.Body = sb.String()
	}

	return req
}

// formatCommentBody renders a domain comment as GitHub-flavored Markdown,
// attaching the model's code excerpt as a quoted block when present.
func formatCommentBody(c domain.Comment) string {
	if strings.TrimSpace(c.Context) == "" {
		return c.Content
	}
	return fmt.Sprintf("%s\n\n```\n%s\n```", c.Content, strings.TrimSpace(c.Context))
}
