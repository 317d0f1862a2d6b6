package github

import "github.com/prtriage/prtriage/internal/domain"

// ReviewEvent is the review action submitted to GitHub.
type ReviewEvent string

const (
	// EventApprove approves the pull request.
	EventApprove ReviewEvent = "APPROVE"
	// EventComment posts review feedback without explicit approval.
	EventComment ReviewEvent = "COMMENT"
)

// CreateReviewInput contains all data needed to post a PR review.
type CreateReviewInput struct {
	Owner      string
	Repo       string
	PullNumber int
	CommitSHA  string
	Event      ReviewEvent
	Body       string
	Comments   []domain.Comment
}

// ReviewComment is one inline comment in the review request payload.
// Line is an absolute line number in the new version of the file;
// Side is always RIGHT because triage comments target the new code.
type ReviewComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Side string `json:"side"`
	Body string `json:"body"`
}

// createReviewRequest is the wire payload for the Reviews API.
type createReviewRequest struct {
	CommitID string          `json:"commit_id,omitempty"`
	Event    ReviewEvent     `json:"event"`
	Body     string          `json:"body,omitempty"`
	Comments []ReviewComment `json:"comments,omitempty"`
}

// CreateReviewResponse is the API's answer to a posted review.
type CreateReviewResponse struct {
	ID      int64  `json:"id"`
	State   string `json:"state"`
	HTMLURL string `json:"html_url"`
}

// userPayload is the nested GitHub user object.
type userPayload struct {
	Login string `json:"login"`
}

// pullRequestPayload is the subset of GitHub's PR object the triage flow
// consumes. The list endpoint omits the three size counters; they arrive
// only from the per-PR detail endpoint.
type pullRequestPayload struct {
	Number             int           `json:"number"`
	Title              string        `json:"title"`
	Body               string        `json:"body"`
	HTMLURL            string        `json:"html_url"`
	Draft              bool          `json:"draft"`
	User               userPayload   `json:"user"`
	Assignees          []userPayload `json:"assignees"`
	RequestedReviewers []userPayload `json:"requested_reviewers"`
	Head               struct {
		SHA string `json:"sha"`
	} `json:"head"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changed_files"`
}

// toDomain converts the wire payload to the domain representation.
func (p pullRequestPayload) toDomain() domain.PullRequest {
	return domain.PullRequest{
		Number:       p.Number,
		Title:        p.Title,
		Body:         p.Body,
		Author:       p.User.Login,
		HTMLURL:      p.HTMLURL,
		HeadSHA:      p.Head.SHA,
		Additions:    p.Additions,
		Deletions:    p.Deletions,
		ChangedFiles: p.ChangedFiles,
		Draft:        p.Draft,
	}
}
