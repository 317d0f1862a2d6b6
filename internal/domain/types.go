package domain

import "fmt"

// Action classifies the outcome an AI review recommends for a pull request.
type Action string

const (
	// ActionApprove approves the PR without inline comments.
	ActionApprove Action = "approve"
	// ActionApproveWithComments approves the PR and attaches inline comments.
	ActionApproveWithComments Action = "approve_with_comments"
	// ActionCommentOnly posts comments without approving.
	ActionCommentOnly Action = "comment_only"
)

// Valid reports whether a is one of the three known review actions.
// Model output is untrusted, so callers must check before acting on it.
func (a Action) Valid() bool {
	switch a {
	case ActionApprove, ActionApproveWithComments, ActionCommentOnly:
		return true
	}
	return false
}

// PullRequest is the metadata the triage workflow needs about a single PR.
// It is supplied pre-fetched; the domain layer does not know how it was
// retrieved.
type PullRequest struct {
	Number       int
	Title        string
	Body         string
	Author       string
	HTMLURL      string
	HeadSHA      string
	Additions    int
	Deletions    int
	ChangedFiles int
	Draft        bool
}

// LinesChanged returns the total change volume of the PR.
func (pr PullRequest) LinesChanged() int {
	return pr.Additions + pr.Deletions
}

// Comment is a single review remark anchored to a file line.
//
// Line is ambiguous as produced by the model: it may be a 1-based ordinal
// into the diff's content lines, an old-file line number, or a new-file line
// number. It is resolved to a new-file absolute line number before posting.
type Comment struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Content string `json:"content"`
	Context string `json:"context,omitempty"`
}

// Verdict is the structured result of an AI-driven review.
type Verdict struct {
	Action          Action    `json:"action"`
	Comments        []Comment `json:"comments"`
	ApprovalMessage string    `json:"approval_message,omitempty"`
}

// HasApproval reports whether the verdict recommends approving the PR.
func (v Verdict) HasApproval() bool {
	return v.Action == ActionApprove || v.Action == ActionApproveWithComments
}

// Summary renders a one-line description of the verdict for logs and the
// terminal, e.g. "approve_with_comments (3 comments)".
func (v Verdict) Summary() string {
	switch n := len(v.Comments); n {
	case 0:
		return string(v.Action)
	case 1:
		return fmt.Sprintf("%s (1 comment)", v.Action)
	default:
		return fmt.Sprintf("%s (%d comments)", v.Action, n)
	}
}
