package triage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	ghadapter "github.com/prtriage/prtriage/internal/adapter/github"
	"github.com/prtriage/prtriage/internal/adapter/store/sqlite"
	"github.com/prtriage/prtriage/internal/domain"
	"github.com/prtriage/prtriage/internal/store"
	"github.com/prtriage/prtriage/internal/usecase/review"
)

// GitHub is the outbound port for the hosting service.
type GitHub interface {
	ListOpenPullRequests(ctx context.Context, owner, repo, assignee string) ([]domain.PullRequest, error)
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)
	CreateReview(ctx context.Context, input ghadapter.CreateReviewInput) (*ghadapter.CreateReviewResponse, error)
}

// Reviewer produces an AI verdict for a pull request.
type Reviewer interface {
	Review(ctx context.Context, req review.Request) domain.Verdict
}

// SkipChecker detects the author's opt-out marker.
type SkipChecker interface {
	Check(pr domain.PullRequest) bool
}

// Editor opens the user's editor with initial content and returns the edit.
type Editor interface {
	Edit(initial string) (string, error)
}

// Opener opens a URL in the user's browser.
type Opener interface {
	Open(url string) error
}

// DecisionStore records triage outcomes for later audit. May be nil.
type DecisionStore interface {
	RecordDecision(ctx context.Context, d sqlite.Decision) error
}

// Logger is the structured-logging port for the session.
type Logger interface {
	Warn(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
}

// Decision is one per-PR outcome of a triage session.
type Decision struct {
	PR       domain.PullRequest
	Outcome  string
	Simple   bool
	AIAction domain.Action
}

// Summary aggregates a whole session.
type Summary struct {
	Owner     string
	Repo      string
	StartedAt time.Time
	Decisions []Decision
}

// Count returns how many decisions had the given outcome.
func (s Summary) Count(outcome string) int {
	n := 0
	for _, d := range s.Decisions {
		if d.Outcome == outcome {
			n++
		}
	}
	return n
}

// Session outcomes.
const (
	OutcomeApproved  = "approved"
	OutcomeCommented = "commented"
	OutcomeSkipped   = "skipped"
	OutcomeIgnored   = "ignored"
	OutcomeFailed    = "failed"
)

// Driver runs the interactive triage loop over a repository's open PRs.
type Driver struct {
	github    GitHub
	reviewer  Reviewer
	skip      SkipChecker
	ignores   store.IgnoreSet
	decisions DecisionStore
	editor    Editor
	opener    Opener
	logger    Logger
	criteria  Criteria
	input     io.Reader
	output    io.Writer
	now       func() time.Time
}

// DriverConfig wires the driver's collaborators. GitHub, Reviewer, Ignores,
// Input, and Output are required; the rest may be nil (the matching menu
// actions print an explanation instead of acting).
type DriverConfig struct {
	GitHub    GitHub
	Reviewer  Reviewer
	Skip      SkipChecker
	Ignores   store.IgnoreSet
	Decisions DecisionStore
	Editor    Editor
	Opener    Opener
	Logger    Logger
	Criteria  Criteria
	Input     io.Reader
	Output    io.Writer
}

// NewDriver constructs a session driver.
func NewDriver(cfg DriverConfig) *Driver {
	return &Driver{
		github:    cfg.GitHub,
		reviewer:  cfg.Reviewer,
		skip:      cfg.Skip,
		ignores:   cfg.Ignores,
		decisions: cfg.Decisions,
		editor:    cfg.Editor,
		opener:    cfg.Opener,
		logger:    cfg.Logger,
		criteria:  cfg.Criteria.Merge(),
		input:     cfg.Input,
		output:    cfg.Output,
		now:       time.Now,
	}
}

// Run triages every open PR for the assignee and returns the session
// summary. Per-PR failures are reported and the loop moves on; only a
// failure to list PRs or a quit command ends the session early.
func (d *Driver) Run(ctx context.Context, owner, repo, assignee string) (Summary, error) {
	summary := Summary{Owner: owner, Repo: repo, StartedAt: d.now()}

	ignored, err := d.ignores.Load()
	if err != nil {
		return summary, fmt.Errorf("load ignore set: %w", err)
	}

	prs, err := d.github.ListOpenPullRequests(ctx, owner, repo, assignee)
	if err != nil {
		return summary, fmt.Errorf("list open PRs: %w", err)
	}
	if len(prs) == 0 {
		fmt.Fprintln(d.output, "No open pull requests to triage.")
		return summary, nil
	}

	in := bufio.NewScanner(d.input)

	for _, pr := range prs {
		if ignored[pr.Number] {
			fmt.Fprintf(d.output, "Skipping PR #%d (%s): on the ignore list\n", pr.Number, pr.Title)
			continue
		}
		if d.skip != nil && d.skip.Check(pr) {
			fmt.Fprintf(d.output, "Skipping PR #%d (%s): author opted out of triage\n", pr.Number, pr.Title)
			d.record(ctx, &summary, Decision{PR: pr, Outcome: OutcomeSkipped})
			continue
		}

		quit, err := d.triageOne(ctx, in, owner, repo, pr, ignored, &summary)
		if err != nil {
			d.warnf("triage of PR failed", map[string]any{"pr": pr.Number, "error": err.Error()})
			fmt.Fprintf(d.output, "PR #%d failed: %v\n", pr.Number, err)
			d.record(ctx, &summary, Decision{PR: pr, Outcome: OutcomeFailed})
			continue
		}
		if quit {
			break
		}
	}

	if err := d.ignores.Save(ignored); err != nil {
		return summary, fmt.Errorf("save ignore set: %w", err)
	}

	d.printSummary(summary)
	return summary, nil
}

// triageOne handles a single PR and reports whether the user quit.
func (d *Driver) triageOne(ctx context.Context, in *bufio.Scanner, owner, repo string, pr domain.PullRequest, ignored map[int]bool, summary *Summary) (bool, error) {
	simple := d.criteria.IsSimple(pr)

	var verdict domain.Verdict
	if simple {
		verdict = domain.Verdict{
			Action:          domain.ActionApprove,
			ApprovalMessage: ApprovalComment(pr),
		}
	} else {
		diffText, err := d.github.GetPullRequestDiff(ctx, owner, repo, pr.Number)
		if err != nil {
			return false, fmt.Errorf("fetch diff: %w", err)
		}
		verdict = d.reviewer.Review(ctx, review.Request{
			Title:       pr.Title,
			Description: pr.Body,
			DiffText:    diffText,
		})
	}

	d.printPR(pr, simple, verdict)

	for {
		fmt.Fprint(d.output, "[a]pprove  [r]eview comments  [c]omment  [o]pen  [s]kip  [i]gnore  [q]uit > ")
		if !in.Scan() {
			// Input exhausted; treat as quit so the ignore set still saves.
			return true, in.Err()
		}
		choice := strings.ToLower(strings.TrimSpace(in.Text()))

		switch choice {
		case "a":
			if err := d.approve(ctx, owner, repo, pr, verdict, simple); err != nil {
				return false, err
			}
			d.record(ctx, summary, Decision{PR: pr, Outcome: OutcomeApproved, Simple: simple, AIAction: verdict.Action})
			return false, nil

		case "r":
			if err := d.postComments(ctx, owner, repo, pr, verdict.Comments, ""); err != nil {
				return false, err
			}
			d.record(ctx, summary, Decision{PR: pr, Outcome: OutcomeCommented, Simple: simple, AIAction: verdict.Action})
			return false, nil

		case "c":
			if d.editor == nil {
				fmt.Fprintln(d.output, "No editor configured.")
				continue
			}
			edited, err := d.editor.Edit(d.commentTemplate(pr, verdict))
			if err != nil {
				return false, fmt.Errorf("edit comment: %w", err)
			}
			body := stripTemplateComments(edited)
			if strings.TrimSpace(body) == "" {
				fmt.Fprintln(d.output, "Empty comment, nothing posted.")
				continue
			}
			if err := d.postComments(ctx, owner, repo, pr, nil, body); err != nil {
				return false, err
			}
			d.record(ctx, summary, Decision{PR: pr, Outcome: OutcomeCommented, Simple: simple, AIAction: verdict.Action})
			return false, nil

		case "o":
			if d.opener == nil {
				fmt.Fprintln(d.output, "No browser opener configured.")
				continue
			}
			if err := d.opener.Open(pr.HTMLURL); err != nil {
				fmt.Fprintf(d.output, "Could not open browser: %v\n", err)
			}
			// Stay on this PR after opening it.
			continue

		case "s":
			d.record(ctx, summary, Decision{PR: pr, Outcome: OutcomeSkipped, Simple: simple, AIAction: verdict.Action})
			return false, nil

		case "i":
			ignored[pr.Number] = true
			// Flush immediately so the decision survives a later crash or quit.
			if err := d.ignores.Save(ignored); err != nil {
				d.warnf("could not persist ignore set", map[string]any{"error": err.Error()})
			}
			fmt.Fprintf(d.output, "PR #%d will be ignored in future sessions.\n", pr.Number)
			d.record(ctx, summary, Decision{PR: pr, Outcome: OutcomeIgnored, Simple: simple, AIAction: verdict.Action})
			return false, nil

		case "q":
			return true, nil

		default:
			fmt.Fprintf(d.output, "Unknown choice %q.\n", choice)
		}
	}
}

func (d *Driver) approve(ctx context.Context, owner, repo string, pr domain.PullRequest, verdict domain.Verdict, simple bool) error {
	body := verdict.ApprovalMessage
	if body == "" {
		body = "LGTM."
	}

	// AI-drafted approval text is offered for editing before posting. The
	// canned simple-PR comment is posted as-is.
	if !simple && d.editor != nil {
		edited, err := d.editor.Edit(body)
		if err != nil {
			d.warnf("editor failed, posting drafted approval message", map[string]any{"error": err.Error()})
		} else if trimmed := strings.TrimSpace(edited); trimmed != "" {
			body = trimmed
		}
	}

	// Only carry the AI's inline comments when it recommended approval with
	// comments; a plain approve should not resurrect comment_only remarks.
	var comments []domain.Comment
	if verdict.Action == domain.ActionApproveWithComments {
		comments = verdict.Comments
	}

	resp, err := d.github.CreateReview(ctx, ghadapter.CreateReviewInput{
		Owner:      owner,
		Repo:       repo,
		PullNumber: pr.Number,
		CommitSHA:  pr.HeadSHA,
		Event:      ghadapter.EventApprove,
		Body:       body,
		Comments:   comments,
	})
	if err != nil {
		return fmt.Errorf("approve PR: %w", err)
	}
	fmt.Fprintf(d.output, "Approved PR #%d: %s\n", pr.Number, resp.HTMLURL)
	return nil
}

func (d *Driver) postComments(ctx context.Context, owner, repo string, pr domain.PullRequest, comments []domain.Comment, body string) error {
	if len(comments) == 0 && strings.TrimSpace(body) == "" {
		fmt.Fprintln(d.output, "No comments to post.")
		return nil
	}

	resp, err := d.github.CreateReview(ctx, ghadapter.CreateReviewInput{
		Owner:      owner,
		Repo:       repo,
		PullNumber: pr.Number,
		CommitSHA:  pr.HeadSHA,
		Event:      ghadapter.EventComment,
		Body:       body,
		Comments:   comments,
	})
	if err != nil {
		return fmt.Errorf("post review comments: %w", err)
	}
	fmt.Fprintf(d.output, "Posted review on PR #%d: %s\n", pr.Number, resp.HTMLURL)
	return nil
}

// stripTemplateComments drops the instructional HTML comment lines the
// template seeds the editor with, leaving only what the user wrote.
func stripTemplateComments(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "<!--") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// commentTemplate seeds the editor when the user writes their own comment.
func (d *Driver) commentTemplate(pr domain.PullRequest, verdict domain.Verdict) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<!-- Review comment for PR #%d: %s -->\n\n", pr.Number, pr.Title)
	for _, c := range verdict.Comments {
		if c.Path == review.SentinelPath {
			continue
		}
		fmt.Fprintf(&sb, "<!-- %s:%d: %s -->\n", c.Path, c.Line, c.Content)
	}
	return sb.String()
}

func (d *Driver) printPR(pr domain.PullRequest, simple bool, verdict domain.Verdict) {
	fmt.Fprintf(d.output, "\nPR #%d: %s\n", pr.Number, pr.Title)
	fmt.Fprintf(d.output, "  by %s  +%d/-%d  %d file(s)  %s\n",
		pr.Author, pr.Additions, pr.Deletions, pr.ChangedFiles, pr.HTMLURL)

	if simple {
		fmt.Fprintln(d.output, "  Classified simple; suggested action: approve")
		return
	}

	fmt.Fprintf(d.output, "  AI verdict: %s\n", verdict.Summary())
	for _, c := range verdict.Comments {
		if c.Line > 0 {
			fmt.Fprintf(d.output, "    %s:%d  %s\n", c.Path, c.Line, c.Content)
		} else {
			fmt.Fprintf(d.output, "    %s\n", c.Content)
		}
	}
}

func (d *Driver) printSummary(s Summary) {
	fmt.Fprintf(d.output, "\nSession summary for %s/%s:\n", s.Owner, s.Repo)
	fmt.Fprintf(d.output, "  approved: %d  commented: %d  skipped: %d  ignored: %d  failed: %d\n",
		s.Count(OutcomeApproved), s.Count(OutcomeCommented),
		s.Count(OutcomeSkipped), s.Count(OutcomeIgnored), s.Count(OutcomeFailed))
}

// record appends to the session summary and best-effort persists the
// decision. Persistence failures are logged, never fatal.
func (d *Driver) record(ctx context.Context, summary *Summary, decision Decision) {
	summary.Decisions = append(summary.Decisions, decision)

	if d.decisions == nil {
		return
	}
	err := d.decisions.RecordDecision(ctx, sqlite.Decision{
		PRNumber: decision.PR.Number,
		Title:    decision.PR.Title,
		Action:   decision.Outcome,
		Simple:   decision.Simple,
		AIAction: decision.AIAction,
	})
	if err != nil {
		d.warnf("could not persist decision", map[string]any{
			"pr":    decision.PR.Number,
			"error": err.Error(),
		})
	}
}

func (d *Driver) warnf(msg string, fields map[string]any) {
	if d.logger != nil {
		d.logger.Warn(msg, fields)
	}
}
