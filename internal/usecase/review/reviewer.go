// Package review implements the AI review orchestrator: it prompts an LLM
// provider for a structured verdict on a pull request's diff and reconciles
// the verdict's line references against the parsed diff.
package review

import (
	"context"
	"encoding/json"
	"fmt"

	llmhttp "github.com/prtriage/prtriage/internal/adapter/llm/http"
	"github.com/prtriage/prtriage/internal/diff"
	"github.com/prtriage/prtriage/internal/domain"
)

// SentinelPath anchors the synthetic comment produced when automated review
// fails. Posting collaborators render comments on this path as PR-level
// comments rather than inline ones.
const SentinelPath = "general"

// Provider is the outbound port for LLM completions. It returns the model's
// raw text; all verdict parsing belongs to the Reviewer so that parse
// failures degrade instead of propagating.
type Provider interface {
	Complete(ctx context.Context, req ProviderRequest) (string, error)
}

// ProviderRequest describes the payload an LLM provider expects.
type ProviderRequest struct {
	Prompt    string
	MaxTokens int
}

// Logger is the minimal structured-logging port for the orchestrator.
type Logger interface {
	Warn(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
}

// Request carries the PR material to review.
type Request struct {
	Title       string
	Description string
	DiffText    string
}

// Reviewer drives a single AI review round-trip.
type Reviewer struct {
	provider  Provider
	logger    Logger
	maxTokens int
}

// NewReviewer constructs a Reviewer. The logger may be nil. maxTokens <= 0
// selects a default suitable for a full structured verdict.
func NewReviewer(provider Provider, logger Logger, maxTokens int) *Reviewer {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Reviewer{provider: provider, logger: logger, maxTokens: maxTokens}
}

// Review asks the provider for a verdict on the given PR. It never returns
// an error: any failure (transport, missing JSON, malformed JSON) yields a
// degraded comment_only verdict with a single sentinel comment, and the
// underlying cause is logged as a warning.
//
// Comment lines in the returned verdict are new-file absolute line numbers,
// best-effort per diff.MapLine.
func (r *Reviewer) Review(ctx context.Context, req Request) domain.Verdict {
	files := diff.Parse(req.DiffText)

	raw, err := r.provider.Complete(ctx, ProviderRequest{
		Prompt:    BuildPrompt(req),
		MaxTokens: r.maxTokens,
	})
	if err != nil {
		return r.fallback("completion call failed", err)
	}

	verdict, err := parseVerdict(raw)
	if err != nil {
		return r.fallback("could not parse verdict from model output", err)
	}

	if !verdict.Action.Valid() {
		r.warn("model returned unknown action, degrading to comment_only", map[string]any{
			"action": string(verdict.Action),
		})
		verdict.Action = domain.ActionCommentOnly
	}

	for i := range verdict.Comments {
		c := &verdict.Comments[i]
		c.Line = diff.MapLine(files, c.Path, c.Line)
	}

	return verdict
}

// parseVerdict extracts and unmarshals the JSON verdict from raw model text.
func parseVerdict(raw string) (domain.Verdict, error) {
	jsonText, err := llmhttp.ExtractJSONObject(raw)
	if err != nil {
		return domain.Verdict{}, err
	}

	var verdict domain.Verdict
	if err := json.Unmarshal([]byte(jsonText), &verdict); err != nil {
		return domain.Verdict{}, fmt.Errorf("unmarshal verdict: %w", err)
	}
	return verdict, nil
}

// fallback builds the degraded verdict used for every failure mode.
func (r *Reviewer) fallback(reason string, err error) domain.Verdict {
	r.warn("automated review failed", map[string]any{
		"reason": reason,
		"error":  err.Error(),
	})

	return domain.Verdict{
		Action: domain.ActionCommentOnly,
		Comments: []domain.Comment{{
			Path:    SentinelPath,
			Line:    0,
			Content: "Automated review failed; this PR needs manual review.",
		}},
	}
}

func (r *Reviewer) warn(msg string, fields map[string]any) {
	if r.logger != nil {
		r.logger.Warn(msg, fields)
	}
}
