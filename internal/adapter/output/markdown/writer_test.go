package markdown_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prtriage/prtriage/internal/adapter/output/markdown"
	"github.com/prtriage/prtriage/internal/domain"
	"github.com/prtriage/prtriage/internal/usecase/triage"
)

func TestWriterProducesDeterministicReport(t *testing.T) {
	dir := t.TempDir()

	writer := markdown.NewWriter(dir, func() string {
		return "2026-01-01T00-00-00Z"
	})

	summary := triage.Summary{
		Owner:     "Acme",
		Repo:      "widgets",
		StartedAt: time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC),
		Decisions: []triage.Decision{
			{
				PR: domain.PullRequest{
					Number: 42, Title: "fix flaky test", Author: "alice",
					Additions: 3, Deletions: 1, ChangedFiles: 1,
				},
				Outcome: triage.OutcomeApproved,
				Simple:  true,
			},
			{
				PR: domain.PullRequest{
					Number: 43, Title: "big refactor", Author: "bob",
					Additions: 400, Deletions: 120, ChangedFiles: 12,
				},
				Outcome:  triage.OutcomeCommented,
				AIAction: domain.ActionCommentOnly,
			},
		},
	}

	path, err := writer.Write(summary)
	if err != nil {
		t.Fatalf("writer returned error: %v", err)
	}

	if filepath.Base(path) != "triage_acme_widgets_2026-01-01T00-00-00Z.md" {
		t.Fatalf("unexpected filename: %s", filepath.Base(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}

	text := string(content)
	if !strings.Contains(text, "### #42 fix flaky test (Approved)") {
		t.Fatalf("report missing approved decision heading: %s", text)
	}
	if !strings.Contains(text, "- AI verdict: comment_only") {
		t.Fatalf("report missing AI verdict line: %s", text)
	}
	if !strings.Contains(text, "- Classification: simple") {
		t.Fatalf("report missing classification line: %s", text)
	}
}

func TestWriterEmptySession(t *testing.T) {
	dir := t.TempDir()

	writer := markdown.NewWriter(dir, func() string { return "ts" })

	path, err := writer.Write(triage.Summary{Owner: "acme", Repo: "widgets"})
	if err != nil {
		t.Fatalf("writer returned error: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if !strings.Contains(string(content), "Nothing needed attention.") {
		t.Fatalf("empty session report wrong: %s", string(content))
	}
}
