// Package markdown renders triage session reports into Markdown files.
package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/prtriage/prtriage/internal/usecase/triage"
)

type clock func() string

// Writer renders triage session summaries into Markdown files.
type Writer struct {
	outputDir string
	now       clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(outputDir string, now clock) *Writer {
	return &Writer{outputDir: outputDir, now: now}
}

// Write persists a session report to disk and returns its path.
func (w *Writer) Write(summary triage.Summary) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("triage_%s_%s_%s.md",
		sanitise(summary.Owner),
		sanitise(summary.Repo),
		w.now(),
	)
	path := filepath.Join(w.outputDir, filename)

	if err := os.WriteFile(path, []byte(buildContent(summary)), 0o644); err != nil {
		return "", fmt.Errorf("write session report: %w", err)
	}
	return path, nil
}

func buildContent(summary triage.Summary) string {
	var builder strings.Builder
	caser := cases.Title(language.English)

	builder.WriteString("# PR Triage Report\n\n")
	builder.WriteString(fmt.Sprintf("- Repository: %s/%s\n", summary.Owner, summary.Repo))
	builder.WriteString(fmt.Sprintf("- Started: %s\n", summary.StartedAt.Format("2006-01-02 15:04:05")))
	builder.WriteString(fmt.Sprintf("- Pull requests triaged: %d\n\n", len(summary.Decisions)))

	if len(summary.Decisions) == 0 {
		builder.WriteString("Nothing needed attention.\n")
		return builder.String()
	}

	builder.WriteString("## Decisions\n\n")
	for _, d := range summary.Decisions {
		builder.WriteString(fmt.Sprintf("### #%d %s (%s)\n", d.PR.Number, d.PR.Title, caser.String(d.Outcome)))
		builder.WriteString(fmt.Sprintf("- Author: %s\n", d.PR.Author))
		builder.WriteString(fmt.Sprintf("- Size: +%d/-%d across %d file(s)\n", d.PR.Additions, d.PR.Deletions, d.PR.ChangedFiles))
		if d.Simple {
			builder.WriteString("- Classification: simple\n")
		} else {
			builder.WriteString("- Classification: needs review\n")
		}
		if d.AIAction != "" {
			builder.WriteString(fmt.Sprintf("- AI verdict: %s\n", d.AIAction))
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
