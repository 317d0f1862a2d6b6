package review

import (
	"fmt"
	"strings"
)

// promptTemplate is the single-shot review prompt. The worked example for
// line numbering matters: without it, models frequently report the ordinal
// of the line within the diff text instead of the file line number. The
// mapper recovers from that, but only heuristically.
const promptTemplate = `You are reviewing a pull request. Analyze the diff and respond with a structured verdict.

## Pull request

Title: %s

Description:
%s

## Diff

%s

## Instructions

Review the change for correctness, clarity, and obvious defects. Do not
comment on style preferences or speculate about code you cannot see.

Line numbers in your comments MUST be absolute line numbers in the NEW
version of the file, taken from the hunk headers. Worked example: in a hunk
headed "@@ -10,3 +10,4 @@", the first context line is line 10 of the new
file; an added line immediately after it is line 11. Do NOT count lines from
the top of the diff.

Respond with exactly one JSON object, no other text:

{
  "action": "approve" | "approve_with_comments" | "comment_only",
  "comments": [
    {
      "path": "relative/path/from/diff",
      "line": 123,
      "content": "the comment (max 150 characters, direct and specific)",
      "context": "3-5 lines of the code being commented on"
    }
  ],
  "approval_message": "optional message to accompany an approval"
}

Use "approve" when the change is correct and needs no comments,
"approve_with_comments" for minor non-blocking remarks, and "comment_only"
when something must be addressed before approval. Keep comments terse and
actionable.`

// BuildPrompt renders the review prompt for a request. Empty descriptions
// are substituted so the model does not mistake a blank section for missing
// input.
func BuildPrompt(req Request) string {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "(no description provided)"
	}

	return fmt.Sprintf(promptTemplate, strings.TrimSpace(req.Title), description, req.DiffText)
}
