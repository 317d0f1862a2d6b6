package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// LineType represents the kind of a content line in a diff hunk.
type LineType int

const (
	// LineContext is an unchanged line (prefix ' ').
	LineContext LineType = iota
	// LineAddition is an added line (prefix '+').
	LineAddition
	// LineDeletion is a deleted line (prefix '-').
	LineDeletion
)

// Line is a single content line within a hunk, prefix stripped.
type Line struct {
	Type    LineType
	Content string
}

// Hunk is one @@ region of a file's diff. Lines preserves diff order.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// File is the diff for a single file, identified by its new path.
// Hunks appear in file order, ascending by NewStart.
type File struct {
	Path  string
	Hunks []Hunk
}

// hunkHeaderRegex matches "@@ -oldStart[,oldLines] +newStart[,newLines] @@".
// Omitted counts mean a single-line hunk (unified-diff convention).
var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// newPathPrefix marks the line carrying a file's new path.
const newPathPrefix = "+++ b/"

// Parse converts unified-diff text into a structured file list.
//
// A "diff --git" line closes the current file (if any) and opens a new one;
// "+++ b/<path>" names the current file; "@@" opens a new hunk. Content
// lines are collected only while a hunk is open, so a diff with no
// "diff --git" marker yields no files, and lines following a malformed hunk
// header are dropped until the next valid marker.
func Parse(diffText string) []File {
	var (
		files       []File
		currentFile *File
		currentHunk *Hunk
	)

	flushHunk := func() {
		if currentFile != nil && currentHunk != nil {
			currentFile.Hunks = append(currentFile.Hunks, *currentHunk)
		}
		currentHunk = nil
	}
	flushFile := func() {
		flushHunk()
		if currentFile != nil {
			files = append(files, *currentFile)
		}
		currentFile = nil
	}

	for _, line := range strings.Split(diffText, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git"):
			flushFile()
			currentFile = &File{}

		case strings.HasPrefix(line, newPathPrefix):
			if currentFile != nil {
				currentFile.Path = line[len(newPathPrefix):]
			}

		case strings.HasPrefix(line, "@@"):
			if currentFile == nil {
				continue
			}
			flushHunk()
			if hunk, ok := parseHunkHeader(line); ok {
				currentHunk = &hunk
			}

		default:
			if currentHunk == nil || line == "" {
				continue
			}
			switch line[0] {
			case '+':
				currentHunk.Lines = append(currentHunk.Lines, Line{Type: LineAddition, Content: line[1:]})
			case '-':
				currentHunk.Lines = append(currentHunk.Lines, Line{Type: LineDeletion, Content: line[1:]})
			case ' ':
				currentHunk.Lines = append(currentHunk.Lines, Line{Type: LineContext, Content: line[1:]})
			}
		}
	}

	flushFile()
	return files
}

// parseHunkHeader extracts the four numeric fields from a hunk header.
// Returns ok=false for headers that do not match; the caller then opens no
// hunk and drops content until the next marker.
func parseHunkHeader(line string) (Hunk, bool) {
	m := hunkHeaderRegex.FindStringSubmatch(line)
	if m == nil {
		return Hunk{}, false
	}

	return Hunk{
		OldStart: atoiDefault(m[1], 0),
		OldLines: atoiDefault(m[2], 1),
		NewStart: atoiDefault(m[3], 0),
		NewLines: atoiDefault(m[4], 1),
	}, true
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
