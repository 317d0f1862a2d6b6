// Package editor launches the user's text editor for free-form review
// comments.
package editor

import (
	"fmt"
	"os"
	"os/exec"
)

const fallbackEditor = "vi"

// Editor drives $EDITOR over a temp file.
type Editor struct {
	command string
}

// New creates an Editor using command, falling back to $EDITOR and then vi
// when command is empty.
func New(command string) *Editor {
	if command == "" {
		command = os.Getenv("EDITOR")
	}
	if command == "" {
		command = fallbackEditor
	}
	return &Editor{command: command}
}

// Edit writes initial to a temp file, opens the editor on it, and returns
// the file's content after the editor exits.
func (e *Editor) Edit(initial string) (string, error) {
	tmp, err := os.CreateTemp("", "prt-comment-*.md")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(initial); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	cmd := exec.Command(e.command, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run editor %s: %w", e.command, err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read edited file: %w", err)
	}
	return string(edited), nil
}
