// Package store defines persistence ports for the triage session and a
// file-backed ignore set implementation.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// IgnoreSet persists the PR numbers the user has chosen to skip across
// sessions.
type IgnoreSet interface {
	// Load returns the ignored PR numbers. A store that has never been
	// written returns an empty set, not an error.
	Load() (map[int]bool, error)
	// Save replaces the stored set with the given one.
	Save(ignored map[int]bool) error
}

// FileIgnoreSet stores ignored PR numbers as a JSON array in a flat file.
type FileIgnoreSet struct {
	path string
}

// NewFileIgnoreSet creates an ignore set backed by the file at path.
func NewFileIgnoreSet(path string) *FileIgnoreSet {
	return &FileIgnoreSet{path: path}
}

func (s *FileIgnoreSet) Load() (map[int]bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[int]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ignore file: %w", err)
	}

	var numbers []int
	if err := json.Unmarshal(data, &numbers); err != nil {
		return nil, fmt.Errorf("parse ignore file %s: %w", s.path, err)
	}

	ignored := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		ignored[n] = true
	}
	return ignored, nil
}

func (s *FileIgnoreSet) Save(ignored map[int]bool) error {
	numbers := make([]int, 0, len(ignored))
	for n, on := range ignored {
		if on {
			numbers = append(numbers, n)
		}
	}
	// Stable ordering keeps the file diffable when it lives in a dotfiles repo.
	sort.Ints(numbers)

	data, err := json.Marshal(numbers)
	if err != nil {
		return fmt.Errorf("marshal ignore set: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write ignore file: %w", err)
	}
	return nil
}
