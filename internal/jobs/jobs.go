// Package jobs resolves job postings for the extraction step.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no posting exists for the requested ID.
var ErrNotFound = errors.New("job posting not found")

// Static serves postings from memory, keyed by ID. Used when the screening
// runs with an inline job description instead of a database.
type Static map[string]string

func (s Static) GetDescription(_ context.Context, jobID string) (string, error) {
	description, ok := s[jobID]
	if !ok {
		return "", fmt.Errorf("job posting %q: %w", jobID, ErrNotFound)
	}
	if strings.TrimSpace(description) == "" {
		return "", fmt.Errorf("job posting %q has an empty description", jobID)
	}
	return description, nil
}
