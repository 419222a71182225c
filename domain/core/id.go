package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID          ID
	HypothesisName string
)

func (id RunID) String() string { return ID(id).String() }

func (n HypothesisName) String() string { return string(n) }

// NewRunID creates an identifier for a single analysis run
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseHypothesisName validates a user-supplied hypothesis name
func ParseHypothesisName(s string) (HypothesisName, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("hypothesis name cannot be empty")
	}
	return HypothesisName(strings.TrimSpace(s)), nil
}
