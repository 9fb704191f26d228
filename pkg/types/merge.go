package types

import (
	"fmt"
	"strings"
)

// MergeStrategy decides what happens when a dotfile's target already exists.
type MergeStrategy string

const (
	// MergeOverwrite always replaces the existing target.
	MergeOverwrite MergeStrategy = "overwrite"
	// MergeKeep leaves an existing target untouched.
	MergeKeep MergeStrategy = "keep"
	// MergeAsk defers the decision to a conflict resolver.
	MergeAsk MergeStrategy = "ask"
)

// ParseMergeStrategy parses a case-insensitive strategy name.
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overwrite":
		return MergeOverwrite, nil
	case "keep":
		return MergeKeep, nil
	case "ask":
		return MergeAsk, nil
	default:
		return "", fmt.Errorf("unknown merge strategy %q (want overwrite, keep or ask)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MergeStrategy) UnmarshalText(text []byte) error {
	parsed, err := ParseMergeStrategy(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m MergeStrategy) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

func (m MergeStrategy) String() string {
	return string(m)
}

// MergeAction is the answer of a conflict resolver for an existing target.
type MergeAction int

const (
	// ActionReplace deploys over the existing target.
	ActionReplace MergeAction = iota
	// ActionKeep leaves the existing target in place.
	ActionKeep
	// ActionAbortAll stops the whole deployment.
	ActionAbortAll
)

func (a MergeAction) String() string {
	switch a {
	case ActionReplace:
		return "replace"
	case ActionKeep:
		return "keep"
	case ActionAbortAll:
		return "abort-all"
	default:
		return fmt.Sprintf("MergeAction(%d)", int(a))
	}
}
