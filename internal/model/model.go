// Package model defines the core data types shared across revise.
package model

import "fmt"

// LineKind categorizes a single line within a hunk.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
)

func (k LineKind) String() string {
	switch k {
	case LineContext:
		return "context"
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Line is one line of a hunk. Old/New are 1-based line numbers in the
// respective file version; 0 means the line does not exist on that side.
type Line struct {
	Kind    LineKind
	Content string
	Old     int
	New     int
}

// Hunk is one contiguous block of changed lines in a diff. Hunks are
// immutable once parsed; a comparison reload replaces the whole set.
type Hunk struct {
	ID       string // "<filePath>:<content hash>", stable across reloads
	FilePath string
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line

	// Section is the enclosing-construct heading git prints after the
	// hunk header ("func (s *Server) handleState"). Empty when git could
	// not determine one.
	Section string

	// ContentHash covers only added/removed lines, without the file
	// path, so identical content moved between files hashes the same.
	ContentHash string

	// MovePairID links this hunk to its counterpart when the same
	// content was deleted in one file and inserted in another.
	MovePairID string
}

// Changed returns only the added and removed lines.
func (h *Hunk) Changed() []Line {
	var out []Line
	for _, l := range h.Lines {
		if l.Kind == LineAdded || l.Kind == LineRemoved {
			out = append(out, l)
		}
	}
	return out
}

// HasAdded reports whether the hunk contains any added line.
func (h *Hunk) HasAdded() bool {
	for _, l := range h.Lines {
		if l.Kind == LineAdded {
			return true
		}
	}
	return false
}

// HasRemoved reports whether the hunk contains any removed line.
func (h *Hunk) HasRemoved() bool {
	for _, l := range h.Lines {
		if l.Kind == LineRemoved {
			return true
		}
	}
	return false
}

// Status is the explicit review status of a hunk. Trusted is never
// stored here: trust is derived at read time by the trust classifier.
type Status int

const (
	StatusUnset Status = iota
	StatusApproved
	StatusRejected
	StatusSavedForLater
)

func (s Status) String() string {
	switch s {
	case StatusUnset:
		return "unset"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusSavedForLater:
		return "saved_for_later"
	default:
		return "unknown"
	}
}

// ParseStatus converts the wire form back to a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "unset", "":
		return StatusUnset, nil
	case "approved":
		return StatusApproved, nil
	case "rejected":
		return StatusRejected, nil
	case "saved_for_later":
		return StatusSavedForLater, nil
	default:
		return StatusUnset, fmt.Errorf("unknown status %q", s)
	}
}

// ApprovalMethod records how a hunk came to be approved.
type ApprovalMethod int

const (
	ApprovalNone ApprovalMethod = iota
	ApprovalManual
	ApprovalTrust
	ApprovalAI
)

func (m ApprovalMethod) String() string {
	switch m {
	case ApprovalManual:
		return "manual"
	case ApprovalTrust:
		return "trust"
	case ApprovalAI:
		return "ai"
	default:
		return "none"
	}
}

// ParseApprovalMethod converts the wire form back to an ApprovalMethod.
func ParseApprovalMethod(s string) (ApprovalMethod, error) {
	switch s {
	case "none", "":
		return ApprovalNone, nil
	case "manual":
		return ApprovalManual, nil
	case "trust":
		return ApprovalTrust, nil
	case "ai":
		return ApprovalAI, nil
	default:
		return ApprovalNone, fmt.Errorf("unknown approval method %q", s)
	}
}

// Comparison identifies what is being reviewed: a base ref against a
// head ref, optionally against the working tree instead of head.
type Comparison struct {
	Base        string `json:"base"`
	Head        string `json:"head"`
	WorkingTree bool   `json:"workingTree,omitempty"`
}

// Key returns the stable string key used for persistence lookups,
// e.g. "main..HEAD" or "main..HEAD+working-tree".
func (c Comparison) Key() string {
	key := c.Base + ".." + c.Head
	if c.WorkingTree {
		key += "+working-tree"
	}
	return key
}

// ReviewGroup is a named, ordered subset of hunks presented together
// during guided review. Groups sharing a Phase are displayed under one
// phase header, which never affects group indexing.
type ReviewGroup struct {
	Title       string   `json:"title"`
	Phase       string   `json:"phase,omitempty"`
	HunkIDs     []string `json:"hunkIds"`
	Description string   `json:"description,omitempty"`
}

// Annotation is a reviewer note attached to a specific line. Content
// captures the line text at annotation time so a stale anchor can be
// detected after the file changes.
type Annotation struct {
	ID       string `json:"id"`
	FilePath string `json:"filePath"`
	Line     int    `json:"line"`
	Content  string `json:"content"`
	Text     string `json:"text"`
}
