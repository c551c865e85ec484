package marker

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// IDMode selects how a marker's ID is derived
type IDMode string

const (
	IDModeProjectTimecode IDMode = "projectTimecode"
	IDModeName            IDMode = "name"
	IDModeNotes           IDMode = "notes"
)

// IDModes lists the accepted modes in help order.
var IDModes = []IDMode{IDModeProjectTimecode, IDModeName, IDModeNotes}

// ParseIDMode parses a mode name, case-insensitively.
func ParseIDMode(s string) (IDMode, error) {
	for _, m := range IDModes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown ID mode %q (expected one of %v)", s, IDModes)
}

// ID computes the marker's identifier under mode. The project+timecode form
// uses '-' separators so that it can be used as a file name as is.
func (m Marker) ID(mode IDMode) string {
	switch mode {
	case IDModeName:
		return m.Name
	case IDModeNotes:
		return m.Notes
	default:
		return m.Parent.ProjectName + "_" + m.Position.FilenameString()
	}
}

// ErrEmptyID is returned when any marker computes an empty ID.
var ErrEmptyID = errors.New("empty marker ID")

// DuplicateIDsError lists IDs shared by more than one marker.
type DuplicateIDsError struct {
	IDs []string
}

func (e *DuplicateIDsError) Error() string {
	return fmt.Sprintf("duplicate marker IDs: %s", strings.Join(e.IDs, ", "))
}

// FindDuplicateIDs returns, sorted, every ID computed for more than one marker.
// The result is empty (never nil) when all IDs are unique.
func FindDuplicateIDs(markers []Marker, mode IDMode) []string {
	counts := make(map[string]int, len(markers))
	for _, m := range markers {
		counts[m.ID(mode)]++
	}

	dupes := []string{}
	for id, n := range counts {
		if n > 1 {
			dupes = append(dupes, id)
		}
	}
	slices.Sort(dupes)
	return dupes
}

// AllIDsNonEmpty reports whether every marker has a non-empty ID.
// Uniqueness is checked separately by FindDuplicateIDs.
func AllIDsNonEmpty(markers []Marker, mode IDMode) bool {
	for _, m := range markers {
		if m.ID(mode) == "" {
			return false
		}
	}
	return true
}

// Validate checks the preconditions for naming assets from IDs.
func Validate(markers []Marker, mode IDMode) error {
	if !AllIDsNonEmpty(markers, mode) {
		return fmt.Errorf("%w: every marker needs a %s value", ErrEmptyID, mode)
	}
	if dupes := FindDuplicateIDs(markers, mode); len(dupes) > 0 {
		return &DuplicateIDsError{IDs: dupes}
	}
	return nil
}
