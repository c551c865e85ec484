// Package marker holds the marker records produced by the project parser
// and the identity rules used to name exported assets.
package marker

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lepinkainen/markers-extractor/timecode"
)

// Type is the kind of marker set in the editor
type Type string

const (
	TypeStandard Type = "Standard"
	TypeToDo     Type = "To Do"
	TypeChapter  Type = "Chapter"
)

// ParseType accepts the display names as well as lowercase shorthands.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "marker":
		return TypeStandard, nil
	case "to do", "todo", "to-do":
		return TypeToDo, nil
	case "chapter":
		return TypeChapter, nil
	default:
		return "", fmt.Errorf("unknown marker type %q", s)
	}
}

// Roles are the video and audio roles of the clip carrying the marker
type Roles struct {
	Video string
	Audio string
}

// ParentInfo describes the clip, event and project a marker belongs to.
type ParentInfo struct {
	ClipName     string
	ClipFilename string
	ClipIn       timecode.Timecode
	ClipOut      timecode.Timecode
	EventName    string
	ProjectName  string
	LibraryName  string
}

// Marker is a single timecoded marker. It is never modified after parsing.
type Marker struct {
	Type      Type
	Completed bool
	Name      string
	Notes     string
	Roles     Roles
	Position  timecode.Timecode
	Parent    ParentInfo
}

// Status is the task status shown in manifests.
func (m Marker) Status() string {
	if m.Type != TypeToDo {
		return "Not Started"
	}
	if m.Completed {
		return "Done"
	}
	return "In Progress"
}

// Checked reports the to-do completion state as a manifest string.
func (m Marker) Checked() string {
	if m.Type == TypeToDo && m.Completed {
		return "true"
	}
	return "false"
}

// ClipDuration is the length of the parent clip.
func (m Marker) ClipDuration() timecode.Timecode {
	return m.Parent.ClipOut.Sub(m.Parent.ClipIn)
}

// MediaTime is the marker position on the source media timeline.
func (m Marker) MediaTime() time.Duration {
	return m.Position.Duration()
}

// Sorted returns a copy of markers ordered by position. Markers at the same
// position keep their input order.
func Sorted(markers []Marker) []Marker {
	sorted := slices.Clone(markers)
	slices.SortStableFunc(sorted, func(a, b Marker) int {
		return a.Position.Compare(b.Position)
	})
	return sorted
}
