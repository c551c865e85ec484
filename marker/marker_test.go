package marker

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lepinkainen/markers-extractor/timecode"
)

func makeMarker(t *testing.T, name, position string) Marker {
	t.Helper()
	tc, err := timecode.Parse(position, timecode.FPS25)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", position, err)
	}
	return Marker{
		Type:     TypeStandard,
		Name:     name,
		Position: tc,
		Parent:   ParentInfo{ProjectName: "MyProject"},
	}
}

func TestID(t *testing.T) {
	m := makeMarker(t, "Shot 1", "00:01:02:03")
	m.Notes = "check grade"

	tests := []struct {
		mode     IDMode
		expected string
	}{
		{IDModeProjectTimecode, "MyProject_00-01-02-03"},
		{IDModeName, "Shot 1"},
		{IDModeNotes, "check grade"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			if got := m.ID(tt.mode); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseIDMode(t *testing.T) {
	if mode, err := ParseIDMode("projecttimecode"); err != nil || mode != IDModeProjectTimecode {
		t.Errorf("Expected projectTimecode, got %q (%v)", mode, err)
	}
	if _, err := ParseIDMode("uuid"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}

func TestFindDuplicateIDs(t *testing.T) {
	m := makeMarker(t, "marker-id", "00:00:01:00")
	m1 := makeMarker(t, "marker1-id", "00:00:02:00")
	m2 := makeMarker(t, "marker2-id", "00:00:03:00")

	tests := []struct {
		name     string
		markers  []Marker
		expected []string
	}{
		{"empty", []Marker{}, []string{}},
		{"nil", nil, []string{}},
		{"single", []Marker{m}, []string{}},
		{"same marker twice", []Marker{m, m}, []string{"marker-id"}},
		{"one duplicate among others", []Marker{m2, m1, m2}, []string{"marker2-id"}},
		{"unique", []Marker{m, m1, m2}, []string{}},
		{"two duplicates sorted", []Marker{m2, m1, m2, m1}, []string{"marker1-id", "marker2-id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindDuplicateIDs(tt.markers, IDModeName)
			if got == nil {
				t.Fatal("Expected non-nil slice")
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestAllIDsNonEmpty(t *testing.T) {
	named := makeMarker(t, "a", "00:00:01:00")
	unnamed := makeMarker(t, "", "00:00:02:00")

	if !AllIDsNonEmpty(nil, IDModeName) {
		t.Error("Expected true for no markers")
	}
	if !AllIDsNonEmpty([]Marker{named}, IDModeName) {
		t.Error("Expected true for named marker")
	}
	if AllIDsNonEmpty([]Marker{named, unnamed}, IDModeName) {
		t.Error("Expected false when one ID is empty")
	}
	if !AllIDsNonEmpty([]Marker{unnamed}, IDModeProjectTimecode) {
		t.Error("Expected project timecode IDs to be non-empty")
	}
}

func TestValidate(t *testing.T) {
	a := makeMarker(t, "a", "00:00:01:00")
	b := makeMarker(t, "b", "00:00:02:00")
	empty := makeMarker(t, "", "00:00:03:00")

	if err := Validate([]Marker{a, b}, IDModeName); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	err := Validate([]Marker{a, empty}, IDModeName)
	if !errors.Is(err, ErrEmptyID) {
		t.Errorf("Expected ErrEmptyID, got %v", err)
	}

	err = Validate([]Marker{a, b, a}, IDModeName)
	var dupErr *DuplicateIDsError
	if !errors.As(err, &dupErr) {
		t.Fatalf("Expected DuplicateIDsError, got %v", err)
	}
	if !reflect.DeepEqual(dupErr.IDs, []string{"a"}) {
		t.Errorf("Expected [a], got %v", dupErr.IDs)
	}
}

func TestStatusAndChecked(t *testing.T) {
	tests := []struct {
		name      string
		typ       Type
		completed bool
		status    string
		checked   string
	}{
		{"standard", TypeStandard, false, "Not Started", "false"},
		{"chapter", TypeChapter, false, "Not Started", "false"},
		{"todo open", TypeToDo, false, "In Progress", "false"},
		{"todo done", TypeToDo, true, "Done", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Marker{Type: tt.typ, Completed: tt.completed}
			if got := m.Status(); got != tt.status {
				t.Errorf("Expected status %q, got %q", tt.status, got)
			}
			if got := m.Checked(); got != tt.checked {
				t.Errorf("Expected checked %q, got %q", tt.checked, got)
			}
		})
	}
}

func TestSorted(t *testing.T) {
	late := makeMarker(t, "late", "00:00:10:00")
	early := makeMarker(t, "early", "00:00:01:00")
	sameA := makeMarker(t, "sameA", "00:00:05:00")
	sameB := makeMarker(t, "sameB", "00:00:05:00")

	input := []Marker{late, sameA, early, sameB}
	sorted := Sorted(input)

	var names []string
	for _, m := range sorted {
		names = append(names, m.Name)
	}
	expected := []string{"early", "sameA", "sameB", "late"}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("Expected %v, got %v", expected, names)
	}
	if input[0].Name != "late" {
		t.Error("Sorted must not reorder its input")
	}
}

func TestClipDuration(t *testing.T) {
	m := makeMarker(t, "a", "00:00:05:00")
	m.Parent.ClipIn = timecode.Timecode{Frames: 25, Rate: timecode.FPS25}
	m.Parent.ClipOut = timecode.Timecode{Frames: 125, Rate: timecode.FPS25}

	if got := m.ClipDuration().String(); got != "00:00:04:00" {
		t.Errorf("Expected 00:00:04:00, got %q", got)
	}
}

func TestDecode(t *testing.T) {
	input := `{
		"projectName": "Doc Cut",
		"frameRate": "25",
		"markers": [
			{"type": "To Do", "completed": true, "name": "Fix audio", "position": "00:00:02:00",
			 "clipName": "A001", "clipIn": "00:00:00:00", "clipOut": "00:00:10:00", "videoRole": "Video"},
			{"type": "chapter", "name": "Intro", "position": "00:00:01:00", "projectName": "Other"}
		]
	}`

	doc, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if doc.FrameRate != timecode.FPS25 {
		t.Errorf("Expected 25 fps, got %v", doc.FrameRate)
	}
	if len(doc.Markers) != 2 {
		t.Fatalf("Expected 2 markers, got %d", len(doc.Markers))
	}

	first := doc.Markers[0]
	if first.Type != TypeToDo || !first.Completed {
		t.Errorf("Expected completed to-do, got %+v", first)
	}
	if first.Parent.ProjectName != "Doc Cut" {
		t.Errorf("Expected document project name, got %q", first.Parent.ProjectName)
	}
	if first.Roles.Video != "Video" {
		t.Errorf("Expected video role, got %q", first.Roles.Video)
	}
	if first.ClipDuration().Frames != 250 {
		t.Errorf("Expected clip duration of 250 frames, got %d", first.ClipDuration().Frames)
	}

	second := doc.Markers[1]
	if second.Type != TypeChapter {
		t.Errorf("Expected chapter, got %q", second.Type)
	}
	if second.Parent.ProjectName != "Other" {
		t.Errorf("Expected marker project name override, got %q", second.Parent.ProjectName)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `nope`},
		{"no frame rate", `{"markers": [{"position": "00:00:00:00"}]}`},
		{"no markers", `{"frameRate": "25", "markers": []}`},
		{"bad position", `{"frameRate": "25", "markers": [{"position": "1:2"}]}`},
		{"bad type", `{"frameRate": "25", "markers": [{"type": "Bookmark", "position": "00:00:00:00"}]}`},
		{"unknown field", `{"frameRate": "25", "fps": 25, "markers": [{"position": "00:00:00:00"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.json")
	content := `{"projectName": "P", "frameRate": "24", "markers": [{"name": "m", "position": "00:00:01:00"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write marker file: %v", err)
	}

	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := doc.Markers[0].ID(IDModeProjectTimecode); got != "P_00-00-01-00" {
		t.Errorf("Expected P_00-00-01-00, got %q", got)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}
