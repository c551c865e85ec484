package marker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lepinkainen/markers-extractor/timecode"
)

// Document is the marker file written by the project parser.
type Document struct {
	ProjectName string
	FrameRate   timecode.FrameRate
	Markers     []Marker
}

type documentJSON struct {
	ProjectName string       `json:"projectName"`
	FrameRate   string       `json:"frameRate"`
	Markers     []markerJSON `json:"markers"`
}

type markerJSON struct {
	Type         string `json:"type"`
	Completed    bool   `json:"completed"`
	Name         string `json:"name"`
	Notes        string `json:"notes"`
	VideoRole    string `json:"videoRole"`
	AudioRole    string `json:"audioRole"`
	Position     string `json:"position"`
	ClipName     string `json:"clipName"`
	ClipFilename string `json:"clipFilename"`
	ClipIn       string `json:"clipIn"`
	ClipOut      string `json:"clipOut"`
	EventName    string `json:"eventName"`
	ProjectName  string `json:"projectName"`
	LibraryName  string `json:"libraryName"`
}

// LoadFile reads a marker document from path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open marker file: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read marker file %s: %w", path, err)
	}
	return doc, nil
}

// Decode parses a marker document. Marker timecodes are read at the
// document frame rate and an empty per-marker project name falls back to
// the document's.
func Decode(r io.Reader) (*Document, error) {
	var raw documentJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid marker JSON: %w", err)
	}

	if raw.FrameRate == "" {
		return nil, errors.New("marker document has no frameRate")
	}
	rate, err := timecode.ParseFrameRate(raw.FrameRate)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		ProjectName: raw.ProjectName,
		FrameRate:   rate,
		Markers:     make([]Marker, 0, len(raw.Markers)),
	}

	for i, rm := range raw.Markers {
		m, err := rm.toMarker(rate, raw.ProjectName)
		if err != nil {
			return nil, fmt.Errorf("marker %d: %w", i+1, err)
		}
		doc.Markers = append(doc.Markers, m)
	}

	if len(doc.Markers) == 0 {
		return nil, errors.New("marker document contains no markers")
	}
	return doc, nil
}

func (rm markerJSON) toMarker(rate timecode.FrameRate, projectName string) (Marker, error) {
	typ, err := ParseType(rm.Type)
	if err != nil {
		return Marker{}, err
	}

	position, err := timecode.Parse(rm.Position, rate)
	if err != nil {
		return Marker{}, fmt.Errorf("position: %w", err)
	}

	clipIn, err := optionalTimecode(rm.ClipIn, rate)
	if err != nil {
		return Marker{}, fmt.Errorf("clipIn: %w", err)
	}
	clipOut, err := optionalTimecode(rm.ClipOut, rate)
	if err != nil {
		return Marker{}, fmt.Errorf("clipOut: %w", err)
	}

	if rm.ProjectName != "" {
		projectName = rm.ProjectName
	}

	return Marker{
		Type:      typ,
		Completed: rm.Completed,
		Name:      rm.Name,
		Notes:     rm.Notes,
		Roles:     Roles{Video: rm.VideoRole, Audio: rm.AudioRole},
		Position:  position,
		Parent: ParentInfo{
			ClipName:     rm.ClipName,
			ClipFilename: rm.ClipFilename,
			ClipIn:       clipIn,
			ClipOut:      clipOut,
			EventName:    rm.EventName,
			ProjectName:  projectName,
			LibraryName:  rm.LibraryName,
		},
	}, nil
}

func optionalTimecode(s string, rate timecode.FrameRate) (timecode.Timecode, error) {
	if s == "" {
		return timecode.Timecode{Rate: rate}, nil
	}
	return timecode.Parse(s, rate)
}
