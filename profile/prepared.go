package profile

import (
	"time"

	"github.com/lepinkainen/markers-extractor/extract"
	"github.com/lepinkainen/markers-extractor/marker"
	"github.com/lepinkainen/markers-extractor/utils"
)

// PlaceholderBasename names the shared image used when media has no video.
const PlaceholderBasename = "marker-placeholder"

const maxFilenameLength = 200

// PreparedMarker is a marker projected to manifest strings plus the asset it points to.
type PreparedMarker interface {
	MarkerID() string
	ImageFilename() string
	MediaTime() time.Duration
}

// StandardMarker carries the fields shared by every profile.
type StandardMarker struct {
	ID           string
	Name         string
	Type         marker.Type
	Checked      string
	Status       string
	Notes        string
	Position     string
	ClipName     string
	ClipFilename string
	ClipDuration string
	VideoRole    string
	AudioRole    string
	EventName    string
	ProjectName  string
	LibraryName  string
	Image        string
	Time         time.Duration
}

func (m StandardMarker) MarkerID() string         { return m.ID }
func (m StandardMarker) ImageFilename() string    { return m.Image }
func (m StandardMarker) MediaTime() time.Duration { return m.Time }

// IconMarker adds the icon file shown next to the marker.
type IconMarker struct {
	StandardMarker
	Icon string
}

// AssetFilename is the image file name for a marker ID.
func AssetFilename(id string, format extract.ImageFormat, isSingleFrame bool) string {
	if isSingleFrame {
		return PlaceholderBasename + "." + format.Ext()
	}
	return utils.SanitizeFilename(id, maxFilenameLength) + "." + format.Ext()
}

func newStandardMarker(m marker.Marker, idMode marker.IDMode, format extract.ImageFormat, isSingleFrame bool) StandardMarker {
	id := m.ID(idMode)
	return StandardMarker{
		ID:           id,
		Name:         m.Name,
		Type:         m.Type,
		Checked:      m.Checked(),
		Status:       m.Status(),
		Notes:        m.Notes,
		Position:     m.Position.String(),
		ClipName:     m.Parent.ClipName,
		ClipFilename: m.Parent.ClipFilename,
		ClipDuration: m.ClipDuration().String(),
		VideoRole:    m.Roles.Video,
		AudioRole:    m.Roles.Audio,
		EventName:    m.Parent.EventName,
		ProjectName:  m.Parent.ProjectName,
		LibraryName:  m.Parent.LibraryName,
		Image:        AssetFilename(id, format, isSingleFrame),
		Time:         m.MediaTime(),
	}
}

// standardRow is the common column set, optionally without the image column.
func standardRow(m StandardMarker, withImage bool) Row {
	row := Row{
		{FieldID, m.ID},
		{FieldName, m.Name},
		{FieldType, string(m.Type)},
		{FieldChecked, m.Checked},
		{FieldStatus, m.Status},
		{FieldNotes, m.Notes},
		{FieldPosition, m.Position},
		{FieldClipName, m.ClipName},
		{FieldClipFilename, m.ClipFilename},
		{FieldClipDuration, m.ClipDuration},
		{FieldVideoRole, m.VideoRole},
		{FieldAudioRole, m.AudioRole},
		{FieldEventName, m.EventName},
		{FieldProjectName, m.ProjectName},
		{FieldLibraryName, m.LibraryName},
	}
	if withImage {
		row = append(row, Cell{FieldImageFilename, m.Image})
	}
	return row
}

func asStandard(p PreparedMarker) StandardMarker {
	switch m := p.(type) {
	case StandardMarker:
		return m
	case *StandardMarker:
		return *m
	case IconMarker:
		return m.StandardMarker
	case *IconMarker:
		return m.StandardMarker
	default:
		return StandardMarker{ID: p.MarkerID(), Image: p.ImageFilename(), Time: p.MediaTime()}
	}
}
