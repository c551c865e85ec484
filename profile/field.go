package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field is a manifest column, named as it appears in the header row.
type Field string

const (
	FieldID            Field = "Marker ID"
	FieldName          Field = "Marker Name"
	FieldType          Field = "Type"
	FieldChecked       Field = "Checked"
	FieldStatus        Field = "Status"
	FieldNotes         Field = "Notes"
	FieldPosition      Field = "Marker Position"
	FieldClipName      Field = "Clip Name"
	FieldClipFilename  Field = "Clip Filename"
	FieldClipDuration  Field = "Clip Duration"
	FieldVideoRole     Field = "Video Role"
	FieldAudioRole     Field = "Audio Role"
	FieldEventName     Field = "Event Name"
	FieldProjectName   Field = "Project Name"
	FieldLibraryName   Field = "Library Name"
	FieldIconImage     Field = "Icon Image"
	FieldImageFilename Field = "Image Filename"
)

// fieldKeys are the camelCase names accepted on the command line.
var fieldKeys = map[string]Field{
	"id":            FieldID,
	"name":          FieldName,
	"type":          FieldType,
	"checked":       FieldChecked,
	"status":        FieldStatus,
	"notes":         FieldNotes,
	"position":      FieldPosition,
	"clipname":      FieldClipName,
	"clipfilename":  FieldClipFilename,
	"clipduration":  FieldClipDuration,
	"videorole":     FieldVideoRole,
	"audiorole":     FieldAudioRole,
	"eventname":     FieldEventName,
	"projectname":   FieldProjectName,
	"libraryname":   FieldLibraryName,
	"iconimage":     FieldIconImage,
	"imagefilename": FieldImageFilename,
}

// ParseField accepts a camelCase key ("clipName") or a display name ("Clip Name").
func ParseField(s string) (Field, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if f, ok := fieldKeys[key]; ok {
		return f, nil
	}
	if f, ok := fieldKeys[strings.TrimPrefix(key, "marker")]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// ParseFields parses a list of field names.
func ParseFields(names []string) ([]Field, error) {
	fields := make([]Field, 0, len(names))
	for _, n := range names {
		f, err := ParseField(n)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Cell is one field of a manifest row.
type Cell struct {
	Field Field
	Value string
}

// Row is an ordered manifest row. Cell order is column order.
type Row []Cell

// Fields returns the row's fields in order.
func (r Row) Fields() []Field {
	fields := make([]Field, len(r))
	for i, c := range r {
		fields[i] = c.Field
	}
	return fields
}

// Values returns the row's values in order.
func (r Row) Values() []string {
	values := make([]string, len(r))
	for i, c := range r {
		values[i] = c.Value
	}
	return values
}

// Get looks up the value of f.
func (r Row) Get(f Field) (string, bool) {
	for _, c := range r {
		if c.Field == f {
			return c.Value, true
		}
	}
	return "", false
}

// MarshalJSON writes the row as an object whose keys keep column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(c.Field))
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func sameFields(a, b Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Field != b[i].Field {
			return false
		}
	}
	return true
}
