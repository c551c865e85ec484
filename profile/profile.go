// Package profile turns markers into manifest rows and writes them in the
// layout a downstream tool expects.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lepinkainen/markers-extractor/extract"
	"github.com/lepinkainen/markers-extractor/marker"
	"github.com/lepinkainen/markers-extractor/utils"
)

// ErrHeterogeneousFields is returned when manifest rows disagree on their columns.
var ErrHeterogeneousFields = errors.New("manifest rows have differing fields")

// ErrNoRows is returned when a manifest has nothing to write.
var ErrNoRows = errors.New("no manifest rows to write")

// Profile is an export format.
type Profile interface {
	Name() string
	PrepareMarkers(markers []marker.Marker, idMode marker.IDMode, format extract.ImageFormat, isSingleFrame bool) []PreparedMarker
	ManifestFields(p PreparedMarker) Row
	WriteManifest(prepared []PreparedMarker, destination string) error
	DoneFileContent(destination string) ([]byte, error)
}

// Config holds the options shared by every profile.
type Config struct {
	// ManifestName is the manifest file name without extension.
	ManifestName string
	// NoMedia drops the image column where the profile supports it.
	NoMedia bool
}

const defaultManifestName = "markers"

// manifestName is the file-safe manifest base name. Project names come
// straight from the marker document and may contain path separators.
func (c Config) manifestName() string {
	name := utils.SanitizeFilename(c.ManifestName, maxFilenameLength)
	if name == "" {
		return defaultManifestName
	}
	return name
}

// Names lists the available profiles.
func Names() []string {
	return []string{"csv", "airtable", "notion"}
}

// ByName returns the profile called name.
func ByName(name string, cfg Config, logger *zap.Logger) (Profile, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("profile", strings.ToLower(name)))

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return &CSVProfile{cfg: cfg, logger: logger}, nil
	case "airtable":
		return &AirtableProfile{cfg: cfg, logger: logger}, nil
	case "notion":
		return &NotionProfile{cfg: cfg, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(Names(), ", "))
	}
}

func rowsFor(p Profile, prepared []PreparedMarker) []Row {
	rows := make([]Row, len(prepared))
	for i, m := range prepared {
		rows[i] = p.ManifestFields(m)
	}
	return rows
}

func prepareStandard(markers []marker.Marker, idMode marker.IDMode, format extract.ImageFormat, isSingleFrame bool) []PreparedMarker {
	prepared := make([]PreparedMarker, len(markers))
	for i, m := range markers {
		prepared[i] = newStandardMarker(m, idMode, format, isSingleFrame)
	}
	return prepared
}

// doneContent merges the path maps in order. Later keys win.
func doneContent(maps ...map[string]string) ([]byte, error) {
	merged := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return json.MarshalIndent(merged, "", "  ")
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
