package profile

import (
	"go.uber.org/zap"

	"github.com/lepinkainen/markers-extractor/extract"
	"github.com/lepinkainen/markers-extractor/marker"
)

// AirtableProfile writes CSV and JSON manifests shaped for an Airtable import.
// With NoMedia the image column is left out so records upload without attachments.
type AirtableProfile struct {
	cfg    Config
	logger *zap.Logger
}

func (p *AirtableProfile) Name() string { return "airtable" }

func (p *AirtableProfile) PrepareMarkers(markers []marker.Marker, idMode marker.IDMode, format extract.ImageFormat, isSingleFrame bool) []PreparedMarker {
	return prepareStandard(markers, idMode, format, isSingleFrame)
}

func (p *AirtableProfile) ManifestFields(m PreparedMarker) Row {
	return standardRow(asStandard(m), !p.cfg.NoMedia)
}

func (p *AirtableProfile) WriteManifest(prepared []PreparedMarker, destination string) error {
	rows := rowsFor(p, prepared)
	if err := (csvWriter{name: p.cfg.manifestName()}).Write(rows, destination); err != nil {
		return err
	}
	if err := (jsonWriter{name: p.cfg.manifestName()}).Write(rows, destination); err != nil {
		return err
	}
	p.logger.Debug("Wrote manifests", zap.String("destination", destination), zap.Int("rows", len(rows)))
	return nil
}

func (p *AirtableProfile) DoneFileContent(destination string) ([]byte, error) {
	name := p.cfg.manifestName()
	return doneContent(
		csvWriter{name: name}.Done(destination),
		jsonWriter{name: name}.Done(destination),
	)
}
