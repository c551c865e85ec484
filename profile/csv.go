package profile

import (
	"go.uber.org/zap"

	"github.com/lepinkainen/markers-extractor/extract"
	"github.com/lepinkainen/markers-extractor/marker"
)

// CSVProfile writes a single CSV manifest.
type CSVProfile struct {
	cfg    Config
	logger *zap.Logger
}

func (p *CSVProfile) Name() string { return "csv" }

func (p *CSVProfile) PrepareMarkers(markers []marker.Marker, idMode marker.IDMode, format extract.ImageFormat, isSingleFrame bool) []PreparedMarker {
	return prepareStandard(markers, idMode, format, isSingleFrame)
}

func (p *CSVProfile) ManifestFields(m PreparedMarker) Row {
	return standardRow(asStandard(m), !p.cfg.NoMedia)
}

func (p *CSVProfile) WriteManifest(prepared []PreparedMarker, destination string) error {
	w := csvWriter{name: p.cfg.manifestName()}
	if err := w.Write(rowsFor(p, prepared), destination); err != nil {
		return err
	}
	p.logger.Debug("Wrote manifest", zap.String("path", w.path(destination)), zap.Int("rows", len(prepared)))
	return nil
}

func (p *CSVProfile) DoneFileContent(destination string) ([]byte, error) {
	return doneContent(csvWriter{name: p.cfg.manifestName()}.Done(destination))
}
