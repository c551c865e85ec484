package profile

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/lepinkainen/markers-extractor/extract"
	"github.com/lepinkainen/markers-extractor/marker"
)

// Icon file names, one per marker kind.
const (
	IconStandard       = "marker-standard.png"
	IconToDoIncomplete = "marker-todo-incomplete.png"
	IconToDoComplete   = "marker-todo-complete.png"
	IconChapter        = "marker-chapter.png"
)

const iconSize = 64

var iconColors = map[string]color.NRGBA{
	IconStandard:       {R: 0x5b, G: 0x6e, B: 0xe1, A: 0xff},
	IconToDoIncomplete: {R: 0xe0, G: 0x4b, B: 0x3a, A: 0xff},
	IconToDoComplete:   {R: 0x3c, G: 0xb3, B: 0x71, A: 0xff},
	IconChapter:        {R: 0xf0, G: 0x9a, B: 0x2a, A: 0xff},
}

// IconFor picks the icon for a marker's type and completion.
func IconFor(t marker.Type, checked string) string {
	switch t {
	case marker.TypeToDo:
		if checked == "true" {
			return IconToDoComplete
		}
		return IconToDoIncomplete
	case marker.TypeChapter:
		return IconChapter
	default:
		return IconStandard
	}
}

// NotionProfile writes CSV and JSON manifests with an icon column, and the
// icon images next to them.
type NotionProfile struct {
	cfg    Config
	logger *zap.Logger
}

func (p *NotionProfile) Name() string { return "notion" }

func (p *NotionProfile) PrepareMarkers(markers []marker.Marker, idMode marker.IDMode, format extract.ImageFormat, isSingleFrame bool) []PreparedMarker {
	prepared := make([]PreparedMarker, len(markers))
	for i, m := range markers {
		std := newStandardMarker(m, idMode, format, isSingleFrame)
		prepared[i] = IconMarker{StandardMarker: std, Icon: IconFor(std.Type, std.Checked)}
	}
	return prepared
}

func (p *NotionProfile) ManifestFields(m PreparedMarker) Row {
	std := asStandard(m)
	icon := IconFor(std.Type, std.Checked)
	switch im := m.(type) {
	case IconMarker:
		icon = im.Icon
	case *IconMarker:
		icon = im.Icon
	}

	// Notion imports have no use for the clip's file name.
	row := slices.DeleteFunc(standardRow(std, false), func(c Cell) bool {
		return c.Field == FieldClipFilename
	})
	row = append(row, Cell{FieldIconImage, icon})
	if !p.cfg.NoMedia {
		row = append(row, Cell{FieldImageFilename, std.Image})
	}
	return row
}

func (p *NotionProfile) WriteManifest(prepared []PreparedMarker, destination string) error {
	rows := rowsFor(p, prepared)
	name := p.cfg.manifestName()
	if err := (csvWriter{name: name}).Write(rows, destination); err != nil {
		return err
	}
	if err := (jsonWriter{name: name}).Write(rows, destination); err != nil {
		return err
	}

	used := map[string]bool{}
	for _, row := range rows {
		if icon, ok := row.Get(FieldIconImage); ok {
			used[icon] = true
		}
	}
	for icon := range used {
		if err := writeIcon(filepath.Join(destination, icon), iconColors[icon]); err != nil {
			return err
		}
	}
	p.logger.Debug("Wrote manifests", zap.String("destination", destination),
		zap.Int("rows", len(rows)), zap.Int("icons", len(used)))
	return nil
}

func (p *NotionProfile) DoneFileContent(destination string) ([]byte, error) {
	name := p.cfg.manifestName()
	return doneContent(
		csvWriter{name: name}.Done(destination),
		jsonWriter{name: name}.Done(destination),
	)
}

// writeIcon draws a filled disc on a transparent square.
func writeIcon(path string, c color.NRGBA) error {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	r := iconSize/2 - 2
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := x-iconSize/2, y-iconSize/2
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, c)
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create icon: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode icon %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
