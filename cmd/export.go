package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/lepinkainen/markers-extractor/config"
	"github.com/lepinkainen/markers-extractor/exporter"
	"github.com/lepinkainen/markers-extractor/extract"
	"github.com/lepinkainen/markers-extractor/marker"
	"github.com/lepinkainen/markers-extractor/metrics"
	"github.com/lepinkainen/markers-extractor/profile"
	"github.com/lepinkainen/markers-extractor/types"
	"github.com/lepinkainen/markers-extractor/ui"
	"github.com/lepinkainen/markers-extractor/utils"
	"github.com/lepinkainen/markers-extractor/video"
)

// ExportCmd exports markers to images and a manifest. Flags left unset fall
// back to the settings file and environment.
type ExportCmd struct {
	Markers   string `arg:"" name:"markers" help:"Marker JSON file" type:"existingfile"`
	OutputDir string `arg:"" name:"output-dir" help:"Folder in which the export folder is created" type:"existingdir"`

	Profile         string   `help:"Export profile (csv, airtable, notion)"`
	IDMode          string   `name:"id-mode" help:"Marker ID source (projectTimecode, name, notes)"`
	MediaSearchPath []string `name:"media-search-path" help:"Folders searched for the project media (default: the marker file's folder)" type:"path"`

	ImageFormat      string   `help:"Image format (png, jpg, gif)"`
	ImageQuality     *int     `help:"JPEG quality 0-100"`
	ImageWidth       *int     `help:"Image width in pixels (0 = from source)"`
	ImageHeight      *int     `help:"Image height in pixels (0 = from source)"`
	ImageSizePercent *int     `help:"Image size as percent of the source video (1-100)"`
	GIFFPS           *float64 `name:"gif-fps" help:"Animated GIF frame rate"`
	GIFSpan          *float64 `name:"gif-span" help:"Seconds of video around each marker in a GIF"`

	Label                []string `help:"Fields burned into images (e.g. name,notes)" sep:","`
	LabelCopyright       *string  `help:"Copyright line appended to labels"`
	LabelFont            string   `help:"Builtin font name or path to a TrueType font"`
	LabelFontMaxSize     *float64 `help:"Maximum label font size"`
	LabelFontColor       string   `help:"Label text color as hex"`
	LabelFontOpacity     *int     `help:"Label opacity 0-100"`
	LabelStrokeColor     string   `help:"Label outline color as hex"`
	LabelStrokeWidth     string   `help:"Label outline width in pixels, 'auto' or 'none'"`
	LabelAlignHorizontal string   `help:"Label alignment (left, center, right)"`
	LabelAlignVertical   string   `help:"Label alignment (top, center, bottom)"`
	LabelHideNames       bool     `help:"Show only field values in labels"`

	NoMedia      bool   `help:"Write the manifest without images"`
	DoneFile     bool   `help:"Write a done file into the export folder when finished"`
	DoneFilename string `help:"Done file name"`
	Zip          bool   `help:"Also bundle the export folder into a zip file"`
	MetricsFile  string `help:"Write run metrics in Prometheus text format to this file" type:"path"`
	Workers      *int   `help:"Number of parallel decode workers (0 = auto)"`
	TUI          bool   `name:"tui" help:"Show the interactive progress view"`
}

// Run executes the export command.
func (cmd *ExportCmd) Run(appCtx *types.AppContext) error {
	logger := appCtx.Log()
	ctx := appCtx.Context()

	settings := *appCtx.Config()
	if err := cmd.apply(&settings); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	doc, err := marker.LoadFile(cmd.Markers)
	if err != nil {
		return err
	}
	project := doc.ProjectName
	if project == "" {
		project = strings.TrimSuffix(filepath.Base(cmd.Markers), filepath.Ext(cmd.Markers))
	}

	opts, err := cmd.options(&settings, project, doc.Markers, logger)
	if err != nil {
		return err
	}

	var mediaPath string
	if !cmd.NoMedia {
		if err := utils.ValidateFFmpegDependencies(); err != nil {
			return err
		}
		searchPaths := settings.MediaSearchPaths
		if len(searchPaths) == 0 {
			searchPaths = []string{filepath.Dir(cmd.Markers)}
		}
		if mediaPath, err = exporter.ResolveMedia(project, searchPaths, logger); err != nil {
			return err
		}
		opts.MediaPath = mediaPath
	}

	workers := settings.Workers
	if workers == 0 && mediaPath != "" {
		workers = utils.DefaultWorkers(mediaPath)
	}
	ffmpeg := video.NewFFmpegSource(logger, workers)
	components := exporter.Components{
		Source:      ffmpeg,
		Sampler:     ffmpeg,
		Codec:       video.Codec{},
		Animator:    video.GIFEncoder{},
		Placeholder: video.NewPlaceholderSource(),
		Probe:       video.Probe,
	}

	var rec *metrics.Recorder
	if cmd.MetricsFile != "" {
		rec = metrics.New()
	}

	title := fmt.Sprintf("Markers Extractor %s: %s", appCtx.VersionOrDefault(), project)
	var res *exporter.Result
	if cmd.TUI {
		res, err = runWithTUI(ctx, title, components, opts, logger, rec)
	} else {
		fmt.Println(ui.HeaderStyle.Render(title))
		e := exporter.New(components, logger,
			exporter.WithMetrics(rec),
			exporter.WithReporter(ui.NewBarReporter(os.Stderr)))
		res, err = e.Export(ctx, opts)
	}

	if rec != nil {
		if werr := rec.WriteTextfile(cmd.MetricsFile); werr != nil {
			logger.Warn("Failed to write metrics", zap.Error(werr))
		}
	}
	if err != nil {
		return err
	}

	fmt.Println(ui.SuccessStyle.Render(fmt.Sprintf("✅ Exported %d markers to %s", len(doc.Markers), res.Destination)))
	if res.BundlePath != "" {
		fmt.Println(ui.InfoStyle.Render("Bundle: " + res.BundlePath))
	}
	if res.DonePath != "" {
		fmt.Println(ui.InfoStyle.Render("Done file: " + res.DonePath))
	}
	return nil
}

// runWithTUI runs the export in the background while the TUI shows progress.
// Quitting the TUI cancels the export.
func runWithTUI(ctx context.Context, title string, c exporter.Components, opts exporter.Options, logger *zap.Logger, rec *metrics.Recorder) (*exporter.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(ui.NewExportModel(title, cancel))
	e := exporter.New(c, logger,
		exporter.WithMetrics(rec),
		exporter.WithReporter(ui.NewProgramReporter(program)))

	type outcome struct {
		res *exporter.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := e.Export(ctx, opts)
		done <- outcome{res, err}
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("progress view failed: %w", err)
	}
	out := <-done
	return out.res, out.err
}

// apply overrides settings with every flag given on the command line.
// Pointer flags stay nil when absent, so an explicit zero still wins over
// the settings file and environment.
func (cmd *ExportCmd) apply(s *config.Settings) error {
	setString(&s.Profile, cmd.Profile)
	setString(&s.IDMode, cmd.IDMode)
	if len(cmd.MediaSearchPath) > 0 {
		s.MediaSearchPaths = cmd.MediaSearchPath
	}
	setValue(&s.Workers, cmd.Workers)
	setString(&s.DoneFilename, cmd.DoneFilename)

	setString(&s.Image.Format, cmd.ImageFormat)
	setValue(&s.Image.Quality, cmd.ImageQuality)
	setValue(&s.Image.Width, cmd.ImageWidth)
	setValue(&s.Image.Height, cmd.ImageHeight)
	setValue(&s.Image.SizePercent, cmd.ImageSizePercent)
	setValue(&s.GIF.FPS, cmd.GIFFPS)
	setValue(&s.GIF.Span, cmd.GIFSpan)

	if len(cmd.Label) > 0 {
		s.Label.Fields = cmd.Label
	}
	setValue(&s.Label.Copyright, cmd.LabelCopyright)
	setString(&s.Label.Font, cmd.LabelFont)
	setValue(&s.Label.FontMaxSize, cmd.LabelFontMaxSize)
	setString(&s.Label.FontColor, cmd.LabelFontColor)
	setValue(&s.Label.FontOpacity, cmd.LabelFontOpacity)
	setString(&s.Label.StrokeColor, cmd.LabelStrokeColor)
	if cmd.LabelStrokeWidth != "" {
		width, err := parseStrokeWidth(cmd.LabelStrokeWidth)
		if err != nil {
			return err
		}
		s.Label.StrokeWidth = width
	}
	setString(&s.Label.AlignHorizontal, cmd.LabelAlignHorizontal)
	setString(&s.Label.AlignVertical, cmd.LabelAlignVertical)
	if cmd.LabelHideNames {
		s.Label.HideNames = true
	}
	return nil
}

// setString overrides dst with a non-empty flag value. Empty strings are
// never valid for these settings.
func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setValue[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func parseStrokeWidth(s string) (int, error) {
	switch strings.ToLower(s) {
	case "auto":
		return 0, nil
	case "none":
		return -1, nil
	}
	width, err := strconv.Atoi(s)
	if err != nil || width < 0 {
		return 0, fmt.Errorf("invalid label stroke width %q", s)
	}
	return width, nil
}

// options turns validated settings into exporter options.
func (cmd *ExportCmd) options(s *config.Settings, project string, markers []marker.Marker, logger *zap.Logger) (exporter.Options, error) {
	prof, err := profile.ByName(s.Profile, profile.Config{ManifestName: project, NoMedia: cmd.NoMedia}, logger)
	if err != nil {
		return exporter.Options{}, err
	}
	idMode, err := marker.ParseIDMode(s.IDMode)
	if err != nil {
		return exporter.Options{}, err
	}
	format, err := extract.ParseImageFormat(s.Image.Format)
	if err != nil {
		return exporter.Options{}, err
	}
	fields, err := profile.ParseFields(s.Label.Fields)
	if err != nil {
		return exporter.Options{}, err
	}
	props, err := s.LabelProperties()
	if err != nil {
		return exporter.Options{}, err
	}
	if s.DoneFilename != filepath.Base(s.DoneFilename) {
		return exporter.Options{}, errors.New("done filename must not contain a path")
	}

	opts := exporter.Options{
		ProjectName:     project,
		Markers:         markers,
		OutputDir:       cmd.OutputDir,
		Profile:         prof,
		IDMode:          idMode,
		Format:          format,
		Dimensions:      extract.Dimensions{Width: s.Image.Width, Height: s.Image.Height},
		SizePercent:     s.Image.SizePercent,
		GIFFPS:          s.GIF.FPS,
		GIFSpan:         time.Duration(s.GIF.Span * float64(time.Second)),
		LabelFields:     fields,
		LabelCopyright:  s.Label.Copyright,
		LabelHideNames:  s.Label.HideNames,
		LabelProperties: props,
		NoMedia:         cmd.NoMedia,
		CreateDoneFile:  cmd.DoneFile,
		DoneFilename:    s.DoneFilename,
		Zip:             cmd.Zip,
	}
	if format == extract.FormatJPG {
		q := float64(s.Image.Quality) / 100
		opts.JPGQuality = &q
	}
	return opts, nil
}
