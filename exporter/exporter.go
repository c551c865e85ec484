// Package exporter runs a whole marker export: it validates markers, creates
// the destination, produces the image assets and writes the manifests.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lepinkainen/markers-extractor/extract"
	"github.com/lepinkainen/markers-extractor/label"
	"github.com/lepinkainen/markers-extractor/logging"
	"github.com/lepinkainen/markers-extractor/marker"
	"github.com/lepinkainen/markers-extractor/metrics"
	"github.com/lepinkainen/markers-extractor/profile"
	"github.com/lepinkainen/markers-extractor/video"
)

// ErrNoMarkers is returned for an export without markers.
var ErrNoMarkers = errors.New("no markers to export")

// Components are the media backends an export drives.
type Components struct {
	Source      extract.FrameSource
	Sampler     extract.RangeSampler
	Codec       extract.ImageCodec
	Animator    extract.AnimatedEncoder
	Placeholder extract.FrameSource
	Probe       func(ctx context.Context, path string) (*video.MediaInfo, error)
}

// Options describe one export run.
type Options struct {
	ProjectName string
	Markers     []marker.Marker
	MediaPath   string
	OutputDir   string

	Profile profile.Profile
	IDMode  marker.IDMode

	Format      extract.ImageFormat
	JPGQuality  *float64
	Dimensions  extract.Dimensions
	SizePercent int
	GIFFPS      float64
	GIFSpan     time.Duration

	LabelFields     []profile.Field
	LabelCopyright  string
	LabelHideNames  bool
	LabelProperties label.Properties

	NoMedia        bool
	CreateDoneFile bool
	DoneFilename   string
	Zip            bool
}

// Result describes a finished export.
type Result struct {
	RunID       string
	Destination string
	Assets      []string
	DoneContent []byte
	DonePath    string
	BundlePath  string
}

// Exporter runs exports with a fixed set of components.
type Exporter struct {
	components Components
	logger     *zap.Logger
	metrics    *metrics.Recorder
	reporter   Reporter
	now        func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithMetrics records run metrics.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Exporter) { e.metrics = m }
}

// WithReporter reports progress while assets are produced.
func WithReporter(r Reporter) Option {
	return func(e *Exporter) { e.reporter = r }
}

// WithClock replaces time.Now for destination naming.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// New creates an Exporter.
func New(c Components, logger *zap.Logger, opts ...Option) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Exporter{
		components: c,
		logger:     logging.WithComponent(logger, "exporter"),
		reporter:   nopReporter{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export runs one export. Nothing is written when marker validation fails,
// and the manifest is only written once every asset exists.
func (e *Exporter) Export(ctx context.Context, opts Options) (res *Result, err error) {
	started := time.Now()
	runID := uuid.NewString()
	logger := logging.WithRunID(e.logger, runID)

	e.reporter.Start(len(opts.Markers))
	defer func() { e.reporter.Finish(err) }()

	if opts.Profile == nil {
		return nil, errors.New("no export profile")
	}
	if len(opts.Markers) == 0 {
		return nil, ErrNoMarkers
	}
	if err := marker.Validate(opts.Markers, opts.IDMode); err != nil {
		return nil, err
	}
	markers := marker.Sorted(opts.Markers)

	dest, err := MakeDestination(opts.OutputDir, opts.ProjectName, e.now())
	if err != nil {
		return nil, err
	}
	logger.Info("Exporting markers",
		zap.Int("markers", len(markers)),
		zap.String("profile", opts.Profile.Name()),
		zap.String("destination", logging.SanitizePath(dest)))

	res = &Result{RunID: runID, Destination: dest}

	var prepared []profile.PreparedMarker
	if opts.NoMedia {
		prepared = opts.Profile.PrepareMarkers(markers, opts.IDMode, opts.Format, false)
	} else {
		prepared, err = e.generate(ctx, logger, opts, markers, dest)
		if err != nil {
			return nil, err
		}
		res.Assets = assetNames(prepared)
	}

	if err := opts.Profile.WriteManifest(prepared, dest); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	if res.DoneContent, err = opts.Profile.DoneFileContent(dest); err != nil {
		return nil, fmt.Errorf("failed to build done file: %w", err)
	}
	if opts.CreateDoneFile {
		res.DonePath = filepath.Join(dest, opts.DoneFilename)
		if err := WriteDoneFile(res.DonePath, res.DoneContent); err != nil {
			return nil, err
		}
	}

	if opts.Zip {
		res.BundlePath = dest + ".zip"
		if err := Bundle(ctx, dest, res.BundlePath); err != nil {
			return nil, err
		}
	}

	e.metrics.ObserveExport(opts.Profile.Name(), time.Since(started), len(markers))
	logger.Info("Export complete",
		zap.Int("assets", len(res.Assets)),
		zap.Duration("elapsed", time.Since(started)))
	return res, nil
}

// generate produces the image assets and returns the prepared markers that
// reference them.
func (e *Exporter) generate(ctx context.Context, logger *zap.Logger, opts Options, markers []marker.Marker, dest string) ([]profile.PreparedMarker, error) {
	if e.components.Probe == nil {
		return nil, errors.New("no media prober configured")
	}
	info, err := e.components.Probe(ctx, opts.MediaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", logging.SanitizePath(opts.MediaPath), err)
	}

	format := opts.Format
	if !info.HasVideo && format.IsAnimated() {
		logger.Warn("Media has no video stream, writing still placeholders instead of animations")
		format = extract.FormatPNG
	}

	labelled := len(opts.LabelFields) > 0
	singleFrame := !info.HasVideo && !labelled
	prepared := opts.Profile.PrepareMarkers(markers, opts.IDMode, format, singleFrame)

	var labeler *label.Labeler
	if labelled {
		texts := LabelTexts(opts.Profile, prepared, opts.LabelFields, opts.LabelHideNames, opts.LabelCopyright)
		if labeler, err = label.New(texts, opts.LabelProperties); err != nil {
			return nil, fmt.Errorf("failed to set up labels: %w", err)
		}
	}

	dims := opts.Dimensions
	if dims.IsZero() && opts.SizePercent > 0 && opts.SizePercent < 100 && info.HasVideo {
		dims.Width, dims.Height = info.ScaledDimensions(opts.SizePercent)
	}

	extractOpts := []extract.Option{
		extract.WithMetrics(e.metrics),
		extract.WithAssetHook(e.reporter.AssetDone),
	}

	if format.IsAnimated() {
		items := make([]extract.AnimatedItem, len(prepared))
		for i, p := range prepared {
			items[i] = extract.AnimatedItem{
				MarkerID: p.MarkerID(),
				Filename: p.ImageFilename(),
				Range:    extract.AnimatedRange(p.MediaTime(), opts.GIFSpan, info.Duration, opts.GIFFPS),
			}
		}
		settings := extract.AnimatedSettings{
			Source:     opts.MediaPath,
			OutputDir:  dest,
			Items:      items,
			FPS:        opts.GIFFPS,
			Dimensions: dims,
		}
		if labeler != nil {
			settings.Labels = labeler
		}
		assembler := extract.NewAssembler(e.components.Sampler, e.components.Animator, logger, extractOpts...)
		return prepared, assembler.WriteAnimated(ctx, settings)
	}

	source := e.components.Source
	if !info.HasVideo {
		source = e.components.Placeholder
	}

	settings := extract.ConversionSettings{
		Source:     opts.MediaPath,
		OutputDir:  dest,
		Format:     format,
		JPGQuality: opts.JPGQuality,
		Dimensions: dims,
	}
	if singleFrame {
		settings.TimePoints = []extract.TimePoint{{Filename: prepared[0].ImageFilename()}}
	} else {
		entries := make([]extract.Entry, len(prepared))
		for i, p := range prepared {
			entries[i] = extract.Entry{Filename: p.ImageFilename(), At: p.MediaTime()}
		}
		settings.TimePoints = extract.StillTimePoints(entries)
	}
	if labeler != nil {
		settings.Filter = labeler.RenderAt
	}

	engine := extract.NewEngine(source, e.components.Codec, logger, extractOpts...)
	return prepared, engine.ExtractStillFrames(ctx, settings)
}

// LabelTexts builds one label per prepared marker from the selected fields of
// its manifest row. Fields the profile does not export are skipped.
func LabelTexts(p profile.Profile, prepared []profile.PreparedMarker, fields []profile.Field, hideNames bool, copyright string) []string {
	texts := make([]string, len(prepared))
	for i, m := range prepared {
		row := p.ManifestFields(m)
		pairs := make([]label.Pair, 0, len(fields))
		for _, f := range fields {
			if v, ok := row.Get(f); ok {
				pairs = append(pairs, label.Pair{Name: string(f), Value: v})
			}
		}
		texts[i] = label.Text(pairs, hideNames, copyright)
	}
	return texts
}

func assetNames(prepared []profile.PreparedMarker) []string {
	seen := map[string]bool{}
	var names []string
	for _, p := range prepared {
		if name := p.ImageFilename(); !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
