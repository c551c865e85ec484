package extract

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lepinkainen/markers-extractor/metrics"
)

// AssetHook is called after every asset attempt, from the caller's goroutine.
type AssetHook func(filename string, err error)

// Engine extracts still frames through a FrameSource and writes them with an ImageCodec.
type Engine struct {
	source  FrameSource
	codec   ImageCodec
	logger  *zap.Logger
	metrics *metrics.Recorder
	onAsset AssetHook
}

// Option configures an Engine or Assembler.
type Option func(*options)

type options struct {
	metrics *metrics.Recorder
	onAsset AssetHook
}

// WithMetrics records frame counts and failures.
func WithMetrics(m *metrics.Recorder) Option {
	return func(o *options) { o.metrics = m }
}

// WithAssetHook reports per-asset progress.
func WithAssetHook(fn AssetHook) Option {
	return func(o *options) { o.onAsset = fn }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewEngine creates a still frame engine.
func NewEngine(source FrameSource, codec ImageCodec, logger *zap.Logger, opts ...Option) *Engine {
	o := applyOptions(opts)
	return &Engine{
		source:  source,
		codec:   codec,
		logger:  logger.With(zap.String("component", "extract")),
		metrics: o.metrics,
		onAsset: o.onAsset,
	}
}

// ExtractStillFrames decodes every time point in s and writes one image per
// point. It blocks until all images are written or the first failure, after
// which the batch is cancelled and remaining frames are discarded unencoded.
func (e *Engine) ExtractStillFrames(ctx context.Context, s ConversionSettings) error {
	if err := s.validate(); err != nil {
		e.metrics.IncFailure(kindName(err))
		return err
	}
	if err := checkPaths(s.Source, s.OutputDir); err != nil {
		e.metrics.IncFailure(kindName(err))
		return err
	}

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reqs := make([]FrameRequest, len(s.TimePoints))
	for i, tp := range s.TimePoints {
		reqs[i] = FrameRequest{Tag: i, At: tp.At}
	}

	e.logger.Debug("Submitting frame batch",
		zap.String("source", s.Source),
		zap.Int("frames", len(reqs)),
		zap.String("format", string(s.Format)))

	results, err := e.source.GenerateFrames(batchCtx, s.Source, reqs, s.Dimensions.LongestSide())
	if err != nil {
		err = newError(ErrGenerateFrame, "", err)
		e.metrics.IncFailure(kindName(err))
		return err
	}

	written := make([]bool, len(reqs))
	remaining := len(reqs)
	var failure error

	for frame := range results {
		if failure != nil {
			continue
		}

		if err := e.handleFrame(s, frame, written); err != nil {
			failure = err
			cancel()
			continue
		}
		remaining--

		if frame.Finished && remaining > 0 {
			failure = newError(ErrGenerateFrame, "",
				fmt.Errorf("batch finished with %d of %d frames missing", remaining, len(reqs)))
			cancel()
		}
	}

	if failure == nil && remaining > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		failure = newError(ErrGenerateFrame, "",
			fmt.Errorf("frame source stopped with %d of %d frames missing", remaining, len(reqs)))
	}

	if failure != nil {
		e.metrics.IncFailure(kindName(failure))
		e.logger.Error("Frame extraction failed", zap.Error(failure))
		return failure
	}

	e.logger.Debug("Frame batch complete", zap.Int("frames", len(reqs)))
	return nil
}

func (e *Engine) handleFrame(s ConversionSettings, frame Frame, written []bool) (err error) {
	if frame.Tag < 0 || frame.Tag >= len(written) || written[frame.Tag] {
		return newError(ErrLabelsDepleted, "", fmt.Errorf("no pending time point for frame tag %d", frame.Tag))
	}
	filename := s.TimePoints[frame.Tag].Filename
	written[frame.Tag] = true

	defer func() {
		if e.onAsset != nil {
			e.onAsset(filename, err)
		}
	}()

	if frame.Err != nil {
		return newError(ErrGenerateFrame, filename, frame.Err)
	}
	if frame.Image == nil {
		return newError(ErrGenerateFrame, filename, errors.New("frame source returned no image"))
	}

	img := frame.Image
	if s.Filter != nil {
		img, err = s.Filter(frame.Image, frame.Tag)
		if err != nil {
			if errors.Is(err, ErrLabelsDepleted) {
				return newError(ErrLabelsDepleted, filename, nil)
			}
			return newError(ErrAddFrame, filename, err)
		}
	}

	opts := EncodeOptions{
		Format:     s.Format,
		Quality:    s.JPGQuality,
		Dimensions: s.Dimensions,
		ColorModel: frame.Image.ColorModel(),
	}
	if err := writeFile(filepath.Join(s.OutputDir, filename), func(w *bufio.Writer) error {
		return e.codec.Encode(w, img, opts)
	}); err != nil {
		return withFilename(err, filename)
	}

	e.metrics.IncFrames()
	e.logger.Debug("Wrote frame", zap.String("file", filename), zap.Int("tag", frame.Tag))
	return nil
}

// writeFile creates path and runs encode on a buffered writer. Encoder
// failures are ErrAddFrame; create, flush and close failures are ErrWrite.
// A partially written file is removed.
func writeFile(path string, encode func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return newError(ErrWrite, "", err)
	}

	w := bufio.NewWriter(f)
	if err := encode(w); err != nil {
		f.Close()
		os.Remove(path)
		return newError(ErrAddFrame, "", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return newError(ErrWrite, "", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return newError(ErrWrite, "", err)
	}
	return nil
}

func withFilename(err error, filename string) error {
	var ee *ExtractError
	if errors.As(err, &ee) && ee.Filename == "" {
		ee.Filename = filename
	}
	return err
}

func checkPaths(source, outputDir string) error {
	if _, err := os.Stat(source); err != nil {
		return newError(ErrUnreadableFile, source, err)
	}
	info, err := os.Stat(outputDir)
	if err != nil {
		return fmt.Errorf("%w: output folder: %w", ErrInvalidSettings, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: output folder %s is not a directory", ErrInvalidSettings, outputDir)
	}
	return nil
}

// kindName is the metrics label for a failure.
func kindName(err error) string {
	switch KindOf(err) {
	case ErrInvalidSettings:
		return "invalid_settings"
	case ErrUnreadableFile:
		return "unreadable_file"
	case ErrUnsupportedType:
		return "unsupported_type"
	case ErrLabelsDepleted:
		return "labels_depleted"
	case ErrGenerateFrame:
		return "generate_frame"
	case ErrAddFrame:
		return "add_frame"
	case ErrWrite:
		return "write"
	default:
		return "other"
	}
}
