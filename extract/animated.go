package extract

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lepinkainen/markers-extractor/logging"
	"github.com/lepinkainen/markers-extractor/metrics"
)

// Sequencer supplies one label per animated asset, in asset order.
type Sequencer interface {
	Len() int
	Advance() error
	RenderOnto(img image.Image) (image.Image, error)
}

// AnimatedItem is one animated asset to produce.
type AnimatedItem struct {
	MarkerID string
	Filename string
	Range    TimeRange
}

// AnimatedSettings describe one animated extraction call. Labels is optional.
type AnimatedSettings struct {
	Source     string
	OutputDir  string
	Items      []AnimatedItem
	FPS        float64
	Dimensions Dimensions
	Labels     Sequencer
}

func (s AnimatedSettings) validate() error {
	if s.Source == "" || s.OutputDir == "" {
		return fmt.Errorf("%w: source and output folder are required", ErrInvalidSettings)
	}
	if len(s.Items) == 0 {
		return fmt.Errorf("%w: no animated items", ErrInvalidSettings)
	}
	if s.FPS <= 0 {
		return fmt.Errorf("%w: frame rate must be positive", ErrInvalidSettings)
	}
	if s.Dimensions.Width < 0 || s.Dimensions.Height < 0 {
		return fmt.Errorf("%w: negative dimensions", ErrInvalidSettings)
	}
	for _, item := range s.Items {
		if item.Filename == "" {
			return fmt.Errorf("%w: empty output filename", ErrInvalidSettings)
		}
		if item.Range.In < 0 || item.Range.Out < item.Range.In {
			return fmt.Errorf("%w: invalid range for %s", ErrInvalidSettings, item.Filename)
		}
	}
	return nil
}

// Assembler produces one animated image per marker.
type Assembler struct {
	sampler RangeSampler
	encoder AnimatedEncoder
	logger  *zap.Logger
	metrics *metrics.Recorder
	onAsset AssetHook
}

// NewAssembler creates an animated assembler.
func NewAssembler(sampler RangeSampler, encoder AnimatedEncoder, logger *zap.Logger, opts ...Option) *Assembler {
	o := applyOptions(opts)
	return &Assembler{
		sampler: sampler,
		encoder: encoder,
		logger:  logger.With(zap.String("component", "animated")),
		metrics: o.metrics,
		onAsset: o.onAsset,
	}
}

// WriteAnimated writes every item in order and stops at the first failure.
func (a *Assembler) WriteAnimated(ctx context.Context, s AnimatedSettings) error {
	if err := s.validate(); err != nil {
		a.metrics.IncFailure(kindName(err))
		return err
	}
	if err := checkPaths(s.Source, s.OutputDir); err != nil {
		a.metrics.IncFailure(kindName(err))
		return err
	}
	if s.Labels != nil && s.Labels.Len() < len(s.Items) {
		err := newError(ErrLabelsDepleted, "", fmt.Errorf("%d labels for %d animated items", s.Labels.Len(), len(s.Items)))
		a.metrics.IncFailure(kindName(err))
		return err
	}

	for _, item := range s.Items {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := a.writeOne(ctx, s, item)
		if a.onAsset != nil {
			a.onAsset(item.Filename, err)
		}
		if err != nil {
			a.metrics.IncFailure(kindName(err))
			a.logger.Error("Animated thumbnail failed", zap.String("file", item.Filename), zap.Error(err))
			return fmt.Errorf("error while generating animated thumbnail %q: %w", item.Filename, err)
		}
		a.metrics.IncAnimated()
	}
	return nil
}

func (a *Assembler) writeOne(ctx context.Context, s AnimatedSettings, item AnimatedItem) error {
	logger := a.logger
	if item.MarkerID != "" {
		logger = logging.WithMarker(logger, item.MarkerID)
	}

	if s.Labels != nil {
		if err := s.Labels.Advance(); err != nil {
			return newError(ErrLabelsDepleted, item.Filename, nil)
		}
	}

	logger.Debug("Sampling range",
		zap.String("file", item.Filename),
		zap.Duration("in", item.Range.In),
		zap.Duration("out", item.Range.Out))

	frames, err := a.sampler.SampleRange(ctx, s.Source, item.Range, s.FPS, s.Dimensions.LongestSide())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return newError(ErrGenerateFrame, item.Filename, err)
	}
	if len(frames) == 0 {
		return newError(ErrGenerateFrame, item.Filename, errors.New("no frames decoded in range"))
	}

	if s.Labels != nil {
		for i, frame := range frames {
			labelled, err := s.Labels.RenderOnto(frame)
			if err != nil {
				if errors.Is(err, ErrLabelsDepleted) {
					return newError(ErrLabelsDepleted, item.Filename, nil)
				}
				return newError(ErrAddFrame, item.Filename, err)
			}
			frames[i] = labelled
		}
	}

	err = writeFile(filepath.Join(s.OutputDir, item.Filename), func(w *bufio.Writer) error {
		return a.encoder.EncodeAnimated(w, frames, s.FPS, s.Dimensions)
	})
	return withFilename(err, item.Filename)
}
