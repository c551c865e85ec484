package video

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/markers-extractor/extract"
)

// FFmpegSource decodes frames by running ffmpeg, one process per frame,
// with at most Workers processes at a time.
type FFmpegSource struct {
	ffmpeg  string
	workers int
	logger  *zap.Logger
}

// NewFFmpegSource creates a source using the ffmpeg binary in PATH.
// workers <= 0 uses one worker per CPU.
func NewFFmpegSource(logger *zap.Logger, workers int) *FFmpegSource {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &FFmpegSource{
		ffmpeg:  "ffmpeg",
		workers: workers,
		logger:  logger.With(zap.String("component", "ffmpeg")),
	}
}

// GenerateFrames implements extract.FrameSource. Frames are delivered as they
// finish decoding, so their order is not the request order. The first decode
// error stops the remaining work.
func (s *FFmpegSource) GenerateFrames(ctx context.Context, source string, reqs []extract.FrameRequest, maxSize int) (<-chan extract.Frame, error) {
	if _, err := exec.LookPath(s.ffmpeg); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	out := make(chan extract.Frame)
	go func() {
		defer close(out)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)

		var mu sync.Mutex
		sent := 0

		for _, req := range reqs {
			if gctx.Err() != nil {
				break
			}
			req := req
			g.Go(func() error {
				img, err := s.decodeFrame(gctx, source, req.At, maxSize)

				// Sends are serialized so that Finished is set on the last delivery
				mu.Lock()
				defer mu.Unlock()
				sent++
				frame := extract.Frame{Tag: req.Tag, Image: img, Err: err, Finished: sent == len(reqs)}
				select {
				case out <- frame:
				case <-gctx.Done():
					return gctx.Err()
				}
				return err
			})
		}

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Debug("Frame batch stopped", zap.Error(err))
		}
	}()

	return out, nil
}

func (s *FFmpegSource) decodeFrame(ctx context.Context, source string, at time.Duration, maxSize int) (image.Image, error) {
	args := []string{"-v", "error", "-ss", seconds(at), "-i", source, "-frames:v", "1"}
	if vf := scaleFilter(maxSize); vf != "" {
		args = append(args, "-vf", vf)
	}
	args = append(args, "-f", "image2pipe", "-vcodec", "png", "-")

	output, err := s.run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("decode at %s: %w", at, err)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("no frame at %s (past the end of the media?)", at)
	}

	img, err := png.Decode(bytes.NewReader(output))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame at %s: %w", at, err)
	}
	return img, nil
}

// SampleRange implements extract.RangeSampler with a single ffmpeg run.
func (s *FFmpegSource) SampleRange(ctx context.Context, source string, r extract.TimeRange, fps float64, maxSize int) ([]image.Image, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("invalid sample rate %.2f", fps)
	}

	filters := []string{"fps=" + strconv.FormatFloat(fps, 'f', -1, 64)}
	if vf := scaleFilter(maxSize); vf != "" {
		filters = append(filters, vf)
	}
	args := []string{
		"-v", "error",
		"-ss", seconds(r.In),
		"-i", source,
		"-t", seconds(r.Span()),
		"-vf", strings.Join(filters, ","),
		"-f", "image2pipe", "-vcodec", "png", "-",
	}

	output, err := s.run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("sample %s-%s: %w", r.In, r.Out, err)
	}
	return decodePNGStream(bytes.NewReader(output))
}

func (s *FFmpegSource) run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, s.ffmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	s.logger.Debug("Running ffmpeg", zap.Strings("args", args))
	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, extractFirstLine(stderr.String()))
	}
	return output, nil
}

// decodePNGStream reads concatenated PNG images until EOF.
func decodePNGStream(r io.Reader) ([]image.Image, error) {
	br := bufio.NewReader(r)
	var frames []image.Image
	for {
		if _, err := br.Peek(1); err == io.EOF {
			return frames, nil
		}
		img, err := png.Decode(br)
		if err != nil {
			return nil, fmt.Errorf("failed to decode frame %d: %w", len(frames)+1, err)
		}
		frames = append(frames, img)
	}
}

// scaleFilter caps the longest side at maxSize without upscaling.
func scaleFilter(maxSize int) string {
	if maxSize <= 0 {
		return ""
	}
	return fmt.Sprintf("scale='min(iw,%d)':'min(ih,%d)':force_original_aspect_ratio=decrease", maxSize, maxSize)
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(max(d, 0).Seconds(), 'f', 3, 64)
}
