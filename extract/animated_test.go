package extract

import (
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lepinkainen/markers-extractor/label"
	"github.com/lepinkainen/markers-extractor/metrics"
)

type fakeSampler struct {
	frames  int
	failOn  int // 1-based call that fails; 0 never
	calls   int
	ranges  []TimeRange
	maxSize int
}

func (s *fakeSampler) SampleRange(ctx context.Context, source string, r TimeRange, fps float64, maxSize int) ([]image.Image, error) {
	s.calls++
	s.ranges = append(s.ranges, r)
	s.maxSize = maxSize
	if s.calls == s.failOn {
		return nil, errors.New("seek failed")
	}
	var out []image.Image
	for i := 0; i < s.frames; i++ {
		out = append(out, image.NewRGBA(image.Rect(0, 0, 16, 9)))
	}
	return out, nil
}

type fakeAnimatedEncoder struct {
	written []int
}

func (e *fakeAnimatedEncoder) EncodeAnimated(w io.Writer, frames []image.Image, fps float64, dims Dimensions) error {
	e.written = append(e.written, len(frames))
	_, err := w.Write([]byte("GIF89a"))
	return err
}

func animatedSetup(t *testing.T, names ...string) AnimatedSettings {
	t.Helper()
	settings, out := setup(t, 0)
	var items []AnimatedItem
	for i, name := range names {
		start := time.Duration(i) * time.Second
		items = append(items, AnimatedItem{Filename: name, Range: TimeRange{In: start, Out: start + time.Second}})
	}
	return AnimatedSettings{
		Source:     settings.Source,
		OutputDir:  out,
		Items:      items,
		FPS:        10,
		Dimensions: Dimensions{Width: 320, Height: 480},
	}
}

func TestWriteAnimated(t *testing.T) {
	settings := animatedSetup(t, "a.gif", "b.gif")
	labels, err := label.New([]string{"A", "B"}, label.DefaultProperties())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	settings.Labels = labels

	sampler := &fakeSampler{frames: 3}
	encoder := &fakeAnimatedEncoder{}
	rec := metrics.New()
	assembler := NewAssembler(sampler, encoder, zap.NewNop(), WithMetrics(rec))

	if err := assembler.WriteAnimated(context.Background(), settings); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, name := range []string{"a.gif", "b.gif"} {
		if _, err := os.Stat(filepath.Join(settings.OutputDir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
	if len(encoder.written) != 2 || encoder.written[0] != 3 {
		t.Errorf("Expected two GIFs of 3 frames, got %v", encoder.written)
	}
	if sampler.maxSize != 480 {
		t.Errorf("Expected decode cap 480, got %d", sampler.maxSize)
	}
	if current, _ := labels.Current(); current != "B" {
		t.Errorf("Expected label cursor on last label, got %q", current)
	}
	if got := testutil.ToFloat64(rec.AnimatedAssetsTotal); got != 2 {
		t.Errorf("Expected 2 animated assets recorded, got %v", got)
	}
}

func TestWriteAnimatedLogsMarkerID(t *testing.T) {
	settings := animatedSetup(t, "a.gif")
	settings.Items[0].MarkerID = "Trailer_00-00-01-00"

	core, logs := observer.New(zapcore.DebugLevel)
	assembler := NewAssembler(&fakeSampler{frames: 1}, &fakeAnimatedEncoder{}, zap.New(core))
	if err := assembler.WriteAnimated(context.Background(), settings); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	entries := logs.FilterMessage("Sampling range").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one sampling entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["marker_id"]; got != "Trailer_00-00-01-00" {
		t.Errorf("Expected marker_id field, got %v", got)
	}
}

func TestWriteAnimatedWrapsFilename(t *testing.T) {
	settings := animatedSetup(t, "a.gif", "b.gif", "c.gif")
	sampler := &fakeSampler{frames: 2, failOn: 2}
	encoder := &fakeAnimatedEncoder{}
	assembler := NewAssembler(sampler, encoder, zap.NewNop())

	err := assembler.WriteAnimated(context.Background(), settings)
	if !errors.Is(err, ErrGenerateFrame) {
		t.Fatalf("Expected ErrGenerateFrame, got %v", err)
	}
	if !strings.Contains(err.Error(), `"b.gif"`) {
		t.Errorf("Expected error to name b.gif, got %v", err)
	}
	if sampler.calls != 2 {
		t.Errorf("Expected export to stop after the failing marker, got %d calls", sampler.calls)
	}
}

func TestWriteAnimatedLabelsDepleted(t *testing.T) {
	settings := animatedSetup(t, "a.gif", "b.gif")
	labels, err := label.New([]string{"only"}, label.DefaultProperties())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	settings.Labels = labels

	sampler := &fakeSampler{frames: 1}
	assembler := NewAssembler(sampler, &fakeAnimatedEncoder{}, zap.NewNop())
	err = assembler.WriteAnimated(context.Background(), settings)
	if !errors.Is(err, ErrLabelsDepleted) {
		t.Errorf("Expected ErrLabelsDepleted, got %v", err)
	}
	if sampler.calls != 0 {
		t.Errorf("Expected no decoding with too few labels, got %d calls", sampler.calls)
	}
	if _, err := os.Stat(filepath.Join(settings.OutputDir, "a.gif")); !os.IsNotExist(err) {
		t.Error("Expected no animated asset to be written")
	}
}

func TestWriteAnimatedNoFrames(t *testing.T) {
	settings := animatedSetup(t, "a.gif")
	assembler := NewAssembler(&fakeSampler{frames: 0}, &fakeAnimatedEncoder{}, zap.NewNop())

	if err := assembler.WriteAnimated(context.Background(), settings); !errors.Is(err, ErrGenerateFrame) {
		t.Errorf("Expected ErrGenerateFrame, got %v", err)
	}
}

func TestWriteAnimatedInvalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(s *AnimatedSettings)
	}{
		{"no items", func(s *AnimatedSettings) { s.Items = nil }},
		{"zero fps", func(s *AnimatedSettings) { s.FPS = 0 }},
		{"inverted range", func(s *AnimatedSettings) {
			s.Items[0].Range = TimeRange{In: 2 * time.Second, Out: time.Second}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := animatedSetup(t, "a.gif")
			tt.modify(&settings)
			sampler := &fakeSampler{frames: 1}
			assembler := NewAssembler(sampler, &fakeAnimatedEncoder{}, zap.NewNop())

			if err := assembler.WriteAnimated(context.Background(), settings); !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Expected ErrInvalidSettings, got %v", err)
			}
			if sampler.calls != 0 {
				t.Error("Expected no sampling")
			}
		})
	}
}

func TestWriteAnimatedCancelled(t *testing.T) {
	settings := animatedSetup(t, "a.gif")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assembler := NewAssembler(&fakeSampler{frames: 1}, &fakeAnimatedEncoder{}, zap.NewNop())
	if err := assembler.WriteAnimated(ctx, settings); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
