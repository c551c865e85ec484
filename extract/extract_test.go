package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lepinkainen/markers-extractor/label"
)

// fakeSource delivers frames in a chosen tag order from its own goroutine.
type fakeSource struct {
	order    []int // delivery order; nil means submission order
	failAt   int   // 1-based callback that carries an error; 0 never
	extra    []int // tags delivered after the requested ones
	closeAt  int   // stop after this many callbacks without Finished; 0 never
	startErr error
	maxSize  int
	received []FrameRequest
}

func (f *fakeSource) GenerateFrames(ctx context.Context, source string, reqs []FrameRequest, maxSize int) (<-chan Frame, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.maxSize = maxSize
	f.received = reqs

	order := f.order
	if order == nil {
		for _, r := range reqs {
			order = append(order, r.Tag)
		}
	}
	order = append(append([]int{}, order...), f.extra...)

	out := make(chan Frame)
	go func() {
		defer close(out)
		for i, tag := range order {
			if f.closeAt > 0 && i == f.closeAt {
				return
			}
			frame := Frame{
				Tag:      tag,
				Image:    image.NewRGBA(image.Rect(0, 0, 8, 8)),
				Finished: i == len(order)-1,
			}
			if f.failAt == i+1 {
				frame.Image = nil
				frame.Err = errors.New("decoder exploded")
			}
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

type fakeCodec struct {
	mu      sync.Mutex
	encoded int
	failAt  int
	models  []color.Model
	opts    []EncodeOptions
}

func (c *fakeCodec) Encode(w io.Writer, img image.Image, opts EncodeOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.encoded++
	c.models = append(c.models, opts.ColorModel)
	c.opts = append(c.opts, opts)
	if c.failAt == c.encoded {
		return errors.New("encoder exploded")
	}
	_, err := fmt.Fprintf(w, "frame %d", c.encoded)
	return err
}

func setup(t *testing.T, n int) (ConversionSettings, string) {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "source.mov")
	if err := os.WriteFile(source, []byte("video"), 0o644); err != nil {
		t.Fatalf("Failed to create source: %v", err)
	}
	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatalf("Failed to create output dir: %v", err)
	}

	var points []TimePoint
	for i := 0; i < n; i++ {
		points = append(points, TimePoint{
			Filename: fmt.Sprintf("marker-%d.png", i+1),
			At:       time.Duration(i) * time.Second,
		})
	}
	return ConversionSettings{
		Source:     source,
		OutputDir:  out,
		TimePoints: points,
		Format:     FormatPNG,
	}, out
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}
	return len(entries)
}

func TestExtractStillFramesSuccess(t *testing.T) {
	settings, out := setup(t, 4)
	settings.Dimensions = Dimensions{Width: 640, Height: 360}
	source := &fakeSource{}
	codec := &fakeCodec{}

	var hooked []string
	engine := NewEngine(source, codec, zap.NewNop(), WithAssetHook(func(name string, err error) {
		if err == nil {
			hooked = append(hooked, name)
		}
	}))

	if err := engine.ExtractStillFrames(context.Background(), settings); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if codec.encoded != 4 {
		t.Errorf("Expected 4 encodes, got %d", codec.encoded)
	}
	if countFiles(t, out) != 4 {
		t.Errorf("Expected 4 files, got %d", countFiles(t, out))
	}
	if len(hooked) != 4 {
		t.Errorf("Expected 4 hook calls, got %d", len(hooked))
	}
	if source.maxSize != 640 {
		t.Errorf("Expected decode cap 640, got %d", source.maxSize)
	}
	for i, req := range source.received {
		if req.Tag != i || req.At != settings.TimePoints[i].At {
			t.Errorf("Request %d mismatch: %+v", i, req)
		}
	}
	for _, m := range codec.models {
		if m != color.RGBAModel {
			t.Errorf("Expected frame colour model to pass through, got %v", m)
		}
	}
}

func TestExtractStillFramesOutOfOrder(t *testing.T) {
	settings, out := setup(t, 3)
	labels, err := label.New([]string{"first", "second", "third"}, label.DefaultProperties())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var mu sync.Mutex
	filtered := map[int]bool{}
	settings.Filter = func(img image.Image, index int) (image.Image, error) {
		mu.Lock()
		filtered[index] = true
		mu.Unlock()
		return labels.RenderAt(img, index)
	}

	engine := NewEngine(&fakeSource{order: []int{2, 0, 1}}, &fakeCodec{}, zap.NewNop())
	if err := engine.ExtractStillFrames(context.Background(), settings); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if !filtered[i] {
			t.Errorf("Expected frame %d to be labelled", i)
		}
		name := filepath.Join(out, settings.TimePoints[i].Filename)
		if _, err := os.Stat(name); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
}

func TestExtractStillFramesStopsAtFirstFailure(t *testing.T) {
	settings, _ := setup(t, 6)
	codec := &fakeCodec{}
	engine := NewEngine(&fakeSource{failAt: 3}, codec, zap.NewNop())

	err := engine.ExtractStillFrames(context.Background(), settings)
	if !errors.Is(err, ErrGenerateFrame) {
		t.Fatalf("Expected ErrGenerateFrame, got %v", err)
	}

	var ee *ExtractError
	if !errors.As(err, &ee) || ee.Filename != "marker-3.png" {
		t.Errorf("Expected failure attributed to marker-3.png, got %v", err)
	}
	if codec.encoded != 2 {
		t.Errorf("Expected encoding to stop after 2 frames, got %d", codec.encoded)
	}
}

func TestExtractStillFramesLabelsDepleted(t *testing.T) {
	settings, _ := setup(t, 3)
	labels, err := label.New([]string{"only one", "two"}, label.DefaultProperties())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	settings.Filter = labels.RenderAt

	engine := NewEngine(&fakeSource{}, &fakeCodec{}, zap.NewNop())
	err = engine.ExtractStillFrames(context.Background(), settings)
	if !errors.Is(err, ErrLabelsDepleted) {
		t.Errorf("Expected ErrLabelsDepleted, got %v", err)
	}
}

func TestExtractStillFramesUnexpectedTag(t *testing.T) {
	settings, _ := setup(t, 2)
	codec := &fakeCodec{}
	// The source answers tag 0 twice and never tag 1
	engine := NewEngine(&fakeSource{order: []int{0, 0}}, codec, zap.NewNop())

	err := engine.ExtractStillFrames(context.Background(), settings)
	if !errors.Is(err, ErrLabelsDepleted) {
		t.Errorf("Expected ErrLabelsDepleted for repeated tag, got %v", err)
	}
	if codec.encoded != 1 {
		t.Errorf("Expected 1 encode, got %d", codec.encoded)
	}
}

func TestExtractStillFramesEarlyFinish(t *testing.T) {
	settings, _ := setup(t, 3)
	engine := NewEngine(&fakeSource{order: []int{0, 1}}, &fakeCodec{}, zap.NewNop())

	err := engine.ExtractStillFrames(context.Background(), settings)
	if !errors.Is(err, ErrGenerateFrame) {
		t.Errorf("Expected ErrGenerateFrame, got %v", err)
	}
}

func TestExtractStillFramesSourceClosedEarly(t *testing.T) {
	settings, _ := setup(t, 3)
	engine := NewEngine(&fakeSource{closeAt: 1}, &fakeCodec{}, zap.NewNop())

	err := engine.ExtractStillFrames(context.Background(), settings)
	if !errors.Is(err, ErrGenerateFrame) {
		t.Errorf("Expected ErrGenerateFrame, got %v", err)
	}
}

func TestExtractStillFramesEncodeFailure(t *testing.T) {
	settings, out := setup(t, 3)
	engine := NewEngine(&fakeSource{}, &fakeCodec{failAt: 2}, zap.NewNop())

	err := engine.ExtractStillFrames(context.Background(), settings)
	if !errors.Is(err, ErrAddFrame) {
		t.Fatalf("Expected ErrAddFrame, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(out, "marker-2.png")); !os.IsNotExist(statErr) {
		t.Error("Expected partial file to be removed")
	}
}

func TestExtractStillFramesWriteFailure(t *testing.T) {
	settings, _ := setup(t, 1)
	settings.TimePoints[0].Filename = filepath.Join("missing-dir", "marker.png")
	engine := NewEngine(&fakeSource{}, &fakeCodec{}, zap.NewNop())

	err := engine.ExtractStillFrames(context.Background(), settings)
	if !errors.Is(err, ErrWrite) {
		t.Errorf("Expected ErrWrite, got %v", err)
	}
}

func TestExtractStillFramesPreconditions(t *testing.T) {
	quality := 1.5

	tests := []struct {
		name   string
		modify func(s *ConversionSettings)
		kind   error
	}{
		{"no source", func(s *ConversionSettings) { s.Source = "" }, ErrInvalidSettings},
		{"no points", func(s *ConversionSettings) { s.TimePoints = nil }, ErrInvalidSettings},
		{"gif still", func(s *ConversionSettings) { s.Format = FormatGIF }, ErrUnsupportedType},
		{"bad quality", func(s *ConversionSettings) { s.JPGQuality = &quality }, ErrInvalidSettings},
		{"duplicate filename", func(s *ConversionSettings) {
			s.TimePoints[1].Filename = s.TimePoints[0].Filename
		}, ErrInvalidSettings},
		{"missing source", func(s *ConversionSettings) { s.Source += ".gone" }, ErrUnreadableFile},
		{"missing output", func(s *ConversionSettings) { s.OutputDir += "-gone" }, ErrInvalidSettings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, _ := setup(t, 2)
			tt.modify(&settings)
			source := &fakeSource{}
			engine := NewEngine(source, &fakeCodec{}, zap.NewNop())

			err := engine.ExtractStillFrames(context.Background(), settings)
			if !errors.Is(err, tt.kind) {
				t.Errorf("Expected %v, got %v", tt.kind, err)
			}
			if source.received != nil {
				t.Error("Expected no decode to start")
			}
		})
	}
}

func TestExtractStillFramesStartError(t *testing.T) {
	settings, _ := setup(t, 1)
	engine := NewEngine(&fakeSource{startErr: errors.New("no ffmpeg")}, &fakeCodec{}, zap.NewNop())

	if err := engine.ExtractStillFrames(context.Background(), settings); !errors.Is(err, ErrGenerateFrame) {
		t.Errorf("Expected ErrGenerateFrame, got %v", err)
	}
}

func TestExtractStillFramesCancelled(t *testing.T) {
	settings, _ := setup(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(&fakeSource{closeAt: 0, order: []int{}}, &fakeCodec{}, zap.NewNop())
	err := engine.ExtractStillFrames(ctx, settings)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", newError(ErrWrite, "a.png", errors.New("disk full")))
	if KindOf(err) != ErrWrite {
		t.Errorf("Expected ErrWrite, got %v", KindOf(err))
	}
	if KindOf(errors.New("plain")) != nil {
		t.Error("Expected nil kind for plain error")
	}
	if got := err.Error(); got != "outer: write failed for a.png: disk full" {
		t.Errorf("Unexpected message %q", got)
	}
}

func TestParseImageFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected ImageFormat
		wantErr  bool
	}{
		{"png", FormatPNG, false},
		{"JPEG", FormatJPG, false},
		{".jpg", FormatJPG, false},
		{"gif", FormatGIF, false},
		{"tiff", "", true},
	}

	for _, tt := range tests {
		got, err := ParseImageFormat(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedType) {
				t.Errorf("Expected ErrUnsupportedType for %q, got %v", tt.input, err)
			}
			continue
		}
		if got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}
