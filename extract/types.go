// Package extract turns scheduled marker times into image files.
package extract

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"time"
)

// ImageFormat is the file format of exported thumbnails
type ImageFormat string

const (
	FormatPNG ImageFormat = "png"
	FormatJPG ImageFormat = "jpg"
	FormatGIF ImageFormat = "gif"
)

// ParseImageFormat accepts png, jpg/jpeg and gif.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	case "gif":
		return FormatGIF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, s)
	}
}

// IsAnimated reports whether the format is produced by the animated assembler.
func (f ImageFormat) IsAnimated() bool {
	return f == FormatGIF
}

// IsStill reports whether the engine can write this format.
func (f ImageFormat) IsStill() bool {
	return f == FormatPNG || f == FormatJPG
}

// Ext is the file extension without the dot.
func (f ImageFormat) Ext() string {
	return string(f)
}

// Dimensions are output pixel sizes. A zero side is derived from the other
// one and the source aspect ratio; both zero keeps the source size.
type Dimensions struct {
	Width  int
	Height int
}

// IsZero reports whether no size was requested.
func (d Dimensions) IsZero() bool {
	return d.Width <= 0 && d.Height <= 0
}

// LongestSide bounds the decoder's working resolution.
func (d Dimensions) LongestSide() int {
	return max(d.Width, d.Height, 0)
}

// TimePoint is a still to extract: the output file name and the media time.
type TimePoint struct {
	Filename string
	At       time.Duration
}

// TimeRange is an inclusive span of media time.
type TimeRange struct {
	In  time.Duration
	Out time.Duration
}

// Span is Out-In.
func (r TimeRange) Span() time.Duration {
	return r.Out - r.In
}

// FrameRequest is one time point tagged with its position in the batch.
// The tag travels with the decoded frame so results can arrive in any order.
type FrameRequest struct {
	Tag int
	At  time.Duration
}

// Frame is one result of a batch decode. Finished marks the last frame of
// the batch.
type Frame struct {
	Tag      int
	Image    image.Image
	Finished bool
	Err      error
}

// FrameSource decodes one image per request, asynchronously. The returned
// channel is closed once every request has been answered or ctx is done.
// maxSize, when positive, caps the longest side of decoded frames.
type FrameSource interface {
	GenerateFrames(ctx context.Context, source string, reqs []FrameRequest, maxSize int) (<-chan Frame, error)
}

// RangeSampler decodes every frame of a range at fps.
type RangeSampler interface {
	SampleRange(ctx context.Context, source string, r TimeRange, fps float64, maxSize int) ([]image.Image, error)
}

// EncodeOptions control still encoding. Quality applies to JPEG only and is
// in [0,1]; nil selects the codec default. ColorModel nil means sRGB.
type EncodeOptions struct {
	Format     ImageFormat
	Quality    *float64
	Dimensions Dimensions
	ColorModel color.Model
}

// ImageCodec encodes a still image.
type ImageCodec interface {
	Encode(w io.Writer, img image.Image, opts EncodeOptions) error
}

// AnimatedEncoder writes an animated image from a frame sequence.
type AnimatedEncoder interface {
	EncodeAnimated(w io.Writer, frames []image.Image, fps float64, dims Dimensions) error
}

// ImageFilter transforms a decoded frame before encoding. index is the
// position of the frame's time point in the conversion settings.
type ImageFilter func(img image.Image, index int) (image.Image, error)

// ConversionSettings describe one still extraction call.
type ConversionSettings struct {
	Source     string
	OutputDir  string
	TimePoints []TimePoint
	Format     ImageFormat
	JPGQuality *float64
	Dimensions Dimensions
	Filter     ImageFilter
}

func (s ConversionSettings) validate() error {
	if s.Source == "" {
		return fmt.Errorf("%w: no source media", ErrInvalidSettings)
	}
	if s.OutputDir == "" {
		return fmt.Errorf("%w: no output folder", ErrInvalidSettings)
	}
	if len(s.TimePoints) == 0 {
		return fmt.Errorf("%w: no time points", ErrInvalidSettings)
	}
	if !s.Format.IsStill() {
		return fmt.Errorf("%w: %q is not a still image format", ErrUnsupportedType, s.Format)
	}
	if s.JPGQuality != nil && (*s.JPGQuality < 0 || *s.JPGQuality > 1) {
		return fmt.Errorf("%w: JPEG quality %.2f out of range 0-1", ErrInvalidSettings, *s.JPGQuality)
	}
	if s.Dimensions.Width < 0 || s.Dimensions.Height < 0 {
		return fmt.Errorf("%w: negative dimensions", ErrInvalidSettings)
	}

	seen := make(map[string]struct{}, len(s.TimePoints))
	for _, tp := range s.TimePoints {
		if tp.Filename == "" {
			return fmt.Errorf("%w: empty output filename", ErrInvalidSettings)
		}
		if tp.At < 0 {
			return fmt.Errorf("%w: negative time for %s", ErrInvalidSettings, tp.Filename)
		}
		if _, dup := seen[tp.Filename]; dup {
			return fmt.Errorf("%w: output filename %s used twice", ErrInvalidSettings, tp.Filename)
		}
		seen[tp.Filename] = struct{}{}
	}
	return nil
}
