package video

import (
	"context"
	"image"
	"image/color"
	"image/draw"

	"github.com/lepinkainen/markers-extractor/extract"
)

// PlaceholderSource answers every request with a solid frame. It stands in
// for ffmpeg when the media has no video stream.
type PlaceholderSource struct {
	Width  int
	Height int
	Color  color.Color
}

// NewPlaceholderSource returns a dark grey 1280x720 source.
func NewPlaceholderSource() *PlaceholderSource {
	return &PlaceholderSource{Width: 1280, Height: 720, Color: color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}}
}

// GenerateFrames implements extract.FrameSource.
func (p *PlaceholderSource) GenerateFrames(ctx context.Context, source string, reqs []extract.FrameRequest, maxSize int) (<-chan extract.Frame, error) {
	out := make(chan extract.Frame)
	go func() {
		defer close(out)
		for i, req := range reqs {
			frame := extract.Frame{Tag: req.Tag, Image: p.frame(maxSize), Finished: i == len(reqs)-1}
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (p *PlaceholderSource) frame(maxSize int) image.Image {
	w, h := p.Width, p.Height
	if maxSize > 0 && max(w, h) > maxSize {
		if w >= h {
			h = max(h*maxSize/w, 1)
			w = maxSize
		} else {
			w = max(w*maxSize/h, 1)
			h = maxSize
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(p.Color), image.Point{}, draw.Src)
	return img
}
