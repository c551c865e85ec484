package video

import (
	"errors"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"math"

	"github.com/lepinkainen/markers-extractor/extract"
)

// GIFEncoder writes looping animated GIFs.
type GIFEncoder struct{}

// EncodeAnimated implements extract.AnimatedEncoder.
func (GIFEncoder) EncodeAnimated(w io.Writer, frames []image.Image, fps float64, dims extract.Dimensions) error {
	if len(frames) == 0 {
		return errors.New("no frames to encode")
	}

	anim := &gif.GIF{LoopCount: 0}
	delay := gifDelay(fps)

	for _, frame := range frames {
		frame = Fit(frame, dims)
		b := frame.Bounds()
		paletted := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, paletted.Bounds(), frame, b.Min)

		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, delay)
	}

	return gif.EncodeAll(w, anim)
}

// gifDelay converts fps to the per-frame delay in hundredths of a second.
// Browsers clamp delays below 2 so that is the floor.
func gifDelay(fps float64) int {
	if fps <= 0 {
		return 10
	}
	return max(int(math.Round(100/fps)), 2)
}
