package video

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/nfnt/resize"

	"github.com/lepinkainen/markers-extractor/extract"
)

// DefaultJPEGQuality is used when no quality is requested
const DefaultJPEGQuality = 0.85

// Codec encodes stills as PNG or JPEG after fitting them to the requested size.
type Codec struct{}

// Encode implements extract.ImageCodec.
func (Codec) Encode(w io.Writer, img image.Image, opts extract.EncodeOptions) error {
	img = Fit(img, opts.Dimensions)
	img = convertColor(img, opts.ColorModel)

	switch opts.Format {
	case extract.FormatPNG:
		return png.Encode(w, img)
	case extract.FormatJPG:
		quality := DefaultJPEGQuality
		if opts.Quality != nil {
			quality = *opts.Quality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality(quality)})
	default:
		return fmt.Errorf("%w: %q", extract.ErrUnsupportedType, opts.Format)
	}
}

// jpegQuality maps [0,1] onto the encoder's 1-100 scale.
func jpegQuality(q float64) int {
	return min(max(int(math.Round(q*100)), 1), 100)
}

// Fit resizes img to dims. A zero side keeps the aspect ratio; both zero
// leaves the image untouched.
func Fit(img image.Image, dims extract.Dimensions) image.Image {
	if dims.IsZero() {
		return img
	}
	b := img.Bounds()
	w, h := max(dims.Width, 0), max(dims.Height, 0)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
}

// convertColor keeps any colour model the encoders handle natively, so a
// label drawn in colour onto a gray frame survives. Other models are drawn
// into the source's gray model when the frame was gray, else sRGB RGBA.
func convertColor(img image.Image, source color.Model) image.Image {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model,
		color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model, color.YCbCrModel:
		return img
	}

	switch source {
	case color.GrayModel:
		return drawInto(image.NewGray(img.Bounds()), img)
	case color.Gray16Model:
		return drawInto(image.NewGray16(img.Bounds()), img)
	}
	return drawInto(image.NewRGBA(img.Bounds()), img)
}

func drawInto(dst draw.Image, src image.Image) image.Image {
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}
