// Package label burns text labels into exported frames.
package label

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrLabelsDepleted means more frames asked for a label than labels exist.
var ErrLabelsDepleted = errors.New("image labels depleted before images")

const minFontSize = 6

// Labeler holds one label per exported asset and a cursor over them.
// Rendering never modifies the input image.
type Labeler struct {
	mu     sync.Mutex
	labels []string
	cursor int
	props  Properties
	font   *opentype.Font
}

// New prepares a labeler; the cursor sits before the first label until Advance.
func New(labels []string, props Properties) (*Labeler, error) {
	if props.FontMaxSize <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %.1f", props.FontMaxSize)
	}
	f, err := loadFont(props.FontName)
	if err != nil {
		return nil, err
	}
	return &Labeler{
		labels: labels,
		cursor: -1,
		props:  props,
		font:   f,
	}, nil
}

// Len is the number of labels.
func (l *Labeler) Len() int {
	return len(l.labels)
}

// Advance moves to the next label.
func (l *Labeler) Advance() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cursor+1 >= len(l.labels) {
		return ErrLabelsDepleted
	}
	l.cursor++
	return nil
}

// Current returns the label under the cursor.
func (l *Labeler) Current() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cursor < 0 || l.cursor >= len(l.labels) {
		return "", ErrLabelsDepleted
	}
	return l.labels[l.cursor], nil
}

// RenderOnto draws the current label onto a copy of img.
func (l *Labeler) RenderOnto(img image.Image) (image.Image, error) {
	text, err := l.Current()
	if err != nil {
		return nil, err
	}
	return l.render(img, text)
}

// RenderAt draws the label at index onto a copy of img, leaving the cursor alone.
func (l *Labeler) RenderAt(img image.Image, index int) (image.Image, error) {
	if index < 0 || index >= len(l.labels) {
		return nil, ErrLabelsDepleted
	}
	return l.render(img, l.labels[index])
}

func (l *Labeler) render(img image.Image, text string) (image.Image, error) {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if text == "" || b.Dx() == 0 || b.Dy() == 0 {
		return dst, nil
	}

	padding := max(4, b.Dx()/50)
	face, err := l.fitFace(lines, b.Dx()-2*padding, b.Dy()-2*padding)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	blockHeight := lineHeight * len(lines)

	var top int
	switch l.props.AlignVertical {
	case AlignBottom:
		top = b.Dy() - padding - blockHeight
	case AlignMiddle:
		top = (b.Dy() - blockHeight) / 2
	default:
		top = padding
	}

	stroke := l.strokeWidth(metrics.Height.Ceil())
	fill := &font.Drawer{Dst: dst, Src: image.NewUniform(l.props.FontColor), Face: face}
	outline := &font.Drawer{Dst: dst, Src: image.NewUniform(l.props.StrokeColor), Face: face}

	for i, line := range lines {
		width := font.MeasureString(face, line).Ceil()
		var x int
		switch l.props.AlignHorizontal {
		case AlignRight:
			x = b.Dx() - padding - width
		case AlignCenter:
			x = (b.Dx() - width) / 2
		default:
			x = padding
		}
		y := top + i*lineHeight + metrics.Ascent.Ceil()

		if stroke > 0 && l.props.StrokeColor.A > 0 {
			for dy := -stroke; dy <= stroke; dy++ {
				for dx := -stroke; dx <= stroke; dx++ {
					if dx*dx+dy*dy > stroke*stroke || (dx == 0 && dy == 0) {
						continue
					}
					outline.Dot = fixed.P(x+dx, y+dy)
					outline.DrawString(line)
				}
			}
		}
		fill.Dot = fixed.P(x, y)
		fill.DrawString(line)
	}

	return dst, nil
}

// fitFace shrinks from the configured maximum size until every line fits.
func (l *Labeler) fitFace(lines []string, maxWidth, maxHeight int) (font.Face, error) {
	size := l.props.FontMaxSize
	for {
		face, err := opentype.NewFace(l.font, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create font face: %w", err)
		}
		if size <= minFontSize || fits(face, lines, maxWidth, maxHeight) {
			return face, nil
		}
		face.Close()
		size = max(minFontSize, size*0.9)
	}
}

func fits(face font.Face, lines []string, maxWidth, maxHeight int) bool {
	if face.Metrics().Height.Ceil()*len(lines) > maxHeight {
		return false
	}
	for _, line := range lines {
		if font.MeasureString(face, line).Ceil() > maxWidth {
			return false
		}
	}
	return true
}

func (l *Labeler) strokeWidth(lineHeight int) int {
	switch {
	case l.props.StrokeWidth < 0:
		return 0
	case l.props.StrokeWidth > 0:
		return l.props.StrokeWidth
	default:
		return max(1, lineHeight/15)
	}
}

// Pair is one labelled field.
type Pair struct {
	Name  string
	Value string
}

// Text builds a label: one "Name: value" line per pair (just the value when
// hideNames is set) followed by the copyright line when present.
func Text(pairs []Pair, hideNames bool, copyright string) string {
	lines := make([]string, 0, len(pairs)+1)
	for _, p := range pairs {
		if hideNames {
			lines = append(lines, p.Value)
		} else {
			lines = append(lines, p.Name+": "+p.Value)
		}
	}
	if copyright != "" {
		lines = append(lines, copyright)
	}
	return strings.Join(lines, "\n")
}
