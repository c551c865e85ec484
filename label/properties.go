package label

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// HAlign is the horizontal placement of the label block
type HAlign string

// VAlign is the vertical placement of the label block
type VAlign string

const (
	AlignLeft   HAlign = "left"
	AlignCenter HAlign = "center"
	AlignRight  HAlign = "right"

	AlignTop    VAlign = "top"
	AlignMiddle VAlign = "center"
	AlignBottom VAlign = "bottom"
)

// ParseHAlign parses left, center or right.
func ParseHAlign(s string) (HAlign, error) {
	switch a := HAlign(strings.ToLower(s)); a {
	case AlignLeft, AlignCenter, AlignRight:
		return a, nil
	}
	return "", fmt.Errorf("unknown horizontal alignment %q", s)
}

// ParseVAlign parses top, center or bottom.
func ParseVAlign(s string) (VAlign, error) {
	switch a := VAlign(strings.ToLower(s)); a {
	case AlignTop, AlignMiddle, AlignBottom:
		return a, nil
	}
	return "", fmt.Errorf("unknown vertical alignment %q", s)
}

// Properties are the fixed rendering settings shared by every label of a run.
// StrokeWidth 0 picks a width from the font size; a negative width disables
// the stroke.
type Properties struct {
	FontName        string
	FontMaxSize     float64
	FontColor       color.NRGBA
	StrokeColor     color.NRGBA
	StrokeWidth     int
	AlignHorizontal HAlign
	AlignVertical   VAlign
}

// DefaultProperties returns white text with a black outline in the top left corner.
func DefaultProperties() Properties {
	return Properties{
		FontName:        "Go-Bold",
		FontMaxSize:     30,
		FontColor:       color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		StrokeColor:     color.NRGBA{A: 0xff},
		AlignHorizontal: AlignLeft,
		AlignVertical:   AlignTop,
	}
}

var builtinFonts = map[string][]byte{
	"go-regular": goregular.TTF,
	"go-bold":    gobold.TTF,
	"go-medium":  gomedium.TTF,
	"go-mono":    gomono.TTF,
}

// BuiltinFonts lists the font names that need no file on disk.
func BuiltinFonts() []string {
	return []string{"Go-Regular", "Go-Bold", "Go-Medium", "Go-Mono"}
}

// loadFont resolves a builtin font name or a path to a TrueType/OpenType file.
func loadFont(name string) (*opentype.Font, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
	if key == "" {
		key = "go-bold"
	}

	data, ok := builtinFonts[key]
	if !ok {
		var err error
		data, err = os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("font %q is neither builtin (%s) nor a readable file: %w",
				name, strings.Join(BuiltinFonts(), ", "), err)
		}
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %q: %w", name, err)
	}
	return f, nil
}

// ParseHexColor reads "#RGB" or "#RRGGBB" (the '#' is optional) and applies
// opacity in [0,1] as alpha.
func ParseHexColor(hex string, opacity float64) (color.NRGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", hex)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	if opacity < 0 || opacity > 1 {
		return color.NRGBA{}, fmt.Errorf("opacity %.2f out of range 0-1", opacity)
	}

	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: uint8(opacity*255 + 0.5),
	}, nil
}
