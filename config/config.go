// Package config loads export settings from defaults, an optional YAML file
// and MARKERS_ environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/markers-extractor/extract"
	"github.com/lepinkainen/markers-extractor/label"
	"github.com/lepinkainen/markers-extractor/marker"
	"github.com/lepinkainen/markers-extractor/profile"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "MARKERS_"

// Settings holds everything an export needs besides its inputs.
type Settings struct {
	Profile          string   `yaml:"profile"            env:"PROFILE"`
	IDMode           string   `yaml:"id_mode"            env:"ID_MODE"`
	MediaSearchPaths []string `yaml:"media_search_paths" env:"MEDIA_SEARCH_PATHS" envSeparator:":"`
	Workers          int      `yaml:"workers"            env:"WORKERS"`
	DoneFilename     string   `yaml:"done_filename"      env:"DONE_FILENAME"`

	Image ImageSettings `yaml:"image" envPrefix:"IMAGE_"`
	GIF   GIFSettings   `yaml:"gif"   envPrefix:"GIF_"`
	Label LabelSettings `yaml:"label" envPrefix:"LABEL_"`
}

// ImageSettings controls the generated assets.
type ImageSettings struct {
	Format      string `yaml:"format"       env:"FORMAT"`
	Quality     int    `yaml:"quality"      env:"QUALITY"`
	Width       int    `yaml:"width"        env:"WIDTH"`
	Height      int    `yaml:"height"       env:"HEIGHT"`
	SizePercent int    `yaml:"size_percent" env:"SIZE_PERCENT"`
}

// GIFSettings controls animated assets.
type GIFSettings struct {
	FPS  float64 `yaml:"fps"  env:"FPS"`
	Span float64 `yaml:"span" env:"SPAN"` // seconds around the marker
}

// LabelSettings controls the text burned into assets.
type LabelSettings struct {
	Fields          []string `yaml:"fields"           env:"FIELDS" envSeparator:","`
	Copyright       string   `yaml:"copyright"        env:"COPYRIGHT"`
	Font            string   `yaml:"font"             env:"FONT"`
	FontMaxSize     float64  `yaml:"font_max_size"    env:"FONT_MAX_SIZE"`
	FontColor       string   `yaml:"font_color"       env:"FONT_COLOR"`
	FontOpacity     int      `yaml:"font_opacity"     env:"FONT_OPACITY"`
	StrokeColor     string   `yaml:"stroke_color"     env:"STROKE_COLOR"`
	StrokeWidth     int      `yaml:"stroke_width"     env:"STROKE_WIDTH"`
	AlignHorizontal string   `yaml:"align_horizontal" env:"ALIGN_HORIZONTAL"`
	AlignVertical   string   `yaml:"align_vertical"   env:"ALIGN_VERTICAL"`
	HideNames       bool     `yaml:"hide_names"       env:"HIDE_NAMES"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Profile:      "csv",
		IDMode:       string(marker.IDModeProjectTimecode),
		DoneFilename: "done.json",
		Image: ImageSettings{
			Format:      string(extract.FormatPNG),
			Quality:     85,
			SizePercent: 100,
		},
		GIF: GIFSettings{
			FPS:  10,
			Span: 2,
		},
		Label: LabelSettings{
			Font:            "go-bold",
			FontMaxSize:     30,
			FontColor:       "#FFFFFF",
			FontOpacity:     100,
			StrokeColor:     "#000000",
			AlignHorizontal: string(label.AlignLeft),
			AlignVertical:   string(label.AlignTop),
		},
	}
}

// Load builds settings from defaults, the YAML file at path (if any) and the
// environment. A missing file is an error only when path was given.
func Load(path string) (*Settings, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return cfg, nil
}

// Validate checks ranges and names. All problems are reported together.
func (s *Settings) Validate() error {
	var errs []error
	check := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	_, err := profile.ByName(s.Profile, profile.Config{}, nil)
	check(err)
	_, err = marker.ParseIDMode(s.IDMode)
	check(err)
	_, err = extract.ParseImageFormat(s.Image.Format)
	check(err)

	if s.Image.Quality < 0 || s.Image.Quality > 100 {
		check(fmt.Errorf("image quality must be 0-100, got %d", s.Image.Quality))
	}
	if s.Image.Width < 0 || s.Image.Height < 0 {
		check(errors.New("image dimensions must not be negative"))
	}
	if s.Image.SizePercent < 1 || s.Image.SizePercent > 100 {
		check(fmt.Errorf("image size percent must be 1-100, got %d", s.Image.SizePercent))
	}
	if s.GIF.FPS <= 0 {
		check(fmt.Errorf("gif fps must be positive, got %v", s.GIF.FPS))
	}
	if s.GIF.Span <= 0 {
		check(fmt.Errorf("gif span must be positive, got %v", s.GIF.Span))
	}
	if s.Workers < 0 {
		check(fmt.Errorf("workers must not be negative, got %d", s.Workers))
	}

	if s.Label.FontOpacity < 0 || s.Label.FontOpacity > 100 {
		check(fmt.Errorf("label opacity must be 0-100, got %d", s.Label.FontOpacity))
	}
	if s.Label.FontMaxSize <= 0 {
		check(fmt.Errorf("label font size must be positive, got %v", s.Label.FontMaxSize))
	}
	_, err = profile.ParseFields(s.Label.Fields)
	check(err)
	_, err = label.ParseHAlign(s.Label.AlignHorizontal)
	check(err)
	_, err = label.ParseVAlign(s.Label.AlignVertical)
	check(err)
	if strings.TrimSpace(s.DoneFilename) == "" {
		check(errors.New("done filename must not be empty"))
	}

	return errors.Join(errs...)
}

// LabelProperties converts the label settings for the labeler.
func (s *Settings) LabelProperties() (label.Properties, error) {
	props := label.DefaultProperties()
	opacity := float64(s.Label.FontOpacity) / 100

	var err error
	if props.FontColor, err = label.ParseHexColor(s.Label.FontColor, opacity); err != nil {
		return props, fmt.Errorf("invalid font color: %w", err)
	}
	if props.StrokeColor, err = label.ParseHexColor(s.Label.StrokeColor, opacity); err != nil {
		return props, fmt.Errorf("invalid stroke color: %w", err)
	}
	if props.AlignHorizontal, err = label.ParseHAlign(s.Label.AlignHorizontal); err != nil {
		return props, err
	}
	if props.AlignVertical, err = label.ParseVAlign(s.Label.AlignVertical); err != nil {
		return props, err
	}
	props.FontName = s.Label.Font
	props.FontMaxSize = s.Label.FontMaxSize
	props.StrokeWidth = s.Label.StrokeWidth
	return props, nil
}
