// Package timecode implements frame-accurate SMPTE timecode values anchored to a frame rate.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FrameRate is a rational frame rate. Drop marks drop-frame counting,
// which is only valid for the 29.97 and 59.94 families.
type FrameRate struct {
	Num  int64
	Den  int64
	Drop bool
}

// Common frame rates
var (
	FPS23976    = FrameRate{Num: 24000, Den: 1001}
	FPS24       = FrameRate{Num: 24, Den: 1}
	FPS25       = FrameRate{Num: 25, Den: 1}
	FPS2997     = FrameRate{Num: 30000, Den: 1001}
	FPS2997Drop = FrameRate{Num: 30000, Den: 1001, Drop: true}
	FPS30       = FrameRate{Num: 30, Den: 1}
	FPS50       = FrameRate{Num: 50, Den: 1}
	FPS5994     = FrameRate{Num: 60000, Den: 1001}
	FPS5994Drop = FrameRate{Num: 60000, Den: 1001, Drop: true}
	FPS60       = FrameRate{Num: 60, Den: 1}
)

var namedRates = map[string]FrameRate{
	"23.976":  FPS23976,
	"23.98":   FPS23976,
	"24":      FPS24,
	"25":      FPS25,
	"29.97":   FPS2997,
	"29.97df": FPS2997Drop,
	"30":      FPS30,
	"50":      FPS50,
	"59.94":   FPS5994,
	"59.94df": FPS5994Drop,
	"60":      FPS60,
}

// ParseFrameRate accepts the usual editorial spellings ("24", "29.97", "29.97df")
// as well as rationals ("30000/1001").
func ParseFrameRate(s string) (FrameRate, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if r, ok := namedRates[key]; ok {
		return r, nil
	}

	if num, den, ok := strings.Cut(key, "/"); ok {
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			return FrameRate{}, fmt.Errorf("invalid frame rate %q: %w", s, err)
		}
		d, err := strconv.ParseInt(den, 10, 64)
		if err != nil {
			return FrameRate{}, fmt.Errorf("invalid frame rate %q: %w", s, err)
		}
		r := FrameRate{Num: n, Den: d}
		if err := r.Validate(); err != nil {
			return FrameRate{}, err
		}
		return r, nil
	}

	fps, err := strconv.ParseFloat(key, 64)
	if err != nil {
		return FrameRate{}, fmt.Errorf("invalid frame rate %q: %w", s, err)
	}
	if fps <= 0 || math.IsInf(fps, 0) || math.IsNaN(fps) {
		return FrameRate{}, fmt.Errorf("invalid frame rate %q: must be positive", s)
	}
	if fps == math.Trunc(fps) {
		return FrameRate{Num: int64(fps), Den: 1}, nil
	}
	// NTSC-style rates are the only fractional rates seen in practice
	nominal := math.Round(fps)
	if math.Abs(fps-nominal*1000/1001) < 0.01 {
		return FrameRate{Num: int64(nominal) * 1000, Den: 1001}, nil
	}
	return FrameRate{}, fmt.Errorf("unsupported frame rate %q", s)
}

// Validate reports whether the rate can anchor a timecode.
func (r FrameRate) Validate() error {
	if r.Num <= 0 || r.Den <= 0 {
		return fmt.Errorf("invalid frame rate %d/%d", r.Num, r.Den)
	}
	if r.Drop && r.dropFrames() == 0 {
		return fmt.Errorf("drop-frame is not defined for %s fps", r)
	}
	return nil
}

// FPS returns the real frames-per-second value.
func (r FrameRate) FPS() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Nominal returns the integer frame count per timecode second (30 for 29.97).
func (r FrameRate) Nominal() int64 {
	return int64(math.Round(r.FPS()))
}

// FrameDuration is the real-time length of one frame.
func (r FrameRate) FrameDuration() time.Duration {
	if r.Num <= 0 {
		return 0
	}
	return time.Duration(r.Den * int64(time.Second) / r.Num)
}

func (r FrameRate) String() string {
	var s string
	if r.Den == 1 {
		s = strconv.FormatInt(r.Num, 10)
	} else {
		s = strconv.FormatFloat(r.FPS(), 'f', 3, 64)
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if r.Drop {
		s += "df"
	}
	return s
}

// dropFrames is the number of frame numbers skipped each minute (except every tenth).
func (r FrameRate) dropFrames() int64 {
	if r.Den != 1001 {
		return 0
	}
	switch r.Nominal() {
	case 30:
		return 2
	case 60:
		return 4
	default:
		return 0
	}
}

// Timecode is a frame count from 00:00:00:00 at a given rate.
type Timecode struct {
	Frames int64
	Rate   FrameRate
}

// New builds a timecode from display components.
func New(h, m, s, f int, rate FrameRate) (Timecode, error) {
	if err := rate.Validate(); err != nil {
		return Timecode{}, err
	}
	nominal := rate.Nominal()
	if h < 0 || m < 0 || m > 59 || s < 0 || s > 59 || f < 0 || int64(f) >= nominal {
		return Timecode{}, fmt.Errorf("timecode %02d:%02d:%02d:%02d out of range at %s fps", h, m, s, f, rate)
	}

	frames := (int64(h)*3600+int64(m)*60+int64(s))*nominal + int64(f)
	if rate.Drop {
		drop := rate.dropFrames()
		if s == 0 && m%10 != 0 && int64(f) < drop {
			return Timecode{}, fmt.Errorf("timecode %02d:%02d:%02d;%02d does not exist in drop-frame", h, m, s, f)
		}
		totalMinutes := int64(h)*60 + int64(m)
		frames -= drop * (totalMinutes - totalMinutes/10)
	}
	return Timecode{Frames: frames, Rate: rate}, nil
}

// Parse reads "HH:MM:SS:FF" (or "HH:MM:SS;FF" for drop-frame).
func Parse(s string, rate FrameRate) (Timecode, error) {
	normalized := strings.NewReplacer(";", ":", ".", ":").Replace(strings.TrimSpace(s))
	parts := strings.Split(normalized, ":")
	if len(parts) != 4 {
		return Timecode{}, fmt.Errorf("invalid timecode %q: expected HH:MM:SS:FF", s)
	}

	var c [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Timecode{}, fmt.Errorf("invalid timecode %q: %w", s, err)
		}
		c[i] = n
	}
	return New(c[0], c[1], c[2], c[3], rate)
}

// FromDuration converts real time to the nearest frame at rate.
func FromDuration(d time.Duration, rate FrameRate) Timecode {
	frames := int64(math.Round(d.Seconds() * rate.FPS()))
	if frames < 0 {
		frames = 0
	}
	return Timecode{Frames: frames, Rate: rate}
}

// Components returns the display hours, minutes, seconds and frames.
func (t Timecode) Components() (h, m, s, f int) {
	nominal := t.Rate.Nominal()
	if nominal <= 0 {
		return 0, 0, 0, 0
	}

	n := t.Frames
	if t.Rate.Drop {
		drop := t.Rate.dropFrames()
		framesPerMinute := nominal*60 - drop
		framesPer10Minutes := nominal*600 - drop*9
		tens := n / framesPer10Minutes
		rem := n % framesPer10Minutes
		if rem > drop {
			n += drop*9*tens + drop*((rem-drop)/framesPerMinute)
		} else {
			n += drop * 9 * tens
		}
	}

	f = int(n % nominal)
	totalSeconds := n / nominal
	s = int(totalSeconds % 60)
	m = int((totalSeconds / 60) % 60)
	h = int(totalSeconds / 3600)
	return h, m, s, f
}

// String formats as HH:MM:SS:FF, using ';' before the frames for drop-frame.
func (t Timecode) String() string {
	h, m, s, f := t.Components()
	sep := ":"
	if t.Rate.Drop {
		sep = ";"
	}
	return fmt.Sprintf("%02d:%02d:%02d%s%02d", h, m, s, sep, f)
}

// FilenameString formats as HH-MM-SS-FF, safe for use in file names.
func (t Timecode) FilenameString() string {
	h, m, s, f := t.Components()
	return fmt.Sprintf("%02d-%02d-%02d-%02d", h, m, s, f)
}

// Duration returns the real elapsed time from zero.
func (t Timecode) Duration() time.Duration {
	if t.Rate.Num <= 0 {
		return 0
	}
	scaled := t.Frames * t.Rate.Den
	secs := scaled / t.Rate.Num
	rem := scaled % t.Rate.Num
	return time.Duration(secs)*time.Second + time.Duration(rem*int64(time.Second)/t.Rate.Num)
}

// Sub returns t-o in t's rate, clamped at zero.
func (t Timecode) Sub(o Timecode) Timecode {
	if o.Rate != t.Rate {
		o = FromDuration(o.Duration(), t.Rate)
	}
	frames := t.Frames - o.Frames
	if frames < 0 {
		frames = 0
	}
	return Timecode{Frames: frames, Rate: t.Rate}
}

// Compare orders timecodes by real time, so mixed rates still sort sensibly.
func (t Timecode) Compare(o Timecode) int {
	a, b := t.Duration(), o.Duration()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
