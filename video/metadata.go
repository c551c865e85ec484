package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Disposition  struct {
			AttachedPic int `json:"attached_pic"`
		} `json:"disposition"`
	} `json:"streams"`
}

// Probe reads duration, dimensions, frame rate and codec of a media file using ffprobe
func Probe(ctx context.Context, mediaFile string) (*MediaInfo, error) {
	// First check if file exists and is readable
	if _, err := os.Stat(mediaFile); err != nil {
		return nil, fmt.Errorf("file not accessible: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-print_format", "json",
		"-show_format", "-show_streams", "--", mediaFile)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, classifyProbeError(err, stderr.String())
	}

	return parseProbeOutput(output)
}

func parseProbeOutput(data []byte) (*MediaInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &MediaInfo{}
	if out.Format.Duration != "" {
		secs, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = time.Duration(secs * float64(time.Second))
	}

	// The first video stream wins; cover art is reported as a video stream too
	for _, s := range out.Streams {
		if s.CodecType != "video" || s.Width == 0 || s.Height == 0 || s.Disposition.AttachedPic == 1 {
			continue
		}
		rate := parseRational(s.AvgFrameRate)
		if rate == 0 {
			rate = parseRational(s.RFrameRate)
		}
		info.HasVideo = true
		info.Width = s.Width
		info.Height = s.Height
		info.FrameRate = rate
		info.Codec = s.CodecName
		break
	}

	return info, nil
}

// parseRational reads ffprobe's "30000/1001" form, returning 0 for "0/0" or junk.
func parseRational(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// ScaledDimensions returns the source size scaled by percent, rounded to even
// numbers as most encoders require.
func (m *MediaInfo) ScaledDimensions(percent int) (width, height int) {
	if m == nil || !m.HasVideo || percent <= 0 {
		return 0, 0
	}
	width = even(m.Width * percent / 100)
	height = even(m.Height * percent / 100)
	return width, height
}

func even(n int) int {
	if n%2 != 0 {
		n--
	}
	return max(n, 2)
}
