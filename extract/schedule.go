package extract

import (
	"time"
)

// Entry is a scheduled asset: the output file name and the marker's media time.
type Entry struct {
	Filename string
	At       time.Duration
}

// StillTimePoints returns one time point per entry in entry order.
func StillTimePoints(entries []Entry) []TimePoint {
	points := make([]TimePoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, TimePoint{Filename: e.Filename, At: max(e.At, 0)})
	}
	return points
}

// AnimatedRange centres span on position and clamps it to [0, duration].
// A zero duration means unknown and skips the upper clamp. If clamping
// leaves less than one frame, a one-frame range is returned instead.
func AnimatedRange(position, span, duration time.Duration, fps float64) TimeRange {
	half := span / 2
	r := TimeRange{
		In:  max(position-half, 0),
		Out: max(position+half, 0),
	}
	if duration > 0 {
		r.In = min(r.In, duration)
		r.Out = min(r.Out, duration)
	}

	frame := frameDuration(fps)
	if r.Span() >= frame {
		return r
	}

	r.Out = r.In + frame
	if duration > 0 && r.Out > duration {
		r.Out = duration
		r.In = max(duration-frame, 0)
	}
	return r
}

// AnimatedRanges schedules every entry in entry order.
func AnimatedRanges(entries []Entry, span, duration time.Duration, fps float64) []TimeRange {
	ranges := make([]TimeRange, 0, len(entries))
	for _, e := range entries {
		ranges = append(ranges, AnimatedRange(e.At, span, duration, fps))
	}
	return ranges
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return time.Millisecond
	}
	return max(time.Duration(float64(time.Second)/fps), time.Millisecond)
}
