package video

import "time"

// MediaInfo contains what the exporter needs to know about a source file
type MediaInfo struct {
	Duration  time.Duration
	HasVideo  bool
	Width     int
	Height    int
	FrameRate float64
	Codec     string
}

// SimilarPair is two images whose perceptual hashes are within the threshold
type SimilarPair struct {
	A        string
	B        string
	Distance int
}
