package video

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// MediaExtensions are the source media types searched for, without the dot
var MediaExtensions = []string{"mov", "mp4", "m4v", "mxf", "avi", "mts", "m2ts", "3gp"}

// IsMediaFile checks if the given file extension is one of known media file extensions
func IsMediaFile(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	ext = strings.ToLower(ext) // handle cases where extension is upper case

	return slices.Contains(MediaExtensions, ext)
}

// classifyProbeError turns an ffprobe failure into a readable error
func classifyProbeError(err error, output string) error {
	// Check for common corruption indicators
	if strings.Contains(output, "moov atom not found") {
		return fmt.Errorf("media file is corrupted (missing metadata): %s", extractFirstLine(output))
	}
	if strings.Contains(output, "Invalid data found") ||
		strings.Contains(output, "corrupt") ||
		strings.Contains(output, "truncated") ||
		strings.Contains(output, "Invalid argument") {
		return fmt.Errorf("media file is corrupted or invalid: %s", extractFirstLine(output))
	}

	// Return generic ffprobe error with output
	return fmt.Errorf("ffprobe error: %w\nOutput: %s", err, extractFirstLine(output))
}

// extractFirstLine extracts just the first line from a multi-line string
func extractFirstLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		return strings.TrimSpace(lines[0])
	}
	return "no additional information available"
}
