package utils

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// RequireTools checks that every named executable is on PATH and reports all
// missing ones at once.
func RequireTools(tools ...string) error {
	var missing []string
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%s not found in PATH. %s", strings.Join(missing, " and "), getInstallationInstructions())
}

// ValidateFFmpegDependencies checks for the ffprobe and ffmpeg binaries the
// frame extraction needs.
func ValidateFFmpegDependencies() error {
	return RequireTools("ffprobe", "ffmpeg")
}

// getInstallationInstructions returns platform-specific installation instructions
func getInstallationInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install ffmpeg"
	case "linux":
		return "Install with: apt-get install ffmpeg (Ubuntu/Debian) or yum install ffmpeg (CentOS/RHEL)"
	case "windows":
		return "Download from https://ffmpeg.org/download.html and add to PATH"
	default:
		return "Download from https://ffmpeg.org/download.html"
	}
}
