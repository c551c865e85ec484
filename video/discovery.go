package video

import (
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// FindMedia looks for media files whose name starts with name in each search
// path (not recursively). Matches are returned sorted, search path order first.
func FindMedia(name string, searchPaths []string) ([]string, error) {
	var matches []string

	for _, dir := range searchPaths {
		var files []string
		var err error

		// Use fd if available for better performance, otherwise fall back to os.ReadDir
		if isFdAvailable() {
			files, err = findMediaWithFd(name, dir)
			if err != nil {
				// If fd fails, fall back to the standard method
				files, err = findMediaWithReadDir(name, dir)
			}
		} else {
			files, err = findMediaWithReadDir(name, dir)
		}
		if err != nil {
			return nil, err
		}

		slices.Sort(files)
		matches = append(matches, files...)
	}

	return matches, nil
}

// isFdAvailable checks if the 'fd' command is available in PATH
func isFdAvailable() bool {
	_, err := exec.LookPath("fd")
	return err == nil
}

func matchesMedia(name, path string) bool {
	return IsMediaFile(path) && strings.HasPrefix(filepath.Base(path), name)
}

// findMediaWithReadDir lists a single directory (fallback method)
func findMediaWithReadDir(name, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if matchesMedia(name, path) {
			files = append(files, path)
		}
	}
	return files, nil
}

// findMediaWithFd uses the 'fd' command to list candidate files
func findMediaWithFd(name, dir string) ([]string, error) {
	extPattern := `\.(` + strings.Join(MediaExtensions, "|") + `)$`

	cmd := exec.Command("fd", "--type", "f", "--max-depth", "1",
		"--ignore-case", "--no-ignore", "--hidden", extPattern, dir)
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	var files []string
	for _, line := range lines {
		if line == "" || !matchesMedia(name, line) {
			continue
		}
		// Report paths joined to the search path the way ReadDir does
		files = append(files, filepath.Join(dir, filepath.Base(line)))
	}

	return files, nil
}
