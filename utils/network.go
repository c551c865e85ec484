package utils

import (
	"path/filepath"
	"runtime"
	"strings"
)

var networkMountPrefixes = []string{
	"/mnt/",     // Linux NFS/SMB mounts
	"/media/",   // Linux removable/network media
	"/Volumes/", // macOS network volumes
}

var networkIndicators = []string{"nfs", "cifs", "smb", "webdav", "ftp", "sftp"}

// IsNetworkDrive guesses whether a path lives on a network mount
func IsNetworkDrive(filePath string) bool {
	// UNC paths, checked before Abs rewrites them
	if strings.HasPrefix(filePath, "//") || strings.HasPrefix(filePath, `\\`) {
		return true
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return false
	}

	for _, prefix := range networkMountPrefixes {
		if strings.HasPrefix(absPath, prefix) {
			return true
		}
	}

	lowerPath := strings.ToLower(absPath)
	for _, indicator := range networkIndicators {
		if strings.Contains(lowerPath, indicator) {
			return true
		}
	}
	return false
}

// DefaultWorkers picks the decode concurrency for media at paths: a single
// worker when any of them is on a network drive, otherwise one per CPU.
func DefaultWorkers(paths ...string) int {
	for _, p := range paths {
		if IsNetworkDrive(p) {
			return 1
		}
	}
	return runtime.NumCPU()
}
