package exporter

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lepinkainen/markers-extractor/utils"
	"github.com/lepinkainen/markers-extractor/video"
)

const destinationTimeLayout = "2006-01-02 15-04-05"

// ErrDestinationExists is returned when the export folder is already there.
var ErrDestinationExists = errors.New("destination already exists")

// DestinationName is "<project> <yyyy-MM-dd HH-mm-ss>".
func DestinationName(project string, t time.Time) string {
	name := utils.SanitizeFilename(project, 150)
	if name == "" {
		name = "markers"
	}
	return name + " " + t.Format(destinationTimeLayout)
}

// MakeDestination creates a fresh export folder under outputDir.
func MakeDestination(outputDir, project string, t time.Time) (string, error) {
	info, err := os.Stat(outputDir)
	if err != nil {
		return "", fmt.Errorf("output folder: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output folder %s is not a directory", outputDir)
	}

	dest := filepath.Join(outputDir, DestinationName(project, t))
	if err := os.Mkdir(dest, 0755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrDestinationExists, dest)
		}
		return "", fmt.Errorf("failed to create destination: %w", err)
	}
	return dest, nil
}

// WriteDoneFile writes the done marker consumed by automation.
func WriteDoneFile(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write done file: %w", err)
	}
	return nil
}

// ResolveMedia finds the media file for a project by name prefix. The first
// match wins.
func ResolveMedia(name string, searchPaths []string, logger *zap.Logger) (string, error) {
	matches, err := video.FindMedia(name, searchPaths)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no media file for %q found in %s", name, strings.Join(searchPaths, ", "))
	}
	if len(matches) > 1 {
		logger.Info("Found more than one media file, using the first",
			zap.String("chosen", matches[0]),
			zap.Strings("candidates", matches))
	}
	return matches[0], nil
}

// Bundle zips every regular file in dir, flat, into outputPath.
func Bundle(ctx context.Context, dir, outputPath string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read export folder: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	zipFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create zip file: %w", err)
	}
	defer zipFile.Close()

	zw := zip.NewWriter(zipFile)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			zw.Close()
			os.Remove(outputPath)
			return err
		}
		if err := addToZip(zw, path); err != nil {
			zw.Close()
			os.Remove(outputPath)
			return fmt.Errorf("add %s to zip: %w", filepath.Base(path), err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip file: %w", err)
	}
	return zipFile.Close()
}

func addToZip(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(path)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
