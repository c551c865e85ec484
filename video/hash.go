package video

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/corona10/goimagehash"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// CalculateImagePerceptualHash decodes an image file and calculates its perceptual hash
func CalculateImagePerceptualHash(path string) (*goimagehash.ImageHash, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = file.Close() }()

	// GIFs decode to their first frame here
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate perceptual hash: %w", err)
	}

	return hash, nil
}

// FindSimilarImages hashes every image in dir and returns the pairs whose
// hash distance is at most threshold, closest first.
func FindSimilarImages(dir string, threshold int) ([]SimilarPair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type hashed struct {
		path string
		hash *goimagehash.ImageHash
	}
	var images []hashed

	for _, e := range entries {
		if e.IsDir() || !slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		hash, err := CalculateImagePerceptualHash(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		images = append(images, hashed{path: path, hash: hash})
	}

	var pairs []SimilarPair
	for i := 0; i < len(images); i++ {
		for j := i + 1; j < len(images); j++ {
			distance, err := images[i].hash.Distance(images[j].hash)
			if err != nil {
				return nil, err
			}
			if distance <= threshold {
				pairs = append(pairs, SimilarPair{A: images[i].path, B: images[j].path, Distance: distance})
			}
		}
	}

	slices.SortStableFunc(pairs, func(a, b SimilarPair) int {
		return a.Distance - b.Distance
	})
	return pairs, nil
}
