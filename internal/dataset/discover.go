// Package dataset provides the endless stream of real training images.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoImages is returned when a directory holds no decodable image files.
var ErrNoImages = errors.New("no images found")

var imageExtensions = map[string]bool{
	".bmp":  true,
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// Discover returns the paths of image files beneath root, sorted.
func Discover(root string) ([]string, error) {
	entries := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if imageExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			entries = append(entries, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover images: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("discover images in %s: %w", root, ErrNoImages)
	}
	sort.Strings(entries)
	return entries, nil
}
