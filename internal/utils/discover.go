package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DiscoverImages expands args into image paths. Files are kept as given;
// directories contribute their supported images in lexical order, descending
// into subdirectories only when recursive is set.
func DiscoverImages(args []string, recursive bool) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if IsSupportedImage(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
	}
	return out, nil
}
