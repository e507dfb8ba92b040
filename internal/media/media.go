package media

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// File is a candidate recording found on disk.
type File struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Ext  string `json:"ext"`
	Size int64  `json:"size"`
}

// Key is the file name without its extension.
func (f File) Key() string {
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

// FromPath describes path without touching the filesystem. Size is left at 0.
func FromPath(path string) File {
	name := filepath.Base(path)

	return File{
		Path: path,
		Name: name,
		Ext:  strings.ToLower(filepath.Ext(name)),
	}
}

// FromPaths is FromPath over a list, keeping its order.
func FromPaths(paths []string) []File {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		files = append(files, FromPath(p))
	}

	return files
}

// Scan walks root and returns every regular file whose extension is in exts,
// compared case-insensitively, sorted by path. Hidden files and directories
// are skipped. Only DirEntry.Info is read, never file contents.
func Scan(root string, exts []string) ([]File, error) {
	root = filepath.Clean(root)

	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}

		allowed[e] = true
	}

	files := make([]File, 0, 128)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		f := FromPath(path)
		if !allowed[f.Ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		f.Size = info.Size()
		files = append(files, f)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	slices.SortFunc(files, func(a, b File) int { return strings.Compare(a.Path, b.Path) })

	return files, nil
}
