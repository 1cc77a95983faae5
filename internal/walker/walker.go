package walker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileWalker traverses a directory tree and feeds matching files to a channel
type FileWalker struct {
	Extensions map[string]struct{}
	Excludes   []string
}

func NewFileWalker(exts []string, excludes []string) *FileWalker {
	e := make(map[string]struct{})
	for _, ext := range exts {
		e[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &FileWalker{
		Extensions: e,
		Excludes:   excludes,
	}
}

// Walk starts the traversal and returns a channel of file paths.
// It runs in a separate goroutine and closes both channels when done.
// A root that is a regular file is emitted as-is, whatever its extension.
func (fw *FileWalker) Walk(ctx context.Context, root string) (<-chan string, <-chan error) {
	paths := make(chan string, 100)
	errs := make(chan error, 1)

	go func() {
		defer close(paths)
		defer close(errs)

		if info, err := os.Stat(root); err == nil && info.Mode().IsRegular() {
			select {
			case paths <- root:
			case <-ctx.Done():
				errs <- ctx.Err()
			}
			return
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if d.IsDir() {
				if path == root {
					return nil
				}
				if fw.excluded(root, path, d.Name()) {
					return filepath.SkipDir
				}
				if strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir // .git, .venv, ...
				}
				return nil
			}

			if fw.excluded(root, path, d.Name()) || !fw.accepts(path) {
				return nil
			}
			select {
			case paths <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})

		if err != nil {
			errs <- err
		}
	}()

	return paths, errs
}

// excluded matches each pattern against the base name as a glob and against
// every path segment below root literally, so "vendor" skips any vendor
// directory inside the tree.
func (fw *FileWalker) excluded(root, path, name string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	segments := strings.Split(filepath.ToSlash(rel), "/")
	for _, exclude := range fw.Excludes {
		if matched, _ := filepath.Match(exclude, name); matched {
			return true
		}
		for _, seg := range segments {
			if seg == exclude {
				return true
			}
		}
	}
	return false
}

func (fw *FileWalker) accepts(path string) bool {
	if len(fw.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	_, ok := fw.Extensions[ext]
	return ok
}
