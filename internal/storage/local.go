package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

type LocalFileSystem struct{}

func NewLocalFileSystem() LocalFileSystem {
	return LocalFileSystem{}
}

func (s LocalFileSystem) Name() string {
	return "local"
}

func (s LocalFileSystem) Protocol() Protocol {
	return Local
}

func (s LocalFileSystem) readDir(dir string, wantDirs bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadDir: %w", err)
	}
	var result []string
	for _, e := range entries {
		switch {
		case wantDirs && e.IsDir():
			result = append(result, e.Name())
		case !wantDirs && e.Type().IsRegular():
			result = append(result, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(result)
	return result, nil
}

func (s LocalFileSystem) List(_ context.Context, dir string) ([]string, error) {
	return s.readDir(dir, false)
}

func (s LocalFileSystem) Dirs(_ context.Context, dir string) ([]string, error) {
	return s.readDir(dir, true)
}

func (s LocalFileSystem) Stat(_ context.Context, path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("os.Stat: %w", err)
	}
	return info.Size(), nil
}

func (s LocalFileSystem) Fetch(_ context.Context, path string, outputFileName string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("os.Open: %w", err)
	}
	defer src.Close()
	return copyToFile(outputFileName, src, nil)
}

// copyToFile writes r to outputFileName, creating its directory. wrap, when
// set, wraps the file writer. A failed copy leaves no file behind.
func copyToFile(outputFileName string, r io.Reader, wrap func(io.Writer) io.Writer) error {
	if err := os.MkdirAll(filepath.Dir(outputFileName), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}
	f, err := os.Create(outputFileName)
	if err != nil {
		return fmt.Errorf("os.Create: %w", err)
	}
	var w io.Writer = f
	if wrap != nil {
		w = wrap(f)
	}
	if _, err := io.Copy(w, r); err != nil {
		f.Close()
		os.Remove(outputFileName)
		return fmt.Errorf("io.Copy: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(outputFileName)
		return fmt.Errorf("f.Close: %w", err)
	}
	return nil
}
