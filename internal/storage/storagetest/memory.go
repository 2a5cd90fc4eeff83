// Package storagetest provides an in-memory storage.Storage for tests.
package storagetest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	cerrdefs "github.com/containerd/errdefs"

	"rpucella.net/goes-catalog/internal/storage"
)

// Memory is an in-process object store keyed by full path. Fetch writes to
// the local filesystem. It counts fetches per path and can be told to fail
// specific ones.
type Memory struct {
	protocol storage.Protocol

	mu      sync.Mutex
	objects map[string][]byte
	fail    map[string]error
	fetches map[string]int
	lists   int
}

func NewMemory(protocol storage.Protocol) *Memory {
	return &Memory{
		protocol: protocol,
		objects:  map[string][]byte{},
		fail:     map[string]error{},
		fetches:  map[string]int{},
	}
}

var _ storage.Storage = (*Memory)(nil)

func (m *Memory) Name() string {
	return fmt.Sprintf("memory::%s", m.protocol)
}

func (m *Memory) Protocol() storage.Protocol {
	return m.protocol
}

func (m *Memory) Put(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = data
}

// FailFetch makes every fetch of path return err.
func (m *Memory) FailFetch(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[path] = err
}

func (m *Memory) Fetches(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches[path]
}

func (m *Memory) TotalFetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.fetches {
		total += n
	}
	return total
}

// Lists returns the number of List calls served.
func (m *Memory) Lists() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}

func (m *Memory) entries(dir string) (files []string, dirs []string) {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	seen := map[string]bool{}
	for p := range m.objects {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok || rest == "" {
			continue
		}
		if sub, _, nested := strings.Cut(rest, "/"); nested {
			if !seen[sub] {
				seen[sub] = true
				dirs = append(dirs, sub)
			}
			continue
		}
		files = append(files, p)
	}
	sort.Strings(files)
	sort.Strings(dirs)
	return files, dirs
}

func (m *Memory) List(_ context.Context, dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	files, _ := m.entries(dir)
	return files, nil
}

func (m *Memory) Dirs(_ context.Context, dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, dirs := m.entries(dir)
	return dirs, nil
}

func (m *Memory) Stat(_ context.Context, path string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	if !ok {
		return 0, fmt.Errorf("stat %s: %w", path, cerrdefs.ErrNotFound)
	}
	return int64(len(data)), nil
}

func (m *Memory) Fetch(_ context.Context, path string, dest string) error {
	m.mu.Lock()
	m.fetches[path]++
	data, ok := m.objects[path]
	err := m.fail[path]
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("fetch %s: %w", path, cerrdefs.ErrNotFound)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("os.WriteFile: %w", err)
	}
	return nil
}
