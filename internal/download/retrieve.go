// Package download fetches catalog files from a bucket to local disk.
package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"rpucella.net/goes-catalog/internal/errdefs"
	"rpucella.net/goes-catalog/internal/metrics"
	"rpucella.net/goes-catalog/internal/storage"
)

const (
	DefaultConcurrency = 20
	MaxConcurrency     = 50
)

// Transfer maps a remote object to its local destination.
type Transfer struct {
	Remote string
	Local  string
}

type Options struct {
	// Concurrency is the worker pool size, clamped to [1, MaxConcurrency].
	// Zero means DefaultConcurrency.
	Concurrency int
	// Force fetches files that already exist locally.
	Force bool
	// CheckIntegrity compares local and remote sizes once fetching is done.
	CheckIntegrity bool
}

func (o Options) workers() int {
	n := o.Concurrency
	if n == 0 {
		n = DefaultConcurrency
	}
	return min(max(n, 1), MaxConcurrency)
}

type Failure struct {
	Remote string
	Err    error
}

// Result lists local paths by outcome. A corrupted file that was fetched
// again is listed in both Corrupted and Fetched.
type Result struct {
	RunID     string
	Fetched   []string
	Skipped   []string
	Corrupted []string
	Failed    []Failure
}

// Local returns the local paths present once the run is done.
func (r Result) Local() []string {
	out := append(append([]string(nil), r.Fetched...), r.Skipped...)
	sort.Strings(out)
	return out
}

func (r *Result) merge(o Result) {
	r.Fetched = append(r.Fetched, o.Fetched...)
	r.Skipped = append(r.Skipped, o.Skipped...)
	r.Corrupted = append(r.Corrupted, o.Corrupted...)
	r.Failed = append(r.Failed, o.Failed...)
}

func (r *Result) sort() {
	sort.Strings(r.Fetched)
	sort.Strings(r.Skipped)
	sort.Strings(r.Corrupted)
	sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i].Remote < r.Failed[j].Remote })
}

// Manager runs retrievals against one storage backend.
type Manager struct {
	store   storage.Storage
	logger  zerolog.Logger
	metrics *metrics.CatalogMetrics
}

func NewManager(store storage.Storage, logger zerolog.Logger) *Manager {
	return &Manager{store: store, logger: logger, metrics: metrics.Get()}
}

// Retrieve fetches every transfer whose local copy is missing, or whose
// size differs from the remote object. Per-file failures are collected in
// the result; Retrieve itself only fails on invalid input.
func (m *Manager) Retrieve(ctx context.Context, transfers []Transfer, opts Options) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	out, err := m.retrieve(ctx, res.RunID, transfers, opts)
	if err != nil {
		return res, err
	}
	res.merge(out)
	res.sort()
	return res, nil
}

func (m *Manager) retrieve(ctx context.Context, runID string, transfers []Transfer, opts Options) (Result, error) {
	logger := m.logger.With().Str("run_id", runID).Logger()
	var res Result
	var mu sync.Mutex
	record := func(list *[]string, result, local string) {
		mu.Lock()
		*list = append(*list, local)
		mu.Unlock()
		m.metrics.DownloadFiles.WithLabelValues(result).Inc()
	}
	fail := func(remote string, err error) {
		mu.Lock()
		res.Failed = append(res.Failed, Failure{Remote: remote, Err: err})
		mu.Unlock()
		m.metrics.DownloadFiles.WithLabelValues(metrics.ResultFailed).Inc()
		logger.Warn().Err(err).Str("path", remote).Msg("fetch failed")
	}

	seen := map[string]bool{}
	var todo []Transfer
	for _, t := range transfers {
		if t.Remote == "" || t.Local == "" {
			return res, errdefs.Invalid("transfer", fmt.Sprintf("%s -> %s", t.Remote, t.Local), "remote and local paths are required")
		}
		if seen[t.Local] {
			continue
		}
		seen[t.Local] = true
		todo = append(todo, t)
	}
	if len(todo) == 0 {
		return res, nil
	}

	begin := time.Now()
	logger.Info().Int("files", len(todo)).Int("workers", opts.workers()).Msg("retrieving")

	var g errgroup.Group
	g.SetLimit(opts.workers())
	for _, t := range todo {
		t := t
		g.Go(func() error {
			size, exists, err := localSize(t.Local)
			if err != nil {
				fail(t.Remote, err)
				return nil
			}
			if exists {
				remote, err := m.store.Stat(ctx, t.Remote)
				if err != nil {
					fail(t.Remote, err)
					return nil
				}
				if remote != size {
					logger.Info().Str("path", t.Local).Int64("local_size", size).Int64("remote_size", remote).Msg("removing corrupted file")
					if err := os.Remove(t.Local); err != nil {
						fail(t.Remote, fmt.Errorf("os.Remove: %w", err))
						return nil
					}
					record(&res.Corrupted, metrics.ResultCorrupted, t.Local)
				} else if !opts.Force {
					record(&res.Skipped, metrics.ResultSkipped, t.Local)
					return nil
				}
			}
			if err := m.store.Fetch(ctx, t.Remote, t.Local); err != nil {
				fail(t.Remote, err)
				return nil
			}
			if opts.CheckIntegrity {
				if err := m.verify(ctx, t); err != nil {
					fail(t.Remote, err)
					return nil
				}
			}
			record(&res.Fetched, metrics.ResultFetched, t.Local)
			return nil
		})
	}
	_ = g.Wait()

	logger.Info().
		Int("fetched", len(res.Fetched)).
		Int("skipped", len(res.Skipped)).
		Int("corrupted", len(res.Corrupted)).
		Int("failed", len(res.Failed)).
		Dur("elapsed", time.Since(begin)).
		Msg("retrieval done")
	return res, nil
}

// verify removes a fetched file whose size differs from the remote object.
func (m *Manager) verify(ctx context.Context, t Transfer) error {
	remote, err := m.store.Stat(ctx, t.Remote)
	if err != nil {
		return err
	}
	size, _, err := localSize(t.Local)
	if err != nil {
		return err
	}
	if size == remote {
		return nil
	}
	if err := os.Remove(t.Local); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("os.Remove: %w", err)
	}
	return &errdefs.IntegrityError{Path: t.Local, LocalSize: size, RemoteSize: remote}
}

func localSize(p string) (int64, bool, error) {
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("os.Stat: %w", err)
	}
	return info.Size(), true, nil
}
