package catalog

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"rpucella.net/goes-catalog/internal/goes"
	"rpucella.net/goes-catalog/internal/metadata"
	"rpucella.net/goes-catalog/internal/metrics"
	"rpucella.net/goes-catalog/internal/storage"
)

// DefaultListConcurrency bounds the hourly directories listed at once.
const DefaultListConcurrency = 8

// Finder answers catalog queries against one storage backend. Every query
// lists the store again; nothing is cached between calls.
type Finder struct {
	store       storage.Storage
	baseDir     string
	clock       Clock
	logger      zerolog.Logger
	concurrency int
	metrics     *metrics.CatalogMetrics
}

type Option func(*Finder)

// WithBaseDir sets the directory holding local data. Required for local
// storage.
func WithBaseDir(dir string) Option {
	return func(f *Finder) { f.baseDir = dir }
}

func WithClock(c Clock) Option {
	return func(f *Finder) { f.clock = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(f *Finder) { f.logger = l }
}

func WithListConcurrency(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

func NewFinder(store storage.Storage, opts ...Option) *Finder {
	f := &Finder{
		store:       store,
		clock:       SystemClock{},
		logger:      zerolog.Nop(),
		concurrency: DefaultListConcurrency,
		metrics:     metrics.Get(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Finder) Storage() storage.Storage { return f.store }
func (f *Finder) BaseDir() string          { return f.baseDir }
func (f *Finder) Clock() Clock             { return f.clock }

// FindOptions tune FindFiles.
type FindOptions struct {
	// SkipChecks disables the operational checks (EnsureAll).
	SkipChecks bool
	// ConnectionType rewrites bucket paths. Ignored for local storage.
	ConnectionType storage.ConnectionType
}

// ProductDir returns the directory holding a descriptor's hourly tree.
func (f *Finder) ProductDir(d Descriptor) (string, error) {
	root, err := storage.Root(f.store.Protocol(), d.Satellite, f.baseDir)
	if err != nil {
		return "", err
	}
	return storage.Join(root, d.Dir()), nil
}

// FindFiles returns the paths of d's files intersecting [start, end],
// sorted by start time.
func (f *Finder) FindFiles(ctx context.Context, d Descriptor, start, end time.Time, crit Criteria, opts FindOptions) ([]string, error) {
	win, err := NewWindow(start, end, f.clock)
	if err != nil {
		return nil, err
	}
	files, err := f.find(ctx, d, win, crit)
	if err != nil {
		return nil, err
	}
	if !opts.SkipChecks {
		if err := EnsureAll(files, d.String(), win); err != nil {
			return nil, err
		}
	}
	return f.connect(Paths(files), opts.ConnectionType)
}

// FindGroupedFiles is FindFiles partitioned by a metadata key.
func (f *Finder) FindGroupedFiles(ctx context.Context, d Descriptor, start, end time.Time, crit Criteria, key string, opts FindOptions) (Groups, error) {
	k, err := metadata.ParseKey(key)
	if err != nil {
		return nil, err
	}
	win, err := NewWindow(start, end, f.clock)
	if err != nil {
		return nil, err
	}
	files, err := f.find(ctx, d, win, crit)
	if err != nil {
		return nil, err
	}
	if !opts.SkipChecks {
		if err := EnsureAll(files, d.String(), win); err != nil {
			return nil, err
		}
	}
	return f.connectGroups(groupFiles(files, k), opts.ConnectionType)
}

// FindFilesMulti runs the query over each descriptor, concatenates the
// results, then applies the operational checks once over the merged set.
func (f *Finder) FindFilesMulti(ctx context.Context, ds []Descriptor, start, end time.Time, crit Criteria, opts FindOptions) ([]string, error) {
	win, err := NewWindow(start, end, f.clock)
	if err != nil {
		return nil, err
	}
	var merged []File
	names := make([]string, len(ds))
	for i, d := range ds {
		files, err := f.find(ctx, d, win, crit)
		if err != nil {
			return nil, err
		}
		merged = append(merged, files...)
		names[i] = d.String()
	}
	sortFiles(merged)
	if !opts.SkipChecks {
		if err := EnsureAll(merged, strings.Join(names, ", "), win); err != nil {
			return nil, err
		}
	}
	return f.connect(Paths(merged), opts.ConnectionType)
}

// find lists the planned directories in parallel, parses and filters the
// files. Listing order does not affect the sorted result.
func (f *Finder) find(ctx context.Context, d Descriptor, win Window, crit Criteria) ([]File, error) {
	if d.SceneAbbr != "" && len(crit.SceneAbbr) == 0 {
		crit.SceneAbbr = []string{d.SceneAbbr}
	}
	crit.Start, crit.End = win.Start, win.End
	m, err := crit.normalize(d.Sensor, d.Sector)
	if err != nil {
		return nil, err
	}
	productDir, err := f.ProductDir(d)
	if err != nil {
		return nil, err
	}

	dirs := searchDirs(win.Start, win.End)
	f.logger.Debug().
		Str("product", d.String()).
		Str("window", win.String()).
		Int("directories", len(dirs)).
		Msg("searching files")

	listings := make([][]string, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, dir := range dirs {
		i, dir := i, storage.Join(productDir, dir.String())
		g.Go(func() error {
			paths, err := f.store.List(gctx, dir)
			if err != nil {
				return fmt.Errorf("list %s: %w", dir, err)
			}
			f.metrics.DirectoriesListed.Inc()
			listings[i] = paths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var files []File
	for _, paths := range listings {
		for _, p := range paths {
			name := path.Base(strings.ReplaceAll(p, "\\", "/"))
			if !strings.Contains(name, ".nc") {
				continue
			}
			rec, err := metadata.Parse(name, d.Sensor, d.ProductLevel)
			if err != nil {
				return nil, err
			}
			f.metrics.FilesParsed.Inc()
			if m.match(rec) {
				files = append(files, File{Path: p, Record: rec})
			}
		}
	}
	sortFiles(files)
	f.logger.Debug().Str("product", d.String()).Int("files", len(files)).Msg("files found")
	return files, nil
}

func sortFiles(files []File) {
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].StartTime.Equal(files[j].StartTime) {
			return files[i].StartTime.Before(files[j].StartTime)
		}
		return files[i].Path < files[j].Path
	})
}

func (f *Finder) connect(paths []string, ctype storage.ConnectionType) ([]string, error) {
	if f.store.Protocol() == storage.Local || ctype == "" || ctype == storage.Bucket {
		return paths, nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		c, err := storage.Connect(p, ctype)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func (f *Finder) connectGroups(groups Groups, ctype storage.ConnectionType) (Groups, error) {
	for i := range groups {
		paths, err := f.connect(groups[i].Paths, ctype)
		if err != nil {
			return nil, err
		}
		groups[i].Paths = paths
	}
	return groups, nil
}

// OnlineProducts lists the product directories present at the satellite's
// root, as {sensor: {level: [products]}}. ABI sector letters are stripped.
// Directories that are not <sensor>-<level>-<product> are skipped.
func (f *Finder) OnlineProducts(ctx context.Context, sat goes.Satellite) (map[goes.Sensor]map[goes.ProductLevel][]string, error) {
	root, err := storage.Root(f.store.Protocol(), sat, f.baseDir)
	if err != nil {
		return nil, err
	}
	dirs, err := f.store.Dirs(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	seen := map[goes.Sensor]map[goes.ProductLevel]map[string]bool{}
	for _, dir := range dirs {
		parts := strings.SplitN(dir, "-", 3)
		if len(parts) != 3 {
			continue
		}
		sensor, err := goes.ParseSensor(parts[0])
		if err != nil {
			continue
		}
		level, err := goes.ParseProductLevel(parts[1])
		if err != nil {
			continue
		}
		product := parts[2]
		if sensor == goes.ABI && len(product) > 1 {
			switch product[len(product)-1] {
			case 'F', 'C', 'M':
				product = product[:len(product)-1]
			}
		}
		if seen[sensor] == nil {
			seen[sensor] = map[goes.ProductLevel]map[string]bool{}
		}
		if seen[sensor][level] == nil {
			seen[sensor][level] = map[string]bool{}
		}
		seen[sensor][level][product] = true
	}
	out := make(map[goes.Sensor]map[goes.ProductLevel][]string, len(seen))
	for sensor, levels := range seen {
		out[sensor] = make(map[goes.ProductLevel][]string, len(levels))
		for level, products := range levels {
			list := make([]string, 0, len(products))
			for p := range products {
				list = append(list, p)
			}
			sort.Strings(list)
			out[sensor][level] = list
		}
	}
	return out, nil
}
