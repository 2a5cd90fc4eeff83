package download

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rpucella.net/goes-catalog/internal/catalog"
	"rpucella.net/goes-catalog/internal/errdefs"
	"rpucella.net/goes-catalog/internal/storage"
)

// Downloader copies the files matched by catalog queries under
// <baseDir>/<SATELLITE>/, mirroring the bucket layout.
type Downloader struct {
	finder  *catalog.Finder
	manager *Manager
	baseDir string
	logger  zerolog.Logger
}

// NewDownloader fetches from the finder's storage into baseDir.
func NewDownloader(finder *catalog.Finder, baseDir string, logger zerolog.Logger) (*Downloader, error) {
	if baseDir == "" {
		return nil, errdefs.Invalid("base_dir", "", "a base directory is required to download")
	}
	if p := finder.Storage().Protocol(); p == storage.Local {
		return nil, errdefs.Invalid("protocol", string(p), "downloads need a bucket protocol, got local storage")
	}
	return &Downloader{
		finder:  finder,
		manager: NewManager(finder.Storage(), logger),
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

// Request combines the retrieval options with the locator options used by
// the previous/next/latest downloads.
type Request struct {
	Options
	Strict           bool
	IncludeStartTime bool
}

func (r Request) locate() catalog.LocateOptions {
	return catalog.LocateOptions{
		Strict:           r.Strict,
		IncludeStartTime: r.IncludeStartTime,
		FindOptions:      catalog.FindOptions{SkipChecks: true, ConnectionType: storage.Bucket},
	}
}

func (d *Downloader) transfers(desc catalog.Descriptor, paths []string) []Transfer {
	out := make([]Transfer, len(paths))
	for i, p := range paths {
		out[i] = Transfer{Remote: p, Local: storage.LocalPath(p, desc.Satellite, d.baseDir)}
	}
	return out
}

// DownloadFiles fetches the files of desc intersecting [start, end]. Long
// windows are listed and fetched one day at a time. Operational checks are
// not applied.
func (d *Downloader) DownloadFiles(ctx context.Context, desc catalog.Descriptor, start, end time.Time, crit catalog.Criteria, opts Options) (Result, error) {
	win, err := catalog.NewWindow(start, end, d.finder.Clock())
	if err != nil {
		return Result{}, err
	}
	res := Result{RunID: uuid.NewString()}
	now := d.finder.Clock().Now()
	seen := map[string]bool{}
	for _, block := range DailyBlocks(win.Start, win.End) {
		if block.Start.After(now) {
			break
		}
		paths, err := d.finder.FindFiles(ctx, desc, block.Start, block.End, crit, catalog.FindOptions{SkipChecks: true, ConnectionType: storage.Bucket})
		if err != nil {
			return res, err
		}
		// files spanning midnight are listed by both blocks
		fresh := paths[:0]
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				fresh = append(fresh, p)
			}
		}
		d.logger.Debug().Str("run_id", res.RunID).Stringer("block", block).Int("files", len(fresh)).Msg("block listed")
		out, err := d.manager.retrieve(ctx, res.RunID, d.transfers(desc, fresh), opts)
		if err != nil {
			return res, err
		}
		res.merge(out)
	}
	res.sort()
	return res, nil
}

// DownloadDailyFiles fetches one UTC day of files.
func (d *Downloader) DownloadDailyFiles(ctx context.Context, desc catalog.Descriptor, year, month, day int, crit catalog.Criteria, opts Options) (Result, error) {
	start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if start.Year() != year || int(start.Month()) != month || start.Day() != day {
		return Result{}, errdefs.Invalid("date", fmt.Sprintf("%04d-%02d-%02d", year, month, day), "not a calendar date")
	}
	return d.DownloadFiles(ctx, desc, start, start.AddDate(0, 0, 1), crit, opts)
}

// DownloadMonthlyFiles fetches one UTC month of files.
func (d *Downloader) DownloadMonthlyFiles(ctx context.Context, desc catalog.Descriptor, year, month int, crit catalog.Criteria, opts Options) (Result, error) {
	if month < 1 || month > 12 {
		return Result{}, errdefs.Invalid("month", fmt.Sprint(month), "expected 1 to 12")
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return d.DownloadFiles(ctx, desc, start, start.AddDate(0, 1, 0), crit, opts)
}

// DownloadClosestFiles fetches the acquisition starting closest to t.
func (d *Downloader) DownloadClosestFiles(ctx context.Context, desc catalog.Descriptor, t time.Time, crit catalog.Criteria, opts Options) (Result, error) {
	paths, err := d.finder.FindClosestFiles(ctx, desc, t, crit, catalog.FindOptions{SkipChecks: true, ConnectionType: storage.Bucket})
	if err != nil {
		return Result{}, err
	}
	return d.manager.Retrieve(ctx, d.transfers(desc, paths), opts)
}

// DownloadLatestFiles fetches the n most recent acquisitions found in the
// last lookBack.
func (d *Downloader) DownloadLatestFiles(ctx context.Context, desc catalog.Descriptor, n int, lookBack time.Duration, crit catalog.Criteria, req Request) (Result, error) {
	groups, err := d.finder.FindLatestFiles(ctx, desc, n, lookBack, crit, req.locate())
	if err != nil {
		return Result{}, err
	}
	return d.manager.Retrieve(ctx, d.transfers(desc, groups.Paths()), req.Options)
}

func (d *Downloader) DownloadPreviousFiles(ctx context.Context, desc catalog.Descriptor, t time.Time, n int, crit catalog.Criteria, req Request) (Result, error) {
	groups, err := d.finder.FindPreviousFiles(ctx, desc, t, n, crit, req.locate())
	if err != nil {
		return Result{}, err
	}
	return d.manager.Retrieve(ctx, d.transfers(desc, groups.Paths()), req.Options)
}

func (d *Downloader) DownloadNextFiles(ctx context.Context, desc catalog.Descriptor, t time.Time, n int, crit catalog.Criteria, req Request) (Result, error) {
	groups, err := d.finder.FindNextFiles(ctx, desc, t, n, crit, req.locate())
	if err != nil {
		return Result{}, err
	}
	return d.manager.Retrieve(ctx, d.transfers(desc, groups.Paths()), req.Options)
}

// DailyBlocks splits [start, end] at each midnight. A window shorter than a
// day is a single block.
func DailyBlocks(start, end time.Time) []catalog.Window {
	if end.Sub(start) < 24*time.Hour {
		return []catalog.Window{{Start: start, End: end}}
	}
	bounds := []time.Time{start}
	y, m, dd := start.Date()
	for t := time.Date(y, m, dd+1, 0, 0, 0, 0, start.Location()); t.Before(end); t = t.AddDate(0, 0, 1) {
		bounds = append(bounds, t)
	}
	bounds = append(bounds, end)
	blocks := make([]catalog.Window, 0, len(bounds)-1)
	for i := 1; i < len(bounds); i++ {
		blocks = append(blocks, catalog.Window{Start: bounds[i-1], End: bounds[i]})
	}
	return blocks
}
