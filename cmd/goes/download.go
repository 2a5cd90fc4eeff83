package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rpucella.net/goes-catalog/internal/catalog"
	"rpucella.net/goes-catalog/internal/download"
)

var (
	force          bool
	checkIntegrity bool
	dateFlag       string
	monthFlag      string
)

func newDownloadCmd() *cobra.Command {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download files to the base directory",
		Long: `Download files from the bucket to <base-dir>/<SATELLITE>/, mirroring the
bucket layout. Files already on disk with the remote size are skipped unless
--force is given; copies with a different size are downloaded again.

Examples:
  # One hour of full disk radiances
  goes download files --product Rad --sector F --start 2023-03-01T11:00 --end 2023-03-01T12:00

  # A whole day of GLM flashes
  goes download daily --sensor GLM --level L2 --product LCFA --date 2023-03-01`,
	}

	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Download the files intersecting a time window",
		Args:  cobra.NoArgs,
		RunE: withDownloader(func(cmd *cobra.Command, dl *download.Downloader, d catalog.Descriptor, opts download.Options) (download.Result, error) {
			start, err := parseTime("start", startFlag)
			if err != nil {
				return download.Result{}, err
			}
			end, err := parseTime("end", endFlag)
			if err != nil {
				return download.Result{}, err
			}
			return dl.DownloadFiles(cmd.Context(), d, start, end, criteria(), opts)
		}),
	}
	filesCmd.Flags().StringVar(&startFlag, "start", "", "window start (UTC)")
	filesCmd.Flags().StringVar(&endFlag, "end", "", "window end (UTC)")
	downloadCmd.AddCommand(filesCmd)

	dailyCmd := &cobra.Command{
		Use:   "daily",
		Short: "Download one UTC day of files",
		Args:  cobra.NoArgs,
		RunE: withDownloader(func(cmd *cobra.Command, dl *download.Downloader, d catalog.Descriptor, opts download.Options) (download.Result, error) {
			day, err := time.Parse("2006-01-02", dateFlag)
			if err != nil {
				return download.Result{}, fmt.Errorf("--date: expected YYYY-MM-DD, got %q", dateFlag)
			}
			return dl.DownloadDailyFiles(cmd.Context(), d, day.Year(), int(day.Month()), day.Day(), criteria(), opts)
		}),
	}
	dailyCmd.Flags().StringVar(&dateFlag, "date", "", "day (UTC), YYYY-MM-DD")
	downloadCmd.AddCommand(dailyCmd)

	monthlyCmd := &cobra.Command{
		Use:   "monthly",
		Short: "Download one UTC month of files",
		Args:  cobra.NoArgs,
		RunE: withDownloader(func(cmd *cobra.Command, dl *download.Downloader, d catalog.Descriptor, opts download.Options) (download.Result, error) {
			month, err := time.Parse("2006-01", monthFlag)
			if err != nil {
				return download.Result{}, fmt.Errorf("--month: expected YYYY-MM, got %q", monthFlag)
			}
			return dl.DownloadMonthlyFiles(cmd.Context(), d, month.Year(), int(month.Month()), criteria(), opts)
		}),
	}
	monthlyCmd.Flags().StringVar(&monthFlag, "month", "", "month (UTC), YYYY-MM")
	downloadCmd.AddCommand(monthlyCmd)

	closestCmd := &cobra.Command{
		Use:   "closest",
		Short: "Download the acquisition starting closest to a time",
		Args:  cobra.NoArgs,
		RunE: withDownloader(func(cmd *cobra.Command, dl *download.Downloader, d catalog.Descriptor, opts download.Options) (download.Result, error) {
			t, err := parseTime("time", timeFlag)
			if err != nil {
				return download.Result{}, err
			}
			return dl.DownloadClosestFiles(cmd.Context(), d, t, criteria(), opts)
		}),
	}
	closestCmd.Flags().StringVar(&timeFlag, "time", "", "target time (UTC)")
	downloadCmd.AddCommand(closestCmd)

	latestCmd := &cobra.Command{
		Use:   "latest",
		Short: "Download the most recent acquisitions",
		Args:  cobra.NoArgs,
		RunE: withDownloader(func(cmd *cobra.Command, dl *download.Downloader, d catalog.Descriptor, opts download.Options) (download.Result, error) {
			return dl.DownloadLatestFiles(cmd.Context(), d, count, lookBack, criteria(), download.Request{Options: opts, Strict: strict})
		}),
	}
	latestCmd.Flags().IntVarP(&count, "count", "n", 1, "number of acquisitions")
	latestCmd.Flags().DurationVar(&lookBack, "look-back", time.Hour, "how far back to search for the latest acquisition")
	latestCmd.Flags().BoolVar(&strict, "strict", false, "fail on a scan mode change or a gap")
	downloadCmd.AddCommand(latestCmd)

	for _, direction := range []string{"previous", "next"} {
		cmd := &cobra.Command{
			Use:   direction,
			Short: fmt.Sprintf("Download the %s n acquisitions around a time", direction),
			Args:  cobra.NoArgs,
			RunE: withDownloader(func(cmd *cobra.Command, dl *download.Downloader, d catalog.Descriptor, opts download.Options) (download.Result, error) {
				t, err := parseTime("time", timeFlag)
				if err != nil {
					return download.Result{}, err
				}
				req := download.Request{Options: opts, Strict: strict, IncludeStartTime: includeStart}
				if direction == "next" {
					return dl.DownloadNextFiles(cmd.Context(), d, t, count, criteria(), req)
				}
				return dl.DownloadPreviousFiles(cmd.Context(), d, t, count, criteria(), req)
			}),
		}
		cmd.Flags().StringVar(&timeFlag, "time", "", "anchor time (UTC)")
		cmd.Flags().IntVarP(&count, "count", "n", 1, "number of acquisitions")
		cmd.Flags().BoolVar(&includeStart, "include-start-time", false, "keep the anchor acquisition")
		cmd.Flags().BoolVar(&strict, "strict", false, "require --time to be an acquisition start and fail on a scan mode change or a gap")
		downloadCmd.AddCommand(cmd)
	}

	for _, c := range downloadCmd.Commands() {
		addProductFlags(c)
		c.Flags().IntVar(&concurrency, "concurrency", 0, "parallel downloads, at most 50 (default from config)")
		c.Flags().BoolVar(&force, "force", false, "download files already on disk")
		c.Flags().BoolVar(&checkIntegrity, "check-integrity", true, "compare local and remote sizes after downloading")
	}
	return downloadCmd
}

type downloadFunc func(cmd *cobra.Command, dl *download.Downloader, d catalog.Descriptor, opts download.Options) (download.Result, error)

// withDownloader wires the shared setup of the download commands and
// reports the result.
func withDownloader(run downloadFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d, err := descriptor()
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		dir, err := a.cfg.ResolveBaseDir(baseDir)
		if err != nil {
			return err
		}
		dl, err := download.NewDownloader(a.finder, dir, a.logger)
		if err != nil {
			return err
		}
		n := concurrency
		if n == 0 {
			n = a.cfg.Concurrency
		}
		res, err := run(cmd, dl, d, download.Options{Concurrency: n, Force: force, CheckIntegrity: checkIntegrity})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, p := range res.Fetched {
			fmt.Fprintln(w, p)
		}
		for _, f := range res.Failed {
			a.logger.Error().Err(f.Err).Str("path", f.Remote).Msg("not downloaded")
		}
		a.logger.Info().
			Str("run_id", res.RunID).
			Int("fetched", len(res.Fetched)).
			Int("skipped", len(res.Skipped)).
			Int("corrupted", len(res.Corrupted)).
			Int("failed", len(res.Failed)).
			Msg("download done")
		if len(res.Failed) > 0 {
			return fmt.Errorf("%d of %d files were not downloaded", len(res.Failed), len(res.Failed)+len(res.Local()))
		}
		return nil
	}
}
