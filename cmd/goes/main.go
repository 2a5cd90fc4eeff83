// goes queries and downloads GOES-R satellite imagery from the public buckets.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"rpucella.net/goes-catalog/internal/catalog"
	"rpucella.net/goes-catalog/internal/config"
	"rpucella.net/goes-catalog/internal/goes"
	"rpucella.net/goes-catalog/internal/logging"
	"rpucella.net/goes-catalog/internal/metrics"
	"rpucella.net/goes-catalog/internal/storage"
)

var (
	cfgFile     string
	logLevel    string
	protocol    string
	baseDir     string
	concurrency int
)

// product selection flags shared by the query and download commands
var (
	satellite string
	sensor    string
	level     string
	products  string
	sector    string
	sceneAbbr string
	channels  string
	scanModes string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "goes",
		Short: "Find and download GOES-R imagery",
		Long: `goes lists the GOES-R ABI and GLM files available on the public
Google Cloud Storage and Amazon S3 buckets, or in a local mirror, and
downloads them.

Examples:
  # Full disk radiances of channel 13 between two times
  goes find --satellite 16 --sensor ABI --level L1b --product Rad --sector F \
    --channels C13 --start 2023-03-01T11:00 --end 2023-03-01T12:00

  # The acquisition closest to a time, as https URLs
  goes closest --product Rad --sector M1 --time 2023-03-01T11:33 --connection-type https

  # Download the last hour of CONUS cloud and moisture imagery
  goes download latest --level L2 --product CMIP --sector C -n 12`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a, ok := cmd.Context().Value(appKey{}).(*app); ok {
				metrics.Log(a.logger)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.goes/config.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&protocol, "protocol", "", "storage: gcs, s3 or local")
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "local data directory")

	rootCmd.AddCommand(newFindCmd())
	rootCmd.AddCommand(newClosestCmd())
	rootCmd.AddCommand(newLatestCmd())
	rootCmd.AddCommand(newNeighbourCmd("previous"))
	rootCmd.AddCommand(newNeighbourCmd("next"))
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newProductsCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

func addProductFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&satellite, "satellite", "goes-16", "satellite: goes-16, goes-17, goes-18 (or 16, G16, ...)")
	cmd.Flags().StringVar(&sensor, "sensor", "ABI", "sensor: "+joinNames(goes.AvailableSensors()))
	cmd.Flags().StringVar(&level, "level", "L1b", "product level: L1b or L2")
	cmd.Flags().StringVar(&products, "product", "Rad", "product, or a comma-separated list of products")
	cmd.Flags().StringVar(&sector, "sector", "", "ABI sector: F, C, M, M1 or M2")
	cmd.Flags().StringVar(&sceneAbbr, "scene-abbr", "", "mesoscale domains: M1, M2 or M1,M2")
	cmd.Flags().StringVar(&channels, "channels", "", "comma-separated ABI channels, e.g. C01,C13 or 'clean ir'")
	cmd.Flags().StringVar(&scanModes, "scan-modes", "", "comma-separated ABI scan modes: M3, M4, M6")
}

func joinNames[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

type appKey struct{}

// app holds what a command needs once the config file and flags are read.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	store   storage.Storage
	finder  *catalog.Finder
	baseDir string
}

// newApp loads the configuration, applies the global flags and connects
// to the storage backend.
func newApp(cmd *cobra.Command) (*app, error) {
	path := cfgFile
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if protocol != "" {
		cfg.Protocol = protocol
	}
	logger := logging.New(cfg.LogLevel, cmd.ErrOrStderr())

	p, err := storage.ParseProtocol(cfg.Protocol)
	if err != nil {
		return nil, err
	}
	dir, err := cfg.ResolveBaseDir(baseDir)
	if err != nil && p == storage.Local {
		return nil, err
	}
	store, err := storage.New(cmd.Context(), p)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", p, err)
	}
	logger.Debug().Str("storage", store.Name()).Str("base_dir", dir).Msg("storage ready")

	a := &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		baseDir: dir,
		finder:  catalog.NewFinder(store, catalog.WithBaseDir(dir), catalog.WithLogger(logger)),
	}
	cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
	return a, nil
}

func (a *app) Close() error {
	if c, ok := a.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// descriptors builds one descriptor per product in --product.
func descriptors() ([]catalog.Descriptor, error) {
	var ds []catalog.Descriptor
	for _, p := range catalog.SplitList(products) {
		d, err := catalog.NewDescriptor(satellite, sensor, level, p, sector, "")
		if err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	if len(ds) == 0 {
		return nil, fmt.Errorf("--product is required")
	}
	return ds, nil
}

func descriptor() (catalog.Descriptor, error) {
	ds, err := descriptors()
	if err != nil {
		return catalog.Descriptor{}, err
	}
	if len(ds) > 1 {
		return catalog.Descriptor{}, fmt.Errorf("this command takes a single --product, got %s", products)
	}
	return ds[0], nil
}

// criteria splits the comma-separated filter flags.
func criteria() catalog.Criteria {
	return catalog.Criteria{
		Channels:  catalog.SplitList(channels),
		ScanModes: catalog.SplitList(scanModes),
		SceneAbbr: catalog.SplitList(sceneAbbr),
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime reads a UTC time. Layouts without a zone are taken as UTC.
func parseTime(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("--%s is required", flag)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("--%s: cannot parse %q, expected e.g. 2023-03-01T11:00", flag, value)
}

func printPaths(w io.Writer, paths []string) {
	for _, p := range paths {
		fmt.Fprintln(w, p)
	}
}

func printGroups(w io.Writer, groups catalog.Groups) {
	for _, g := range groups {
		fmt.Fprintf(w, "%s:\n", g.Key)
		for _, p := range g.Paths {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
}
