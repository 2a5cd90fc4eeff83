package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rpucella.net/goes-catalog/internal/catalog"
	"rpucella.net/goes-catalog/internal/metadata"
	"rpucella.net/goes-catalog/internal/storage"
)

var (
	startFlag      string
	endFlag        string
	timeFlag       string
	groupBy        string
	connectionType string
	skipChecks     bool
	count          int
	lookBack       time.Duration
	includeStart   bool
	strict         bool
)

func findOptions() (catalog.FindOptions, error) {
	ct, err := storage.ParseConnectionType(connectionType)
	if err != nil {
		return catalog.FindOptions{}, err
	}
	return catalog.FindOptions{SkipChecks: skipChecks, ConnectionType: ct}, nil
}

func addConnectionFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&connectionType, "connection-type", "", "path style: bucket (default), https or nc_bytes")
}

func newFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "List the files intersecting a time window",
		Long: `List the files intersecting [--start, --end], sorted by start time.

Unless --skip-checks is given, the result must be operational data with a
single scan mode, cover the window without gaps and hold the same number of
files at every timestep.`,
		Args: cobra.NoArgs,
		RunE: runFind,
	}
	addProductFlags(cmd)
	addConnectionFlag(cmd)
	cmd.Flags().StringVar(&startFlag, "start", "", "window start (UTC), e.g. 2023-03-01T11:00")
	cmd.Flags().StringVar(&endFlag, "end", "", "window end (UTC)")
	cmd.Flags().StringVar(&groupBy, "group-by", "", fmt.Sprintf("group the paths by a key: %v", metadata.AvailableKeys()))
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "do not run the operational checks")
	return cmd
}

func runFind(cmd *cobra.Command, args []string) error {
	start, err := parseTime("start", startFlag)
	if err != nil {
		return err
	}
	end, err := parseTime("end", endFlag)
	if err != nil {
		return err
	}
	ds, err := descriptors()
	if err != nil {
		return err
	}
	opts, err := findOptions()
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if len(ds) > 1 {
		if groupBy != "" {
			return fmt.Errorf("--group-by takes a single --product")
		}
		paths, err := a.finder.FindFilesMulti(ctx, ds, start, end, criteria(), opts)
		if err != nil {
			return err
		}
		printPaths(cmd.OutOrStdout(), paths)
		return nil
	}
	if groupBy != "" {
		groups, err := a.finder.FindGroupedFiles(ctx, ds[0], start, end, criteria(), groupBy, opts)
		if err != nil {
			return err
		}
		printGroups(cmd.OutOrStdout(), groups)
		return nil
	}
	paths, err := a.finder.FindFiles(ctx, ds[0], start, end, criteria(), opts)
	if err != nil {
		return err
	}
	printPaths(cmd.OutOrStdout(), paths)
	return nil
}

func newClosestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "closest",
		Short: "List the files of the acquisition starting closest to a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTime("time", timeFlag)
			if err != nil {
				return err
			}
			d, err := descriptor()
			if err != nil {
				return err
			}
			opts, err := findOptions()
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			paths, err := a.finder.FindClosestFiles(cmd.Context(), d, t, criteria(), opts)
			if err != nil {
				return err
			}
			printPaths(cmd.OutOrStdout(), paths)
			return nil
		},
	}
	addProductFlags(cmd)
	addConnectionFlag(cmd)
	cmd.Flags().StringVar(&timeFlag, "time", "", "target time (UTC)")
	return cmd
}

func newLatestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "List the files of the most recent acquisitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := descriptor()
			if err != nil {
				return err
			}
			opts, err := findOptions()
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			groups, err := a.finder.FindLatestFiles(cmd.Context(), d, count, lookBack, criteria(), catalog.LocateOptions{Strict: strict, FindOptions: opts})
			if err != nil {
				return err
			}
			printGroups(cmd.OutOrStdout(), groups)
			return nil
		},
	}
	addProductFlags(cmd)
	addConnectionFlag(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of acquisitions")
	cmd.Flags().DurationVar(&lookBack, "look-back", time.Hour, "how far back to search for the latest acquisition")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on a scan mode change or a gap")
	return cmd
}

// newNeighbourCmd builds the previous and next commands.
func newNeighbourCmd(direction string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   direction,
		Short: fmt.Sprintf("List the n acquisitions %s the one closest to a time, grouped by start time", map[string]string{"previous": "before", "next": "after"}[direction]),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTime("time", timeFlag)
			if err != nil {
				return err
			}
			d, err := descriptor()
			if err != nil {
				return err
			}
			opts, err := findOptions()
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			lopts := catalog.LocateOptions{IncludeStartTime: includeStart, Strict: strict, FindOptions: opts}
			find := a.finder.FindPreviousFiles
			if direction == "next" {
				find = a.finder.FindNextFiles
			}
			groups, err := find(cmd.Context(), d, t, count, criteria(), lopts)
			if err != nil {
				return err
			}
			printGroups(cmd.OutOrStdout(), groups)
			return nil
		},
	}
	addProductFlags(cmd)
	addConnectionFlag(cmd)
	cmd.Flags().StringVar(&timeFlag, "time", "", "anchor time (UTC)")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of acquisitions")
	cmd.Flags().BoolVar(&includeStart, "include-start-time", false, "keep the anchor acquisition")
	cmd.Flags().BoolVar(&strict, "strict", false, "require --time to be an acquisition start and fail on a scan mode change or a gap")
	return cmd
}
