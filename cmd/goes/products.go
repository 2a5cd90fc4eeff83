package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rpucella.net/goes-catalog/internal/goes"
	"rpucella.net/goes-catalog/internal/metadata"
	"rpucella.net/goes-catalog/internal/storage"
)

var online bool

func newProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the known products, or those present in the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if !online {
				printRegistry(w)
				return nil
			}
			sat, err := goes.ParseSatellite(satellite)
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			listing, err := a.finder.OnlineProducts(cmd.Context(), sat)
			if err != nil {
				return err
			}
			printProducts(w, listing)
			return nil
		},
	}
	cmd.Flags().BoolVar(&online, "online", false, "list the product directories of the bucket")
	cmd.Flags().StringVar(&satellite, "satellite", "goes-16", "satellite for --online")
	return cmd
}

// printProducts writes one sensor, level, product line with its description.
func printProducts(w io.Writer, listing map[goes.Sensor]map[goes.ProductLevel][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, sensor := range sortedKeys(listing) {
		levels := listing[sensor]
		for _, level := range sortedKeys(levels) {
			for _, p := range levels[level] {
				desc, _ := goes.ProductDescription(sensor, level, p)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", sensor, level, p, desc)
			}
		}
	}
	tw.Flush()
}

func printRegistry(w io.Writer) {
	printProducts(w, goes.Products())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "satellites:       %v\n", goes.AvailableSatellites())
	fmt.Fprintf(w, "sectors:          %v\n", goes.AvailableSectors(""))
	fmt.Fprintf(w, "scan modes:       %v\n", goes.AvailableScanModes())
	fmt.Fprintf(w, "channels:         %v\n", goes.AvailableChannels())
	fmt.Fprintf(w, "group keys:       %v\n", metadata.AvailableKeys())
	fmt.Fprintf(w, "protocols:        %v\n", storage.AvailableProtocols())
	fmt.Fprintf(w, "connection types: %v\n", storage.AvailableConnectionTypes())
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
