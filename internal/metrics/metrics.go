// Package metrics provides Prometheus counters for catalog discovery and
// retrieval.
package metrics

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Registry is the Prometheus registry for all catalog metrics.
var Registry = prometheus.NewRegistry()

// Fetch results recorded by DownloadFiles.
const (
	ResultFetched   = "fetched"
	ResultFailed    = "failed"
	ResultSkipped   = "skipped"
	ResultCorrupted = "corrupted"
)

type CatalogMetrics struct {
	DirectoriesListed prometheus.Counter     // goes_catalog_directories_listed_total
	FilesParsed       prometheus.Counter     // goes_catalog_files_parsed_total
	DownloadFiles     *prometheus.CounterVec // goes_download_files_total{result}
}

var (
	once     sync.Once
	instance *CatalogMetrics
)

// Init registers the metrics with registry on first call and returns the
// same instance afterwards. A nil registry uses Registry.
func Init(registry prometheus.Registerer) *CatalogMetrics {
	once.Do(func() {
		if registry == nil {
			registry = Registry
		}
		instance = &CatalogMetrics{
			DirectoriesListed: promauto.With(registry).NewCounter(prometheus.CounterOpts{
				Name: "goes_catalog_directories_listed_total",
				Help: "Hourly directories listed on the storage backend",
			}),
			FilesParsed: promauto.With(registry).NewCounter(prometheus.CounterOpts{
				Name: "goes_catalog_files_parsed_total",
				Help: "Filenames parsed into metadata records",
			}),
			DownloadFiles: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
				Name: "goes_download_files_total",
				Help: "Files handled by the retrieval manager by result",
			}, []string{"result"}),
		}
	})
	return instance
}

// Get returns the metrics registered with Registry.
func Get() *CatalogMetrics {
	return Init(nil)
}

// Log writes the current value of every counter in Registry at debug level.
func Log(logger zerolog.Logger) {
	families, err := Registry.Gather()
	if err != nil {
		logger.Warn().Err(err).Msg("gather metrics")
		return
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			ev := logger.Debug().Str("metric", mf.GetName())
			for _, lp := range m.GetLabel() {
				ev = ev.Str(lp.GetName(), lp.GetValue())
			}
			ev.Float64("value", m.GetCounter().GetValue()).Msg("metric")
		}
	}
}
