package seriesdata

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

// ProviderInfo contains metadata about a series provider.
type ProviderInfo struct {
	Name          string                   `json:"name"`
	DisplayName   string                   `json:"displayName"`
	Description   string                   `json:"description"`
	RequiresAuth  bool                     `json:"requiresAuth"`
	Periodicities []timeseries.Periodicity `json:"periodicities"`
}

var allPeriodicities = timeseries.Periodicities()

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[timeseries.Source]ProviderInfo{
	timeseries.SourceFRED: {
		Name:          string(timeseries.SourceFRED),
		DisplayName:   "FRED",
		Description:   "Federal Reserve Economic Data from the St. Louis Fed, macroeconomic indicators such as CPI and unemployment",
		RequiresAuth:  true,
		Periodicities: allPeriodicities,
	},
	timeseries.SourcePolygon: {
		Name:          string(timeseries.SourcePolygon),
		DisplayName:   "Polygon.io",
		Description:   "US stock market aggregates, served as closing prices",
		RequiresAuth:  true,
		Periodicities: allPeriodicities,
	},
	timeseries.SourceBinance: {
		Name:         string(timeseries.SourceBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency kline closing prices from the public market data API",
		RequiresAuth: false,
		Periodicities: []timeseries.Periodicity{
			timeseries.PeriodicityDaily,
			timeseries.PeriodicityWeekly,
			timeseries.PeriodicityMonthly,
		},
	},
	timeseries.SourceParquet: {
		Name:          string(timeseries.SourceParquet),
		DisplayName:   "Parquet file",
		Description:   "Series previously exported to Parquet by this tool",
		RequiresAuth:  false,
		Periodicities: allPeriodicities,
	},
}

// GetSupportedProviders returns the names of all supported providers, sorted.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for source := range providerRegistry {
		providers = append(providers, string(source))
	}

	sort.Strings(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[timeseries.Source(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	return info, nil
}

// SupportsPeriodicity reports whether source can serve p at all.
// Providers may still reject a periodicity for a particular series.
func SupportsPeriodicity(source timeseries.Source, p timeseries.Periodicity) bool {
	info, ok := providerRegistry[source]
	if !ok {
		return false
	}

	for _, supported := range info.Periodicities {
		if supported == p {
			return true
		}
	}

	return false
}

// GetRequestSchema returns the JSON schema of RequestConfig.
func GetRequestSchema() (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true

	//nolint:exhaustruct // Empty struct is intentional for schema generation
	schema := r.Reflect(RequestConfig{})

	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
