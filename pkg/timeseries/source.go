package timeseries

// Source names a provider that series can be fetched from.
type Source string

const (
	SourceFRED    Source = "fred"
	SourcePolygon Source = "polygon"
	SourceBinance Source = "binance"
	// SourceParquet reads a series previously exported by this tool.
	SourceParquet Source = "parquet"
)

// Sources lists every known source in a stable order.
func Sources() []Source {
	return []Source{SourceFRED, SourcePolygon, SourceBinance, SourceParquet}
}

// IsValid reports whether s is a known source.
func (s Source) IsValid() bool {
	for _, known := range Sources() {
		if s == known {
			return true
		}
	}

	return false
}
