package winecluster

import "math"

// FeatureNames lists the wine measurements, in column order, that the dataset
// adapter hands to the core. The core itself accepts any fixed width.
var FeatureNames = []string{
	"alcohol",
	"malic_acid",
	"ash",
	"ash_alkalinity",
	"magnesium",
	"total_phenols",
	"flavonoids",
}

// validateTable checks that data is non-empty, rectangular and finite, and
// returns its dimensionality.
func validateTable(data [][]float64) (int, error) {
	if len(data) == 0 {
		return 0, configErr(-1, -1, -1, "feature table is empty")
	}
	dims := len(data[0])
	if dims == 0 {
		return 0, configErr(-1, 0, -1, "samples have no features")
	}
	for i, row := range data {
		if len(row) != dims {
			return 0, configErr(-1, i, -1, "sample has %d features, expected %d", len(row), dims)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, configErr(-1, i, j, "non-finite feature value %v", v)
			}
		}
	}
	return dims, nil
}

// flatten copies data into a flat row-major slice.
func flatten(data [][]float64, dims int) []float64 {
	flat := make([]float64, len(data)*dims)
	for i, row := range data {
		copy(flat[i*dims:], row)
	}
	return flat
}

// distinctRows counts distinct samples, stopping early once limit is reached.
func distinctRows(data [][]float64, limit int) int {
	var seen [][]float64
outer:
	for _, row := range data {
		for _, s := range seen {
			if equalRows(row, s) {
				continue outer
			}
		}
		seen = append(seen, row)
		if len(seen) >= limit {
			break
		}
	}
	return len(seen)
}

func equalRows(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
