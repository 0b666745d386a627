package dataset

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/TrevorS/winecluster"
)

const (
	// DefaultHistogramBins is the bin count used when none is requested.
	DefaultHistogramBins = 20

	// MaxHistogramBins bounds the bin count of a single histogram.
	MaxHistogramBins = 1000
)

// ErrEmpty is returned when a summary is requested for a dataset with no wines.
var ErrEmpty = errors.New("dataset: no wines")

// ColumnSummary describes the distribution of one feature.
type ColumnSummary struct {
	Feature string  `json:"feature"`
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Q25     float64 `json:"q25"`
	Median  float64 `json:"median"`
	Q75     float64 `json:"q75"`
	Max     float64 `json:"max"`
}

// Describe summarizes every feature column. StdDev is the sample standard
// deviation (0 for a single wine); quartiles interpolate linearly.
func (d *Dataset) Describe() ([]ColumnSummary, error) {
	if len(d.Wines) == 0 {
		return nil, ErrEmpty
	}
	out := make([]ColumnSummary, len(winecluster.FeatureNames))
	for j, name := range winecluster.FeatureNames {
		col := stats.Float64Data(d.column(j))
		s := ColumnSummary{Feature: name, Count: col.Len()}

		var err error
		if s.Mean, err = col.Mean(); err != nil {
			return nil, fmt.Errorf("dataset: %s mean: %w", name, err)
		}
		if s.Min, err = col.Min(); err != nil {
			return nil, fmt.Errorf("dataset: %s min: %w", name, err)
		}
		if s.Max, err = col.Max(); err != nil {
			return nil, fmt.Errorf("dataset: %s max: %w", name, err)
		}
		if s.Median, err = col.Median(); err != nil {
			return nil, fmt.Errorf("dataset: %s median: %w", name, err)
		}
		sorted := slices.Sorted(slices.Values(col))
		s.Q25 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
		s.Q75 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)
		if col.Len() > 1 {
			if s.StdDev, err = col.StandardDeviationSample(); err != nil {
				return nil, fmt.Errorf("dataset: %s std: %w", name, err)
			}
		}
		out[j] = s
	}
	return out, nil
}

// Histogram is a binned count of one feature. Counts[i] covers
// [Edges[i], Edges[i+1]); the last bin also includes the maximum.
type Histogram struct {
	Feature string    `json:"feature"`
	Edges   []float64 `json:"edges"`
	Counts  []float64 `json:"counts"`
}

// Histogram bins a feature into equal-width bins spanning its range.
func (d *Dataset) Histogram(feature string, bins int) (*Histogram, error) {
	j := FeatureIndex(feature)
	if j < 0 {
		return nil, fmt.Errorf("dataset: unknown feature %q", feature)
	}
	if bins < 1 || bins > MaxHistogramBins {
		return nil, fmt.Errorf("dataset: bins must be in [1, %d], got %d", MaxHistogramBins, bins)
	}
	if len(d.Wines) == 0 {
		return nil, ErrEmpty
	}

	x := d.column(j)
	slices.Sort(x)
	lo, hi := x[0], x[len(x)-1]
	if hi == lo {
		hi = lo + 1
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram wants the last divider strictly above the largest value.
	dividers := slices.Clone(edges)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, x, nil)
	return &Histogram{Feature: winecluster.FeatureNames[j], Edges: edges, Counts: counts}, nil
}

func (d *Dataset) column(j int) []float64 {
	col := make([]float64, len(d.Wines))
	for i, w := range d.Wines {
		col[i] = w.Features[j]
	}
	return col
}
