package winecluster

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StandardizedTable holds rescaled samples together with the per-column
// (mean, scale) pairs that produced them.
type StandardizedTable struct {
	// Data has the same shape as the input; each column has mean 0 and
	// population standard deviation 1.
	Data [][]float64

	// Means[j] and Scales[j] are the population mean and standard deviation
	// of input column j.
	Means  []float64
	Scales []float64
}

// Standardize rescales each column of data to zero mean and unit population
// variance. A column with zero variance returns a *DegenerateInputError
// naming the column; nothing is ever divided by zero.
func Standardize(data [][]float64) (*StandardizedTable, error) {
	dims, err := validateTable(data)
	if err != nil {
		return nil, err
	}

	n := len(data)
	means := make([]float64, dims)
	scales := make([]float64, dims)
	col := make([]float64, n)
	for j := 0; j < dims; j++ {
		for i, row := range data {
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		// A constant column can still yield a rounding-sized std.
		if std == 0 || floats.Max(col) == floats.Min(col) {
			return nil, &DegenerateInputError{K: -1, Column: j, Reason: "feature column has zero variance"}
		}
		means[j], scales[j] = mean, std
	}

	st := &StandardizedTable{Means: means, Scales: scales, Data: make([][]float64, n)}
	for i, row := range data {
		st.Data[i] = st.apply(row)
	}
	return st, nil
}

// Transform standardizes a new sample with the stored column statistics.
func (s *StandardizedTable) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Means) {
		return nil, configErr(-1, -1, -1, "sample has %d features, expected %d", len(row), len(s.Means))
	}
	return s.apply(row), nil
}

// Inverse maps a standardized vector, such as a centroid, back to the
// original feature units.
func (s *StandardizedTable) Inverse(row []float64) ([]float64, error) {
	if len(row) != len(s.Means) {
		return nil, configErr(-1, -1, -1, "vector has %d features, expected %d", len(row), len(s.Means))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = v*s.Scales[j] + s.Means[j]
	}
	return out, nil
}

func (s *StandardizedTable) apply(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Means[j]) / s.Scales[j]
	}
	return out
}
