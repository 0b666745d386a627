package winecluster

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ProjectedPoint is one sample placed on the two principal axes.
type ProjectedPoint struct {
	Axis1 float64 `json:"axis1"`
	Axis2 float64 `json:"axis2"`

	// Label is carried over from the caller; -1 when no labels were given.
	Label int `json:"label"`
}

// Projection places every sample on the two orthogonal directions of
// greatest variance.
type Projection struct {
	// Points are in input order.
	Points []ProjectedPoint

	// Axes are unit vectors in feature space, in decreasing variance order.
	// Each axis is signed so that its largest-magnitude component is positive.
	Axes [2][]float64

	// ExplainedVariance holds the variance along each axis and
	// ExplainedVarianceRatio its share of the total variance.
	ExplainedVariance      [2]float64
	ExplainedVarianceRatio [2]float64
}

// Project computes the two principal axes of data from the eigen-decomposition
// of its covariance matrix and projects every centered sample onto them.
// labels may be nil; otherwise it must have one entry per sample and is
// copied into the result unchanged.
func Project(data [][]float64, labels []int) (*Projection, error) {
	dims, err := validateTable(data)
	if err != nil {
		return nil, err
	}
	n := len(data)
	if n < 2 {
		return nil, configErr(-1, -1, -1, "projection needs at least 2 samples, got %d", n)
	}
	if dims < 2 {
		return nil, configErr(-1, -1, -1, "projection needs at least 2 features, got %d", dims)
	}
	if labels != nil && len(labels) != n {
		return nil, configErr(-1, -1, -1, "got %d labels for %d samples", len(labels), n)
	}

	x := mat.NewDense(n, dims, flatten(data, dims))
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, x, nil)

	var eig mat.EigenSym
	if !eig.Factorize(&cov, true) {
		return nil, &NumericInstabilityError{Reason: "covariance eigen-decomposition did not converge"}
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Values come back ascending; order by decreasing variance, keeping the
	// decomposition's order among equal values.
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(values[b], values[a]) })

	total := floats.Sum(values)
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, &NumericInstabilityError{Reason: "covariance has no positive variance"}
	}

	proj := &Projection{Points: make([]ProjectedPoint, n)}
	for r := 0; r < 2; r++ {
		axis := mat.Col(nil, order[r], &vecs)
		orientAxis(axis)
		proj.Axes[r] = axis
		proj.ExplainedVariance[r] = values[order[r]]
		proj.ExplainedVarianceRatio[r] = values[order[r]] / total
	}

	means := make([]float64, dims)
	col := make([]float64, n)
	for j := range means {
		mat.Col(col, j, x)
		means[j] = stat.Mean(col, nil)
	}

	centered := make([]float64, dims)
	for i, row := range data {
		floats.SubTo(centered, row, means)
		p := ProjectedPoint{
			Axis1: floats.Dot(centered, proj.Axes[0]),
			Axis2: floats.Dot(centered, proj.Axes[1]),
			Label: -1,
		}
		if labels != nil {
			p.Label = labels[i]
		}
		if !finite(p.Axis1) || !finite(p.Axis2) {
			return nil, &NumericInstabilityError{Reason: "projection produced non-finite coordinates"}
		}
		proj.Points[i] = p
	}

	for r := 0; r < 2; r++ {
		if floats.HasNaN(proj.Axes[r]) || !finite(proj.ExplainedVariance[r]) {
			return nil, &NumericInstabilityError{Reason: "projection axes are not finite"}
		}
	}

	return proj, nil
}

// orientAxis flips v in place so its largest-magnitude component is positive.
func orientAxis(v []float64) {
	best := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[best]) {
			best = i
		}
	}
	if v[best] < 0 {
		floats.Scale(-1, v)
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
