package winecluster

import (
	"encoding/json"
	"math"
	"os"
	"testing"
)

// twoGroups is a 3-feature, 6-sample table with two visually separated groups
// of three samples each.
func twoGroups() [][]float64 {
	return [][]float64{
		{0.0, 0.0, 0.0},
		{0.1, 0.0, 0.0},
		{0.0, 0.1, 0.0},
		{10.0, 10.0, 10.0},
		{10.1, 10.0, 10.0},
		{10.0, 10.1, 10.0},
	}
}

type goldenProjection struct {
	ExplainedVariance      []float64   `json:"explained_variance"`
	ExplainedVarianceRatio []float64   `json:"explained_variance_ratio"`
	Axes                   [][]float64 `json:"axes"`
	Points                 [][]float64 `json:"points"`
}

type goldenWines struct {
	Dataset    string           `json:"dataset"`
	Data       [][]float64      `json:"data"`
	Means      []float64        `json:"means"`
	Scales     []float64        `json:"scales"`
	K          int              `json:"k"`
	Centroids  [][]float64      `json:"centroids"`
	Labels     []int            `json:"labels"`
	Dispersion float64          `json:"dispersion"`
	Silhouette float64          `json:"silhouette"`
	Projection goldenProjection `json:"projection"`
}

func loadGoldenWines(t testing.TB) goldenWines {
	t.Helper()
	raw, err := os.ReadFile("testdata/golden_wines.json")
	if err != nil {
		t.Fatalf("failed to read golden file: %v", err)
	}
	var gw goldenWines
	if err := json.Unmarshal(raw, &gw); err != nil {
		t.Fatalf("failed to parse golden file: %v", err)
	}
	return gw
}

// checkCentroidMeans verifies that every centroid is the mean of the samples
// labeled with it.
func checkCentroidMeans(t *testing.T, data [][]float64, p *Partition, tol float64) {
	t.Helper()
	dims := len(data[0])
	sums := make([][]float64, p.K)
	counts := make([]int, p.K)
	for c := range sums {
		sums[c] = make([]float64, dims)
	}
	for i, row := range data {
		l := p.Labels[i]
		if l < 0 || l >= p.K {
			t.Fatalf("label[%d] = %d out of range [0, %d)", i, l, p.K)
		}
		counts[l]++
		for j, v := range row {
			sums[l][j] += v
		}
	}
	for c := range sums {
		if counts[c] == 0 {
			t.Fatalf("cluster %d is empty", c)
		}
		if counts[c] != p.Sizes[c] {
			t.Errorf("Sizes[%d] = %d, counted %d", c, p.Sizes[c], counts[c])
		}
		for j := range sums[c] {
			mean := sums[c][j] / float64(counts[c])
			if math.Abs(mean-p.Centroids[c][j]) > tol {
				t.Errorf("centroid[%d][%d] = %g, mean of members = %g", c, j, p.Centroids[c][j], mean)
			}
		}
	}
}
