package winecluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSilhouetteSamples_HandComputed(t *testing.T) {
	data := [][]float64{{0}, {1}, {4}, {5}}
	labels := []int{0, 0, 1, 1}

	scores, err := SilhouetteSamples(data, labels, DefaultConfig())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{7.0 / 9, 5.0 / 7, 5.0 / 7, 7.0 / 9}, scores, 1e-12)

	mean, err := SilhouetteScore(data, labels, DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, 94.0/126, mean, 1e-12)
}

func TestSilhouetteSamples_SingletonScoresZero(t *testing.T) {
	data := [][]float64{{0}, {1}, {10}}
	scores, err := SilhouetteSamples(data, []int{0, 0, 1}, DefaultConfig())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.9, 8.0 / 9, 0}, scores, 1e-12)
}

func TestSilhouetteSamples_ArbitraryLabelValues(t *testing.T) {
	data := [][]float64{{0}, {1}, {4}, {5}}
	a, err := SilhouetteSamples(data, []int{0, 0, 1, 1}, DefaultConfig())
	require.NoError(t, err)
	b, err := SilhouetteSamples(data, []int{7, 7, 3, 3}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSilhouetteScore_TwoSeparatedGroups(t *testing.T) {
	data := twoGroups()
	p, err := Cluster(data, 2, DefaultConfig())
	require.NoError(t, err)

	score, err := SilhouetteScore(data, p.Labels, DefaultConfig())
	require.NoError(t, err)
	assert.Greater(t, score, 0.8)
}

func TestSilhouetteScore_InRange(t *testing.T) {
	gw := loadGoldenWines(t)
	st, err := Standardize(gw.Data)
	require.NoError(t, err)

	for k := 2; k < len(st.Data); k += 4 {
		p, err := Cluster(st.Data, k, DefaultConfig())
		require.NoError(t, err)
		scores, err := SilhouetteSamples(st.Data, p.Labels, DefaultConfig())
		require.NoError(t, err)
		for i, s := range scores {
			assert.GreaterOrEqual(t, s, -1.0, "k=%d sample %d", k, i)
			assert.LessOrEqual(t, s, 1.0, "k=%d sample %d", k, i)
		}
	}
}

func TestSilhouetteScore_Undefined(t *testing.T) {
	data := twoGroups()

	_, err := SilhouetteScore(data, []int{0, 0, 0, 0, 0, 0}, DefaultConfig())
	assert.ErrorIs(t, err, ErrConfiguration, "one cluster")

	_, err = SilhouetteScore(data, []int{0, 1, 2, 3, 4, 5}, DefaultConfig())
	assert.ErrorIs(t, err, ErrConfiguration, "every sample alone")

	_, err = SilhouetteScore(data, []int{0, 1}, DefaultConfig())
	assert.ErrorIs(t, err, ErrConfiguration, "label count mismatch")

	_, err = SilhouetteScore(data, []int{0, 0, 0, 1, 1, -1}, DefaultConfig())
	assert.ErrorIs(t, err, ErrConfiguration, "negative label")
}

func TestSilhouetteScore_WorkersDoNotChangeResult(t *testing.T) {
	gw := loadGoldenWines(t)
	st, err := Standardize(gw.Data)
	require.NoError(t, err)

	seq := DefaultConfig()
	seq.Workers = 1
	want, err := SilhouetteSamples(st.Data, gw.Labels, seq)
	require.NoError(t, err)

	for _, w := range []int{2, 3, 8} {
		par := DefaultConfig()
		par.Workers = w
		got, err := SilhouetteSamples(st.Data, gw.Labels, par)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", w)
	}
}

func TestSilhouetteScore_CustomMetric(t *testing.T) {
	data := [][]float64{{0, 0}, {1, 1}, {4, 4}, {5, 5}}
	cfg := DefaultConfig()
	cfg.Metric = DistanceFunc(func(a, b []float64) float64 {
		var sum float64
		for i := range a {
			d := a[i] - b[i]
			if d < 0 {
				d = -d
			}
			sum += d
		}
		return sum
	})

	// Manhattan distances are exactly twice the 1-D case, so scores match it.
	score, err := SilhouetteScore(data, []int{0, 0, 1, 1}, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 94.0/126, score, 1e-12)
}
