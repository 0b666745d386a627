package winecluster

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCluster_TwoSeparatedGroups(t *testing.T) {
	data := twoGroups()
	p, err := Cluster(data, 2, DefaultConfig())
	require.NoError(t, err)

	require.Len(t, p.Labels, 6)
	assert.Equal(t, p.Labels[0], p.Labels[1])
	assert.Equal(t, p.Labels[0], p.Labels[2])
	assert.Equal(t, p.Labels[3], p.Labels[4])
	assert.Equal(t, p.Labels[3], p.Labels[5])
	assert.NotEqual(t, p.Labels[0], p.Labels[3])
	assert.Equal(t, []int{3, 3}, p.Sizes)

	// Each group spreads over 0.1 units, so its dispersion is tiny.
	assert.Less(t, p.Dispersion, 0.05)
	assert.True(t, p.Converged())
	checkCentroidMeans(t, data, p, 1e-12)
}

func TestCluster_KEqualsNIsZeroDispersion(t *testing.T) {
	data := twoGroups()
	for _, init := range []Init{InitKMeansPlusPlus, InitRandom} {
		t.Run(string(init), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Init = init
			p, err := Cluster(data, len(data), cfg)
			require.NoError(t, err)

			assert.Equal(t, 0.0, p.Dispersion)
			seen := map[int]bool{}
			for _, l := range p.Labels {
				seen[l] = true
			}
			assert.Len(t, seen, len(data), "every sample should be its own cluster")
		})
	}
}

func TestCluster_InvalidK(t *testing.T) {
	data := twoGroups()
	for _, k := range []int{-1, 0, 7, 100} {
		p, err := Cluster(data, k, DefaultConfig())
		assert.Nil(t, p, "k=%d", k)

		var ce *ConfigurationError
		require.ErrorAs(t, err, &ce, "k=%d", k)
		assert.Equal(t, k, ce.K)
	}
}

func TestCluster_Deterministic(t *testing.T) {
	gw := loadGoldenWines(t)
	st, err := Standardize(gw.Data)
	require.NoError(t, err)

	for _, init := range []Init{InitKMeansPlusPlus, InitRandom} {
		for k := 2; k <= len(st.Data); k += 3 {
			cfg := DefaultConfig()
			cfg.Init = init
			a, err := Cluster(st.Data, k, cfg)
			require.NoError(t, err)
			b, err := Cluster(st.Data, k, cfg)
			require.NoError(t, err)

			assert.Equal(t, a.Labels, b.Labels, "init=%s k=%d", init, k)
			assert.Equal(t, a.Centroids, b.Centroids, "init=%s k=%d", init, k)
			assert.Equal(t, a.Dispersion, b.Dispersion, "init=%s k=%d", init, k)
		}
	}
}

func TestCluster_LabelsAndCentroidInvariants(t *testing.T) {
	gw := loadGoldenWines(t)
	st, err := Standardize(gw.Data)
	require.NoError(t, err)

	for k := 1; k <= 10; k++ {
		p, err := Cluster(st.Data, k, DefaultConfig())
		require.NoError(t, err, "k=%d", k)
		assert.Equal(t, k, p.K)
		assert.Len(t, p.Centroids, k)
		assert.GreaterOrEqual(t, p.Dispersion, 0.0)
		checkCentroidMeans(t, st.Data, p, 1e-9)
	}
}

func TestCluster_DispersionDecreasesWithK(t *testing.T) {
	// Four tight groups on a line.
	var data [][]float64
	for g := 0; g < 4; g++ {
		for _, off := range []float64{0, 0.2, 0.4} {
			data = append(data, []float64{float64(g)*10 + off, off})
		}
	}

	prev := -1.0
	for k := 1; k <= 4; k++ {
		p, err := Cluster(data, k, DefaultConfig())
		require.NoError(t, err)
		if prev >= 0 {
			assert.LessOrEqual(t, p.Dispersion, prev+1e-12, "k=%d", k)
		}
		prev = p.Dispersion
	}
}

func TestCluster_MaxIterationsIsTerminal(t *testing.T) {
	gw := loadGoldenWines(t)
	st, err := Standardize(gw.Data)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.MaxIterations = 1
	cfg.NInit = 1
	p, err := Cluster(st.Data, 3, cfg)
	require.NoError(t, err)

	// The first pass always changes labels, so one pass never converges.
	assert.Equal(t, StateMaxIterationsReached, p.State)
	assert.Equal(t, 1, p.Iterations)
	assert.False(t, p.Converged())
	checkCentroidMeans(t, st.Data, p, 1e-9)
}

func TestCluster_EmptyClusterIsReseeded(t *testing.T) {
	data := [][]float64{{0, 0}, {0, 1}, {10, 0}, {10, 1}}
	cfg := DefaultConfig()
	cfg.InitialCentroids = [][]float64{{0, 0.5}, {10, 0.5}, {100, 100}}

	p, err := Cluster(data, 3, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, p.Reseeds)
	assert.Equal(t, []int{2, 0, 1, 1}, p.Labels)
	assert.Equal(t, []int{1, 2, 1}, p.Sizes)
	assert.InDelta(t, 0.5, p.Dispersion, 1e-12)
	assert.Equal(t, StateConverged, p.State)
	assert.Equal(t, 2, p.Iterations)
	checkCentroidMeans(t, data, p, 1e-12)
}

func TestCluster_TooFewDistinctSamples(t *testing.T) {
	data := [][]float64{{1, 1}, {1, 1}, {1, 1}, {2, 2}}
	_, err := Cluster(data, 3, DefaultConfig())

	var de *DegenerateInputError
	require.True(t, errors.As(err, &de), "expected *DegenerateInputError, got %v", err)
	assert.Equal(t, 3, de.K)

	p, err := Cluster(data, 2, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Dispersion)
}

func TestCluster_InvalidInitialCentroids(t *testing.T) {
	data := twoGroups()
	tests := []struct {
		name      string
		centroids [][]float64
	}{
		{"wrong count", [][]float64{{0, 0, 0}}},
		{"wrong width", [][]float64{{0, 0}, {1, 1}}},
		{"nan", [][]float64{{0, 0, 0}, {1, nan(), 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.InitialCentroids = tt.centroids
			_, err := Cluster(data, 2, cfg)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestCluster_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown init", func(c *Config) { c.Init = "forgy" }},
		{"negative ninit", func(c *Config) { c.NInit = -1 }},
		{"negative max iterations", func(c *Config) { c.MaxIterations = -5 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := Cluster(twoGroups(), 2, cfg)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestCluster_SeedChangesOnlyThroughConfig(t *testing.T) {
	gw := loadGoldenWines(t)
	st, err := Standardize(gw.Data)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.NInit = 1
	cfg.Init = InitRandom
	a, err := Cluster(st.Data, 5, cfg)
	require.NoError(t, err)

	// Running another seed in between must not disturb the first seed's result.
	other := cfg
	other.Seed = 7
	_, err = Cluster(st.Data, 5, other)
	require.NoError(t, err)

	b, err := Cluster(st.Data, 5, cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Labels, b.Labels)
}

func TestCluster_LogsRun(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	cfg := DefaultConfig()
	cfg.Logger = &logger

	_, err := Cluster(twoGroups(), 2, cfg)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"partition complete"`)
	assert.Contains(t, buf.String(), `"k":2`)
	assert.Contains(t, buf.String(), `"state":"converged"`)
}

func TestPartition_Predict(t *testing.T) {
	p, err := Cluster(twoGroups(), 2, DefaultConfig())
	require.NoError(t, err)

	c, err := p.Predict([]float64{9, 9, 9})
	require.NoError(t, err)
	assert.Equal(t, p.Labels[3], c)

	_, err = p.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRunState(t *testing.T) {
	assert.False(t, StateAssigning.Terminal())
	assert.False(t, StateUpdating.Terminal())
	assert.True(t, StateConverged.Terminal())
	assert.True(t, StateMaxIterationsReached.Terminal())
	assert.Equal(t, "max_iterations_reached", StateMaxIterationsReached.String())
	assert.Equal(t, "unknown", RunState(42).String())

	text, err := StateConverged.MarshalText()
	require.NoError(t, err)
	var s RunState
	require.NoError(t, s.UnmarshalText(text))
	assert.Equal(t, StateConverged, s)
	assert.ErrorIs(t, s.UnmarshalText([]byte("stalled")), ErrConfiguration)
}
