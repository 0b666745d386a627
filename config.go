package winecluster

import (
	"runtime"

	"github.com/rs/zerolog"
)

// Init selects how starting centroids are chosen.
type Init string

const (
	// InitKMeansPlusPlus spreads seeds out by sampling each new centroid with
	// probability proportional to its squared distance from the nearest one
	// already chosen.
	InitKMeansPlusPlus Init = "k-means++"

	// InitRandom picks k distinct samples uniformly at random.
	InitRandom Init = "random"
)

// DefaultSeed is the seed used by DefaultConfig.
const DefaultSeed int64 = 42

// Config controls partitioning and quality evaluation.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Seed drives every pseudo-random choice. Identical data, k and Seed
	// always give identical centroids and labels. Seed 0 is used as-is.
	// Default: 42.
	Seed int64

	// Init chooses the seeding strategy. Default: InitKMeansPlusPlus.
	Init Init

	// InitialCentroids, when non-nil, replaces seeding: Cluster starts
	// from exactly these k centroids and NInit is ignored.
	InitialCentroids [][]float64

	// NInit is the number of seeded restarts. The run with the lowest
	// dispersion wins; earlier runs win ties. Default: 10.
	NInit int

	// MaxIterations bounds the number of assignment passes per run.
	// Default: 300.
	MaxIterations int

	// Metric is the distance used for separation scoring. Partitioning is
	// always Euclidean. Default: EuclideanMetric.
	Metric DistanceMetric

	// Workers bounds the goroutines used for per-k evaluation and pairwise
	// distances. 0 means runtime.NumCPU(); 1 runs sequentially.
	Workers int

	// Logger receives debug events for each run. nil disables logging.
	Logger *zerolog.Logger

	// Observer receives timing and convergence observations.
	// nil means NoopObserver.
	Observer Observer
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Seed:          DefaultSeed,
		Init:          InitKMeansPlusPlus,
		NInit:         10,
		MaxIterations: 300,
		Metric:        EuclideanMetric{},
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Init == "" {
		cfg.Init = InitKMeansPlusPlus
	}
	if cfg.NInit == 0 {
		cfg.NInit = 10
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 300
	}
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
	if cfg.Observer == nil {
		cfg.Observer = NoopObserver{}
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.Init != InitKMeansPlusPlus && cfg.Init != InitRandom {
		return configErr(-1, -1, -1, "Init must be %q or %q, got %q", InitKMeansPlusPlus, InitRandom, cfg.Init)
	}
	if cfg.NInit < 1 {
		return configErr(-1, -1, -1, "NInit must be >= 1, got %d", cfg.NInit)
	}
	if cfg.MaxIterations < 1 {
		return configErr(-1, -1, -1, "MaxIterations must be >= 1, got %d", cfg.MaxIterations)
	}
	if cfg.Workers < 1 {
		return configErr(-1, -1, -1, "Workers must be >= 0, got %d", cfg.Workers)
	}
	return nil
}

// validateK checks 1 <= k <= n.
func validateK(k, n int) error {
	if k < 1 {
		return configErr(k, -1, -1, "cluster count must be >= 1")
	}
	if k > n {
		return configErr(k, -1, -1, "cluster count exceeds sample count %d", n)
	}
	return nil
}
