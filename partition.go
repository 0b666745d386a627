package winecluster

import (
	"math"
	"math/rand"
	"time"
)

// RunState is a state of the bounded relocation loop. Converged and
// MaxIterationsReached are terminal.
type RunState int

const (
	StateAssigning RunState = iota
	StateUpdating
	StateConverged
	StateMaxIterationsReached
)

// Terminal reports whether the loop stops in state s.
func (s RunState) Terminal() bool {
	return s == StateConverged || s == StateMaxIterationsReached
}

func (s RunState) String() string {
	switch s {
	case StateAssigning:
		return "assigning"
	case StateUpdating:
		return "updating"
	case StateConverged:
		return "converged"
	case StateMaxIterationsReached:
		return "max_iterations_reached"
	default:
		return "unknown"
	}
}

// MarshalText encodes s by name.
func (s RunState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a name produced by MarshalText.
func (s *RunState) UnmarshalText(text []byte) error {
	for c := StateAssigning; c <= StateMaxIterationsReached; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return configErr(-1, -1, -1, "unknown run state %q", text)
}

// Partition is the result of clustering a table into K groups.
type Partition struct {
	// K is the requested cluster count.
	K int

	// Centroids[c] is the mean of every sample labeled c.
	Centroids [][]float64

	// Labels[i] is the cluster of sample i, in [0, K).
	Labels []int

	// Sizes[c] is the number of samples labeled c. Never zero.
	Sizes []int

	// Dispersion is the within-cluster sum of squared Euclidean distances.
	Dispersion float64

	// Iterations is the number of assignment passes of the winning run.
	Iterations int

	// State is the terminal state of the winning run.
	State RunState

	// Reseeds counts empty-cluster recoveries in the winning run.
	Reseeds int
}

// Converged reports whether the winning run stopped because no label changed.
func (p *Partition) Converged() bool { return p.State == StateConverged }

// Predict returns the index of the centroid nearest to x.
func (p *Partition) Predict(x []float64) (int, error) {
	if len(x) != len(p.Centroids[0]) {
		return 0, configErr(p.K, -1, -1, "sample has %d features, expected %d", len(x), len(p.Centroids[0]))
	}
	c, _ := nearest(x, p.Centroids)
	return c, nil
}

// Cluster partitions data into k clusters with Lloyd's algorithm.
// Each element is a sample; all samples must have the same dimensionality.
// Results depend only on data, k and cfg: cfg.Seed is the sole source of
// randomness.
func Cluster(data [][]float64, k int, cfg Config) (*Partition, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	dims, err := validateTable(data)
	if err != nil {
		return nil, err
	}
	if err := validateK(k, len(data)); err != nil {
		return nil, err
	}
	if cfg.InitialCentroids != nil {
		if err := validateCentroids(cfg.InitialCentroids, k, dims); err != nil {
			return nil, err
		}
	}
	if distinctRows(data, k) < k {
		return nil, &DegenerateInputError{K: k, Column: -1, Reason: "fewer distinct samples than clusters"}
	}

	start := time.Now()
	rng := rand.New(rand.NewSource(cfg.Seed))

	runs := cfg.NInit
	if cfg.InitialCentroids != nil {
		runs = 1
	}

	var best *Partition
	for r := 0; r < runs; r++ {
		var centroids [][]float64
		if cfg.InitialCentroids != nil {
			centroids = make([][]float64, k)
			for c, row := range cfg.InitialCentroids {
				centroids[c] = cloneRow(row)
			}
		} else {
			centroids = seedCentroids(rng, data, k, cfg.Init)
		}

		p, err := relocate(data, centroids, cfg.MaxIterations)
		if err != nil {
			return nil, err
		}
		if best == nil || p.Dispersion < best.Dispersion {
			best = p
		}
	}

	elapsed := time.Since(start)
	cfg.Logger.Debug().
		Int("k", k).
		Int("runs", runs).
		Int("iterations", best.Iterations).
		Stringer("state", best.State).
		Float64("dispersion", best.Dispersion).
		Dur("elapsed", elapsed).
		Msg("partition complete")
	cfg.Observer.ObservePartition(k, best.Iterations, best.State, elapsed)

	return best, nil
}

func validateCentroids(centroids [][]float64, k, dims int) error {
	if len(centroids) != k {
		return configErr(k, -1, -1, "got %d initial centroids", len(centroids))
	}
	for c, row := range centroids {
		if len(row) != dims {
			return configErr(k, c, -1, "initial centroid has %d features, expected %d", len(row), dims)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return configErr(k, c, j, "non-finite initial centroid value %v", v)
			}
		}
	}
	return nil
}

// relocator holds the mutable state of one Lloyd run.
type relocator struct {
	data      [][]float64
	centroids [][]float64
	labels    []int
	counts    []int
	reseeds   int
	maxReseed int
}

// relocate runs the assignment/update state machine from the given
// centroids until labels stop changing or maxIter assignment passes have run.
func relocate(data [][]float64, centroids [][]float64, maxIter int) (*Partition, error) {
	r := &relocator{
		data:      data,
		centroids: centroids,
		labels:    make([]int, len(data)),
		counts:    make([]int, len(centroids)),
		maxReseed: maxIter,
	}
	for i := range r.labels {
		r.labels[i] = -1
	}

	iterations := 0
	state := StateAssigning
	for !state.Terminal() {
		switch state {
		case StateAssigning:
			changed := r.assign()
			iterations++
			switch {
			case !changed:
				state = StateConverged
			case iterations >= maxIter:
				// Keep the mean invariant for the labels we stop on.
				if err := r.update(); err != nil {
					return nil, err
				}
				state = StateMaxIterationsReached
			default:
				state = StateUpdating
			}
		case StateUpdating:
			if err := r.update(); err != nil {
				return nil, err
			}
			state = StateAssigning
		}
	}

	var dispersion float64
	for i, row := range data {
		dispersion += squaredEuclidean(row, r.centroids[r.labels[i]])
	}

	return &Partition{
		K:          len(r.centroids),
		Centroids:  r.centroids,
		Labels:     r.labels,
		Sizes:      r.counts,
		Dispersion: dispersion,
		Iterations: iterations,
		State:      state,
		Reseeds:    r.reseeds,
	}, nil
}

// assign labels every sample with its nearest centroid and reports whether
// any label changed.
func (r *relocator) assign() bool {
	changed := false
	for c := range r.counts {
		r.counts[c] = 0
	}
	for i, row := range r.data {
		c, _ := nearest(row, r.centroids)
		if c != r.labels[i] {
			r.labels[i] = c
			changed = true
		}
		r.counts[c]++
	}
	return changed
}

// update moves each centroid to the mean of its samples, then refills empty
// clusters one at a time with the sample farthest from its own centroid,
// taken from a cluster that can spare it.
func (r *relocator) update() error {
	dims := len(r.data[0])
	sums := make([][]float64, len(r.centroids))
	for c := range sums {
		sums[c] = make([]float64, dims)
	}
	for i, row := range r.data {
		s := sums[r.labels[i]]
		for j, v := range row {
			s[j] += v
		}
	}
	for c := range r.centroids {
		if r.counts[c] > 0 {
			r.centroids[c] = meanOf(sums[c], r.counts[c])
		}
	}

	for c := range r.centroids {
		if r.counts[c] > 0 {
			continue
		}
		r.reseeds++
		if r.reseeds > r.maxReseed {
			return &DegenerateInputError{K: len(r.centroids), Column: -1, Reason: "empty-cluster recovery did not settle"}
		}

		donor, far := -1, -1.0
		for i, row := range r.data {
			if r.counts[r.labels[i]] < 2 {
				continue
			}
			if d := squaredEuclidean(row, r.centroids[r.labels[i]]); d > far {
				donor, far = i, d
			}
		}
		if donor < 0 {
			return &DegenerateInputError{K: len(r.centroids), Column: -1, Reason: "no sample available to refill an empty cluster"}
		}

		old := r.labels[donor]
		row := r.data[donor]
		for j, v := range row {
			sums[old][j] -= v
		}
		r.counts[old]--
		r.centroids[old] = meanOf(sums[old], r.counts[old])

		r.labels[donor] = c
		r.counts[c] = 1
		copy(sums[c], row)
		r.centroids[c] = cloneRow(row)
	}
	return nil
}

func meanOf(sum []float64, count int) []float64 {
	out := make([]float64, len(sum))
	for j, v := range sum {
		out[j] = v / float64(count)
	}
	return out
}
