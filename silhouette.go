package winecluster

// SilhouetteSamples returns the silhouette value of every sample:
// (b - a) / max(a, b), where a is the mean distance to the other members of
// the sample's own cluster and b the mean distance to the members of the
// nearest other cluster. Samples alone in their cluster score 0.
//
// The number of distinct labels must be in [2, n-1]; outside that range the
// score is undefined and a *ConfigurationError is returned.
func SilhouetteSamples(data [][]float64, labels []int, cfg Config) ([]float64, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	dims, err := validateTable(data)
	if err != nil {
		return nil, err
	}
	n := len(data)
	if len(labels) != n {
		return nil, configErr(-1, -1, -1, "got %d labels for %d samples", len(labels), n)
	}

	index := make(map[int]int)
	dense := make([]int, n)
	for i, l := range labels {
		if l < 0 {
			return nil, configErr(-1, i, -1, "negative label %d", l)
		}
		c, ok := index[l]
		if !ok {
			c = len(index)
			index[l] = c
		}
		dense[i] = c
	}
	k := len(index)
	if k < 2 || k > n-1 {
		return nil, configErr(k, -1, -1, "separation score needs between 2 and %d clusters", n-1)
	}

	sizes := make([]int, k)
	for _, c := range dense {
		sizes[c]++
	}

	dist := ComputePairwiseDistancesParallel(flatten(data, dims), n, dims, cfg.Metric, cfg.Workers)

	scores := make([]float64, n)
	forEachBlock(n, cfg.Workers, func(start, end int) {
		sums := make([]float64, k)
		for i := start; i < end; i++ {
			for c := range sums {
				sums[c] = 0
			}
			for j := 0; j < n; j++ {
				sums[dense[j]] += dist[i*n+j]
			}

			own := dense[i]
			if sizes[own] == 1 {
				scores[i] = 0
				continue
			}
			a := sums[own] / float64(sizes[own]-1)
			b := -1.0
			for c, s := range sums {
				if c == own {
					continue
				}
				if m := s / float64(sizes[c]); b < 0 || m < b {
					b = m
				}
			}

			if denom := max(a, b); denom > 0 {
				scores[i] = (b - a) / denom
			}
		}
	})

	return scores, nil
}

// SilhouetteScore returns the mean of SilhouetteSamples, in [-1, 1].
func SilhouetteScore(data [][]float64, labels []int, cfg Config) (float64, error) {
	scores, err := SilhouetteSamples(data, labels, cfg)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), nil
}
