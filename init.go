package winecluster

import "math/rand"

// seedCentroids chooses k starting centroids from data using rng. The caller
// guarantees data holds at least k distinct samples, so both strategies
// always return k distinct centroids.
func seedCentroids(rng *rand.Rand, data [][]float64, k int, init Init) [][]float64 {
	switch init {
	case InitRandom:
		return seedRandom(rng, data, k)
	default:
		return seedPlusPlus(rng, data, k)
	}
}

// seedRandom picks k distinct samples in random order.
func seedRandom(rng *rand.Rand, data [][]float64, k int) [][]float64 {
	centroids := make([][]float64, 0, k)
outer:
	for _, i := range rng.Perm(len(data)) {
		for _, c := range centroids {
			if equalRows(c, data[i]) {
				continue outer
			}
		}
		centroids = append(centroids, cloneRow(data[i]))
		if len(centroids) == k {
			break
		}
	}
	return centroids
}

// seedPlusPlus implements k-means++ seeding: after a uniform first pick, each
// new centroid is drawn with probability proportional to its squared
// distance from the nearest centroid chosen so far.
func seedPlusPlus(rng *rand.Rand, data [][]float64, k int) [][]float64 {
	n := len(data)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, cloneRow(data[rng.Intn(n)]))

	d2 := make([]float64, n)
	for i, row := range data {
		d2[i] = squaredEuclidean(row, centroids[0])
	}

	for len(centroids) < k {
		var total float64
		for _, d := range d2 {
			total += d
		}

		r := rng.Float64() * total
		pick, last := -1, -1
		var cum float64
		for i, d := range d2 {
			if d == 0 {
				continue
			}
			last = i
			cum += d
			if cum > r {
				pick = i
				break
			}
		}
		if pick < 0 {
			// r landed on the upper rounding edge of the cumulative sum.
			pick = last
		}

		c := cloneRow(data[pick])
		centroids = append(centroids, c)
		for i, row := range data {
			if d := squaredEuclidean(row, c); d < d2[i] {
				d2[i] = d
			}
		}
	}
	return centroids
}

func cloneRow(row []float64) []float64 {
	out := make([]float64, len(row))
	copy(out, row)
	return out
}
