package winecluster

import "sync"

// forEachBlock splits [0, n) into contiguous blocks, one per worker, and calls
// fn(start, end) for each block concurrently. Blocks never overlap, so fn may
// write to disjoint index ranges of shared slices without synchronization.
// With workers <= 1 it runs fn(0, n) on the calling goroutine.
func forEachBlock(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	rowsPerWorker := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		if start >= n {
			break
		}
		end := min(start+rowsPerWorker, n)

		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(start, end)
		}()
	}

	wg.Wait()
}

// ComputePairwiseDistancesParallel computes the full n×n distance matrix using
// multiple goroutines. data is flat row-major with n rows and dims columns.
// The result is bitwise identical to ComputePairwiseDistances.
func ComputePairwiseDistancesParallel(data []float64, n, dims int, metric DistanceMetric, numWorkers int) []float64 {
	if numWorkers <= 1 || n <= 1 {
		return ComputePairwiseDistances(data, n, dims, metric)
	}

	result := make([]float64, n*n)

	// Each block owns the upper-triangle cells of its source rows and their
	// mirrored lower-triangle cells; no cell is written twice.
	forEachBlock(n, numWorkers, func(start, end int) {
		for i := start; i < end; i++ {
			for j := i + 1; j < n; j++ {
				d := metric.Distance(data[i*dims:(i+1)*dims], data[j*dims:(j+1)*dims])
				result[i*n+j] = d
				result[j*n+i] = d
			}
		}
	})

	return result
}
