package winecluster

import "time"

// Observer receives a callback after each partitioning run and each quality
// curve entry. Implementations must be safe for concurrent use: quality
// evaluation reports from several goroutines at once.
type Observer interface {
	// ObservePartition is called once per Cluster call that returns a result.
	ObservePartition(k, iterations int, state RunState, duration time.Duration)

	// ObserveQuality is called once per evaluated k.
	ObserveQuality(k int, dispersion float64, separationValid bool, duration time.Duration)
}

// NoopObserver discards all observations.
type NoopObserver struct{}

func (NoopObserver) ObservePartition(int, int, RunState, time.Duration) {}
func (NoopObserver) ObserveQuality(int, float64, bool, time.Duration)   {}
