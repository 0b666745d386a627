// Package metrics exports clustering observations to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/TrevorS/winecluster"
)

const namespace = "winecluster"

// Prometheus implements winecluster.Observer.
type Prometheus struct {
	Partitions         *prometheus.CounterVec
	PartitionDuration  *prometheus.HistogramVec
	PartitionIteration *prometheus.HistogramVec
	Evaluations        *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	Dispersion         *prometheus.GaugeVec
}

var _ winecluster.Observer = (*Prometheus)(nil)

// NewPrometheus creates the collectors without registering them.
func NewPrometheus() *Prometheus {
	return &Prometheus{
		Partitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "partitions_total",
				Help:      "k-means runs by terminal state.",
			}, []string{"state"}),
		PartitionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "partition_duration_seconds",
				Help:      "Wall time of a full partitioning call, restarts included.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			}, []string{"state"}),
		PartitionIteration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "partition_iterations",
				Help:      "Assignment passes of the winning run.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			}, []string{"state"}),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quality_evaluations_total",
				Help:      "Evaluated candidate cluster counts.",
			}, []string{"separation_valid"}),
		EvaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "quality_evaluation_duration_seconds",
				Help:      "Wall time of one quality curve entry.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			}),
		Dispersion: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dispersion",
				Help:      "Within-cluster sum of squares of the last evaluation per k.",
			}, []string{"k"}),
	}
}

// Register adds every collector to r.
func (p *Prometheus) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		p.Partitions, p.PartitionDuration, p.PartitionIteration,
		p.Evaluations, p.EvaluationDuration, p.Dispersion,
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *Prometheus) ObservePartition(_ int, iterations int, state winecluster.RunState, d time.Duration) {
	s := state.String()
	p.Partitions.WithLabelValues(s).Inc()
	p.PartitionDuration.WithLabelValues(s).Observe(d.Seconds())
	p.PartitionIteration.WithLabelValues(s).Observe(float64(iterations))
}

func (p *Prometheus) ObserveQuality(k int, dispersion float64, separationValid bool, d time.Duration) {
	p.Evaluations.WithLabelValues(strconv.FormatBool(separationValid)).Inc()
	p.EvaluationDuration.Observe(d.Seconds())
	p.Dispersion.WithLabelValues(strconv.Itoa(k)).Set(dispersion)
}
