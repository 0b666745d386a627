package winecluster

import (
	"encoding/json"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// QualityPoint is one entry of a QualityCurve.
type QualityPoint struct {
	K          int     `json:"k"`
	Dispersion float64 `json:"dispersion"`

	// Separation is the mean silhouette. It is only meaningful when
	// SeparationValid is true; for k == 1 or k == n it is 0 and JSON
	// output omits it.
	Separation      float64 `json:"separation"`
	SeparationValid bool    `json:"separation_valid"`

	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
}

// MarshalJSON leaves out separation when it is not applicable, so a
// placeholder 0 cannot be mistaken for a score.
func (p QualityPoint) MarshalJSON() ([]byte, error) {
	type point QualityPoint
	out := struct {
		point
		Separation *float64 `json:"separation,omitempty"`
	}{point: point(p)}
	if p.SeparationValid {
		out.Separation = &p.Separation
	}
	return json.Marshal(out)
}

// QualityCurve lists quality points in increasing k order.
type QualityCurve []QualityPoint

// KRange returns the candidate counts lo, lo+1, ..., hi.
func KRange(lo, hi int) []int {
	if hi < lo {
		return nil
	}
	var ks []int
	for k := lo; ; k++ {
		ks = append(ks, k)
		if k == hi {
			break
		}
	}
	return ks
}

// EvaluateQuality clusters data once per candidate k and records dispersion
// and separation for each. Every k runs independently with the same cfg
// (and so the same seed); runs execute on up to cfg.Workers goroutines and
// the curve is identical to a sequential evaluation.
func EvaluateQuality(data [][]float64, ks []int, cfg Config) (QualityCurve, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if _, err := validateTable(data); err != nil {
		return nil, err
	}
	if len(ks) == 0 {
		return nil, configErr(-1, -1, -1, "no candidate cluster counts")
	}

	sorted := slices.Clone(ks)
	slices.Sort(sorted)
	for i, k := range sorted {
		if err := validateK(k, len(data)); err != nil {
			return nil, err
		}
		if i > 0 && sorted[i-1] == k {
			return nil, configErr(k, -1, -1, "duplicate candidate cluster count")
		}
	}

	// Per-k runs get one worker each for their inner loops; the fan-out
	// already uses the budget.
	inner := cfg
	inner.Workers = 1

	curve := make(QualityCurve, len(sorted))
	errs := make([]error, len(sorted))
	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, k := range sorted {
		g.Go(func() error {
			curve[i], errs[i] = evaluateK(data, k, inner)
			return nil
		})
	}
	_ = g.Wait()
	// Report the failure of the smallest k, whatever order runs finished in.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	cfg.Logger.Debug().Ints("ks", sorted).Msg("quality curve complete")
	return curve, nil
}

// evaluateK computes a single curve entry. It reads data and cfg only.
func evaluateK(data [][]float64, k int, cfg Config) (QualityPoint, error) {
	start := time.Now()
	p, err := Cluster(data, k, cfg)
	if err != nil {
		return QualityPoint{}, err
	}

	point := QualityPoint{
		K:          k,
		Dispersion: p.Dispersion,
		Iterations: p.Iterations,
		Converged:  p.Converged(),
	}
	if k >= 2 && k <= len(data)-1 {
		s, err := SilhouetteScore(data, p.Labels, cfg)
		if err != nil {
			return QualityPoint{}, err
		}
		point.Separation = s
		point.SeparationValid = true
	}

	cfg.Observer.ObserveQuality(k, point.Dispersion, point.SeparationValid, time.Since(start))
	return point, nil
}
