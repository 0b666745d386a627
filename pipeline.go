package winecluster

// Reference cluster counts: the exploratory range and the count used for the
// final view.
const (
	DefaultMinK   = 2
	DefaultMaxK   = 10
	DefaultFinalK = 3
)

// Exploration is the output of the exploratory pipeline.
type Exploration struct {
	Standardized *StandardizedTable
	Curve        QualityCurve
}

// Explore standardizes features and evaluates every candidate k on the result.
func Explore(features [][]float64, ks []int, cfg Config) (*Exploration, error) {
	st, err := Standardize(features)
	if err != nil {
		return nil, err
	}
	curve, err := EvaluateQuality(st.Data, ks, cfg)
	if err != nil {
		return nil, err
	}
	return &Exploration{Standardized: st, Curve: curve}, nil
}

// Analysis is the output of the final-view pipeline.
type Analysis struct {
	Standardized *StandardizedTable
	Partition    *Partition
	Projection   *Projection

	// Centers holds the partition centroids in original feature units.
	Centers [][]float64
}

// ClusterAndProject standardizes features, partitions them into k clusters
// and projects the standardized samples, labeled by cluster, onto two axes.
func ClusterAndProject(features [][]float64, k int, cfg Config) (*Analysis, error) {
	st, err := Standardize(features)
	if err != nil {
		return nil, err
	}
	p, err := Cluster(st.Data, k, cfg)
	if err != nil {
		return nil, err
	}
	proj, err := Project(st.Data, p.Labels)
	if err != nil {
		return nil, err
	}

	centers := make([][]float64, len(p.Centroids))
	for c, centroid := range p.Centroids {
		if centers[c], err = st.Inverse(centroid); err != nil {
			return nil, err
		}
	}

	return &Analysis{Standardized: st, Partition: p, Projection: proj, Centers: centers}, nil
}
