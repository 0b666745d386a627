// Package winecluster performs unsupervised structural analysis of a table
// of chemical wine measurements: it standardizes the features, partitions
// the samples with seeded k-means, scores candidate cluster counts, and
// projects the samples onto their two principal axes for plotting.
//
// Basic usage:
//
//	cfg := winecluster.DefaultConfig()
//	exp, err := winecluster.Explore(features, winecluster.KRange(2, 10), cfg)
//	// exp.Curve[i] holds K, Dispersion (WCSS) and Separation (mean silhouette)
//
//	an, err := winecluster.ClusterAndProject(features, 3, cfg)
//	// an.Partition.Labels[i] is the cluster of sample i
//	// an.Projection.Points[i] holds its two plotting coordinates
//
// The building blocks can be used on their own: [Standardize], [Cluster],
// [EvaluateQuality], [SilhouetteScore] and [Project].
//
// # Determinism
//
// Every pseudo-random choice comes from Config.Seed through a source local to
// the call. The same table, k and seed always yield identical centroids and
// labels, whether quality evaluation runs sequentially or in parallel.
//
// # Termination
//
// Each k-means run is a bounded state machine that alternates between
// StateAssigning and StateUpdating and stops in StateConverged when no label
// changes, or in StateMaxIterationsReached after Config.MaxIterations
// assignment passes.
//
// # Errors
//
// Failures are typed: *ConfigurationError (bad k, empty or ragged table),
// *DegenerateInputError (zero-variance column, too few distinct samples) and
// *NumericInstabilityError (failed decomposition). Match them with errors.As,
// or with errors.Is against ErrConfiguration, ErrDegenerateInput and
// ErrNumericInstability.
package winecluster
