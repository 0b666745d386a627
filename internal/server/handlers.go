package server

import (
	"net/http"

	"github.com/TrevorS/winecluster"
	"github.com/TrevorS/winecluster/internal/dataset"
)

type summaryResponse struct {
	Wines   int                     `json:"wines"`
	Dropped int                     `json:"dropped"`
	Origins []string                `json:"origins"`
	Columns []dataset.ColumnSummary `json:"columns"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cols, err := sel.Describe()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Wines:   len(sel.Wines),
		Dropped: sel.Dropped,
		Origins: sel.Origins(),
		Columns: cols,
	})
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	feature := r.URL.Query().Get("feature")
	if dataset.FeatureIndex(feature) < 0 {
		writeError(w, r, badRequest("feature: unknown feature %q", feature))
		return
	}
	bins, err := intParam(r, "bins", dataset.DefaultHistogramBins)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if bins < 1 || bins > dataset.MaxHistogramBins {
		writeError(w, r, badRequest("bins: must be in [1, %d], got %d", dataset.MaxHistogramBins, bins))
		return
	}
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h, err := sel.Histogram(feature, bins)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

type curveResponse struct {
	Wines int                      `json:"wines"`
	Curve winecluster.QualityCurve `json:"curve"`
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	lo, err := intParam(r, "kmin", s.opts.MinK)
	if err != nil {
		writeError(w, r, err)
		return
	}
	hi, err := intParam(r, "kmax", s.opts.MaxK)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sel, err := s.nonEmptySelection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if n := len(sel.Wines); lo < 1 || hi > n {
		writeError(w, r, badRequest("kmin and kmax must lie within [1, %d], got [%d, %d]", n, lo, hi))
		return
	}
	exp, err := winecluster.Explore(sel.Features(), winecluster.KRange(lo, hi), s.opts.Core)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, curveResponse{Wines: len(sel.Wines), Curve: exp.Curve})
}

// Assignment is one wine's cluster membership.
type Assignment struct {
	Name    string `json:"name"`
	Origin  string `json:"origin"`
	Cluster int    `json:"cluster"`
}

type partitionResponse struct {
	K          int                  `json:"k"`
	State      winecluster.RunState `json:"state"`
	Iterations int                  `json:"iterations"`
	Dispersion float64              `json:"dispersion"`
	Sizes      []int                `json:"sizes"`
	Features   []string             `json:"features"`
	Centers    [][]float64          `json:"centers"`
	Wines      []Assignment         `json:"wines"`
}

func (s *Server) handlePartition(w http.ResponseWriter, r *http.Request) {
	sel, an, err := s.analyze(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p := an.Partition
	resp := partitionResponse{
		K:          p.K,
		State:      p.State,
		Iterations: p.Iterations,
		Dispersion: p.Dispersion,
		Sizes:      p.Sizes,
		Features:   winecluster.FeatureNames,
		Centers:    an.Centers,
		Wines:      make([]Assignment, len(sel.Wines)),
	}
	for i, wine := range sel.Wines {
		resp.Wines[i] = Assignment{Name: wine.Name, Origin: wine.Origin, Cluster: p.Labels[i]}
	}
	writeJSON(w, http.StatusOK, resp)
}

// PlotPoint is one wine placed on the two principal axes.
type PlotPoint struct {
	Name    string  `json:"name"`
	Origin  string  `json:"origin"`
	Axis1   float64 `json:"axis1"`
	Axis2   float64 `json:"axis2"`
	Cluster int     `json:"cluster"`
}

type projectionResponse struct {
	K                      int          `json:"k"`
	Features               []string     `json:"features"`
	Axes                   [2][]float64 `json:"axes"`
	ExplainedVarianceRatio [2]float64   `json:"explained_variance_ratio"`
	Points                 []PlotPoint  `json:"points"`
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	sel, an, err := s.analyze(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	proj := an.Projection
	resp := projectionResponse{
		K:                      an.Partition.K,
		Features:               winecluster.FeatureNames,
		Axes:                   proj.Axes,
		ExplainedVarianceRatio: proj.ExplainedVarianceRatio,
		Points:                 make([]PlotPoint, len(proj.Points)),
	}
	for i, pt := range proj.Points {
		resp.Points[i] = PlotPoint{
			Name:    sel.Wines[i].Name,
			Origin:  sel.Wines[i].Origin,
			Axis1:   pt.Axis1,
			Axis2:   pt.Axis2,
			Cluster: pt.Label,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// analyze runs the final-view pipeline on the request's selection.
func (s *Server) analyze(r *http.Request) (*dataset.Dataset, *winecluster.Analysis, error) {
	k, err := intParam(r, "k", s.opts.FinalK)
	if err != nil {
		return nil, nil, err
	}
	sel, err := s.nonEmptySelection(r)
	if err != nil {
		return nil, nil, err
	}
	an, err := winecluster.ClusterAndProject(sel.Features(), k, s.opts.Core)
	if err != nil {
		return nil, nil, err
	}
	return sel, an, nil
}

func (s *Server) nonEmptySelection(r *http.Request) (*dataset.Dataset, error) {
	sel, err := s.selection(r)
	if err != nil {
		return nil, err
	}
	if len(sel.Wines) == 0 {
		return nil, dataset.ErrEmpty
	}
	return sel, nil
}
