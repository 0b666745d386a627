package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/TrevorS/winecluster"
	"github.com/TrevorS/winecluster/internal/config"
	"github.com/TrevorS/winecluster/internal/dataset"
	"github.com/TrevorS/winecluster/internal/metrics"
	"github.com/TrevorS/winecluster/internal/server"
)

// app carries state shared by every subcommand.
type app struct {
	cfg     *config.Config
	dataArg string
	seed    int64

	origin     string
	name       string
	alcoholMin float64
	alcoholMax float64

	// registerer and listen back the serve command.
	registerer prometheus.Registerer
	listen     func(srv *server.Server, addr string) error
}

func newRootCmd() *cobra.Command {
	return newRootCmdFor(&app{
		registerer: prometheus.DefaultRegisterer,
		listen:     (*server.Server).ListenAndServe,
	})
}

func newRootCmdFor(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "winecluster",
		Short:         "Cluster wines by their chemical measurements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.dataArg, "data", "", "CSV or XLSX wine table (default $WINECLUSTER_DATA_FILE)")
	f.Int64Var(&a.seed, "seed", winecluster.DefaultSeed, "Random seed for deterministic clustering")
	f.StringVar(&a.origin, "origin", "", "Keep only wines of this origin")
	f.StringVar(&a.name, "name", "", "Keep only wines whose name contains this text")
	f.Float64Var(&a.alcoholMin, "alcohol-min", 0, "Minimum alcohol content")
	f.Float64Var(&a.alcoholMax, "alcohol-max", 0, "Maximum alcohol content")

	root.AddCommand(
		newDescribeCmd(a),
		newCurveCmd(a),
		newClusterCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data") {
		cfg.Data.File = a.dataArg
	}
	if cmd.Flags().Changed("seed") {
		cfg.Clustering.Seed = a.seed
	}
	a.cfg = cfg

	zerolog.SetGlobalLevel(cfg.LogLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
	return nil
}

// core returns the library configuration, logging through the global logger.
func (a *app) core() winecluster.Config {
	cfg := a.cfg.Core()
	cfg.Logger = &log.Logger
	return cfg
}

// load reads the dataset and applies the filter flags.
func (a *app) load(cmd *cobra.Command) (*dataset.Dataset, error) {
	data, err := dataset.Load(a.cfg.Data.File)
	if err != nil {
		return nil, err
	}
	f := dataset.Filter{Origin: a.origin, NameContains: a.name}
	if cmd.Flags().Changed("alcohol-min") {
		f.AlcoholMin = &a.alcoholMin
	}
	if cmd.Flags().Changed("alcohol-max") {
		f.AlcoholMax = &a.alcoholMax
	}
	sel := f.Apply(data)
	log.Info().
		Str("file", a.cfg.Data.File).
		Int("wines", len(sel.Wines)).
		Int("dropped", sel.Dropped).
		Msg("dataset ready")
	if len(sel.Wines) == 0 {
		return nil, dataset.ErrEmpty
	}
	return sel, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Summarize every feature column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.load(cmd)
			if err != nil {
				return err
			}
			cols, err := data.Describe()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"wines":   len(data.Wines),
				"dropped": data.Dropped,
				"origins": data.Origins(),
				"columns": cols,
			})
		},
	}
}

func newCurveCmd(a *app) *cobra.Command {
	var kmin, kmax int
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Report dispersion and separation for a range of cluster counts",
		Long: `Run k-means once per cluster count in [kmin, kmax] on the standardized table
and print the within-cluster sum of squares and the mean silhouette of each.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("kmin") {
				kmin = a.cfg.Clustering.MinK
			}
			if !cmd.Flags().Changed("kmax") {
				kmax = a.cfg.Clustering.MaxK
			}
			data, err := a.load(cmd)
			if err != nil {
				return err
			}
			if n := len(data.Wines); kmin < 1 || kmax > n {
				return fmt.Errorf("kmin and kmax must lie within [1, %d], got [%d, %d]", n, kmin, kmax)
			}
			exp, err := winecluster.Explore(data.Features(), winecluster.KRange(kmin, kmax), a.core())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), exp.Curve)
		},
	}
	cmd.Flags().IntVar(&kmin, "kmin", winecluster.DefaultMinK, "Smallest cluster count")
	cmd.Flags().IntVar(&kmax, "kmax", winecluster.DefaultMaxK, "Largest cluster count")
	return cmd
}

type clusterOutput struct {
	K                      int                  `json:"k"`
	State                  winecluster.RunState `json:"state"`
	Iterations             int                  `json:"iterations"`
	Dispersion             float64              `json:"dispersion"`
	Sizes                  []int                `json:"sizes"`
	Features               []string             `json:"features"`
	Centers                [][]float64          `json:"centers"`
	ExplainedVarianceRatio [2]float64           `json:"explained_variance_ratio"`
	Wines                  []clusteredWine      `json:"wines"`
}

type clusteredWine struct {
	Name    string  `json:"name"`
	Origin  string  `json:"origin"`
	Cluster int     `json:"cluster"`
	Axis1   float64 `json:"axis1"`
	Axis2   float64 `json:"axis2"`
}

func newClusterCmd(a *app) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Assign every wine to one of k clusters and project it onto two axes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("k") {
				k = a.cfg.Clustering.FinalK
			}
			data, err := a.load(cmd)
			if err != nil {
				return err
			}
			an, err := winecluster.ClusterAndProject(data.Features(), k, a.core())
			if err != nil {
				return err
			}

			p := an.Partition
			out := clusterOutput{
				K:                      p.K,
				State:                  p.State,
				Iterations:             p.Iterations,
				Dispersion:             p.Dispersion,
				Sizes:                  p.Sizes,
				Features:               winecluster.FeatureNames,
				Centers:                an.Centers,
				ExplainedVarianceRatio: an.Projection.ExplainedVarianceRatio,
				Wines:                  make([]clusteredWine, len(data.Wines)),
			}
			for i, w := range data.Wines {
				pt := an.Projection.Points[i]
				out.Wines[i] = clusteredWine{Name: w.Name, Origin: w.Origin, Cluster: p.Labels[i], Axis1: pt.Axis1, Axis2: pt.Axis2}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", winecluster.DefaultFinalK, "Cluster count")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis as a JSON HTTP API",
		Long: `Serve the analysis as a JSON HTTP API. The --origin, --name, --alcohol-min
and --alcohol-max flags restrict the wines served; query parameters of the same
names narrow each request further.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Server.Addr
			}
			// Filter flags select the base set; requests filter further.
			data, err := a.load(cmd)
			if err != nil {
				return err
			}

			obs := metrics.NewPrometheus()
			if err := obs.Register(a.registerer); err != nil {
				return err
			}
			core := a.core()
			core.Observer = obs

			c := a.cfg.Clustering
			srv := server.New(data, server.Options{
				Core:   core,
				MinK:   c.MinK,
				MaxK:   c.MaxK,
				FinalK: c.FinalK,
			})
			return a.listen(srv, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address (default $WINECLUSTER_HTTP_ADDR)")
	return cmd
}
