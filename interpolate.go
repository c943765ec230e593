package main

import (
	"bitbucket.org/dtolpin/gpr/gpr"
	"github.com/spf13/cobra"
)

func newInterpolateCmd(a *app) *cobra.Command {
	var (
		trainPath string
		queryPath string
		naux      int
		detrend   bool
	)
	cmd := &cobra.Command{
		Use:   "interpolate",
		Short: "Predict at query points",
		Long: `Fits the process to the training data and writes the query
points with the predictive mean, and the predictive variance if
requested, as CSV.

Training records are x..., [aux...,] [trend,] y; query records
are x..., [aux...,] [trend]. The trend column is the prior mean,
present when --detrend is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			train, err := layout{aux: naux, trend: detrend, target: true}.
				loadFile(trainPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			query, err := layout{aux: naux, trend: detrend}.
				loadFile(queryPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			ip, err := a.interpolator()
			if err != nil {
				return err
			}
			dim, adim := train.dims()
			theta, err := a.theta(ip.Evaluator, dim, adim)
			if err != nil {
				return err
			}

			p := &gpr.Problem{
				Train:    train.in,
				Y:        train.y,
				Query:    query.in,
				Theta:    theta,
				Optimize: a.cfg.Optimize.Enabled,
				Want:     a.cfg.Want(),
			}
			if detrend {
				p.Detrend = &gpr.Detrend{Train: train.trend, Query: query.trend}
			}
			res, err := ip.Interpolate(p)
			if err != nil {
				return err
			}
			a.logger.Info("interpolated",
				"loglik", res.Likelihood.Total(), "theta", res.Theta)

			columns := [][]float64{res.Mean.RawVector().Data}
			if res.Cov != nil {
				variance := make([]float64, query.in.Len())
				for i := range variance {
					variance[i] = res.Cov.At(i, i)
				}
				columns = append(columns, variance)
			}
			return writeRows(cmd.OutOrStdout(), query.in, columns...)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&trainPath, "train", "t", "-", "training data, - for stdin")
	f.StringVarP(&queryPath, "query", "q", "", "query points")
	f.IntVar(&naux, "aux", 0, "number of auxiliary covariate columns")
	f.BoolVar(&detrend, "detrend", false, "data carry a prior mean column")
	f.BoolVar(&a.variance, "variance", false, "write the predictive variance")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}
