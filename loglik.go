package main

import (
	"fmt"

	"bitbucket.org/dtolpin/gpr/gpr"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

func newLoglikCmd(a *app) *cobra.Command {
	var (
		trainPath string
		naux      int
	)
	cmd := &cobra.Command{
		Use:   "loglik",
		Short: "Log marginal likelihood of training data",
		Long: `Prints the data fit, complexity and normalization terms of the
log marginal likelihood of the training data, and their total,
after optional hyperparameter optimization.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			train, err := layout{aux: naux, target: true}.
				loadFile(trainPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			ip, err := a.interpolator()
			if err != nil {
				return err
			}
			ev := ip.Evaluator
			dim, adim := train.dims()
			theta, err := a.theta(ev, dim, adim)
			if err != nil {
				return err
			}
			if a.cfg.Optimize.Enabled {
				if err := ip.Optimizer.Optimize(theta, ev, train.in, train.y); err != nil {
					return fmt.Errorf("optimize: %w", err)
				}
			}

			kxx, err := ev.Self(theta, train.in)
			if err != nil {
				return err
			}
			fit, err := gpr.Weights(kxx, mat.NewVecDense(len(train.y), train.y),
				a.cfg.Options()...)
			if err != nil {
				return err
			}
			lik, err := fit.LogLikelihood(mat.NewVecDense(len(train.y), train.y))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "data-fit\t%g\n", lik.DataFit)
			fmt.Fprintf(out, "complexity\t%g\n", lik.Complexity)
			fmt.Fprintf(out, "normalization\t%g\n", lik.Normalization)
			fmt.Fprintf(out, "total\t%g\n", lik.Total())
			fmt.Fprintf(out, "theta\t%v\n", theta)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&trainPath, "train", "t", "-", "training data, - for stdin")
	f.IntVar(&naux, "aux", 0, "number of auxiliary covariate columns")
	return cmd
}
