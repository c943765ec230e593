package main

import (
	"fmt"
	"math"
	"strings"

	"bitbucket.org/dtolpin/gpr/gpr"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func newSelfcheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "selfcheck",
		Short: "Forecast the built-in series one step ahead",
		Long: `Forecasts the series built into the program one step out of
sample, iteratively, to demonstrate basic functionality. Each
output record is x, y, mean, standard deviation, log likelihood
and the hyperparameters; a summary is logged at the end.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.selfcheck(cmd)
		},
	}
}

func (a *app) selfcheck(cmd *cobra.Command) error {
	data, err := layout{target: true}.load(strings.NewReader(selfCheckData))
	if err != nil {
		return err
	}
	ip, err := a.interpolator()
	if err != nil {
		return err
	}
	X, Y := data.in.X, data.y
	// Normalize Y
	meany, stdy := stat.MeanStdDev(Y, nil)
	for i := range Y {
		Y[i] = (Y[i] - meany) / stdy
	}

	dim, _ := data.dims()
	theta, err := a.theta(ip.Evaluator, dim, 0)
	if err != nil {
		return err
	}
	const start = 3
	n := len(X) - start
	means := mat.NewVecDense(n, nil)
	vars := mat.NewSymDense(n, nil)
	out := cmd.OutOrStdout()
	for end := start; end != len(X); end++ {
		p := &gpr.Problem{
			Train:    gpr.Inputs{X: X[:end]},
			Y:        Y[:end],
			Query:    gpr.Inputs{X: X[end : end+1]},
			Theta:    theta,
			Optimize: a.cfg.Optimize.Enabled,
			Want:     gpr.MeanAndCovariance,
		}
		res, err := ip.Interpolate(p)
		if err != nil {
			return fmt.Errorf("forecast at %v: %w", X[end], err)
		}
		mu, v := res.Mean.AtVec(0), res.Cov.At(0, 0)
		means.SetVec(end-start, mu)
		vars.SetSym(end-start, end-start, v)

		for _, x := range X[end] {
			fmt.Fprintf(out, "%f,", x)
		}
		fmt.Fprintf(out, "%f,%f,%f,%f", Y[end], mu, math.Sqrt(v), res.Likelihood.Total())
		for _, t := range res.Theta {
			fmt.Fprintf(out, ",%f", t)
		}
		fmt.Fprintln(out)
	}

	d, err := gpr.Diagnose(means, vars, Y[start:])
	if err != nil {
		return err
	}
	a.logger.Info("selfcheck", "forecasts", n, "rmse", d.RMSE,
		"rchisq", d.RChiSq, "nlpd", d.NLPD)
	return nil
}

var selfCheckData = `0.00,-0.038382
0.25,0.952687
0.50,1.482552
0.75,1.944753
1.00,2.139450
1.25,2.334039
1.50,2.426987
1.75,2.050183
2.00,1.741201
2.25,1.146340
2.50,0.672619
2.75,0.182895
3.00,-0.465916
3.25,-0.332863
3.50,-0.480309
3.75,-0.419022
4.00,-0.536744
4.25,-0.209640
4.50,0.341499
4.75,0.871817
5.00,1.452249
5.25,1.816424
5.50,2.232611
5.75,2.275601
6.00,2.506814
6.25,2.477906
6.50,2.159608
6.75,2.261804
7.00,1.770911
7.25,1.525593
7.50,0.925545
7.75,0.629710
8.00,0.489593
8.25,0.424083
8.50,0.540816
8.75,0.593750
9.00,0.691102
9.25,0.885430
9.50,1.262212
9.75,1.843785
`
