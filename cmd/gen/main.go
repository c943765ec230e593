package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/dtolpin/gpr/gpr"
	"bitbucket.org/dtolpin/gpr/kernel"
	"gonum.org/v1/gonum/mat"
)

var (
	KERNEL = "se"
	THETA  = ""
	N      = 100
	STEP   = 0.1
	SEED   = uint64(time.Now().UTC().UnixNano())
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Generate test data: a sample of a Gaussian process on a
regular grid. Invocation:
	%s  [OPTIONS] > OUTPUT
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&KERNEL, "kernel", KERNEL,
		"kernel, one of "+strings.Join(kernel.Names, ", "))
	flag.StringVar(&THETA, "theta", THETA,
		"comma-separated hyperparameters, kernel defaults if empty")
	flag.IntVar(&N, "n", N, "number of points")
	flag.Float64Var(&STEP, "step", STEP, "grid step")
	flag.Uint64Var(&SEED, "seed", SEED, "random seed")
}

func parseTheta(s string) ([]float64, error) {
	var theta []float64
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		theta = append(theta, v)
	}
	return theta, nil
}

func main() {
	flag.Parse()

	ev, err := kernel.ByName(KERNEL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	in := gpr.Inputs{X: make([][]float64, N)}
	for i := range in.X {
		in.X[i] = []float64{float64(i) * STEP}
	}
	theta := kernel.Initial(ev, 1, 0)
	if THETA != "" {
		if theta, err = parseTheta(THETA); err != nil {
			fmt.Fprintf(os.Stderr, "theta: %v\n", err)
			os.Exit(2)
		}
	}

	// The covariance includes the noise, so the sample is a noisy
	// observation of the process.
	k, err := ev.Self(theta, in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	y, err := gpr.Sample(mat.NewVecDense(N, nil), k, SEED)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for i, x := range in.X {
		fmt.Printf("%f,%f\n", x[0], y.AtVec(i))
	}
}
