// Package kernel provides covariance functions for the Gaussian
// process evaluators of package gpr.
//
// Hyperparameters are passed as plain values, not logarithms;
// amplitudes, noise and inverse length scales enter squared, so
// their sign does not matter.
package kernel

import (
	"errors"
	"fmt"
	"math"

	"bitbucket.org/dtolpin/gogp/kernel"
	"bitbucket.org/dtolpin/gpr/gpr"
)

// Hyperparameters shared by all kernels; kernel-specific ones
// follow.
const (
	c = iota // output scale
	s        // noise scale
	l0       // first kernel-specific hyperparameter
)

// The squared exponential kernel with automatic relevance
// determination, sig²·exp(−Σ((xa−xb)·ls)²) with one inverse length
// scale per dimension.
type se struct{}

var SE se

var (
	_ gpr.PairKernel    = SE
	_ gpr.PairGradient  = SE
	_ gpr.Noise         = SE
	_ gpr.NoiseGradient = SE
)

func (se) NTheta(dim int) int { return dim + 2 }

func (se) Cov(theta, xa, xb []float64) float64 {
	return theta[c] * theta[c] * math.Exp(-scaled2(theta[l0:], xa, xb))
}

func (se) CovGrad(theta, xa, xb, grad []float64) {
	e := math.Exp(-scaled2(theta[l0:], xa, xb))
	k := theta[c] * theta[c] * e
	grad[c] = 2 * theta[c] * e
	grad[s] = 0
	for i := range xa {
		d := xa[i] - xb[i]
		grad[l0+i] = -2 * d * d * theta[l0+i] * k
	}
}

func (se) Noise(theta []float64) float64 { return theta[s] * theta[s] }

func (se) NoiseGrad(theta, grad []float64) {
	for i := range grad {
		grad[i] = 0
	}
	grad[s] = 2 * theta[s]
}

// scaled2 is the squared distance between xa and xb after scaling
// every coordinate by the corresponding entry of ls.
func scaled2(ls, xa, xb []float64) float64 {
	r2 := 0.
	for i := range xa {
		d := (xa[i] - xb[i]) * ls[i]
		r2 += d * d
	}
	return r2
}

// The isotropic Matern 5/2 kernel of the Euclidean distance,
// hyperparameters [sig, noise, l].
type matern52 struct{}

var Matern52 matern52

func (matern52) NTheta(int) int { return 3 }

func (matern52) Cov(theta, xa, xb []float64) float64 {
	return theta[c] * theta[c] *
		kernel.Matern52.Cov(theta[l0], 0, distance(xa, xb))
}

func (matern52) Noise(theta []float64) float64 { return theta[s] * theta[s] }

// The periodic kernel of the Euclidean distance, hyperparameters
// [sig, noise, l, period].
type periodic struct{}

var Periodic periodic

func (periodic) NTheta(int) int { return 4 }

func (periodic) Cov(theta, xa, xb []float64) float64 {
	const (
		l = l0 + iota // length scale
		p             // period
	)
	return theta[c] * theta[c] *
		kernel.Periodic.Cov(theta[l], theta[p], 0, distance(xa, xb))
}

func (periodic) Noise(theta []float64) float64 { return theta[s] * theta[s] }

func distance(xa, xb []float64) float64 {
	r2 := 0.
	for i := range xa {
		d := xa[i] - xb[i]
		r2 += d * d
	}
	return math.Sqrt(r2)
}

// The squared exponential kernel over points and their auxiliary
// covariates, sig²·exp(−Σ((xa−xb)·ls)² − Σ((aa−ab)·la)²),
// hyperparameters [sig, noise, ls..., la...].
type auxSE struct{}

var AuxSE auxSE

var _ gpr.AuxKernel = AuxSE

func (auxSE) NTheta(dim, adim int) int { return dim + adim + 2 }

func (auxSE) Cov(theta, xa, xb, aa, ab []float64) float64 {
	la := l0 + len(xa)
	return theta[c] * theta[c] *
		math.Exp(-scaled2(theta[l0:la], xa, xb)-scaled2(theta[la:], aa, ab))
}

func (auxSE) Noise(theta []float64) float64 { return theta[s] * theta[s] }

// ErrUnknown is returned by ByName for unknown kernel names.
var ErrUnknown = errors.New("kernel: unknown kernel")

// Names lists the kernels known to ByName.
var Names = []string{"se", "matern52", "periodic", "aux-se"}

// ByName returns the evaluator for a kernel name.
func ByName(name string) (gpr.Evaluator, error) {
	switch name {
	case "se":
		return gpr.Plain(SE), nil
	case "matern52":
		return gpr.Plain(Matern52), nil
	case "periodic":
		return gpr.Plain(Periodic), nil
	case "aux-se":
		return gpr.Asymmetric(AuxSE), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// Initial returns a starting hyperparameter vector: unit output
// scale, small noise, unit length scales.
func Initial(ev gpr.Evaluator, dim, adim int) []float64 {
	theta := make([]float64, ev.NTheta(dim, adim))
	for i := range theta {
		theta[i] = 1
	}
	theta[s] = 0.1
	return theta
}
