package gpr

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Inputs is an ordered set of points. Aux, when present, holds an
// auxiliary covariate vector for every point.
type Inputs struct {
	X   [][]float64
	Aux [][]float64
}

// Len returns the number of points.
func (in Inputs) Len() int {
	return len(in.X)
}

// dims returns the dimensions of the points and of the auxiliary
// covariates, and checks that they are the same for all points.
func (in Inputs) dims() (dim, adim int, err error) {
	if len(in.X) == 0 {
		return 0, 0, dimErrorf("empty point set")
	}
	dim = len(in.X[0])
	for i, x := range in.X {
		if len(x) != dim {
			return 0, 0, dimErrorf("point %d has dimension %d, want %d", i, len(x), dim)
		}
	}
	if in.Aux == nil {
		return dim, 0, nil
	}
	if len(in.Aux) != len(in.X) {
		return 0, 0, dimErrorf("%d points, %d auxiliary covariates", len(in.X), len(in.Aux))
	}
	adim = len(in.Aux[0])
	for i, a := range in.Aux {
		if len(a) != adim {
			return 0, 0, dimErrorf("covariate %d has dimension %d, want %d", i, len(a), adim)
		}
	}
	return dim, adim, nil
}

// PairKernel is the covariance of a pair of points.
type PairKernel interface {
	NTheta(dim int) int
	Cov(theta, xa, xb []float64) float64
}

// AuxKernel is the covariance of a pair of points which also
// depends on an auxiliary covariate of each point.
type AuxKernel interface {
	NTheta(dim, adim int) int
	Cov(theta, xa, xb, aa, ab []float64) float64
}

// Noise is implemented by kernels adding observation noise to the
// diagonal of the covariance of a point set with itself.
type Noise interface {
	Noise(theta []float64) float64
}

// PairGradient is implemented by pair kernels with an analytic
// gradient; CovGrad stores ∂Cov/∂theta in grad.
type PairGradient interface {
	CovGrad(theta, xa, xb, grad []float64)
}

// NoiseGradient is implemented by noisy kernels with an analytic
// gradient of the noise.
type NoiseGradient interface {
	NoiseGrad(theta, grad []float64)
}

// ErrNoGradient is returned by SelfGrad when the kernel has no
// analytic gradient.
var ErrNoGradient = errors.New("gpr: kernel has no analytic gradient")

// Evaluator builds covariance matrices of point sets.
type Evaluator interface {
	// NTheta is the length of the hyperparameter vector for
	// points of dimension dim with covariates of dimension adim.
	NTheta(dim, adim int) int
	// Cov returns the |a|×|b| covariance between a and b.
	Cov(theta []float64, a, b Inputs) (*mat.Dense, error)
	// Self returns the symmetric covariance of a with itself,
	// observation noise included.
	Self(theta []float64, a Inputs) (*mat.SymDense, error)
}

// Differentiable is implemented by evaluators which can
// differentiate the self covariance with respect to the
// hyperparameters.
type Differentiable interface {
	SelfGrad(theta []float64, a Inputs) ([]*mat.SymDense, error)
}

// Plain evaluates covariances of a kernel over raw coordinates;
// auxiliary covariates are ignored.
func Plain(k PairKernel) Evaluator {
	return &evaluator{
		ntheta: func(dim, _ int) int { return k.NTheta(dim) },
		cov: func(theta []float64, a, b Inputs, i, j int) float64 {
			return k.Cov(theta, a.X[i], b.X[j])
		},
		kernel: k,
	}
}

// Asymmetric evaluates covariances of a kernel which also takes
// the auxiliary covariate of each point; both point sets must
// carry covariates.
func Asymmetric(k AuxKernel) Evaluator {
	return &evaluator{
		ntheta: k.NTheta,
		cov: func(theta []float64, a, b Inputs, i, j int) float64 {
			return k.Cov(theta, a.X[i], b.X[j], a.Aux[i], b.Aux[j])
		},
		aux:    true,
		kernel: k,
	}
}

type evaluator struct {
	ntheta func(dim, adim int) int
	cov    func(theta []float64, a, b Inputs, i, j int) float64
	aux    bool
	kernel interface{}
}

// auxiliary is implemented by evaluators which may use auxiliary
// covariates.
type auxiliary interface {
	auxiliary() bool
}

func (e *evaluator) auxiliary() bool { return e.aux }

func (e *evaluator) NTheta(dim, adim int) int {
	return e.ntheta(dim, adim)
}

// check validates a pair of point sets against each other and
// against the hyperparameters.
func (e *evaluator) check(theta []float64, a, b Inputs) error {
	dima, adima, err := a.dims()
	if err != nil {
		return err
	}
	dimb, adimb, err := b.dims()
	if err != nil {
		return err
	}
	switch {
	case dima != dimb:
		return dimErrorf("point dimensions %d and %d", dima, dimb)
	case e.aux && (a.Aux == nil || b.Aux == nil):
		return dimErrorf("auxiliary covariates required")
	case e.aux && adima != adimb:
		return dimErrorf("covariate dimensions %d and %d", adima, adimb)
	}
	if n := e.ntheta(dima, adima); len(theta) != n {
		return fmt.Errorf("%w: %d hyperparameters, want %d", ErrHyper, len(theta), n)
	}
	return checkAlloc(a.Len(), b.Len())
}

func (e *evaluator) Cov(theta []float64, a, b Inputs) (*mat.Dense, error) {
	if err := e.check(theta, a, b); err != nil {
		return nil, err
	}
	c := mat.NewDense(a.Len(), b.Len(), nil)
	for i := 0; i != a.Len(); i++ {
		for j := 0; j != b.Len(); j++ {
			c.Set(i, j, e.cov(theta, a, b, i, j))
		}
	}
	return c, nil
}

func (e *evaluator) Self(theta []float64, a Inputs) (*mat.SymDense, error) {
	if err := e.check(theta, a, a); err != nil {
		return nil, err
	}
	noise := 0.
	if k, ok := e.kernel.(Noise); ok {
		noise = k.Noise(theta)
	}
	n := a.Len()
	c := mat.NewSymDense(n, nil)
	for i := 0; i != n; i++ {
		for j := i; j != n; j++ {
			c.SetSym(i, j, e.cov(theta, a, a, i, j))
		}
		c.SetSym(i, i, c.At(i, i)+noise)
	}
	mirror(c.RawSymmetric())
	return c, nil
}

// SelfGrad returns the derivatives of Self with respect to every
// hyperparameter.
func (e *evaluator) SelfGrad(theta []float64, a Inputs) ([]*mat.SymDense, error) {
	k, ok := e.kernel.(PairGradient)
	if !ok || e.aux {
		return nil, ErrNoGradient
	}
	if err := e.check(theta, a, a); err != nil {
		return nil, err
	}
	n := a.Len()
	dk := make([]*mat.SymDense, len(theta))
	for l := range dk {
		dk[l] = mat.NewSymDense(n, nil)
	}
	grad := make([]float64, len(theta))
	for i := 0; i != n; i++ {
		for j := i; j != n; j++ {
			k.CovGrad(theta, a.X[i], a.X[j], grad)
			for l := range dk {
				dk[l].SetSym(i, j, grad[l])
			}
		}
	}
	if k, ok := e.kernel.(NoiseGradient); ok {
		k.NoiseGrad(theta, grad)
		for l := range dk {
			for i := 0; i != n; i++ {
				dk[l].SetSym(i, i, dk[l].At(i, i)+grad[l])
			}
		}
	}
	return dk, nil
}
