// Package model fits Gaussian process hyperparameters by
// maximizing the marginal likelihood of the training data.
package model

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"bitbucket.org/dtolpin/gpr/gpr"
	"bitbucket.org/dtolpin/gpr/priors"
	"bitbucket.org/dtolpin/infergo/infer"
	"bitbucket.org/dtolpin/infergo/model"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Objective is the log marginal likelihood of the training data,
// plus the log-priors if any, as a function of the logarithms of
// the hyperparameters.
type Objective struct {
	Evaluator gpr.Evaluator
	Train     gpr.Inputs
	Y         []float64
	Priors    priors.Priors // optional
	Options   []gpr.Option

	// Err is the error of the last evaluation, if any; the
	// objective is −Inf then.
	Err error

	grad []float64
}

var _ model.Model = &Objective{}

func (m *Objective) Observe(x []float64) float64 {
	theta := make([]float64, len(x))
	for i := range x {
		theta[i] = math.Exp(x[i])
	}

	m.grad = make([]float64, len(x))
	ll, err := m.likelihood(theta)
	m.Err = err
	if err != nil {
		return math.Inf(-1)
	}
	// Chain rule through theta = exp(x).
	for i := range m.grad {
		m.grad[i] *= theta[i]
	}

	if m.Priors != nil {
		ll += m.Priors.Observe(x)
		for i, g := range m.Priors.Gradient() {
			m.grad[i] += g
		}
	}
	return ll
}

func (m *Objective) Gradient() []float64 {
	return m.grad
}

// likelihood computes the log marginal likelihood at theta and
// stores its gradient with respect to theta,
//
//	½·tr((w·wᵀ − K⁻¹)·∂K/∂θ),
//
// in m.grad.
func (m *Objective) likelihood(theta []float64) (float64, error) {
	k, err := m.Evaluator.Self(theta, m.Train)
	if err != nil {
		return 0, err
	}
	y := mat.NewVecDense(len(m.Y), m.Y)
	fit, err := gpr.Weights(k, y, m.Options...)
	if err != nil {
		return 0, err
	}
	lik, err := fit.LogLikelihood(y)
	if err != nil {
		return 0, err
	}

	dk, err := m.selfGrad(theta)
	if err != nil {
		return 0, err
	}
	n := fit.Len()
	eye := mat.NewDense(n, n, nil)
	for i := 0; i != n; i++ {
		eye.Set(i, i, 1)
	}
	kinv, err := fit.Solve(eye)
	if err != nil {
		return 0, err
	}
	for l := range dk {
		tr := 0.
		for i := 0; i != n; i++ {
			for j := 0; j != n; j++ {
				tr += (fit.W.AtVec(i)*fit.W.AtVec(j) - kinv.At(i, j)) * dk[l].At(j, i)
			}
		}
		m.grad[l] = 0.5 * tr
	}
	return lik.Total(), nil
}

// selfGrad differentiates the training covariance analytically if
// the evaluator can, and by central differences otherwise.
func (m *Objective) selfGrad(theta []float64) ([]*mat.SymDense, error) {
	if ev, ok := m.Evaluator.(gpr.Differentiable); ok {
		dk, err := ev.SelfGrad(theta, m.Train)
		if !errors.Is(err, gpr.ErrNoGradient) {
			return dk, err
		}
	}

	dk := make([]*mat.SymDense, len(theta))
	for l := range theta {
		theta0 := theta[l]
		h := 1e-6 * math.Max(1, math.Abs(theta0))
		theta[l] = theta0 + h
		kp, err := m.Evaluator.Self(theta, m.Train)
		if err != nil {
			theta[l] = theta0
			return nil, err
		}
		theta[l] = theta0 - h
		km, err := m.Evaluator.Self(theta, m.Train)
		theta[l] = theta0
		if err != nil {
			return nil, err
		}
		n := kp.Symmetric()
		dk[l] = mat.NewSymDense(n, nil)
		for i := 0; i != n; i++ {
			for j := i; j != n; j++ {
				dk[l].SetSym(i, j, (kp.At(i, j)-km.At(i, j))/(2*h))
			}
		}
	}
	return dk, nil
}

// Optimizer maximizes the objective over the log-hyperparameters
// with L-BFGS.
type Optimizer struct {
	// Priors, when not nil, returns the priors for a
	// hyperparameter vector of the given length.
	Priors func(ntheta int) priors.Priors
	// Iterations bounds the number of major iterations; 0 means
	// until convergence.
	Iterations int
	// GradientThreshold stops the optimization when the gradient
	// norm falls below it; 0 means the gonum default.
	GradientThreshold float64
	Options           []gpr.Option
	Logger            *slog.Logger
}

var _ gpr.Optimizer = &Optimizer{}

// ErrStuck is returned when the optimizer fails on its first
// iteration.
var ErrStuck = errors.New("model: optimization failed on first iteration")

// Optimize replaces theta with the optimized hyperparameters. On
// error theta is left intact.
func (o *Optimizer) Optimize(theta []float64, ev gpr.Evaluator, train gpr.Inputs, y []float64) error {
	log := o.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	x := make([]float64, len(theta))
	for i := range theta {
		if theta[i] == 0 || math.IsNaN(theta[i]) || math.IsInf(theta[i], 0) {
			return fmt.Errorf("%w: hyperparameter %d is %v", gpr.ErrHyper, i, theta[i])
		}
		x[i] = math.Log(math.Abs(theta[i]))
	}

	m := &Objective{
		Evaluator: ev,
		Train:     train,
		Y:         y,
		Options:   o.Options,
	}
	if o.Priors != nil {
		m.Priors = o.Priors(len(theta))
	}

	// Initial log likelihood
	lml0 := m.Observe(x)
	model.DropGradient(m)
	if m.Err != nil {
		return m.Err
	}

	Func, Grad := infer.FuncGrad(m)
	p := optimize.Problem{Func: Func, Grad: Grad}
	result, err := optimize.Minimize(
		p, x, &optimize.Settings{
			MajorIterations:   o.Iterations,
			GradientThreshold: o.GradientThreshold,
			Concurrent:        0,
		}, &optimize.LBFGS{})
	// The optimizer does not need to converge officially, a few
	// iterations bring most of the improvement. A failure on the
	// first iteration leaves nothing to use.
	if result == nil || (err != nil && result.Stats.MajorIterations <= 1) {
		if err == nil {
			err = errors.New("no result")
		}
		return fmt.Errorf("%w: %v", ErrStuck, err)
	}
	if err != nil {
		log.Debug("optimization stopped early", "err", err,
			"iterations", result.Stats.MajorIterations)
	}

	// Final log likelihood
	lml := m.Observe(result.X)
	model.DropGradient(m)
	if m.Err != nil || lml < lml0 {
		log.Debug("optimization did not improve", "lml0", lml0, "lml", lml, "err", m.Err)
		return nil
	}
	for i := range theta {
		theta[i] = math.Exp(result.X[i])
	}
	log.Debug("optimized", "lml0", lml0, "lml", lml,
		"iterations", result.Stats.MajorIterations)
	return nil
}
