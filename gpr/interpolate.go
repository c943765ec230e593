package gpr

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

// Optimizer fits the hyperparameters theta in place to the
// training data.
type Optimizer interface {
	Optimize(theta []float64, ev Evaluator, train Inputs, y []float64) error
}

// Detrend holds the prior mean of the outputs at the training and
// at the query points. The process is fitted to the residuals of
// the training outputs, and the prior mean is added back to the
// prediction.
type Detrend struct {
	Train []float64
	Query []float64
}

// Want selects what an interpolation computes.
type Want int

const (
	MeanOnly Want = iota
	MeanAndCovariance
)

func (w Want) String() string {
	switch w {
	case MeanOnly:
		return "mean"
	case MeanAndCovariance:
		return "mean+covariance"
	}
	return fmt.Sprintf("Want(%d)", int(w))
}

// Problem is an interpolation request. Theta is owned by the
// caller and is overwritten with the fitted hyperparameters when
// Optimize is set and the call succeeds.
type Problem struct {
	Train    Inputs
	Y        []float64
	Query    Inputs
	Theta    []float64
	Optimize bool
	Want     Want
	Detrend  *Detrend
}

// Workflow names the variant of interpolation the problem asks for
// when evaluated by ev. Auxiliary covariates make the workflow
// asymmetric only for evaluators which use them.
func (p *Problem) Workflow(ev Evaluator) string {
	if p.Detrend != nil {
		return "detrended"
	}
	if a, ok := ev.(auxiliary); ok && a.auxiliary() {
		return "asymmetric"
	}
	return "plain"
}

func (p *Problem) validate() error {
	ns, np := p.Train.Len(), p.Query.Len()
	switch {
	case ns == 0:
		return dimErrorf("no training points")
	case np == 0:
		return dimErrorf("no query points")
	case len(p.Y) != ns:
		return dimErrorf("%d training points, %d outputs", ns, len(p.Y))
	case p.Want != MeanOnly && p.Want != MeanAndCovariance:
		return fmt.Errorf("gpr: unknown request %v", p.Want)
	}
	if p.Detrend != nil {
		if len(p.Detrend.Train) != ns {
			return dimErrorf("%d training points, prior mean has length %d",
				ns, len(p.Detrend.Train))
		}
		if len(p.Detrend.Query) != np {
			return dimErrorf("%d query points, prior mean has length %d",
				np, len(p.Detrend.Query))
		}
	}
	return nil
}

// Result is the outcome of a successful interpolation.
type Result struct {
	Mean *mat.VecDense
	// Cov is nil unless the covariance was requested.
	Cov *mat.SymDense
	// Likelihood of the training outputs (residuals when
	// detrended) at Theta.
	Likelihood Likelihood
	// Theta is a copy of the hyperparameters used.
	Theta []float64
}

// Interpolator runs Gaussian process interpolation for a kernel.
// It holds no per-call state; one Interpolator may serve
// concurrent calls on distinct problems.
type Interpolator struct {
	Evaluator Evaluator
	// Optimizer is required for problems asking for optimization.
	Optimizer Optimizer
	Logger    *slog.Logger
	Metrics   *Metrics

	opts []Option
}

// NewInterpolator returns an interpolator for the evaluator.
func NewInterpolator(ev Evaluator, opts ...Option) *Interpolator {
	return &Interpolator{
		Evaluator: ev,
		opts:      opts,
	}
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func (ip *Interpolator) logger() *slog.Logger {
	if ip.Logger == nil {
		return discard
	}
	return ip.Logger
}

// Interpolate fits the process to the training data and predicts
// at the query points: optionally optimize the hyperparameters,
// solve for the weights, predict the mean, and, if requested,
// compute the predictive covariance reusing the factor. The call
// either returns a complete result or an error.
func (ip *Interpolator) Interpolate(p *Problem) (res *Result, err error) {
	workflow := p.Workflow(ip.Evaluator)
	start := time.Now()
	log := ip.logger().With("call", uuid.NewString(), "workflow", workflow)
	log.Debug("interpolate", "ns", p.Train.Len(), "np", p.Query.Len(), "want", p.Want)
	defer func() {
		ip.Metrics.observe(workflow, start, err)
		if err != nil {
			log.Debug("interpolate failed", "err", err)
		} else {
			log.Debug("interpolate done",
				"loglik", res.Likelihood.Total(),
				"elapsed", time.Since(start))
		}
	}()

	if err := p.validate(); err != nil {
		return nil, err
	}
	ev := ip.Evaluator

	y := mat.NewVecDense(len(p.Y), nil)
	for i := range p.Y {
		y.SetVec(i, p.Y[i])
	}
	if p.Detrend != nil {
		y.SubVec(y, mat.NewVecDense(len(p.Detrend.Train), p.Detrend.Train))
	}

	theta := make([]float64, len(p.Theta))
	copy(theta, p.Theta)
	if p.Optimize {
		if ip.Optimizer == nil {
			return nil, fmt.Errorf("%w: optimization requested without an optimizer", ErrHyper)
		}
		residuals := make([]float64, y.Len())
		copy(residuals, y.RawVector().Data)
		if err := ip.Optimizer.Optimize(theta, ev, p.Train, residuals); err != nil {
			log.Warn("hyperparameter optimization failed", "err", err)
			return nil, fmt.Errorf("optimize: %w", err)
		}
		log.Debug("optimized", "theta", theta)
	}

	kxx, err := ev.Self(theta, p.Train)
	if err != nil {
		return nil, fmt.Errorf("training covariance: %w", err)
	}
	fit, err := Weights(kxx, y, ip.opts...)
	if err != nil {
		return nil, err
	}
	kxp, err := ev.Cov(theta, p.Train, p.Query)
	if err != nil {
		return nil, fmt.Errorf("cross covariance: %w", err)
	}
	mean, err := fit.Predict(kxp)
	if err != nil {
		return nil, err
	}
	if p.Detrend != nil {
		mean.AddVec(mean, mat.NewVecDense(len(p.Detrend.Query), p.Detrend.Query))
	}

	var cov *mat.SymDense
	if p.Want == MeanAndCovariance {
		kpp, err := ev.Self(theta, p.Query)
		if err != nil {
			return nil, fmt.Errorf("query covariance: %w", err)
		}
		if cov, err = fit.Covariance(nil, kpp, kxp); err != nil {
			return nil, err
		}
	}

	lik, err := fit.LogLikelihood(y)
	if err != nil {
		return nil, err
	}

	if p.Optimize {
		copy(p.Theta, theta)
	}
	return &Result{
		Mean:       mean,
		Cov:        cov,
		Likelihood: lik,
		Theta:      theta,
	}, nil
}

// IsSingular reports whether err was caused by a covariance matrix
// which could not be factored.
func IsSingular(err error) bool {
	return errors.Is(err, ErrSingular)
}
