// Package priors defines log-priors over the logarithms of the
// kernel hyperparameters.
package priors

import (
	"fmt"

	"bitbucket.org/dtolpin/infergo/dist"
	"bitbucket.org/dtolpin/infergo/model"
)

// Priors is a differentiable model of the log-hyperparameters.
type Priors interface {
	model.Model
	Gradient() []float64
	NTheta() int
}

// LogNormal puts an independent normal prior on the logarithm of
// every hyperparameter.
type LogNormal struct {
	Mu, Sigma []float64
	grad      []float64
}

// NewLogNormal returns priors with the given means and standard
// deviations of the log-hyperparameters.
func NewLogNormal(mu, sigma []float64) (*LogNormal, error) {
	if len(mu) != len(sigma) {
		return nil, fmt.Errorf("priors: %d means, %d deviations", len(mu), len(sigma))
	}
	for i := range sigma {
		if !(sigma[i] > 0) {
			return nil, fmt.Errorf("priors: deviation %d is %v", i, sigma[i])
		}
	}
	return &LogNormal{Mu: mu, Sigma: sigma}, nil
}

// Default returns weakly informative priors for an ntheta-long
// vector laid out as [output scale, noise scale, kernel-specific...].
func Default(ntheta int) *LogNormal {
	const (
		c = iota // output scale
		s        // noise scale
	)
	mu := make([]float64, ntheta)
	sigma := make([]float64, ntheta)
	// Output scale is around 1.
	mu[c], sigma[c] = 0, 1
	// Noise is mostly well below the output scale.
	mu[s], sigma[s] = -3, 2
	// Length scales and periods are around 1, in wide margins.
	for i := s + 1; i < ntheta; i++ {
		mu[i], sigma[i] = 0, 2
	}
	return &LogNormal{Mu: mu, Sigma: sigma}
}

func (m *LogNormal) NTheta() int {
	return len(m.Mu)
}

func (m *LogNormal) Observe(x []float64) float64 {
	ll := 0.
	m.grad = make([]float64, len(x))
	for i := range x {
		ll += dist.Normal.Logp(m.Mu[i], m.Sigma[i], x[i])
		m.grad[i] = -(x[i] - m.Mu[i]) / (m.Sigma[i] * m.Sigma[i])
	}
	return ll
}

func (m *LogNormal) Gradient() []float64 {
	return m.grad
}
