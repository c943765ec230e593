package gpr

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Likelihood is the marginal log-likelihood of the training outputs
// split into its additive terms.
type Likelihood struct {
	DataFit       float64 // −½·yᵀw
	Complexity    float64 // −½·log|K+eps·I|
	Normalization float64 // −½·n·log 2π
}

// Total returns the log-likelihood.
func (l Likelihood) Total() float64 {
	return l.DataFit + l.Complexity + l.Normalization
}

// LogLikelihood returns the marginal log-likelihood of y under the
// fit. The log-determinant comes from the diagonal of the factor,
// which must be strictly positive.
func (f *Fit) LogLikelihood(y mat.Vector) (Likelihood, error) {
	n := f.Len()
	if y.Len() != n {
		return Likelihood{}, dimErrorf("%d weights, outputs have length %d", n, y.Len())
	}
	logdet := 0.
	for i := 0; i != n; i++ {
		d := f.L.At(i, i)
		if !(d > 0) {
			return Likelihood{}, &SingularError{Stage: "likelihood", N: n, Minor: i + 1}
		}
		logdet += 2 * math.Log(d)
	}
	return Likelihood{
		DataFit:       -0.5 * mat.Dot(y, f.W),
		Complexity:    -0.5 * logdet,
		Normalization: -0.5 * float64(n) * math.Log(2*math.Pi),
	}, nil
}
