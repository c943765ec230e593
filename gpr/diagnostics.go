package gpr

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Diagnostics summarize predictions against known outputs.
type Diagnostics struct {
	RMSE   float64 // root mean squared error
	SDSum  float64 // root mean predictive variance
	RChiSq float64 // mean squared error in units of variance
	NLPD   float64 // mean negative log predictive density
}

// Diagnose compares the predictive mean and the diagonal of the
// predictive covariance with the actual outputs.
func Diagnose(mean mat.Vector, cov mat.Symmetric, actual []float64) (Diagnostics, error) {
	n := mean.Len()
	switch {
	case n == 0:
		return Diagnostics{}, dimErrorf("no predictions")
	case len(actual) != n:
		return Diagnostics{}, dimErrorf("%d predictions, %d outputs", n, len(actual))
	case cov.Symmetric() != n:
		return Diagnostics{}, dimErrorf("%d predictions, covariance is %d×%d",
			n, cov.Symmetric(), cov.Symmetric())
	}
	sqerr := make([]float64, n)
	vari := make([]float64, n)
	chisq := make([]float64, n)
	nlpd := make([]float64, n)
	for i := 0; i != n; i++ {
		d := actual[i] - mean.AtVec(i)
		sqerr[i] = d * d
		vari[i] = cov.At(i, i)
		chisq[i] = sqerr[i] / vari[i]
		nlpd[i] = NLPD(actual[i], mean.AtVec(i), vari[i])
	}
	return Diagnostics{
		RMSE:   math.Sqrt(stat.Mean(sqerr, nil)),
		SDSum:  math.Sqrt(stat.Mean(vari, nil)),
		RChiSq: stat.Mean(chisq, nil),
		NLPD:   stat.Mean(nlpd, nil),
	}, nil
}

// NLPD is the negative log density of y under the normal predictive
// distribution with the given mean and variance.
func NLPD(y, mean, variance float64) float64 {
	d := y - mean
	return 0.5 * (math.Log(2*math.Pi*variance) + d*d/variance)
}
