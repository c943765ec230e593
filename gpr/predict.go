package gpr

import (
	"gonum.org/v1/gonum/mat"
)

// Predict returns the predictive mean yp[i] = Σ_j kxp[j,i]·w[j],
// where kxp is the ns×np covariance between the training and the
// query points.
func Predict(w mat.Vector, kxp mat.Matrix) (*mat.VecDense, error) {
	ns, np := kxp.Dims()
	switch {
	case ns != w.Len():
		return nil, dimErrorf("%d weights, cross-covariance has %d rows", w.Len(), ns)
	case np == 0:
		return nil, dimErrorf("no query points")
	}
	yp := mat.NewVecDense(np, nil)
	yp.MulVec(kxp.T(), w)
	return yp, nil
}

// Predict returns the predictive mean for the cross-covariance kxp.
func (f *Fit) Predict(kxp mat.Matrix) (*mat.VecDense, error) {
	return Predict(f.W, kxp)
}
