package gpr

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Sample draws a sample path from the Gaussian process with the
// given mean and covariance k as mean + L·z, where L is the factor
// of the regularized k and z are standard normal variates produced
// from seed. A nil mean is the zero mean. Equal arguments produce
// bit-identical samples.
func Sample(mean mat.Vector, k mat.Symmetric, seed uint64, opts ...Option) (*mat.VecDense, error) {
	o := gather(opts)
	n := k.Symmetric()
	switch {
	case n == 0:
		return nil, dimErrorf("empty covariance")
	case mean != nil && mean.Len() != n:
		return nil, dimErrorf("covariance is %d×%d, mean has length %d", n, n, mean.Len())
	}
	l, err := factorize("sample", k, o.jitter)
	if err != nil {
		return nil, err
	}
	z := make([]float64, n)
	o.normals.Fill(seed, z)
	y := mat.NewVecDense(n, z)
	blas64.Trmv(blas.NoTrans, l.RawTriangular(), y.RawVector())
	if mean != nil {
		y.AddVec(y, mean)
	}
	return y, nil
}
