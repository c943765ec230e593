package gpr

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// Fit is the solution of a regularized system (K+eps·I)·W = y
// together with the lower Cholesky factor L of K+eps·I.
type Fit struct {
	W *mat.VecDense
	L *mat.TriDense
}

// Factorize returns the lower Cholesky factor of k with the jitter
// added to the diagonal. k is not modified.
func Factorize(k mat.Symmetric, opts ...Option) (*mat.TriDense, error) {
	o := gather(opts)
	if k.Symmetric() == 0 {
		return nil, dimErrorf("empty covariance")
	}
	return factorize("factorize", k, o.jitter)
}

func factorize(stage string, k mat.Symmetric, eps float64) (*mat.TriDense, error) {
	n := k.Symmetric()
	if err := checkAlloc(n, n); err != nil {
		return nil, err
	}
	data := make([]float64, n*n)
	for i := 0; i != n; i++ {
		for j := 0; j <= i; j++ {
			data[i*n+j] = k.At(i, j)
		}
		data[i*n+i] += eps
	}
	a := blas64.Symmetric{Uplo: blas.Lower, N: n, Stride: n, Data: data}
	if _, ok := lapack64.Potrf(a); !ok {
		return nil, &SingularError{Stage: stage, N: n, Minor: failedMinor(data, n)}
	}
	return mat.NewTriDense(n, mat.Lower, data), nil
}

// failedMinor locates the first pivot left non-positive by an
// unsuccessful factorization, 1-based; 0 if none is found.
func failedMinor(data []float64, n int) int {
	for i := 0; i != n; i++ {
		d := data[i*n+i]
		if d <= 0 || math.IsNaN(d) {
			return i + 1
		}
	}
	return 0
}

// Weights solves (k+eps·I)·w = y by Cholesky factorization,
// eps being Jitter unless overridden. The factor is kept in the
// returned Fit for reuse.
func Weights(k mat.Symmetric, y mat.Vector, opts ...Option) (*Fit, error) {
	o := gather(opts)
	n := k.Symmetric()
	switch {
	case n == 0:
		return nil, dimErrorf("empty covariance")
	case y.Len() != n:
		return nil, dimErrorf("covariance is %d×%d, outputs have length %d",
			n, n, y.Len())
	}
	l, err := factorize("weights", k, o.jitter)
	if err != nil {
		return nil, err
	}
	w := mat.NewVecDense(n, nil)
	w.CopyVec(y)
	t, v := l.RawTriangular(), w.RawVector()
	blas64.Trsv(blas.NoTrans, t, v)
	blas64.Trsv(blas.Trans, t, v)
	return &Fit{W: w, L: l}, nil
}

// Len returns the number of training points of the fit.
func (f *Fit) Len() int {
	return f.W.Len()
}

// Solve returns X solving (K+eps·I)·X = b with the factor of the fit.
func (f *Fit) Solve(b mat.Matrix) (*mat.Dense, error) {
	n := f.Len()
	r, c := b.Dims()
	if r != n {
		return nil, dimErrorf("factor is %d×%d, right-hand side has %d rows", n, n, r)
	}
	if err := checkAlloc(r, c); err != nil {
		return nil, err
	}
	x := mat.NewDense(r, c, nil)
	x.Copy(b)
	t, g := f.L.RawTriangular(), x.RawMatrix()
	blas64.Trsm(blas.Left, blas.NoTrans, 1, t, g)
	blas64.Trsm(blas.Left, blas.Trans, 1, t, g)
	return x, nil
}

// LogDet returns the log-determinant of the regularized covariance,
// 2·Σ log L[i,i].
func (f *Fit) LogDet() float64 {
	logdet := 0.
	for i := 0; i != f.Len(); i++ {
		logdet += 2 * math.Log(f.L.At(i, i))
	}
	return logdet
}
