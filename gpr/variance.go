package gpr

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Covariance computes the predictive covariance
//
//	kpp − kxpᵀ·(K+eps·I)⁻¹·kxp
//
// reusing the factor of the fit: V = L⁻¹·kxp, then kpp − Vᵀ·V by a
// rank-k update of one triangle, mirrored into the other. kxp is
// ns×np, kpp is np×np. The result is stored in dst, allocated if
// nil; none of the other arguments are modified.
func (f *Fit) Covariance(dst *mat.SymDense, kpp mat.Symmetric, kxp mat.Matrix) (*mat.SymDense, error) {
	if err := prepare(dst, f.Len(), kpp, kxp); err != nil {
		return nil, err
	}
	ns, np := kxp.Dims()
	v := mat.NewDense(ns, np, nil)
	v.Copy(kxp)
	blas64.Trsm(blas.Left, blas.NoTrans, 1, f.L.RawTriangular(), v.RawMatrix())

	dst = load(dst, kpp)
	c := dst.RawSymmetric()
	blas64.Syrk(blas.Trans, -1, v.RawMatrix(), 1, c)
	mirror(c)
	return dst, nil
}

// CovarianceInverse computes the same predictive covariance as
// Fit.Covariance from kxx directly: X solves (kxx+eps·I)·X = kxp,
// and the covariance is kpp − kxpᵀ·X, symmetrized. kxx is copied
// before regularization, so no argument is modified; dst is
// written only when the call succeeds.
func CovarianceInverse(dst *mat.SymDense, kpp mat.Symmetric, kxp mat.Matrix,
	kxx mat.Symmetric, opts ...Option) (*mat.SymDense, error) {
	o := gather(opts)
	ns := kxx.Symmetric()
	if ns == 0 {
		return nil, dimErrorf("empty covariance")
	}
	if err := prepare(dst, ns, kpp, kxp); err != nil {
		return nil, err
	}
	l, err := factorize("variance", kxx, o.jitter)
	if err != nil {
		return nil, err
	}
	fit := &Fit{W: mat.NewVecDense(ns, nil), L: l}
	x, err := fit.Solve(kxp)
	if err != nil {
		return nil, err
	}
	_, np := kxp.Dims()
	g := mat.NewDense(np, np, nil)
	g.Mul(kxp.T(), x)
	dst = load(dst, kpp)
	for i := 0; i != np; i++ {
		for j := i; j != np; j++ {
			dst.SetSym(i, j, dst.At(i, j)-0.5*(g.At(i, j)+g.At(j, i)))
		}
	}
	mirror(dst.RawSymmetric())
	return dst, nil
}

// prepare validates the shapes of a predictive covariance request.
func prepare(dst *mat.SymDense, ns int, kpp mat.Symmetric, kxp mat.Matrix) error {
	r, np := kxp.Dims()
	switch {
	case r != ns:
		return dimErrorf("cross-covariance has %d rows, want %d", r, ns)
	case np == 0:
		return dimErrorf("no query points")
	case kpp.Symmetric() != np:
		return dimErrorf("query covariance is %d×%d, want %d×%d",
			kpp.Symmetric(), kpp.Symmetric(), np, np)
	}
	if err := checkAlloc(ns, np); err != nil {
		return err
	}
	if dst != nil && dst.Symmetric() != np {
		return dimErrorf("destination is %d×%d, want %d×%d",
			dst.Symmetric(), dst.Symmetric(), np, np)
	}
	return nil
}

// load copies kpp into dst, allocating dst if nil.
func load(dst *mat.SymDense, kpp mat.Symmetric) *mat.SymDense {
	if dst == nil {
		dst = mat.NewSymDense(kpp.Symmetric(), nil)
	}
	dst.CopySym(kpp)
	return dst
}

// mirror copies the stored triangle of s into the other one, so
// that the raw storage is symmetric as well as the accessors.
func mirror(s blas64.Symmetric) {
	for i := 0; i != s.N; i++ {
		for j := i + 1; j != s.N; j++ {
			if s.Uplo == blas.Upper {
				s.Data[j*s.Stride+i] = s.Data[i*s.Stride+j]
			} else {
				s.Data[i*s.Stride+j] = s.Data[j*s.Stride+i]
			}
		}
	}
}
