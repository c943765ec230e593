package gpr_test

import (
	"errors"
	"math/rand"
	"testing"

	"bitbucket.org/dtolpin/gpr/gpr"
	"bitbucket.org/dtolpin/gpr/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// problem builds the covariances of ns training and np query
// points on a line under the squared exponential kernel.
func problem(t *testing.T, rng *rand.Rand, ns, np int) (kxx, kpp *mat.SymDense, kxp *mat.Dense) {
	ev := gpr.Plain(kernel.SE)
	theta := []float64{1, 0.1, 0.7}
	var x, xp gpr.Inputs
	for i := 0; i != ns; i++ {
		x.X = append(x.X, []float64{4 * rng.Float64()})
	}
	for i := 0; i != np; i++ {
		xp.X = append(xp.X, []float64{5*rng.Float64() - 0.5})
	}
	kxx, err := ev.Self(theta, x)
	require.NoError(t, err)
	kpp, err = ev.Self(theta, xp)
	require.NoError(t, err)
	kxp, err = ev.Cov(theta, x, xp)
	require.NoError(t, err)
	return kxx, kpp, kxp
}

func TestCovarianceSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, np := range []int{1, 2, 5, 17} {
		kxx, kpp, kxp := problem(t, rng, 6, np)
		fit, err := gpr.Weights(kxx, mat.NewVecDense(6, nil))
		require.NoError(t, err)
		cov, err := fit.Covariance(nil, kpp, kxp)
		require.NoError(t, err)

		raw := cov.RawSymmetric()
		for i := 0; i != np; i++ {
			assert.GreaterOrEqual(t, cov.At(i, i), 0., "np=%d: variance %d", np, i)
			for j := 0; j != np; j++ {
				assert.Equal(t, raw.Data[i*raw.Stride+j], raw.Data[j*raw.Stride+i],
					"np=%d: (%d, %d)", np, i, j)
			}
		}
	}
}

func TestCovarianceVariantsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	for _, c := range []struct{ ns, np int }{{1, 1}, {3, 2}, {8, 5}, {12, 12}} {
		kxx, kpp, kxp := problem(t, rng, c.ns, c.np)
		kxx0 := mat.NewSymDense(c.ns, nil)
		kxx0.CopySym(kxx)

		fit, err := gpr.Weights(kxx, mat.NewVecDense(c.ns, nil))
		require.NoError(t, err)
		byFactor, err := fit.Covariance(nil, kpp, kxp)
		require.NoError(t, err)
		byInverse, err := gpr.CovarianceInverse(nil, kpp, kxp, kxx)
		require.NoError(t, err)

		assert.True(t, mat.EqualApprox(byFactor, byInverse, 1e-9),
			"ns=%d, np=%d", c.ns, c.np)
		assert.True(t, mat.Equal(kxx, kxx0), "covariance was modified")
	}
}

func TestCovarianceCoincident(t *testing.T) {
	// One training point, two query points on top of it.
	kxx := mat.NewSymDense(1, []float64{1})
	fit, err := gpr.Weights(kxx, mat.NewVecDense(1, []float64{5}))
	require.NoError(t, err)
	kpp := mat.NewSymDense(2, []float64{1, 1, 1, 1})
	kxp := mat.NewDense(1, 2, []float64{1, 1})

	dst := mat.NewSymDense(2, nil)
	cov, err := fit.Covariance(dst, kpp, kxp)
	require.NoError(t, err)
	assert.True(t, cov == dst, "result is stored in dst")
	inv, err := gpr.CovarianceInverse(nil, kpp, kxp, kxx)
	require.NoError(t, err)
	for _, m := range []*mat.SymDense{cov, inv} {
		for i := 0; i != 2; i++ {
			for j := 0; j != 2; j++ {
				assert.InDelta(t, 0, m.At(i, j), 1e-6)
				assert.Equal(t, m.At(i, j), m.At(j, i))
			}
		}
	}
	assert.Equal(t, 1., kxx.At(0, 0))
}

func TestCovarianceDimension(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	kxx, kpp, kxp := problem(t, rng, 4, 3)
	fit, err := gpr.Weights(kxx, mat.NewVecDense(4, nil))
	require.NoError(t, err)

	for i, c := range []struct {
		dst *mat.SymDense
		kpp mat.Symmetric
		kxp mat.Matrix
	}{
		{mat.NewSymDense(2, nil), kpp, kxp},
		{nil, mat.NewSymDense(2, nil), kxp},
		{nil, kpp, mat.NewDense(3, 3, nil)},
	} {
		_, err := fit.Covariance(c.dst, c.kpp, c.kxp)
		assert.True(t, errors.Is(err, gpr.ErrDimension), "case %d: %v", i, err)
		_, err = gpr.CovarianceInverse(c.dst, c.kpp, c.kxp, kxx)
		assert.True(t, errors.Is(err, gpr.ErrDimension), "case %d: %v", i, err)
	}
}

func TestCovarianceInverseSingular(t *testing.T) {
	kxx := mat.NewSymDense(2, nil)
	kpp := mat.NewSymDense(1, []float64{1})
	kxp := mat.NewDense(2, 1, []float64{0, 0})
	_, err := gpr.CovarianceInverse(nil, kpp, kxp, kxx, gpr.WithJitter(0))
	assert.True(t, gpr.IsSingular(err))
}

func TestCovarianceInverseSingularKeepsDst(t *testing.T) {
	kxx := mat.NewSymDense(2, nil)
	kpp := mat.NewSymDense(1, []float64{42})
	kxp := mat.NewDense(2, 1, []float64{0, 0})
	dst := mat.NewSymDense(1, []float64{-7})
	cov, err := gpr.CovarianceInverse(dst, kpp, kxp, kxx, gpr.WithJitter(0))
	require.True(t, gpr.IsSingular(err))
	assert.Nil(t, cov)
	assert.Equal(t, -7., dst.At(0, 0), "dst is untouched on failure")
}
