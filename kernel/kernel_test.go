package kernel

import (
	"errors"
	"math"
	"testing"

	"bitbucket.org/dtolpin/gpr/gpr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	dx  = 1e-6
	eps = 1e-5
)

func TestSE(t *testing.T) {
	for i, c := range []struct {
		theta  []float64
		xa, xb []float64
		k      float64
	}{
		{[]float64{1, 0.1, 1}, []float64{0}, []float64{0}, 1},
		{[]float64{2, 0.1, 1}, []float64{0}, []float64{1}, 4 * math.Exp(-1)},
		{[]float64{1, 0, 0.5, 2}, []float64{0, 0}, []float64{2, 1}, math.Exp(-5)},
		{[]float64{-1, 0, -0.5, 2}, []float64{0, 0}, []float64{2, 1}, math.Exp(-5)},
	} {
		assert.InDelta(t, c.k, SE.Cov(c.theta, c.xa, c.xb), 1e-12, "case %d", i)
		assert.Equal(t, SE.Cov(c.theta, c.xa, c.xb), SE.Cov(c.theta, c.xb, c.xa),
			"case %d: not symmetric", i)
	}
}

func TestSEGradient(t *testing.T) {
	for i, c := range []struct {
		theta  []float64
		xa, xb []float64
	}{
		{[]float64{1, 0.1, 1}, []float64{0}, []float64{0.5}},
		{[]float64{0.7, 0.3, 1.5, 0.4}, []float64{0.2, -1}, []float64{1, 0.3}},
	} {
		grad := make([]float64, len(c.theta))
		SE.CovGrad(c.theta, c.xa, c.xb, grad)
		k0 := SE.Cov(c.theta, c.xa, c.xb)
		for j := range c.theta {
			theta0 := c.theta[j]
			c.theta[j] += dx
			dkdx := (SE.Cov(c.theta, c.xa, c.xb) - k0) / dx
			c.theta[j] = theta0
			if math.Abs(grad[j]-dkdx) > eps {
				t.Errorf("%d: dk/dtheta%d mismatch: got %.8f, want %.8f",
					i, j, grad[j], dkdx)
			}
		}

		SE.NoiseGrad(c.theta, grad)
		for j := range grad {
			want := 0.
			if j == s {
				want = 2 * c.theta[s]
			}
			assert.Equal(t, want, grad[j], "%d: noise gradient %d", i, j)
		}
	}
}

func TestStationary(t *testing.T) {
	for _, c := range []struct {
		name  string
		k     gpr.PairKernel
		theta []float64
	}{
		{"matern52", Matern52, []float64{1.5, 0.1, 2}},
		{"periodic", Periodic, []float64{1.5, 0.1, 2, 3}},
	} {
		t.Run(c.name, func(t *testing.T) {
			xa, xb := []float64{0.3, -0.2}, []float64{1.1, 0.4}
			assert.InDelta(t, 2.25, c.k.Cov(c.theta, xa, xa), 1e-12)
			assert.Equal(t, c.k.Cov(c.theta, xa, xb), c.k.Cov(c.theta, xb, xa))
			assert.LessOrEqual(t, c.k.Cov(c.theta, xa, xb), c.k.Cov(c.theta, xa, xa))
			assert.Equal(t, len(c.theta), c.k.NTheta(2))
		})
	}
}

func TestAuxSE(t *testing.T) {
	theta := []float64{1, 0.1, 1, 2}
	xa, xb := []float64{0}, []float64{1}
	aa, ab := []float64{0}, []float64{0.5}
	assert.InDelta(t, math.Exp(-1-1), AuxSE.Cov(theta, xa, xb, aa, ab), 1e-12)
	// Identical covariates reduce to the plain kernel.
	assert.InDelta(t, SE.Cov(theta[:3], xa, xb), AuxSE.Cov(theta, xa, xb, aa, aa), 1e-12)
	assert.Equal(t, 4, AuxSE.NTheta(1, 1))
}

func TestByName(t *testing.T) {
	for _, name := range Names {
		ev, err := ByName(name)
		require.NoError(t, err, name)
		theta := Initial(ev, 2, 1)
		assert.Len(t, theta, ev.NTheta(2, 1), name)
		assert.Equal(t, 0.1, theta[s], name)
	}
	_, err := ByName("rbf")
	assert.True(t, errors.Is(err, ErrUnknown))
}

func TestEvaluator(t *testing.T) {
	ev := gpr.Plain(SE)
	theta := []float64{1, 0.5, 1}
	x := gpr.Inputs{X: [][]float64{{0}, {1}, {2.5}}}
	k, err := ev.Self(theta, x)
	require.NoError(t, err)
	for i := 0; i != 3; i++ {
		assert.InDelta(t, 1.25, k.At(i, i), 1e-12)
		for j := 0; j != 3; j++ {
			assert.Equal(t, k.At(i, j), k.At(j, i))
		}
	}
	kxp, err := ev.Cov(theta, x, gpr.Inputs{X: [][]float64{{0}, {1}}})
	require.NoError(t, err)
	r, cols := kxp.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, cols)
	assert.InDelta(t, 1, kxp.At(0, 0), 1e-12)

	_, err = ev.Self([]float64{1, 0.5}, x)
	assert.True(t, errors.Is(err, gpr.ErrHyper))

	dk, err := ev.(gpr.Differentiable).SelfGrad(theta, x)
	require.NoError(t, err)
	require.Len(t, dk, 3)
	assert.InDelta(t, 1, dk[s].At(1, 1), 1e-12)
	assert.Equal(t, 0., dk[s].At(0, 1))
}

func TestAsymmetricEvaluator(t *testing.T) {
	ev := gpr.Asymmetric(AuxSE)
	theta := []float64{1, 0, 1, 1}
	x := gpr.Inputs{X: [][]float64{{0}, {1}}}
	_, err := ev.Self(theta, x)
	assert.True(t, errors.Is(err, gpr.ErrDimension), "covariates are required")

	x.Aux = [][]float64{{0}, {1}}
	k, err := ev.Self(theta, x)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-2), k.At(0, 1), 1e-12)

	_, err = ev.(gpr.Differentiable).SelfGrad(theta, x)
	assert.True(t, errors.Is(err, gpr.ErrNoGradient))
}
