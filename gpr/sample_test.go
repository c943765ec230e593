package gpr_test

import (
	"errors"
	"math/rand"
	"testing"

	"bitbucket.org/dtolpin/gpr/gpr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSampleDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	k := spd(rng, 6)
	mean := randVec(rng, 6)
	for _, m := range []mat.Vector{nil, mean} {
		a, err := gpr.Sample(m, k, 42)
		require.NoError(t, err)
		b, err := gpr.Sample(m, k, 42)
		require.NoError(t, err)
		assert.Equal(t, a.RawVector().Data, b.RawVector().Data)

		c, err := gpr.Sample(m, k, 43)
		require.NoError(t, err)
		assert.NotEqual(t, a.RawVector().Data, c.RawVector().Data)
	}
}

func TestSampleReparameterization(t *testing.T) {
	k := mat.NewSymDense(2, []float64{4, 2, 2, 5})
	// z = (1, 1): y = L·z with L = [[2, 0], [1, 2]], up to jitter.
	ones := gpr.WithNormals(gpr.NormalsFunc(func(seed uint64, z []float64) {
		for i := range z {
			z[i] = 1
		}
	}))
	y, err := gpr.Sample(nil, k, 0, ones)
	require.NoError(t, err)
	assert.InDelta(t, 2, y.AtVec(0), 1e-6)
	assert.InDelta(t, 3, y.AtVec(1), 1e-6)

	mean := mat.NewVecDense(2, []float64{10, -10})
	y, err = gpr.Sample(mean, k, 0, ones)
	require.NoError(t, err)
	assert.InDelta(t, 12, y.AtVec(0), 1e-6)
	assert.InDelta(t, -7, y.AtVec(1), 1e-6)
	assert.Equal(t, 10., mean.AtVec(0))
}

func TestSampleMoments(t *testing.T) {
	k := mat.NewSymDense(2, []float64{1, 0.8, 0.8, 1})
	const n = 20000
	var s0, s1, s00, s01 float64
	for seed := uint64(0); seed != n; seed++ {
		y, err := gpr.Sample(nil, k, seed)
		require.NoError(t, err)
		y0, y1 := y.AtVec(0), y.AtVec(1)
		s0 += y0
		s1 += y1
		s00 += y0 * y0
		s01 += y0 * y1
	}
	assert.InDelta(t, 0, s0/n, 0.05)
	assert.InDelta(t, 0, s1/n, 0.05)
	assert.InDelta(t, 1, s00/n, 0.05)
	assert.InDelta(t, 0.8, s01/n, 0.05)
}

func TestSampleErrors(t *testing.T) {
	_, err := gpr.Sample(nil, mat.NewSymDense(2, nil), 1, gpr.WithJitter(0))
	assert.True(t, gpr.IsSingular(err))

	_, err = gpr.Sample(mat.NewVecDense(3, nil), mat.NewSymDense(2, []float64{1, 0, 0, 1}), 1)
	assert.True(t, errors.Is(err, gpr.ErrDimension))
}
