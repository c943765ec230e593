package priors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	dx  = 1e-8
	eps = 1e-4
)

func TestGradient(t *testing.T) {
	m := Default(4)
	for i, x := range [][]float64{
		{0, 0, 0, 0},
		{1, -2, 0.5, 3},
		{-1, -5, 2, -0.5},
	} {
		ll0 := m.Observe(x)
		grad := append([]float64(nil), m.Gradient()...)
		for j := range x {
			x0 := x[j]
			x[j] += dx
			ll := m.Observe(x)
			dldx := (ll - ll0) / dx
			x[j] = x0
			if math.Abs(grad[j]-dldx) > eps {
				t.Errorf("%d: dl/dx%d mismatch: got %.8f, want %.4f",
					i, j, dldx, grad[j])
			}
		}
	}
}

func TestLogNormal(t *testing.T) {
	m, err := NewLogNormal([]float64{0}, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, 1, m.NTheta())
	assert.InDelta(t, -0.5*math.Log(2*math.Pi), m.Observe([]float64{0}), 1e-12)
	assert.InDelta(t, -0.5*math.Log(2*math.Pi)-2, m.Observe([]float64{2}), 1e-12)

	_, err = NewLogNormal([]float64{0, 0}, []float64{1})
	assert.Error(t, err)
	_, err = NewLogNormal([]float64{0}, []float64{0})
	assert.Error(t, err)
}
