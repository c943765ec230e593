package gpr

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Jitter is added to every diagonal entry of a covariance matrix
// before it is factored.
const Jitter = 1e-7

// Normals fills z with independent standard normal variates,
// deterministically for a given seed.
type Normals interface {
	Fill(seed uint64, z []float64)
}

// NormalsFunc adapts a function to Normals.
type NormalsFunc func(seed uint64, z []float64)

func (f NormalsFunc) Fill(seed uint64, z []float64) { f(seed, z) }

// UnitNormal draws the variates from a gonum normal distribution
// over a freshly seeded source.
var UnitNormal = NormalsFunc(func(seed uint64, z []float64) {
	n := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
	for i := range z {
		z[i] = n.Rand()
	}
})

type options struct {
	jitter  float64
	normals Normals
}

// Option configures the numerical routines.
type Option func(*options)

// WithJitter overrides the diagonal regularization. Zero disables
// regularization; negative or non-finite values panic.
func WithJitter(eps float64) Option {
	if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		panic(fmt.Sprintf("gpr: invalid jitter %v", eps))
	}
	return func(o *options) {
		o.jitter = eps
	}
}

// WithNormals replaces the source of standard normal variates
// used by Sample.
func WithNormals(src Normals) Option {
	return func(o *options) {
		if src != nil {
			o.normals = src
		}
	}
}

func gather(opts []Option) options {
	o := options{
		jitter:  Jitter,
		normals: UnitNormal,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
