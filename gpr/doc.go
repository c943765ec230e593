// Package gpr implements the linear algebra of Gaussian process
// regression: regularized Cholesky solves for the fit weights,
// predictive mean and covariance, the marginal log-likelihood of
// the training data, and sampling from a Gaussian process.
//
// Covariance matrices are regularized by adding Jitter to the
// diagonal before factoring. A Fit keeps the weights together with
// the lower Cholesky factor they were computed with, so that later
// stages reuse the factor instead of factoring again.
//
// Routines never mutate their arguments, allocate all scratch
// memory per call, and keep no state between calls; independent
// calls may run concurrently.
package gpr
