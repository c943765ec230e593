package gpr

import (
	"errors"
	"fmt"
)

// Every failure of a call is reported as exactly one of these,
// possibly wrapped with context; match with errors.Is.
var (
	// ErrSingular is returned when a regularized covariance matrix
	// is not positive definite and cannot be factored.
	ErrSingular = errors.New("gpr: covariance is not positive definite")

	// ErrAllocation is returned when a scratch buffer of the
	// requested size cannot be obtained.
	ErrAllocation = errors.New("gpr: cannot allocate buffer")

	// ErrDimension is returned when the sizes of arguments
	// are inconsistent.
	ErrDimension = errors.New("gpr: dimension mismatch")

	// ErrHyper is returned when the hyperparameter vector does
	// not fit the kernel.
	ErrHyper = errors.New("gpr: bad hyperparameters")
)

// SingularError reports the stage and the order of the leading
// minor at which a factorization failed.
type SingularError struct {
	Stage string
	N     int
	Minor int
}

func (e *SingularError) Error() string {
	if e.Minor > 0 {
		return fmt.Sprintf("%v: %s: leading minor %d of %d",
			ErrSingular, e.Stage, e.Minor, e.N)
	}
	return fmt.Sprintf("%v: %s: order %d", ErrSingular, e.Stage, e.N)
}

func (e *SingularError) Unwrap() error { return ErrSingular }

func dimErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrDimension}, args...)...)
}

// maxCells bounds a single dense buffer; larger requests are
// reported as ErrAllocation instead of crashing the runtime.
const maxCells = 1 << 31

// checkAlloc verifies that an r×c buffer can be allocated.
func checkAlloc(r, c int) error {
	switch {
	case r <= 0 || c <= 0:
		return fmt.Errorf("%w: %d×%d", ErrAllocation, r, c)
	case r > maxCells/c:
		return fmt.Errorf("%w: %d×%d exceeds %d cells", ErrAllocation, r, c, maxCells)
	}
	return nil
}
