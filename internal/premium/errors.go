package premium

import (
	"errors"
	"fmt"
)

// ErrInvalidDeductible is returned when a deductible percentage is not one of
// the enumerated keys of its coverage's surcharge table.
var ErrInvalidDeductible = errors.New("invalid deductible")

// DeductibleError carries the coverage and percentage that were rejected.
type DeductibleError struct {
	Coverage Coverage
	Percent  int
}

func (e *DeductibleError) Error() string {
	return fmt.Sprintf("%s: %s %d%%", ErrInvalidDeductible, e.Coverage.Label(), e.Percent)
}

func (e *DeductibleError) Unwrap() error {
	return ErrInvalidDeductible
}
