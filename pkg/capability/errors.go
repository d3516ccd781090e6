package capability

import (
	"errors"
	"fmt"
)

// ErrBudgetUnverified is the failure reported when the budget gate denies a call.
var ErrBudgetUnverified = errors.New("Budget can't be verified")

// StatusError is returned for non-2xx capability responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}
