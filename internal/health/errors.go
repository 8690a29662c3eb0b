package health

import "fmt"

// CheckFailedError is returned by indicators that can explain their
// unhealthy state. It carries the full Result so callers can still
// report detail for the failing component.
type CheckFailedError struct {
	Result Result
}

func (e *CheckFailedError) Error() string {
	if e.Result.Error != "" {
		return fmt.Sprintf("%s check failed: %s", e.Result.Name, e.Result.Error)
	}
	return fmt.Sprintf("%s check failed", e.Result.Name)
}
