package params

import "fmt"

// ValidationError reports a parameter that violates an input invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Message)
}
