package helper

import "fmt"

// NewError wraps an error with a short context description.
// The context should name the operation that failed, not the cause.
func NewError(context string, err error) error {
	return fmt.Errorf("error in %v: %w", context, err)
}
