package rental

import "fmt"

// ValidationError rejects caller input before any lock is taken.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports which referenced rows do not exist.
type NotFoundError struct {
	Resource string
	IDs      []int64
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %v", e.Resource, e.IDs)
}

// ConflictError reports rows that exist but are in the wrong state for the
// requested operation, including lock timeouts.
type ConflictError struct {
	Reason string
	IDs    []int64
}

func (e *ConflictError) Error() string {
	if len(e.IDs) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.IDs)
}
