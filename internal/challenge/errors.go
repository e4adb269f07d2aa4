package challenge

import "fmt"

// OutOfOrderError is returned when a locked day is selected or completed.
// It is the only challenge error that must reach the user synchronously.
type OutOfOrderError struct {
	Day       int
	ActiveDay int
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("day %d is locked, current active day is %d", e.Day, e.ActiveDay)
}

// PersistenceWriteError wraps a failed durable write (progress counter or
// badge). Local state is already committed when it occurs, so callers log it
// and move on.
type PersistenceWriteError struct {
	Op  string
	Err error
}

func (e *PersistenceWriteError) Error() string {
	return fmt.Sprintf("durable write failed (%s): %v", e.Op, e.Err)
}

func (e *PersistenceWriteError) Unwrap() error { return e.Err }

// CatalogFetchError wraps a failed or empty exercise-catalog lookup. The day
// keeps its exercise unset and the caller may retry on the next visit.
type CatalogFetchError struct {
	MuscleGroup string
	Err         error
}

func (e *CatalogFetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("catalog returned no exercises for %q", e.MuscleGroup)
	}
	return fmt.Sprintf("catalog fetch for %q failed: %v", e.MuscleGroup, e.Err)
}

func (e *CatalogFetchError) Unwrap() error { return e.Err }

// CorruptStateError marks cached challenge data that failed validation.
// Recovery policy is recreate-from-scratch, never a crash.
type CorruptStateError struct {
	Reason string
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt challenge state: %s", e.Reason)
}
