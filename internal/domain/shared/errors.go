package shared

import "fmt"

// Validation codes reported through ValidationError.Code
const (
	CodeInvalidAmount = "invalid_amount"
	CodeInvalidType   = "invalid_type"
	CodeInvalidDate   = "invalid_date"
	CodeEmptyName     = "empty_name"
	CodeInvalidPhone  = "invalid_phone"
	CodeMissingID     = "missing_id"
)

// ValidationError indicates malformed or out-of-range user input.
// No state is mutated when it is returned.
type ValidationError struct {
	Field string
	Code  string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Code)
}

// Is implements the errors.Is interface for ValidationError
func (e ValidationError) Is(target error) bool {
	t, ok := target.(ValidationError)
	if !ok {
		return false
	}
	// An empty target code matches any validation failure
	if t.Code == "" {
		return true
	}
	return e.Code == t.Code
}

// NotFoundError indicates a reference to a resource that does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return e.Resource + " not found: " + e.ID
}

// Is implements the errors.Is interface for NotFoundError
func (e NotFoundError) Is(target error) bool {
	t, ok := target.(NotFoundError)
	if !ok {
		return false
	}
	if t.Resource != "" && t.Resource != e.Resource {
		return false
	}
	return t.ID == "" || t.ID == e.ID
}

// PersistenceError wraps a failure of the underlying key-value store
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

func (e PersistenceError) Unwrap() error {
	return e.Err
}

// Is implements the errors.Is interface for PersistenceError
func (e PersistenceError) Is(target error) bool {
	t, ok := target.(PersistenceError)
	if !ok {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}
