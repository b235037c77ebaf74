package models

// ValidationError is a caller-fixable input problem; its text is safe to
// surface verbatim.
type ValidationError struct {
	Problem string
}

func (e *ValidationError) Error() string { return e.Problem }
