package model

import "fmt"

// NotFoundError is returned when a defect id is not registered in the catalog
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("defect %q not found in catalog", e.ID)
}

// DuplicateIDError is returned when an id is registered twice
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("defect %q already registered", e.ID)
}

// MatcherError signals that one heuristic could not evaluate its input.
// The scanner turns it into a warning instead of failing the scan.
type MatcherError struct {
	MatcherID string
	Err       error
}

func (e *MatcherError) Error() string {
	return fmt.Sprintf("matcher %s: %v", e.MatcherID, e.Err)
}

func (e *MatcherError) Unwrap() error { return e.Err }

// InputError is returned when the scan input cannot be interpreted as text
type InputError struct {
	SnippetID string
	Reason    string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("snippet %s: %s", e.SnippetID, e.Reason)
}
