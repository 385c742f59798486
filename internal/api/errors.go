package api

import "fmt"

// ValidationError reports a local precondition failure (blank topic, empty
// outline, blank refine instruction). It never corresponds to a network
// round trip.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string { return e.Reason }

// AuthError reports a missing, invalid or expired token. Callers are
// expected to drop back to the login flow when they see one.
type AuthError struct {
	Reason string
}

func (e AuthError) Error() string {
	if e.Reason == "" {
		return "not authenticated"
	}
	return e.Reason
}

// GenerationError reports a remote AI failure (suggest/generate/refine).
// The affected draft or section is left in its last good state.
type GenerationError struct {
	Op     string
	Reason string
}

func (e GenerationError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Reason)
}

// NetworkError reports a transport failure or a non-success response that
// doesn't map to a more specific category.
type NetworkError struct {
	Op     string
	Reason string
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// ExportError reports a failed export; no artifact was delivered.
type ExportError struct {
	Reason string
}

func (e ExportError) Error() string {
	return "export failed: " + e.Reason
}
