// Package hostinfo reads the identity of the running host.
package hostinfo

import "fmt"

// Identity is the host snapshot taken once at startup.
type Identity struct {
	// OSName is the kernel/OS name, e.g. "Linux" or "Darwin".
	OSName string
	// Machine is the hardware identifier, e.g. "x86_64" or "arm64".
	Machine string
}

// QueryError reports a failed identity query.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Query performs a single platform call and returns the host identity.
// A failure is always a *QueryError.
func Query() (Identity, error) {
	return query()
}
