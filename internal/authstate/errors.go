package authstate

import "errors"

// ErrAuthLoad is a sentinel for authentication-state load failures.
// Load and Save do not return it: their errors are *AuthLoadError
// wrapping the underlying os or JSON error.
var ErrAuthLoad = errors.New("failed to load authentication state")

// AuthLoadError carries the path and underlying cause of a failed
// storage-state read or write.
type AuthLoadError struct {
	Path string
	Err  error
}

func (e *AuthLoadError) Error() string {
	return "authstate: " + e.Path + ": " + e.Err.Error()
}

func (e *AuthLoadError) Unwrap() error { return e.Err }
