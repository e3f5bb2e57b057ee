package services

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so callers cannot probe which emails have accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated covers missing, malformed, expired and revoked
	// tokens alike.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden means the caller is authenticated but holds the wrong
	// role. The message never says which role would have been accepted.
	ErrForbidden = errors.New("forbidden")
	// ErrNotAPatient means the targeted account exists but is not a
	// patient-role account.
	ErrNotAPatient = errors.New("account is not a patient")
)

// ValidationError reports a user-correctable input problem. Its message
// is safe to echo back to the client verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErr(msg string) error {
	return &ValidationError{Msg: msg}
}
