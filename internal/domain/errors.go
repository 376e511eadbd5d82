package domain

import "errors"

var (
	// ErrMissingFields is returned when a required form field is absent.
	ErrMissingFields = errors.New("all fields are required")
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrPasswordTooShort is returned when the password is under six characters.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password. The message is deliberately identical in both cases so the
	// login form cannot be used to probe which emails exist.
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrProgressNotFound is returned when a user has no progress record.
	ErrProgressNotFound = errors.New("user progress not found")
	// ErrSessionNotFound is returned when a session id is missing or expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionUnavailable is returned when the session store cannot persist
	// a new session. Login must fail rather than redirect in this case.
	ErrSessionUnavailable = errors.New("session store unavailable")
	// ErrStoreUnavailable is returned on infrastructure-level store failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsValidation reports whether err is a user-correctable input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrPasswordMismatch) ||
		errors.Is(err, ErrPasswordTooShort)
}

// IsConflict reports whether err is a duplicate-resource conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailTaken)
}

// IsUnauthorized reports whether err is a credential failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}
