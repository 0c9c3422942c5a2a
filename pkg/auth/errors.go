package auth

import "errors"

// Classified session errors. Callers check these with errors.Is; no raw
// transport error escapes the package without being wrapped in one of them
// or reported as a plain failed call.
var (
	// ErrCredentialsRejected means the login endpoint refused the
	// username/password pair. Session state is unchanged.
	ErrCredentialsRejected = errors.New("credentials rejected")

	// ErrRefreshExhausted means the refresh endpoint failed or refused the
	// refresh token. The session has been torn down.
	ErrRefreshExhausted = errors.New("refresh token exhausted")

	// ErrNoRefreshToken means a 401 arrived while no refresh token was
	// held, so no refresh was attempted.
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrProfileUnavailable means the profile endpoint failed even with a
	// valid-looking access token. The session has been torn down: an
	// authenticated session without a usable profile is not a valid state.
	ErrProfileUnavailable = errors.New("profile unavailable")
)
