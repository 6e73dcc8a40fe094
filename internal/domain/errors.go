package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. unknown meal slot, day outside the trip).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the logged-in person tries to act for someone
// they do not manage, or to use admin mode without unlocking it.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrNotLoggedIn is returned by the planner when a command arrives for a person
// without an active session. Handlers should map this to HTTP 401.
var ErrNotLoggedIn = errors.New("not logged in")
