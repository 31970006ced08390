package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("access forbidden")
	ErrNotFound            = errors.New("resource not found")
	ErrConflict            = errors.New("conflict")
	ErrBadGateway          = errors.New("bad gateway")
	ErrInternalServerError = errors.New("internal server error")

	// Identity-provider rejections, mapped from the error code carried in
	// the response body of failed auth requests.
	ErrEmailExists     = errors.New("email already registered")
	ErrWeakPassword    = errors.New("weak password")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrEmailNotFound   = errors.New("email not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrTooManyAttempts = errors.New("too many attempts")

	// ErrCalendarAuthExpired signals that the stored calendar access token
	// was rejected and must be discarded.
	ErrCalendarAuthExpired = errors.New("calendar authentication expired")
)
