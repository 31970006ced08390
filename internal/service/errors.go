package service

import "errors"

var (
	// ErrNotAuthenticated is returned by operations that require a
	// signed-in session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSyncDisabled is returned when a remote operation is requested
	// while the sync master switch is off.
	ErrSyncDisabled = errors.New("sync is disabled")

	// ErrCalendarNotConnected is returned when an import is requested
	// without a stored calendar access token.
	ErrCalendarNotConnected = errors.New("calendar is not connected")
)
