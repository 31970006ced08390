// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// nota-sync client services.
//
// All Msg* constants are human-readable message strings surfaced to the
// user in auth and sync results. Keeping them in one place ensures
// consistent wording throughout the client.
package app

const (
	// MsgEmailAlreadyRegistered is surfaced when a sign-up attempt is
	// rejected because an account with that email already exists.
	MsgEmailAlreadyRegistered = "This email is already registered"

	// MsgWeakPassword is surfaced when the identity provider rejects the
	// chosen password as too short.
	MsgWeakPassword = "Password should be at least 6 characters"

	// MsgInvalidEmail is surfaced when the supplied email address is
	// malformed.
	MsgInvalidEmail = "Invalid email address"

	// MsgNoAccountFound is surfaced when a sign-in attempt names an email
	// with no matching account.
	MsgNoAccountFound = "No account found with this email"

	// MsgIncorrectPassword is surfaced when the password does not match
	// the account.
	MsgIncorrectPassword = "Incorrect password"

	// MsgTooManyAttempts is surfaced when the identity provider throttles
	// repeated failed sign-in attempts.
	MsgTooManyAttempts = "Too many failed attempts. Please try again later"

	// MsgAuthenticationFailed is the fallback for any auth failure that
	// does not map to a more specific message.
	MsgAuthenticationFailed = "Authentication failed"

	// MsgNotAuthenticated is surfaced when a push or pull is requested
	// with no signed-in user.
	MsgNotAuthenticated = "Not authenticated"

	// MsgSyncFailed is surfaced when a push fails for any reason; the
	// underlying cause is logged, never shown.
	MsgSyncFailed = "Sync failed"

	// MsgPullFailed is surfaced when a pull fails for any reason.
	MsgPullFailed = "Pull failed"

	// MsgCalendarAuthExpired is surfaced when the calendar provider
	// rejects the stored access token and it has been cleared.
	MsgCalendarAuthExpired = "Google Calendar authentication expired. Please reconnect."
)
